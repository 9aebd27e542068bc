// Package input 维护提示框的文本缓冲区：文本、光标、多行标记与粘贴提示。
//
// 所有位置都以 rune 计数。任何越界输入都会被钳制，操作从不返回错误。
package input

import (
	"strings"
	"time"
)

// PasteIndicatorDuration 是粘贴提示的展示时长。
const PasteIndicatorDuration = 1500 * time.Millisecond

// Buffer 是单个提示框的输入状态。零值即空状态，可直接使用。
type Buffer struct {
	value     []rune
	cursor    int
	multiline bool
	pasted    bool
	pasteGen  int
}

// New 返回一个空缓冲区。
func New() *Buffer {
	return &Buffer{}
}

// Value 返回当前文本。
func (b *Buffer) Value() string {
	return string(b.value)
}

// Len 返回文本的 rune 长度。
func (b *Buffer) Len() int {
	return len(b.value)
}

// Cursor 返回光标位置，范围 [0, Len()]。
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Multiline 报告缓冲区是否处于多行模式。
func (b *Buffer) Multiline() bool {
	return b.multiline
}

// PasteIndicator 报告粘贴提示是否可见。
func (b *Buffer) PasteIndicator() bool {
	return b.pasted
}

// BeforeCursor 返回光标之前的文本。
func (b *Buffer) BeforeCursor() string {
	return string(b.value[:b.cursor])
}

// SetValue 替换文本并把光标钳制到新长度内。含换行时进入多行模式。
func (b *Buffer) SetValue(v string) {
	b.value = []rune(v)
	if strings.Contains(v, "\n") {
		b.multiline = true
	}
	b.clamp()
}

// SetCursor 把光标移动到 p，越界时钳制。
func (b *Buffer) SetCursor(p int) {
	b.cursor = p
	b.clamp()
}

// SetMultiline 显式切换多行模式。
func (b *Buffer) SetMultiline(on bool) {
	b.multiline = on
}

// InsertAtCursor 在光标处插入文本，光标前进 len(text)。
func (b *Buffer) InsertAtCursor(text string) {
	if text == "" {
		return
	}
	ins := []rune(text)
	next := make([]rune, 0, len(b.value)+len(ins))
	next = append(next, b.value[:b.cursor]...)
	next = append(next, ins...)
	next = append(next, b.value[b.cursor:]...)
	b.value = next
	b.cursor += len(ins)
	if strings.Contains(text, "\n") {
		b.multiline = true
	}
	b.clamp()
}

// DeleteAtCursor 删除光标前最多 count 个字符；count<1 按 1 处理，光标在 0 时无操作。
func (b *Buffer) DeleteAtCursor(count int) {
	if count < 1 {
		count = 1
	}
	if b.cursor == 0 {
		return
	}
	if count > b.cursor {
		count = b.cursor
	}
	start := b.cursor - count
	b.value = append(b.value[:start], b.value[b.cursor:]...)
	b.cursor = start
	b.clamp()
}

// DeleteForward 删除光标后最多 count 个字符，光标不动。
func (b *Buffer) DeleteForward(count int) {
	if count < 1 {
		count = 1
	}
	end := b.cursor + count
	if end > len(b.value) {
		end = len(b.value)
	}
	b.value = append(b.value[:b.cursor], b.value[end:]...)
	b.clamp()
}

// Replace 用 text 替换 [start, end) 区间，光标落在替换内容之后。
func (b *Buffer) Replace(start, end int, text string) {
	start = clampInt(start, 0, len(b.value))
	end = clampInt(end, start, len(b.value))
	b.cursor = start
	b.value = append(b.value[:start:start], b.value[end:]...)
	b.InsertAtCursor(text)
}

// MoveCursor 按 delta 移动光标并钳制。
func (b *Buffer) MoveCursor(delta int) {
	b.cursor += delta
	b.clamp()
}

// MoveLine 按逻辑行上下移动光标，尽量保持列号；已在首/末行时不动。
func (b *Buffer) MoveLine(delta int) {
	if delta == 0 {
		return
	}
	starts := b.lineStarts()
	line := 0
	for i, s := range starts {
		if s <= b.cursor {
			line = i
		}
	}
	target := line + delta
	if target < 0 || target >= len(starts) {
		return
	}
	col := b.cursor - starts[line]
	end := len(b.value)
	if target+1 < len(starts) {
		end = starts[target+1] - 1
	}
	pos := starts[target] + col
	if pos > end {
		pos = end
	}
	b.SetCursor(pos)
}

// ShowPasteIndicator 打开粘贴提示并返回本次提示的代数；
// 调用方在 PasteIndicatorDuration 之后用该代数调用 ClearPasteIndicator。
func (b *Buffer) ShowPasteIndicator() int {
	b.pasteGen++
	b.pasted = true
	return b.pasteGen
}

// ClearPasteIndicator 仅在 gen 仍是最新代数时关闭提示。
func (b *Buffer) ClearPasteIndicator(gen int) {
	if gen == b.pasteGen {
		b.pasted = false
	}
}

// Reset 回到空状态。粘贴代数保留，使过期的清除计时器失效。
func (b *Buffer) Reset() {
	b.value = nil
	b.cursor = 0
	b.multiline = false
	b.pasted = false
	b.pasteGen++
}

func (b *Buffer) lineStarts() []int {
	starts := []int{0}
	for i, r := range b.value {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (b *Buffer) clamp() {
	b.cursor = clampInt(b.cursor, 0, len(b.value))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
