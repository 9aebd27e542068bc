// Package prompt 是输入框的纯状态机：按键组合进来，缓冲区/补全状态变化并产出意图。
//
// 规则按优先级依次匹配，命中即止：
//
//  1. Ctrl+C 立即退出，任何状态下都生效（包括禁用时）
//  2. 禁用时只响应 Esc（中断），其余按键被吞掉
//  3. Ctrl+Enter，或补全可见时的 Enter：应用选中候选；无补全时提交
//  4. Enter：缓冲区非空则提交；为空或带续行标记（行尾 \ 或 Meta+Enter）则插入换行
//  5. Esc：补全可见则隐藏，否则退出
//  6. 粘贴（Ctrl+V / Meta+V）：请求读取剪贴板；终端直接粘贴的文本立即插入
//  7. 补全可见时 Tab：应用选中候选
//  8. 补全可见时 ↑/↓：移动选中项
//  9. 否则 ↑/↓：在多行文本中按逻辑行移动光标
//  10. ←/→：光标移动一格
//  11. Backspace/Delete：删除光标前一个字符
//  12. 不带修饰键的可打印字符：插入
//
// 另有两个不与上述规则重叠的编辑键：Ctrl+T 切换多行模式，Ctrl+D 删除光标后一个字符。
package prompt

import (
	"strings"

	"coding-agent/internal/completion"
	"coding-agent/internal/input"
	"coding-agent/internal/tui/keys"
)

type Intent int

const (
	IntentNone Intent = iota
	// IntentSubmit 提交 Effect.Text。
	IntentSubmit
	// IntentKill 是 Ctrl+C，宿主应立即结束会话。
	IntentKill
	// IntentExit 是空闲时按 Esc。
	IntentExit
	// IntentInterrupt 是处理中按 Esc。
	IntentInterrupt
	// IntentPaste 请求宿主异步读取剪贴板后调用 Paste。
	IntentPaste
)

func (i Intent) String() string {
	switch i {
	case IntentSubmit:
		return "submit"
	case IntentKill:
		return "kill"
	case IntentExit:
		return "exit"
	case IntentInterrupt:
		return "interrupt"
	case IntentPaste:
		return "paste"
	default:
		return "none"
	}
}

// Effect 是一次按键处理的结果。
type Effect struct {
	Intent Intent
	Text   string
	// Refresh 表示缓冲区或光标变化，宿主应发起补全刷新。
	Refresh bool
	// PasteGen 非零时宿主应在 input.PasteIndicatorDuration 后调用 ClearPasteIndicator。
	PasteGen int
}

// ContinuationMarker 出现在光标前时，Enter 把它替换为换行。
const ContinuationMarker = `\`

// Prompt 组合输入缓冲区与补全管理器。
type Prompt struct {
	Buffer     *input.Buffer
	Completion *completion.Manager
	Disabled   bool
}

func New(mgr *completion.Manager) *Prompt {
	if mgr == nil {
		mgr = completion.NewManager()
	}
	return &Prompt{Buffer: input.New(), Completion: mgr}
}

// Handle 按优先级规则处理一次按键。
func (p *Prompt) Handle(c keys.Chord) Effect {
	// 1
	if c.IsKill() {
		return Effect{Intent: IntentKill}
	}
	// 2
	if p.Disabled {
		if c.Key == keys.KeyEscape {
			return Effect{Intent: IntentInterrupt}
		}
		return Effect{}
	}
	visible := p.Completion.Visible()
	switch {
	// 3
	case c.Key == keys.KeyEnter && (c.Ctrl || (visible && !c.Meta)):
		if visible {
			return p.applySelected(true)
		}
		return p.submit()
	// 4
	case c.Key == keys.KeyEnter:
		return p.enter(c)
	// 5
	case c.Key == keys.KeyEscape:
		if visible {
			p.Completion.Hide()
			return Effect{}
		}
		return Effect{Intent: IntentExit}
	// 6
	case c.IsPaste():
		return Effect{Intent: IntentPaste}
	case c.Pasted:
		return p.Paste(c.Text)
	// 7
	case c.Key == keys.KeyTab:
		if visible {
			return p.applySelected(false)
		}
		return Effect{}
	// 8, 9
	case c.Key == keys.KeyUp || c.Key == keys.KeyDown:
		delta := 1
		if c.Key == keys.KeyUp {
			delta = -1
		}
		if visible {
			p.Completion.Move(delta)
			return Effect{}
		}
		p.Buffer.MoveLine(delta)
		return Effect{Refresh: true}
	// 10
	case c.Key == keys.KeyLeft:
		p.Buffer.MoveCursor(-1)
		return Effect{Refresh: true}
	case c.Key == keys.KeyRight:
		p.Buffer.MoveCursor(1)
		return Effect{Refresh: true}
	// 11
	case c.Key == keys.KeyBackspace || c.Key == keys.KeyDelete:
		p.Buffer.DeleteAtCursor(1)
		return Effect{Refresh: true}
	case c.Ctrl && c.Key == keys.KeyRune && c.Text == "t":
		p.Buffer.SetMultiline(!p.Buffer.Multiline())
		return Effect{}
	case c.Ctrl && c.Key == keys.KeyRune && c.Text == "d":
		p.Buffer.DeleteForward(1)
		return Effect{Refresh: true}
	// 12
	case c.Printable():
		p.Buffer.InsertAtCursor(c.Text)
		return Effect{Refresh: true}
	}
	return Effect{}
}

func (p *Prompt) enter(c keys.Chord) Effect {
	before := p.Buffer.BeforeCursor()
	switch {
	case c.Meta:
		p.Buffer.InsertAtCursor("\n")
	case strings.HasSuffix(before, ContinuationMarker):
		cur := p.Buffer.Cursor()
		p.Buffer.Replace(cur-1, cur, "\n")
	case p.Buffer.Value() == "":
		p.Buffer.InsertAtCursor("\n")
	default:
		return p.submit()
	}
	return Effect{Refresh: true}
}

func (p *Prompt) submit() Effect {
	text := p.Buffer.Value()
	p.Reset()
	return Effect{Intent: IntentSubmit, Text: text}
}

// applySelected 应用当前选中的候选。文件候选替换 token 并追加空格；
// 命令候选在 submitCommand 时直接提交 "/"+命令，否则写入 "/命令 " 继续编辑。
func (p *Prompt) applySelected(submitCommand bool) Effect {
	item, ok := p.Completion.Selected()
	if !ok {
		p.Completion.Hide()
		return Effect{}
	}
	value := p.Buffer.Value()
	cursor := p.Buffer.Cursor()
	switch item.Type {
	case completion.TypeCommand:
		cmd := "/" + item.Value
		if submitCommand {
			p.Reset()
			return Effect{Intent: IntentSubmit, Text: cmd}
		}
		p.Buffer.SetValue(cmd + " ")
		p.Buffer.SetCursor(p.Buffer.Len())
	default:
		tok, ok := p.Completion.TokenFor(value, cursor)
		if !ok {
			tok = p.Completion.State().Token
		}
		p.Buffer.Replace(tok.Start, tok.End, item.Value+" ")
	}
	p.Completion.Hide()
	return Effect{}
}

// Paste 在光标处插入粘贴文本并打开粘贴提示。空文本不改变缓冲区。
func (p *Prompt) Paste(text string) Effect {
	if text == "" {
		return Effect{}
	}
	p.Buffer.InsertAtCursor(text)
	gen := p.Buffer.ShowPasteIndicator()
	return Effect{Refresh: true, PasteGen: gen}
}

// ClearPasteIndicator 关闭第 gen 次粘贴打开的提示。
func (p *Prompt) ClearPasteIndicator(gen int) {
	p.Buffer.ClearPasteIndicator(gen)
}

// Reset 清空输入并隐藏补全。
func (p *Prompt) Reset() {
	p.Buffer.Reset()
	p.Completion.Hide()
}
