// Package keys 把终端按键事件抽象为与渲染框架无关的按键组合。
package keys

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
)

type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyEscape
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyBackspace
	KeyDelete
)

// Chord 是一次按键组合。KeyRune 时 Text 为输入的字符；
// Pasted 为 true 表示终端以 bracketed paste 直接送来的文本。
type Chord struct {
	Key    Key
	Text   string
	Ctrl   bool
	Meta   bool
	Shift  bool
	Pasted bool
}

// IsKill 报告是否为终止会话的组合键（Ctrl+C）。
func (c Chord) IsKill() bool {
	return c.Ctrl && c.Key == KeyRune && (c.Text == "c" || c.Text == "C")
}

// IsPaste 报告是否为粘贴组合键（Ctrl+V 或 Meta+V）。
func (c Chord) IsPaste() bool {
	return (c.Ctrl || c.Meta) && c.Key == KeyRune && (c.Text == "v" || c.Text == "V")
}

// Printable 报告是否为不带修饰键的可打印输入。
func (c Chord) Printable() bool {
	if c.Key != KeyRune || c.Ctrl || c.Meta || c.Text == "" {
		return false
	}
	for _, r := range c.Text {
		if !unicode.IsPrint(r) && r != '\t' {
			return false
		}
	}
	return true
}

// Rune 构造一个普通字符按键。
func Rune(r rune) Chord {
	return Chord{Key: KeyRune, Text: string(r)}
}

// Ctrl 构造 Ctrl+字母。
func Ctrl(r rune) Chord {
	return Chord{Key: KeyRune, Text: string(r), Ctrl: true}
}

// FromKeyMsg 把 bubbletea 的按键消息转换为 Chord。
// Ctrl+J 视为 Ctrl+Enter，Alt+Enter 视为带 Meta 的 Enter。
func FromKeyMsg(msg tea.KeyMsg) Chord {
	c := Chord{Meta: msg.Alt}
	switch msg.Type {
	case tea.KeyRunes:
		c.Key = KeyRune
		c.Text = string(msg.Runes)
		c.Pasted = msg.Paste
	case tea.KeySpace:
		c.Key = KeyRune
		c.Text = " "
	case tea.KeyEnter:
		c.Key = KeyEnter
	case tea.KeyCtrlJ:
		c.Key = KeyEnter
		c.Ctrl = true
	case tea.KeyEsc:
		c.Key = KeyEscape
	case tea.KeyTab:
		c.Key = KeyTab
	case tea.KeyShiftTab:
		c.Key = KeyTab
		c.Shift = true
	case tea.KeyUp:
		c.Key = KeyUp
	case tea.KeyDown:
		c.Key = KeyDown
	case tea.KeyLeft:
		c.Key = KeyLeft
	case tea.KeyRight:
		c.Key = KeyRight
	case tea.KeyShiftUp:
		c.Key, c.Shift = KeyUp, true
	case tea.KeyShiftDown:
		c.Key, c.Shift = KeyDown, true
	case tea.KeyShiftLeft:
		c.Key, c.Shift = KeyLeft, true
	case tea.KeyShiftRight:
		c.Key, c.Shift = KeyRight, true
	case tea.KeyBackspace, tea.KeyCtrlH:
		c.Key = KeyBackspace
	case tea.KeyDelete:
		c.Key = KeyDelete
	default:
		if letter, ok := ctrlLetter(msg.Type); ok {
			c.Key = KeyRune
			c.Text = string(letter)
			c.Ctrl = true
		}
	}
	return c
}

var ctrlLetters = map[tea.KeyType]rune{
	tea.KeyCtrlA: 'a', tea.KeyCtrlB: 'b', tea.KeyCtrlC: 'c', tea.KeyCtrlD: 'd',
	tea.KeyCtrlE: 'e', tea.KeyCtrlF: 'f', tea.KeyCtrlG: 'g', tea.KeyCtrlK: 'k',
	tea.KeyCtrlL: 'l', tea.KeyCtrlN: 'n', tea.KeyCtrlO: 'o', tea.KeyCtrlP: 'p',
	tea.KeyCtrlQ: 'q', tea.KeyCtrlR: 'r', tea.KeyCtrlS: 's', tea.KeyCtrlT: 't',
	tea.KeyCtrlU: 'u', tea.KeyCtrlV: 'v', tea.KeyCtrlW: 'w', tea.KeyCtrlX: 'x',
	tea.KeyCtrlY: 'y', tea.KeyCtrlZ: 'z',
}

func ctrlLetter(t tea.KeyType) (rune, bool) {
	r, ok := ctrlLetters[t]
	return r, ok
}
