package keys

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestFromKeyMsg(t *testing.T) {
	cases := []struct {
		name string
		msg  tea.KeyMsg
		want Chord
	}{
		{name: "rune", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, want: Chord{Key: KeyRune, Text: "a"}},
		{name: "space", msg: tea.KeyMsg{Type: tea.KeySpace}, want: Chord{Key: KeyRune, Text: " "}},
		{name: "alt rune", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v"), Alt: true}, want: Chord{Key: KeyRune, Text: "v", Meta: true}},
		{name: "paste", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x\ny"), Paste: true}, want: Chord{Key: KeyRune, Text: "x\ny", Pasted: true}},
		{name: "enter", msg: tea.KeyMsg{Type: tea.KeyEnter}, want: Chord{Key: KeyEnter}},
		{name: "alt enter", msg: tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, want: Chord{Key: KeyEnter, Meta: true}},
		{name: "ctrl j", msg: tea.KeyMsg{Type: tea.KeyCtrlJ}, want: Chord{Key: KeyEnter, Ctrl: true}},
		{name: "ctrl c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}, want: Chord{Key: KeyRune, Text: "c", Ctrl: true}},
		{name: "ctrl v", msg: tea.KeyMsg{Type: tea.KeyCtrlV}, want: Chord{Key: KeyRune, Text: "v", Ctrl: true}},
		{name: "esc", msg: tea.KeyMsg{Type: tea.KeyEsc}, want: Chord{Key: KeyEscape}},
		{name: "backspace", msg: tea.KeyMsg{Type: tea.KeyBackspace}, want: Chord{Key: KeyBackspace}},
		{name: "ctrl h", msg: tea.KeyMsg{Type: tea.KeyCtrlH}, want: Chord{Key: KeyBackspace}},
		{name: "shift up", msg: tea.KeyMsg{Type: tea.KeyShiftUp}, want: Chord{Key: KeyUp, Shift: true}},
		{name: "unknown", msg: tea.KeyMsg{Type: tea.KeyF5}, want: Chord{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromKeyMsg(tc.msg); got != tc.want {
				t.Fatalf("FromKeyMsg(%v) = %+v, want %+v", tc.msg, got, tc.want)
			}
		})
	}
}

func TestChordPredicates(t *testing.T) {
	if !Ctrl('c').IsKill() || Rune('c').IsKill() {
		t.Fatalf("IsKill mismatch")
	}
	if !Ctrl('v').IsPaste() || !(Chord{Key: KeyRune, Text: "v", Meta: true}).IsPaste() || Rune('v').IsPaste() {
		t.Fatalf("IsPaste mismatch")
	}
	if !Rune('é').Printable() || Ctrl('a').Printable() || (Chord{Key: KeyRune, Text: "\x1b"}).Printable() {
		t.Fatalf("Printable mismatch")
	}
}
