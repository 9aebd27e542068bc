package prompt

import (
	"context"
	"testing"

	"coding-agent/internal/completion"
	"coding-agent/internal/config"
	"coding-agent/internal/tui/keys"
)

var commands = []completion.Command{
	{Name: "help"}, {Name: "exit"}, {Name: "clear"}, {Name: "refresh"},
}

func newPrompt(files ...string) *Prompt {
	fp := &completion.FileProvider{
		Limit: completion.DefaultFileLimit,
		List: func(string, config.SessionConfig) ([]string, error) {
			return append([]string(nil), files...), nil
		},
	}
	return New(completion.NewManager(fp, completion.NewCommandProvider(commands)))
}

// press 模拟宿主：处理按键并在需要时同步刷新补全。
func press(p *Prompt, c keys.Chord) Effect {
	eff := p.Handle(c)
	if eff.Refresh {
		p.Completion.Refresh(context.Background(), p.Buffer.Value(), p.Buffer.Cursor())
	}
	return eff
}

func typeText(p *Prompt, s string) {
	for _, r := range s {
		press(p, keys.Rune(r))
	}
}

var (
	enter     = keys.Chord{Key: keys.KeyEnter}
	ctrlEnter = keys.Chord{Key: keys.KeyEnter, Ctrl: true}
	metaEnter = keys.Chord{Key: keys.KeyEnter, Meta: true}
	esc       = keys.Chord{Key: keys.KeyEscape}
	tab       = keys.Chord{Key: keys.KeyTab}
	up        = keys.Chord{Key: keys.KeyUp}
	down      = keys.Chord{Key: keys.KeyDown}
)

func TestKillWinsEvenWhileDisabled(t *testing.T) {
	p := newPrompt()
	typeText(p, "/he")
	p.Disabled = true
	if eff := p.Handle(keys.Ctrl('c')); eff.Intent != IntentKill {
		t.Fatalf("intent = %v, want kill", eff.Intent)
	}
}

func TestDisabledOnlyHonoursEscape(t *testing.T) {
	p := newPrompt()
	typeText(p, "hi")
	p.Disabled = true
	for _, c := range []keys.Chord{keys.Rune('x'), enter, keys.Ctrl('v'), {Key: keys.KeyBackspace}} {
		if eff := p.Handle(c); eff != (Effect{}) {
			t.Fatalf("chord %+v should be swallowed, got %+v", c, eff)
		}
	}
	if p.Buffer.Value() != "hi" {
		t.Fatalf("buffer changed while disabled: %q", p.Buffer.Value())
	}
	if eff := p.Handle(esc); eff.Intent != IntentInterrupt {
		t.Fatalf("intent = %v, want interrupt", eff.Intent)
	}
}

func TestEnterSubmitsAndResets(t *testing.T) {
	p := newPrompt()
	typeText(p, "hello")
	eff := press(p, enter)
	if eff.Intent != IntentSubmit || eff.Text != "hello" {
		t.Fatalf("effect = %+v", eff)
	}
	if p.Buffer.Value() != "" || p.Buffer.Cursor() != 0 {
		t.Fatalf("buffer not reset")
	}
}

func TestEmptyEnterInsertsNewlineInsteadOfSubmitting(t *testing.T) {
	p := newPrompt()
	eff := press(p, enter)
	if eff.Intent == IntentSubmit {
		t.Fatalf("empty Enter must not submit")
	}
	if p.Buffer.Value() != "\n" || !p.Buffer.Multiline() {
		t.Fatalf("buffer = %q multiline=%v", p.Buffer.Value(), p.Buffer.Multiline())
	}
}

func TestContinuationMarkers(t *testing.T) {
	p := newPrompt()
	typeText(p, `line one\`)
	if eff := press(p, enter); eff.Intent != IntentNone {
		t.Fatalf("marker Enter must not submit: %+v", eff)
	}
	typeText(p, "two")
	press(p, metaEnter)
	typeText(p, "three")
	if p.Buffer.Value() != "line one\ntwo\nthree" {
		t.Fatalf("buffer = %q", p.Buffer.Value())
	}
	eff := press(p, ctrlEnter)
	if eff.Intent != IntentSubmit || eff.Text != "line one\ntwo\nthree" {
		t.Fatalf("effect = %+v", eff)
	}
}

func TestFileCompletionScenario(t *testing.T) {
	p := newPrompt("docs/readme.md", "src/", "src/index.ts")
	typeText(p, "@sr")
	st := p.Completion.State()
	if !st.Visible || st.Type != completion.TypeFile {
		t.Fatalf("file completion not visible: %+v", st)
	}
	if st.Items[0].Value != "src/" || st.Items[1].Value != "src/index.ts" {
		t.Fatalf("ranking = %+v", st.Items)
	}
	eff := press(p, enter)
	if eff.Intent != IntentNone {
		t.Fatalf("applying a file completion must not submit: %+v", eff)
	}
	if p.Buffer.Value() != "@src/ " || p.Buffer.Cursor() != 6 {
		t.Fatalf("buffer = %q cursor=%d", p.Buffer.Value(), p.Buffer.Cursor())
	}
	if p.Completion.Visible() {
		t.Fatalf("completion should hide after apply")
	}
}

func TestFileCompletionReplacesWholeToken(t *testing.T) {
	p := newPrompt("src/index.ts")
	typeText(p, "see @srcx now")
	for i := 0; i < 5; i++ {
		press(p, keys.Chord{Key: keys.KeyLeft})
	}
	// 光标在 "@src" 之后、"x" 之前
	press(p, keys.Chord{Key: keys.KeyLeft})
	press(p, keys.Chord{Key: keys.KeyRight})
	if !p.Completion.Visible() {
		t.Fatalf("expected completion at %d in %q", p.Buffer.Cursor(), p.Buffer.Value())
	}
	press(p, tab)
	if p.Buffer.Value() != "see @src/index.ts  now" {
		t.Fatalf("buffer = %q", p.Buffer.Value())
	}
}

func TestCommandCompletionEnterSubmits(t *testing.T) {
	p := newPrompt()
	typeText(p, "/help")
	st := p.Completion.State()
	if !st.Visible || len(st.Items) != 1 || st.Items[0].Value != "help" {
		t.Fatalf("state = %+v", st)
	}
	eff := press(p, enter)
	if eff.Intent != IntentSubmit || eff.Text != "/help" {
		t.Fatalf("effect = %+v", eff)
	}
	if p.Buffer.Value() != "" || p.Completion.Visible() {
		t.Fatalf("prompt not reset after command submit")
	}
}

func TestTabOnCommandInsertsWithoutSubmitting(t *testing.T) {
	p := newPrompt()
	typeText(p, "/re")
	if eff := press(p, tab); eff.Intent != IntentNone {
		t.Fatalf("tab must not submit: %+v", eff)
	}
	if p.Buffer.Value() != "/refresh " || p.Buffer.Cursor() != len("/refresh ") {
		t.Fatalf("buffer = %q cursor=%d", p.Buffer.Value(), p.Buffer.Cursor())
	}
}

func TestArrowsMoveSelectionThenLines(t *testing.T) {
	p := newPrompt()
	typeText(p, "/")
	press(p, down)
	press(p, down)
	press(p, up)
	if st := p.Completion.State(); st.Selected != 1 {
		t.Fatalf("selected = %d", st.Selected)
	}
	press(p, esc)
	if p.Completion.Visible() {
		t.Fatalf("Esc should hide completions first")
	}
	if eff := press(p, esc); eff.Intent != IntentExit {
		t.Fatalf("second Esc intent = %v", eff.Intent)
	}

	q := newPrompt()
	q.Buffer.SetValue("abc\nde")
	q.Buffer.SetCursor(6)
	press(q, up)
	if q.Buffer.Cursor() != 2 {
		t.Fatalf("cursor after up = %d", q.Buffer.Cursor())
	}
}

func TestPasteChord(t *testing.T) {
	p := newPrompt()
	typeText(p, "ab")
	eff := press(p, keys.Ctrl('v'))
	if eff.Intent != IntentPaste || p.Buffer.Value() != "ab" {
		t.Fatalf("paste chord should only request the clipboard: %+v %q", eff, p.Buffer.Value())
	}
	if eff := p.Paste(""); eff != (Effect{}) || p.Buffer.Value() != "ab" {
		t.Fatalf("empty paste changed state")
	}
	eff = p.Paste("x\ny")
	if p.Buffer.Value() != "abx\ny" || !p.Buffer.PasteIndicator() || eff.PasteGen == 0 {
		t.Fatalf("paste = %+v buffer=%q", eff, p.Buffer.Value())
	}
	p.ClearPasteIndicator(eff.PasteGen)
	if p.Buffer.PasteIndicator() {
		t.Fatalf("indicator should clear")
	}

	bracketed := press(p, keys.Chord{Key: keys.KeyRune, Text: "zz", Pasted: true})
	if p.Buffer.Value() != "abx\nyzz" || bracketed.PasteGen == 0 {
		t.Fatalf("bracketed paste = %+v buffer=%q", bracketed, p.Buffer.Value())
	}
}

func TestEditingKeysAndIgnoredChords(t *testing.T) {
	p := newPrompt()
	press(p, keys.Chord{Key: keys.KeyBackspace})
	if p.Buffer.Value() != "" {
		t.Fatalf("backspace at 0 must be a no-op")
	}
	typeText(p, "abc")
	press(p, keys.Chord{Key: keys.KeyLeft})
	press(p, keys.Chord{Key: keys.KeyDelete})
	if p.Buffer.Value() != "ac" || p.Buffer.Cursor() != 1 {
		t.Fatalf("buffer = %q cursor=%d", p.Buffer.Value(), p.Buffer.Cursor())
	}
	for _, c := range []keys.Chord{{}, keys.Ctrl('a'), {Key: keys.KeyRune, Text: "x", Meta: true}, tab} {
		if eff := press(p, c); eff != (Effect{}) {
			t.Fatalf("chord %+v should be ignored, got %+v", c, eff)
		}
	}
	if p.Buffer.Value() != "ac" {
		t.Fatalf("ignored chords changed buffer: %q", p.Buffer.Value())
	}
}

func TestCtrlTTogglesMultilineMode(t *testing.T) {
	p := newPrompt()
	typeText(p, "draft")
	if eff := press(p, keys.Ctrl('t')); eff != (Effect{}) {
		t.Fatalf("toggle should not emit an intent, got %+v", eff)
	}
	if !p.Buffer.Multiline() {
		t.Fatalf("Ctrl+T should turn multiline mode on")
	}
	if p.Buffer.Value() != "draft" {
		t.Fatalf("toggle changed the buffer: %q", p.Buffer.Value())
	}
	press(p, keys.Ctrl('t'))
	if p.Buffer.Multiline() {
		t.Fatalf("second Ctrl+T should turn multiline mode off")
	}
	press(p, keys.Ctrl('t'))
	if eff := press(p, enter); eff.Intent != IntentSubmit || p.Buffer.Multiline() {
		t.Fatalf("submit should reset multiline mode, got %+v multiline=%v", eff, p.Buffer.Multiline())
	}
}

func TestCtrlDDeletesForward(t *testing.T) {
	p := newPrompt()
	typeText(p, "abc")
	press(p, keys.Chord{Key: keys.KeyLeft})
	press(p, keys.Chord{Key: keys.KeyLeft})
	if eff := press(p, keys.Ctrl('d')); !eff.Refresh {
		t.Fatalf("forward delete should request a refresh")
	}
	if p.Buffer.Value() != "ac" || p.Buffer.Cursor() != 1 {
		t.Fatalf("buffer = %q cursor=%d", p.Buffer.Value(), p.Buffer.Cursor())
	}
	press(p, keys.Chord{Key: keys.KeyRight})
	press(p, keys.Ctrl('d'))
	if p.Buffer.Value() != "ac" || p.Buffer.Cursor() != 2 {
		t.Fatalf("Ctrl+D at end must be a no-op, got %q cursor=%d", p.Buffer.Value(), p.Buffer.Cursor())
	}
}
