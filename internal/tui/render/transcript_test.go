package render

import (
	"strings"
	"testing"
	"time"
)

func TestTranscriptAppendOnlyAndClear(t *testing.T) {
	tr := NewTranscript(40)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr.now = func() time.Time { return fixed }

	first := tr.Append(KindUser, "hi\n")
	second := tr.Append(KindAgent, "hello")
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids must be unique and non-empty: %q %q", first.ID, second.ID)
	}
	if first.Content != "hi" || !first.Timestamp.Equal(fixed) {
		t.Fatalf("first = %+v", first)
	}

	snapshot := tr.Messages()
	snapshot[0].Content = "mutated"
	if tr.Messages()[0].Content != "hi" {
		t.Fatalf("Messages must return a copy")
	}

	tr.Clear()
	if tr.Len() != 0 || len(tr.Lines(0)) != 0 {
		t.Fatalf("transcript not cleared")
	}
}

func TestTranscriptRenderPrefixes(t *testing.T) {
	tr := NewTranscript(40)
	tr.Append(KindUser, "question")
	tr.Append(KindAgent, "answer")
	tr.Append(KindSystem, "note")
	tr.Append(KindError, "boom")
	tr.Append(KindToolCall, "✓ list_files completed\n  └ path: .")

	got := strings.Join(LinesToPlainStrings(tr.Lines(0)), "\n")
	want := strings.Join([]string{
		"› question",
		"",
		"• answer",
		"note",
		"✗ boom",
		"✓ list_files completed",
		"  └ path: .",
	}, "\n")
	if got != want {
		t.Fatalf("render mismatch:\n%s\nwant:\n%s", got, want)
	}
}

func TestTranscriptWrapsToWidth(t *testing.T) {
	tr := NewTranscript(10)
	tr.Append(KindAgent, "alpha beta gamma")
	lines := LinesToPlainStrings(tr.Lines(0))
	if len(lines) != 3 || lines[0] != "• alpha" || lines[1] != "  beta" {
		t.Fatalf("wrapped = %q", lines)
	}
}
