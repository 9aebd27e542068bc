package agent

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateMiddleKeepsShortText(t *testing.T) {
	if got := truncateMiddle("hello", 5); got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateMiddleASCII(t *testing.T) {
	got := truncateMiddle("abcdefghij", 4)
	if got != "ab…6 chars truncated…ij" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateMiddleRespectsRuneBoundaries(t *testing.T) {
	// 每个汉字 3 字节：预算 7 → 前 3 字节、后 4 字节。
	got := truncateMiddle("你好世界再见", 7)
	if !utf8.ValidString(got) {
		t.Fatalf("invalid utf8: %q", got)
	}
	if got != "你…4 chars truncated…见" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateMiddleZeroBudget(t *testing.T) {
	if got := truncateMiddle("héllo", 0); got != "…5 chars truncated…" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateMiddleBoundsLargeOutput(t *testing.T) {
	big := strings.Repeat("x", compactResultLimit*3)
	got := truncateMiddle(big, compactResultLimit)
	if len(got) > compactResultLimit+64 {
		t.Fatalf("result too long: %d", len(got))
	}
	if !strings.Contains(got, "chars truncated") {
		t.Fatalf("marker missing")
	}
}
