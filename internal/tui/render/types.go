package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Span 表示一段文本及其样式。
type Span struct {
	Text  string
	Style lipgloss.Style
}

// Line 由多个 Span 组成，可选整体样式。
type Line struct {
	Spans []Span
	Style lipgloss.Style
}

// Plain 返回去掉样式的文本。
func (l Line) Plain() string {
	var sb strings.Builder
	for _, sp := range l.Spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// LinesToStrings 将样式化的行转换为字符串列表。
func LinesToStrings(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		segments := make([]string, 0, len(line.Spans))
		for _, sp := range line.Spans {
			segments = append(segments, sp.Style.Render(sp.Text))
		}
		out = append(out, line.Style.Render(strings.Join(segments, "")))
	}
	return out
}

// LinesToPlainStrings 同 LinesToStrings，但不带 ANSI 样式，用于测试与可复制输出。
func LinesToPlainStrings(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.Plain())
	}
	return out
}

// PrefixLines 为首行/续行添加前缀。
func PrefixLines(lines []Line, initial Span, subsequent Span) []Line {
	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		spans := make([]Span, 0, len(l.Spans)+1)
		if i == 0 {
			spans = append(spans, initial)
		} else {
			spans = append(spans, subsequent)
		}
		spans = append(spans, l.Spans...)
		out = append(out, Line{Spans: spans, Style: l.Style})
	}
	return out
}
