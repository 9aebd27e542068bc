package render

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// Kind 是转录条目的种类。
type Kind string

const (
	KindUser     Kind = "user"
	KindAgent    Kind = "agent"
	KindSystem   Kind = "system"
	KindToolCall Kind = "tool_call"
	KindError    Kind = "error"
)

// DisplayMessage 是转录中的一条记录，创建后不再修改。
type DisplayMessage struct {
	ID        string
	Kind      Kind
	Content   string
	Timestamp time.Time
}

var (
	userPrefixStyle  = lipgloss.NewStyle().Faint(true).Bold(true)
	userIndentStyle  = lipgloss.NewStyle().Faint(true)
	agentPrefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	systemStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#2DD4BF"))
	toolStyle        = lipgloss.NewStyle().Faint(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
)

// Transcript 是只追加的消息序列，只有 Clear 会清空。
type Transcript struct {
	width    int
	messages []DisplayMessage
	now      func() time.Time
}

// NewTranscript 创建 Transcript。
func NewTranscript(width int) *Transcript {
	if width <= 0 {
		width = 80
	}
	return &Transcript{width: width, now: time.Now}
}

// SetWidth 更新渲染宽度。
func (t *Transcript) SetWidth(width int) {
	if width > 0 {
		t.width = width
	}
}

// Append 追加一条消息并返回它。
func (t *Transcript) Append(kind Kind, content string) DisplayMessage {
	msg := DisplayMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		Content:   strings.TrimRight(content, "\n"),
		Timestamp: t.now(),
	}
	t.messages = append(t.messages, msg)
	return msg
}

// Messages 返回消息副本。
func (t *Transcript) Messages() []DisplayMessage {
	if t == nil {
		return nil
	}
	return append([]DisplayMessage(nil), t.messages...)
}

func (t *Transcript) Len() int { return len(t.messages) }

// Clear 清空全部消息。
func (t *Transcript) Clear() {
	t.messages = nil
}

// Lines 按宽度渲染全部消息，width<=0 时使用 SetWidth 设置的宽度。
func (t *Transcript) Lines(width int) []Line {
	if width <= 0 {
		width = t.width
	}
	out := []Line{}
	for i, msg := range t.messages {
		if i > 0 && (msg.Kind == KindUser || t.messages[i-1].Kind == KindUser) {
			out = append(out, Line{})
		}
		out = append(out, RenderMessage(msg, width)...)
	}
	return out
}

// String 返回带样式的完整渲染结果。
func (t *Transcript) String() string {
	return strings.Join(LinesToStrings(t.Lines(0)), "\n")
}

// RenderMessage 渲染单条消息。
func RenderMessage(msg DisplayMessage, width int) []Line {
	bodyWidth := width - 2
	if bodyWidth < 1 {
		bodyWidth = width
	}
	switch msg.Kind {
	case KindUser:
		return PrefixLines(styledLines(wrapText(msg.Content, bodyWidth), lipgloss.Style{}),
			Span{Text: "› ", Style: userPrefixStyle}, Span{Text: "  ", Style: userIndentStyle})
	case KindAgent:
		return PrefixLines(styledLines(wrapText(msg.Content, bodyWidth), lipgloss.Style{}),
			Span{Text: "• ", Style: agentPrefixStyle}, Span{Text: "  "})
	case KindToolCall:
		return toolBlockLines(msg.Content, width)
	case KindError:
		return PrefixLines(styledLines(wrapText(msg.Content, bodyWidth), errorStyle),
			Span{Text: "✗ ", Style: errorStyle}, Span{Text: "  "})
	default:
		return styledLines(wrapText(msg.Content, width), systemStyle)
	}
}

func styledLines(text []string, style lipgloss.Style) []Line {
	out := make([]Line, 0, len(text))
	for _, l := range text {
		out = append(out, Line{Spans: []Span{{Text: l, Style: style}}})
	}
	return out
}

// toolBlockLines 保留工具块自带的缩进，只做硬换行。
func toolBlockLines(content string, width int) []Line {
	out := []Line{}
	for _, raw := range strings.Split(content, "\n") {
		for _, l := range wrapPreserveSpaces(raw, width) {
			out = append(out, Line{Spans: []Span{{Text: l, Style: toolStyle}}})
		}
	}
	return out
}
