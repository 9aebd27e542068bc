package render

import (
	"fmt"
	"sort"
	"strings"

	"coding-agent/internal/agent"
)

// MaxToolResultLines 是详细模式下工具结果最多展示的行数。
const MaxToolResultLines = 20

// ToolRenderer 把一种工具事件格式化为转录文本。
type ToolRenderer interface {
	Type() agent.ToolEventType
	Format(ev agent.ToolEvent, verbose bool) string
}

// ToolRenderers 按事件类型索引渲染器。
type ToolRenderers map[agent.ToolEventType]ToolRenderer

// DefaultToolRenderers 返回内置的按事件类型渲染器。
func DefaultToolRenderers() ToolRenderers {
	renderers := []ToolRenderer{toolCallRenderer{}, toolResultRenderer{}}
	out := make(ToolRenderers, len(renderers))
	for _, r := range renderers {
		out[r.Type()] = r
	}
	return out
}

// Append 渲染事件并追加到转录；未知类型或空输出时返回 false。
func (r ToolRenderers) Append(tr *Transcript, ev agent.ToolEvent, verbose bool) (DisplayMessage, bool) {
	renderer, ok := r[ev.Type]
	if !ok || tr == nil {
		return DisplayMessage{}, false
	}
	block := renderer.Format(ev, verbose)
	if strings.TrimSpace(block) == "" {
		return DisplayMessage{}, false
	}
	return tr.Append(KindToolCall, block), true
}

type toolCallRenderer struct{}

func (toolCallRenderer) Type() agent.ToolEventType { return agent.ToolEventCall }

func (toolCallRenderer) Format(ev agent.ToolEvent, _ bool) string {
	line := fmt.Sprintf("• %s started", toolName(ev))
	if summary := argsSummary(ev.Args); summary != "" {
		line += " (" + summary + ")"
	}
	return line
}

type toolResultRenderer struct{}

func (toolResultRenderer) Type() agent.ToolEventType { return agent.ToolEventResult }

func (toolResultRenderer) Format(ev agent.ToolEvent, verbose bool) string {
	icon, state := "✓", "completed"
	if !ev.Success {
		icon, state = "✗", "failed"
	}
	head := fmt.Sprintf("%s %s %s", icon, toolName(ev), state)
	if !verbose {
		if !ev.Success {
			if first := firstLine(ev.Result); first != "" {
				head += ": " + first
			}
		}
		return head
	}

	var sb strings.Builder
	sb.WriteString(head)
	for _, key := range sortedKeys(ev.Args) {
		sb.WriteString("\n  └ " + key + ": " + formatArg(ev.Args[key]))
	}
	if strings.TrimSpace(ev.Result) == "" {
		return sb.String()
	}
	if ev.Success {
		sb.WriteString("\n  └ result:")
	} else {
		sb.WriteString("\n  └ error:")
	}
	sb.WriteString(renderIndentedTruncatedLines(ev.Result, MaxToolResultLines))
	return sb.String()
}

func toolName(ev agent.ToolEvent) string {
	if name := strings.TrimSpace(ev.ToolName); name != "" {
		return name
	}
	return "tool"
}

func argsSummary(args map[string]any) string {
	parts := make([]string, 0, len(args))
	for _, key := range sortedKeys(args) {
		v := formatArg(args[key])
		if v == "" {
			continue
		}
		parts = append(parts, key+"="+v)
	}
	return strings.Join(parts, " ")
}

func sortedKeys(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatArg(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		return fmt.Sprint(val)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func renderIndentedTruncatedLines(text string, limit int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	hidden := 0
	if limit > 0 && len(lines) > limit {
		hidden = len(lines) - limit
		lines = lines[:limit]
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString("\n    " + strings.TrimRight(line, "\r"))
	}
	if hidden > 0 {
		sb.WriteString(fmt.Sprintf("\n    … (%d more lines)", hidden))
	}
	return sb.String()
}
