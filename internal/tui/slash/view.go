package slash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	sfuzzy "github.com/sahilm/fuzzy"

	"coding-agent/internal/completion"
)

var (
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C4A1FF"))
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EBCB8B"))
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#2F2A3D"))
)

// DefaultMaxLines 是弹窗最多展示的条目数。
const DefaultMaxLines = 8

// View 渲染补全弹窗（不含外围边框）。隐藏时返回空串。
func View(st completion.State, width, maxLines int) string {
	if !st.Visible || len(st.Items) == 0 {
		return ""
	}
	contentWidth := width
	if contentWidth <= 20 {
		contentWidth = 20
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	start, end := window(len(st.Items), st.Selected, maxLines)

	nameWidth := nameColumnWidth(st, contentWidth)
	descWidth := contentWidth - nameWidth - 2
	lines := make([]string, 0, end-start)
	for idx := start; idx < end; idx++ {
		item := st.Items[idx]
		name := displayName(item)
		highlighted := applyHighlights(name, matchedIndexes(item, name, st.Token.Partial))
		cell := lipgloss.NewStyle().Width(nameWidth).Render(nameStyle.Render(highlighted))
		line := cell
		if desc := item.Description; desc != "" && descWidth > 0 {
			line += "  " + descStyle.Render(runewidth.Truncate(desc, descWidth, "…"))
		}
		if idx == st.Selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(contentWidth).Render(strings.Join(lines, "\n"))
}

func displayName(item completion.Item) string {
	if item.Type == completion.TypeCommand {
		return "/" + item.Value
	}
	return item.Value
}

// window 返回包含选中项的可见区间 [start, end)。
func window(total, selected, maxLines int) (int, int) {
	if total <= maxLines {
		return 0, total
	}
	start := 0
	if selected >= maxLines {
		start = selected - maxLines + 1
	}
	return start, start + maxLines
}

func nameColumnWidth(st completion.State, contentWidth int) int {
	maxName := 10
	for _, item := range st.Items {
		if w := runewidth.StringWidth(displayName(item)); w > maxName {
			maxName = w
		}
	}
	if maxName > contentWidth-12 {
		maxName = contentWidth - 12
	}
	return maxName
}

// matchedIndexes 计算 name 中需要高亮的 rune 下标：命令按前缀，文件按模糊匹配。
func matchedIndexes(item completion.Item, name, partial string) []int {
	if partial == "" {
		return nil
	}
	if item.Type == completion.TypeCommand {
		n := len([]rune(partial))
		out := make([]int, 0, n)
		for i := 1; i <= n && i < len([]rune(name)); i++ {
			out = append(out, i)
		}
		return out
	}
	matches := sfuzzy.Find(partial, []string{name})
	if len(matches) == 0 {
		return nil
	}
	return byteToRuneIndexes(name, matches[0].MatchedIndexes)
}

// sahilm/fuzzy 返回字节下标。
func byteToRuneIndexes(s string, byteIdx []int) []int {
	if len(byteIdx) == 0 {
		return nil
	}
	want := make(map[int]bool, len(byteIdx))
	for _, b := range byteIdx {
		want[b] = true
	}
	out := make([]int, 0, len(byteIdx))
	ri := 0
	for bi := range s {
		if want[bi] {
			out = append(out, ri)
		}
		ri++
	}
	return out
}

func applyHighlights(name string, indexes []int) string {
	if len(indexes) == 0 {
		return name
	}
	marked := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		marked[idx] = true
	}
	var sb strings.Builder
	for i, r := range []rune(name) {
		if marked[i] {
			sb.WriteString(highlightStyle.Render(string(r)))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
