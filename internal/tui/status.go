package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var hintStyle = lipgloss.NewStyle().Faint(true)

// statusIndicator 是处理中的状态行：spinner、标题、已用时间与中断提示。
type statusIndicator struct {
	header  string
	started time.Time
	active  bool
	clock   func() time.Time
}

func newStatusIndicator(clock func() time.Time) statusIndicator {
	if clock == nil {
		clock = time.Now
	}
	return statusIndicator{header: "Working", clock: clock}
}

func (s *statusIndicator) Start() {
	s.started = s.clock()
	s.active = true
}

func (s *statusIndicator) Stop() {
	s.active = false
}

func (s statusIndicator) Elapsed() time.Duration {
	if !s.active {
		return 0
	}
	return s.clock().Sub(s.started)
}

// View 渲染单行状态；未激活时返回空串。
func (s statusIndicator) View(spin spinner.Model, width int) string {
	if !s.active {
		return ""
	}
	hint := fmt.Sprintf("(%s • esc to interrupt)", fmtElapsedCompact(uint64(s.Elapsed().Seconds())))
	line := spin.View() + " " + s.header + " " + hintStyle.Render(hint)
	if width > 0 && runewidth.StringWidth(spin.View()+" "+s.header+" "+hint) > width {
		return runewidth.Truncate(spin.View()+" "+s.header, width, "…")
	}
	return line
}

// fmtElapsedCompact 将秒数格式化为友好字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		return fmt.Sprintf("%dm %02ds", elapsedSecs/60, elapsedSecs%60)
	default:
		return fmt.Sprintf("%dh %02dm %02ds", elapsedSecs/3600, (elapsedSecs%3600)/60, elapsedSecs%60)
	}
}
