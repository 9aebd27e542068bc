package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coding-agent/internal/completion"
	"coding-agent/internal/config"
	"coding-agent/internal/input"
	"coding-agent/internal/logger"
	"coding-agent/internal/tui/keys"
	"coding-agent/internal/tui/prompt"
	"coding-agent/internal/tui/slash"
)

// ClipboardReader 是粘贴路径需要的剪贴板能力。
type ClipboardReader interface {
	Content(ctx context.Context) (string, error)
}

// Clipboard 额外支持写入，供 /copy 使用。
type Clipboard interface {
	ClipboardReader
	SetContent(ctx context.Context, text string) error
}

type completionMsg struct {
	res completion.Result
}

type pasteMsg struct {
	text string
	err  error
}

type pasteClearMsg struct {
	gen int
}

var (
	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5E6472")).
			Padding(0, 1)
	promptDisabledStyle = promptBoxStyle.BorderForeground(lipgloss.Color("#3A3F4B"))
	popupStyle          = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#7D56F4"))
	cursorStyle      = lipgloss.NewStyle().Reverse(true)
	placeholderStyle = lipgloss.NewStyle().Faint(true)
	pasteBadgeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EBCB8B"))
	modeBadgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#88C0D0"))
)

// composer 承载输入框：把按键交给 prompt.Prompt，并把补全刷新、剪贴板读取变成 tea.Cmd。
type composer struct {
	prompt      *prompt.Prompt
	clipboard   ClipboardReader
	ctx         context.Context
	placeholder string
	log         *logger.LogEntry
}

// newCompletionManager 组装文件与命令两个补全来源。
func newCompletionManager(session func() config.SessionConfig) *completion.Manager {
	return completion.NewManager(
		completion.NewFileProvider(session),
		completion.NewCommandProvider(slash.CompletionCommands()),
	)
}

func newComposer(ctx context.Context, mgr *completion.Manager, clip ClipboardReader, placeholder string) *composer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &composer{
		prompt:      prompt.New(mgr),
		clipboard:   clip,
		ctx:         ctx,
		placeholder: placeholder,
		log:         logger.Named("session"),
	}
}

// handleKey 处理一次按键。粘贴、补全刷新与提示清除在这里转换为命令；
// 提交、退出、中断等意图原样返回给宿主。
func (c *composer) handleKey(msg tea.KeyMsg) (prompt.Effect, tea.Cmd) {
	eff := c.prompt.Handle(keys.FromKeyMsg(msg))
	var cmds []tea.Cmd
	if eff.Intent == prompt.IntentPaste {
		cmds = append(cmds, c.readClipboard())
	}
	cmds = append(cmds, c.followUp(eff)...)
	return eff, tea.Batch(cmds...)
}

func (c *composer) followUp(eff prompt.Effect) []tea.Cmd {
	var cmds []tea.Cmd
	if eff.PasteGen != 0 {
		gen := eff.PasteGen
		cmds = append(cmds, tea.Tick(input.PasteIndicatorDuration, func(time.Time) tea.Msg {
			return pasteClearMsg{gen: gen}
		}))
	}
	if eff.Refresh {
		if cmd := c.refresh(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// refresh 发起一次补全请求；没有匹配的来源时同步隐藏。
func (c *composer) refresh() tea.Cmd {
	req := c.prompt.Completion.Begin(c.prompt.Buffer.Value(), c.prompt.Buffer.Cursor())
	if req.Provider == nil {
		return nil
	}
	ctx := c.ctx
	return func() tea.Msg {
		return completionMsg{res: completion.Run(ctx, req)}
	}
}

func (c *composer) readClipboard() tea.Cmd {
	clip := c.clipboard
	ctx := c.ctx
	if clip == nil {
		return nil
	}
	return func() tea.Msg {
		text, err := clip.Content(ctx)
		return pasteMsg{text: text, err: err}
	}
}

// update 处理输入框自身的异步消息，返回是否已处理。
func (c *composer) update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case completionMsg:
		c.prompt.Completion.Apply(msg.res)
		return nil, true
	case pasteMsg:
		if msg.err != nil {
			c.log.WithError(msg.err).Debug("clipboard read failed")
			return nil, true
		}
		if c.prompt.Disabled {
			return nil, true
		}
		eff := c.prompt.Paste(msg.text)
		return tea.Batch(c.followUp(eff)...), true
	case pasteClearMsg:
		c.prompt.ClearPasteIndicator(msg.gen)
		return nil, true
	}
	return nil, false
}

// View 渲染输入框与补全弹窗。
func (c *composer) View(width int) string {
	box := promptBoxStyle
	if c.prompt.Disabled {
		box = promptDisabledStyle
	}
	inner := width - box.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}
	body := renderBuffer(c.prompt.Buffer, c.placeholder, !c.prompt.Disabled)
	var badges []string
	if c.prompt.Buffer.Multiline() {
		badges = append(badges, modeBadgeStyle.Render("[multiline]"))
	}
	if c.prompt.Buffer.PasteIndicator() {
		badges = append(badges, pasteBadgeStyle.Render("[pasted]"))
	}
	if len(badges) > 0 {
		body += "\n" + strings.Join(badges, " ")
	}
	view := box.Width(inner).Render(body)
	if popup := slash.View(c.prompt.Completion.State(), inner, slash.DefaultMaxLines); popup != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, popupStyle.Render(popup), view)
	}
	return view
}

// renderBuffer 渲染带光标的多行文本，首行前缀 "› "。
func renderBuffer(buf *input.Buffer, placeholder string, showCursor bool) string {
	value := buf.Value()
	if value == "" {
		cursor := ""
		if showCursor {
			cursor = cursorStyle.Render(" ")
		}
		return "› " + cursor + placeholderStyle.Render(placeholder)
	}
	runes := []rune(value)
	pos := buf.Cursor()
	var sb strings.Builder
	for i := 0; i <= len(runes); i++ {
		atCursor := showCursor && i == pos
		if i == len(runes) {
			if atCursor {
				sb.WriteString(cursorStyle.Render(" "))
			}
			break
		}
		r := runes[i]
		if r == '\n' {
			if atCursor {
				sb.WriteString(cursorStyle.Render(" "))
			}
			sb.WriteString("\n")
			continue
		}
		if atCursor {
			sb.WriteString(cursorStyle.Render(string(r)))
			continue
		}
		sb.WriteRune(r)
	}
	lines := strings.Split(sb.String(), "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = "› " + lines[i]
		} else {
			lines[i] = "  " + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
