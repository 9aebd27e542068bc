package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coding-agent/internal/agent"
	"coding-agent/internal/clipboard"
	"coding-agent/internal/completion"
	"coding-agent/internal/config"
	"coding-agent/internal/logger"
	"coding-agent/internal/tui/prompt"
	"coding-agent/internal/tui/render"
	"coding-agent/internal/tui/slash"
)

var (
	// ErrInterrupted 表示用户按下 Ctrl+C 或进程收到终止信号。
	ErrInterrupted = errors.New("interrupted")
	// ErrCancelled 表示单次输入模式下用户按 Esc 放弃输入。
	ErrCancelled = errors.New("cancelled")
)

const maxErrorDetailLines = 20

type Options struct {
	Agent         agent.Agent
	Session       config.SessionConfig
	Model         string
	Provider      string
	InitialPrompt string
	ShowTools     bool
	VerboseTools  bool
	// CopyableOutput 不使用备用屏幕，退出后转录仍留在终端里。
	CopyableOutput bool
	Clipboard      Clipboard
	// Completion 为空时按 Session 构建文件与命令补全。
	Completion *completion.Manager
	Clock      func() time.Time
}

type startPromptMsg struct {
	text string
}

type agentReplyMsg struct {
	id   int
	text string
	err  error
}

type toolEventMsg struct {
	ev agent.ToolEvent
}

type toolStreamClosedMsg struct{}

type commandResultMsg struct {
	text string
	err  error
}

// Model 是交互模式的 bubbletea 模型。所有状态只在 Update 中修改。
type Model struct {
	ctx        context.Context
	agent      agent.Agent
	session    config.SessionConfig
	modelName  string
	provider   string
	composer   *composer
	clipboard  Clipboard
	transcript *render.Transcript
	renderers  render.ToolRenderers
	viewport   viewport.Model
	spin       spinner.Model
	status     statusIndicator

	events      <-chan agent.ToolEvent
	unsubscribe func()

	processing bool
	requestID  int
	cancel     context.CancelFunc

	showTools    bool
	verboseTools bool
	initSend     string
	width        int
	height       int
	err          error
	log          *logger.LogEntry
}

// New 创建交互模型并订阅 Agent 的工具事件。调用方负责 Close。
func New(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	session := opts.Session
	mgr := opts.Completion
	if mgr == nil {
		mgr = newCompletionManager(func() config.SessionConfig { return session })
	}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	m := &Model{
		ctx:          ctx,
		clipboard:    opts.Clipboard,
		agent:        opts.Agent,
		session:      session,
		modelName:    opts.Model,
		provider:     opts.Provider,
		composer:     newComposer(ctx, mgr, opts.Clipboard, "Ask anything, @ for files, / for commands"),
		transcript:   render.NewTranscript(80),
		renderers:    render.DefaultToolRenderers(),
		viewport:     viewport.New(80, 20),
		spin:         spin,
		status:       newStatusIndicator(opts.Clock),
		showTools:    opts.ShowTools,
		verboseTools: opts.VerboseTools,
		initSend:     strings.TrimSpace(opts.InitialPrompt),
		width:        80,
		height:       24,
		log:          logger.Named("session"),
	}
	if m.agent == nil {
		m.agent = agent.NewEchoAgent("")
	}
	m.events, m.unsubscribe = m.agent.Subscribe()
	return m
}

// Close 退订工具事件并取消进行中的请求。
func (m *Model) Close() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Err 返回会话结束的原因；正常退出为 nil。
func (m *Model) Err() error { return m.err }

// Messages 返回转录副本。
func (m *Model) Messages() []render.DisplayMessage { return m.transcript.Messages() }

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listenToolEvents()}
	if m.initSend != "" {
		text := m.initSend
		cmds = append(cmds, func() tea.Msg { return startPromptMsg{text: text} })
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd, handled := m.composer.update(msg); handled {
		return m.finish(cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.transcript.SetWidth(msg.Width)
		return m.finish()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		eff, cmd := m.composer.handleKey(msg)
		cmds = append(cmds, cmd, m.handleIntent(eff))
		return m.finish(cmds...)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case startPromptMsg:
		return m.finish(m.submit(msg.text))
	case agentReplyMsg:
		m.handleReply(msg)
		return m.finish()
	case toolEventMsg:
		if m.showTools {
			m.renderers.Append(m.transcript, msg.ev, m.verboseTools)
		}
		return m.finish(m.listenToolEvents())
	case toolStreamClosedMsg:
		m.events = nil
		return m.finish()
	case commandResultMsg:
		if msg.err != nil {
			m.appendError(msg.err)
		} else if msg.text != "" {
			m.transcript.Append(render.KindSystem, msg.text)
		}
		return m.finish()
	case spinner.TickMsg:
		if !m.processing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m.finish(cmds...)
}

func (m *Model) handleIntent(eff prompt.Effect) tea.Cmd {
	switch eff.Intent {
	case prompt.IntentKill:
		m.err = ErrInterrupted
		m.Close()
		return tea.Quit
	case prompt.IntentExit:
		return tea.Quit
	case prompt.IntentInterrupt:
		m.interrupt()
	case prompt.IntentSubmit:
		return m.submit(eff.Text)
	}
	return nil
}

// submit 先查命令表，未命中的输入作为用户消息发给 Agent。
func (m *Model) submit(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if cmd, ok := slash.Parse(text); ok {
		return m.runCommand(cmd)
	}
	m.transcript.Append(render.KindUser, text)
	return m.startRequest(text)
}

func (m *Model) runCommand(cmd slash.Command) tea.Cmd {
	m.log.WithField("command", string(cmd)).Debug("local command")
	switch {
	case cmd.IsExit():
		return tea.Quit
	case cmd == slash.CommandHelp:
		m.transcript.Append(render.KindSystem, slash.HelpText())
	case cmd == slash.CommandClear:
		m.transcript.Clear()
		return m.agentCommand("Conversation cleared.", m.agent.ClearHistoryAndRefresh)
	case cmd == slash.CommandRefresh:
		return m.agentCommand("Project context refreshed.", m.agent.RefreshProjectContext)
	case cmd == slash.CommandTools:
		m.showTools = !m.showTools
		m.transcript.Append(render.KindSystem, "Tool activity: "+onOff(m.showTools, "shown", "hidden"))
	case cmd == slash.CommandVerboseTools:
		m.verboseTools = !m.verboseTools
		m.transcript.Append(render.KindSystem, "Verbose tool output: "+onOff(m.verboseTools, "on", "off"))
	case cmd == slash.CommandStatus:
		m.transcript.Append(render.KindSystem, m.statusText())
	case cmd == slash.CommandCopy:
		return m.copyLastReply()
	}
	return nil
}

// copyLastReply 把最近一条 Agent 回复写入剪贴板。
func (m *Model) copyLastReply() tea.Cmd {
	msgs := m.transcript.Messages()
	text := ""
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Kind == render.KindAgent {
			text = msgs[i].Content
			break
		}
	}
	if text == "" {
		m.transcript.Append(render.KindSystem, "Nothing to copy yet.")
		return nil
	}
	if m.clipboard == nil {
		m.appendError(clipboard.ErrUnsupported)
		return nil
	}
	clip := m.clipboard
	ctx := m.ctx
	return func() tea.Msg {
		if err := clip.SetContent(ctx, text); err != nil {
			return commandResultMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return commandResultMsg{text: "Copied last reply to the clipboard."}
	}
}

func (m *Model) agentCommand(done string, call func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := call(ctx); err != nil {
			return commandResultMsg{err: err}
		}
		return commandResultMsg{text: done}
	}
}

func (m *Model) statusText() string {
	workdir := m.session.WorkingDirectory
	if workdir == "" {
		workdir = "."
	}
	model := m.modelName
	if model == "" {
		model = "-"
	}
	lines := []string{
		"Status:",
		"  model:         " + model,
	}
	if m.provider != "" {
		lines = append(lines, "  provider:      "+m.provider)
	}
	lines = append(lines,
		"  workdir:       "+workdir,
		"  tools:         "+onOff(m.showTools, "shown", "hidden"),
		"  verbose tools: "+onOff(m.verboseTools, "on", "off"),
	)
	return strings.Join(lines, "\n")
}

// startRequest 禁用输入并在后台调用 Agent；回复按请求 id 匹配。
func (m *Model) startRequest(text string) tea.Cmd {
	m.requestID++
	id := m.requestID
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.processing = true
	m.composer.prompt.Disabled = true
	m.composer.prompt.Completion.Hide()
	m.status.Start()

	ag := m.agent
	opts := agent.ProcessOptions{Verbose: m.verboseTools}
	call := func() tea.Msg {
		reply, err := ag.ProcessMessage(ctx, text, opts)
		return agentReplyMsg{id: id, text: reply, err: err}
	}
	return tea.Batch(m.spin.Tick, call)
}

func (m *Model) handleReply(msg agentReplyMsg) {
	if !m.processing || msg.id != m.requestID {
		m.log.WithField("request", msg.id).Debug("dropping stale agent reply")
		return
	}
	m.finishRequest()
	if msg.err != nil {
		m.appendError(msg.err)
		return
	}
	if strings.TrimSpace(msg.text) != "" {
		m.transcript.Append(render.KindAgent, msg.text)
	}
}

// interrupt 取消进行中的请求；之后到达的回复会被丢弃。
func (m *Model) interrupt() {
	if !m.processing {
		return
	}
	m.finishRequest()
	m.transcript.Append(render.KindSystem, "Interrupted")
}

func (m *Model) finishRequest() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.processing = false
	m.composer.prompt.Disabled = false
	m.status.Stop()
}

// appendError 渲染错误条目；详细模式下附带错误链，最多 maxErrorDetailLines 行。
func (m *Model) appendError(err error) {
	m.log.WithError(err).Warn("agent call failed")
	content := "Error: " + err.Error()
	if m.verboseTools {
		var detail []string
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			detail = append(detail, fmt.Sprintf("  └ %T: %s", cause, cause.Error()))
		}
		if len(detail) > maxErrorDetailLines {
			detail = append(detail[:maxErrorDetailLines], "  … (truncated)")
		}
		if len(detail) > 0 {
			content += "\n" + strings.Join(detail, "\n")
		}
	}
	m.transcript.Append(render.KindError, content)
}

func (m *Model) listenToolEvents() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return toolStreamClosedMsg{}
		}
		return toolEventMsg{ev: ev}
	}
}

// finish 在每次 Update 结束时同步布局与转录内容。
func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	m.layout()
	return m, tea.Batch(cmds...)
}

func (m *Model) layout() {
	bottom := lipgloss.Height(m.composer.View(m.width)) + 1
	if status := m.status.View(m.spin, m.width); status != "" {
		bottom += lipgloss.Height(status)
	}
	height := m.height - bottom
	if height < 1 {
		height = 1
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.Width = m.width
	m.viewport.Height = height
	m.viewport.SetContent(m.transcript.String())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) View() string {
	parts := []string{m.viewport.View()}
	if status := m.status.View(m.spin, m.width); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, m.composer.View(m.width), renderHints(m.width, m.processing))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderHints(width int, processing bool) string {
	text := "enter send • alt+enter newline • @ files • / commands • ctrl+c quit"
	if processing {
		text = "esc interrupt • ctrl+c quit"
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D7A85")).
		MaxWidth(width).
		Render(text)
}

func onOff(v bool, on, off string) string {
	if v {
		return on
	}
	return off
}
