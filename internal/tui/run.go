package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"coding-agent/internal/completion"
	"coding-agent/internal/config"
	"coding-agent/internal/tui/prompt"
	"coding-agent/internal/tui/render"
)

// Result 返回交互会话结束时的转录。
type Result struct {
	Messages []render.DisplayMessage
}

// IO 允许测试或非终端场景替换输入输出。
type IO struct {
	Input  io.Reader
	Output io.Writer
}

func (o IO) programOptions() []tea.ProgramOption {
	var opts []tea.ProgramOption
	if o.Input != nil {
		opts = append(opts, tea.WithInput(o.Input))
	}
	if o.Output != nil {
		opts = append(opts, tea.WithOutput(o.Output))
	}
	return opts
}

// Run 运行交互模式，直到用户退出或收到终止信号。
func Run(ctx context.Context, opts Options, stdio IO) (Result, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := New(ctx, opts)
	defer m.Close()

	programOptions := append([]tea.ProgramOption{tea.WithContext(ctx)}, stdio.programOptions()...)
	if !opts.CopyableOutput {
		programOptions = append(programOptions, tea.WithAltScreen())
	}
	final, err := tea.NewProgram(m, programOptions...).Run()
	if err != nil {
		if killed(ctx, err) {
			return Result{Messages: m.Messages()}, ErrInterrupted
		}
		return Result{}, err
	}
	tuiModel, ok := final.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	return Result{Messages: tuiModel.Messages()}, tuiModel.Err()
}

// ReadOptions 配置单次输入模式。
type ReadOptions struct {
	Session     config.SessionConfig
	Placeholder string
	Clipboard   ClipboardReader
	Completion  *completion.Manager
}

// ReadInput 渲染一次输入框，提交后返回文本。Esc 返回 ErrCancelled，Ctrl+C 返回 ErrInterrupted。
func ReadInput(ctx context.Context, opts ReadOptions, stdio IO) (string, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := newReader(ctx, opts)
	programOptions := append([]tea.ProgramOption{tea.WithContext(ctx)}, stdio.programOptions()...)
	final, err := tea.NewProgram(m, programOptions...).Run()
	if err != nil {
		if killed(ctx, err) {
			return "", ErrInterrupted
		}
		return "", err
	}
	r, ok := final.(*reader)
	if !ok {
		return "", errors.New("unexpected tui model")
	}
	return r.result()
}

func killed(ctx context.Context, err error) bool {
	return errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil
}

// reader 是单次输入模式的模型：只有输入框和补全，不解释命令。
type reader struct {
	composer  *composer
	width     int
	submitted bool
	text      string
	err       error
}

func newReader(ctx context.Context, opts ReadOptions) *reader {
	session := opts.Session
	mgr := opts.Completion
	if mgr == nil {
		mgr = newCompletionManager(func() config.SessionConfig { return session })
	}
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = "Type your message"
	}
	return &reader{composer: newComposer(ctx, mgr, opts.Clipboard, placeholder), width: 80}
}

func (r *reader) Init() tea.Cmd { return nil }

func (r *reader) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, handled := r.composer.update(msg); handled {
		return r, cmd
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
	case tea.KeyMsg:
		eff, cmd := r.composer.handleKey(msg)
		switch eff.Intent {
		case prompt.IntentKill:
			r.err = ErrInterrupted
			return r, tea.Quit
		case prompt.IntentExit:
			r.err = ErrCancelled
			return r, tea.Quit
		case prompt.IntentSubmit:
			r.submitted = true
			r.text = eff.Text
			return r, tea.Quit
		}
		return r, cmd
	}
	return r, nil
}

func (r *reader) View() string {
	if r.submitted || r.err != nil {
		return ""
	}
	return r.composer.View(r.width) + "\n"
}

func (r *reader) result() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if !r.submitted {
		return "", ErrCancelled
	}
	return r.text, nil
}
