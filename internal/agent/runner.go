package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"coding-agent/internal/events"
	"coding-agent/internal/logger"
)

const (
	// DefaultMaxToolRounds 限制单条消息内模型连续请求工具的轮数。
	DefaultMaxToolRounds = 8
	compactResultLimit   = 4096
	modelResultLimit     = 64 * 1024
)

// ToolExecutor 执行模型请求的工具调用。
type ToolExecutor interface {
	Specs() []ToolSpec
	Execute(ctx context.Context, call ToolUse) (string, error)
}

// ContextLoader 生成项目上下文（说明文件、目录概览等）。
type ContextLoader func(ctx context.Context) (string, error)

type RunnerOptions struct {
	Client        ModelClient
	Tools         ToolExecutor
	LoadContext   ContextLoader
	Model         string
	MaxToolRounds int
}

// Runner 用 ModelClient 驱动多轮工具调用，实现 Agent。
type Runner struct {
	client    ModelClient
	tools     ToolExecutor
	load      ContextLoader
	model     string
	maxRounds int
	bus       *events.Bus[ToolEvent]
	log       *logger.LogEntry

	mu             sync.Mutex
	history        []Message
	projectContext string
}

var _ Agent = (*Runner)(nil)

func NewRunner(opts RunnerOptions) *Runner {
	client := opts.Client
	if client == nil {
		client = EchoClient{}
	}
	rounds := opts.MaxToolRounds
	if rounds <= 0 {
		rounds = DefaultMaxToolRounds
	}
	return &Runner{
		client:    client,
		tools:     opts.Tools,
		load:      opts.LoadContext,
		model:     opts.Model,
		maxRounds: rounds,
		bus:       events.NewBus[ToolEvent](),
		log:       logger.Named("agent"),
	}
}

// NewEchoAgent 返回离线回显实现，不暴露任何工具。
func NewEchoAgent(prefix string) *Runner {
	return NewRunner(RunnerOptions{Client: EchoClient{Prefix: prefix}})
}

func (r *Runner) Subscribe() (<-chan ToolEvent, func()) {
	return r.bus.Subscribe()
}

// Close 关闭事件总线，所有订阅通道随之关闭。
func (r *Runner) Close() {
	r.bus.Close()
}

func (r *Runner) ProcessMessage(ctx context.Context, text string, opts ProcessOptions) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoMessage
	}

	r.mu.Lock()
	system := BuildSystemPrompt(r.projectContext, opts.Context)
	history := append([]Message(nil), r.history...)
	r.mu.Unlock()

	turn := []Message{{Role: RoleUser, Content: text}}
	var specs []ToolSpec
	if r.tools != nil {
		specs = r.tools.Specs()
	}

	for round := 0; round < r.maxRounds; round++ {
		msgs := make([]Message, 0, len(history)+len(turn)+1)
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
		msgs = append(msgs, history...)
		msgs = append(msgs, turn...)

		reply, err := r.client.Complete(ctx, Prompt{Model: r.model, Messages: msgs, Tools: specs})
		if err != nil {
			return "", err
		}
		if len(reply.ToolCalls) == 0 || r.tools == nil {
			turn = append(turn, Message{Role: RoleAssistant, Content: reply.Text})
			r.mu.Lock()
			r.history = append(r.history, turn...)
			r.mu.Unlock()
			return reply.Text, nil
		}

		turn = append(turn, Message{Role: RoleAssistant, Content: reply.Text, ToolCalls: reply.ToolCalls})
		for _, call := range reply.ToolCalls {
			if call.ID == "" {
				call.ID = "call_" + uuid.NewString()
			}
			turn = append(turn, r.runTool(ctx, call, opts.Verbose))
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("tool loop exceeded %d rounds", r.maxRounds)
}

func (r *Runner) runTool(ctx context.Context, call ToolUse, verbose bool) Message {
	args := call.Args()
	r.bus.Publish(ToolEvent{Type: ToolEventCall, CallID: call.ID, ToolName: call.Name, Args: args})

	out, err := r.tools.Execute(ctx, call)
	evt := ToolEvent{Type: ToolEventResult, CallID: call.ID, ToolName: call.Name, Args: args, Success: err == nil, Result: out}
	content := out
	if err != nil {
		evt.Result = err.Error()
		content = "error: " + err.Error()
		r.log.WithField("tool", call.Name).Debugf("tool failed: %v", err)
	}
	if !verbose {
		evt.Result = truncateMiddle(evt.Result, compactResultLimit)
	}
	if dropped := r.bus.Publish(evt); dropped > 0 {
		r.log.Warnf("dropped %d tool events", dropped)
	}
	return Message{
		Role:       RoleTool,
		ToolResult: &ToolResult{ToolUseID: call.ID, Content: truncateMiddle(content, modelResultLimit), IsError: err != nil},
	}
}

// ClearHistoryAndRefresh 清空对话历史并重新加载项目上下文。
func (r *Runner) ClearHistoryAndRefresh(ctx context.Context) error {
	r.mu.Lock()
	r.history = nil
	r.mu.Unlock()
	return r.RefreshProjectContext(ctx)
}

func (r *Runner) RefreshProjectContext(ctx context.Context) error {
	if r.load == nil {
		return nil
	}
	text, err := r.load(ctx)
	if err != nil {
		return fmt.Errorf("refresh project context: %w", err)
	}
	r.mu.Lock()
	r.projectContext = text
	r.mu.Unlock()
	return nil
}

// HistoryLen 返回当前保存的历史消息数。
func (r *Runner) HistoryLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}
