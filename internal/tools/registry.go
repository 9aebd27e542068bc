package tools

import (
	"context"
	"fmt"

	"coding-agent/internal/agent"
	"coding-agent/internal/config"
	"coding-agent/internal/logger"
)

// Registry 按名称分发工具调用，实现 agent.ToolExecutor。
type Registry struct {
	handlers map[string]Handler
	order    []string
	session  func() config.SessionConfig
}

var _ agent.ToolExecutor = (*Registry)(nil)

// NewRegistry 每次调用时通过 session 读取当前会话配置，工作目录重新绑定后立即生效。
func NewRegistry(session func() config.SessionConfig, handlers ...Handler) *Registry {
	table := make(map[string]Handler, len(handlers))
	order := make([]string, 0, len(handlers))
	for _, h := range handlers {
		if h == nil {
			continue
		}
		if _, dup := table[h.Name()]; !dup {
			order = append(order, h.Name())
		}
		table[h.Name()] = h
	}
	if session == nil {
		session = config.DefaultSession
	}
	return &Registry{handlers: table, order: order, session: session}
}

func (r *Registry) Handler(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Specs 按注册顺序返回工具定义。
func (r *Registry) Specs() []agent.ToolSpec {
	out := make([]agent.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.handlers[name].Spec())
	}
	return out
}

// Execute 在会话超时内执行一次调用。
func (r *Registry) Execute(ctx context.Context, call agent.ToolUse) (string, error) {
	h, ok := r.handlers[call.Name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}
	session := r.session()
	if d := session.Timeout.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	log := logger.Named("tools").WithField("tool", call.Name)
	log.WithField("call_id", call.ID).Debug("tool started")
	out, err := h.Handle(ctx, Invocation{
		CallID:  call.ID,
		Name:    call.Name,
		Payload: call.Input,
		Session: session,
	})
	if err != nil {
		log.Debugf("tool failed: %v", err)
		return "", err
	}
	return out, nil
}
