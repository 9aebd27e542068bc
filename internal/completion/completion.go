// Package completion 根据输入缓冲区和光标位置提供上下文补全（@ 文件引用、/ 命令）。
//
// 一次只有一个 provider 生效：Manager 按注册顺序选择第一个 CanHandle 的 provider。
// 异步刷新按请求序号判定新旧，只接受最近一次发出的请求的结果。
package completion

import (
	"context"

	"coding-agent/internal/logger"
)

type Type string

const (
	TypeNone    Type = ""
	TypeFile    Type = "file"
	TypeCommand Type = "command"
)

// Item 是一条候选。
type Item struct {
	Value       string
	Type        Type
	Description string
}

// Token 描述触发字符之后的部分输入，位置以 rune 计。
// [Start, End) 是应用候选时被替换的区间，Partial 是 Start 到光标之间的文本。
type Token struct {
	Start   int
	End     int
	Partial string
}

// Provider 是一种补全来源。
type Provider interface {
	Type() Type
	CanHandle(input string, cursor int) bool
	Token(input string, cursor int) Token
	Completions(ctx context.Context, partial string) ([]Item, error)
}

// Request 是一次刷新请求。Provider 为 nil 表示没有 provider 适用。
type Request struct {
	Seq      uint64
	Provider Provider
	Token    Token
}

// Result 是刷新结果，带回请求序号。
type Result struct {
	Seq   uint64
	Type  Type
	Token Token
	Items []Item
	Err   error
}

// Manager 持有有序的 provider 列表和当前补全状态。
type Manager struct {
	providers []Provider
	seq       uint64
	state     State
	active    Provider
}

func NewManager(providers ...Provider) *Manager {
	return &Manager{providers: providers}
}

// Begin 为当前输入发起一次刷新。没有 provider 适用时立即隐藏并清空状态，
// 返回的 Request.Provider 为 nil，调用方无需执行 Run。
func (m *Manager) Begin(input string, cursor int) Request {
	m.seq++
	req := Request{Seq: m.seq}
	for _, p := range m.providers {
		if p.CanHandle(input, cursor) {
			req.Provider = p
			req.Token = p.Token(input, cursor)
			break
		}
	}
	if req.Provider == nil {
		m.active = nil
		m.state.Hide()
	}
	return req
}

// Run 执行请求；可在任意 goroutine 中调用，不触碰 Manager 状态。
func Run(ctx context.Context, req Request) Result {
	res := Result{Seq: req.Seq, Token: req.Token}
	if req.Provider == nil {
		return res
	}
	res.Type = req.Provider.Type()
	res.Items, res.Err = req.Provider.Completions(ctx, req.Token.Partial)
	return res
}

// Apply 合并刷新结果；过期结果被丢弃并返回 false。
// provider 出错时隐藏补全，只记录日志。
func (m *Manager) Apply(res Result) bool {
	if res.Seq != m.seq {
		return false
	}
	if res.Err != nil {
		logger.Named("completion").WithField("type", string(res.Type)).Debugf("completion failed: %v", res.Err)
		m.active = nil
		m.state.Hide()
		return true
	}
	m.state.set(res)
	if m.state.Visible {
		for _, p := range m.providers {
			if p.Type() == res.Type {
				m.active = p
				break
			}
		}
	} else {
		m.active = nil
	}
	return true
}

// Refresh 同步执行 Begin、Run、Apply。
func (m *Manager) Refresh(ctx context.Context, input string, cursor int) {
	req := m.Begin(input, cursor)
	if req.Provider == nil {
		return
	}
	m.Apply(Run(ctx, req))
}

// Hide 隐藏补全并使所有在途请求失效。
func (m *Manager) Hide() {
	m.seq++
	m.active = nil
	m.state.Hide()
}

// State 返回当前状态的副本。
func (m *Manager) State() State {
	s := m.state
	s.Items = append([]Item(nil), m.state.Items...)
	return s
}

func (m *Manager) Visible() bool { return m.state.Visible }

// Move 在可见时按 delta 移动选中项，越界时钳制。
func (m *Manager) Move(delta int) {
	m.state.Move(delta)
}

// Selected 返回当前选中项。
func (m *Manager) Selected() (Item, bool) {
	return m.state.Current()
}

// TokenFor 用产生当前候选的 provider 重新计算 token。
func (m *Manager) TokenFor(input string, cursor int) (Token, bool) {
	if m.active == nil || !m.active.CanHandle(input, cursor) {
		return Token{}, false
	}
	return m.active.Token(input, cursor), true
}

// Seq 返回最近一次发出的请求序号。
func (m *Manager) Seq() uint64 { return m.seq }
