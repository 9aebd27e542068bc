package clipboard

import (
	"context"
	"runtime"
	"strings"
	"time"

	"coding-agent/internal/logger"
)

// DefaultTimeout 限制单次剪贴板调用的时长。
const DefaultTimeout = 3 * time.Second

// Options 控制 Manager 的构造。
type Options struct {
	// GOOS 为空时取 runtime.GOOS。
	GOOS string
	// Exec 为空时使用真实进程。
	Exec *Exec
	// Providers 非空时直接作为候选列表，忽略 GOOS。
	Providers []Provider
	Timeout   time.Duration
}

// Manager 在构造时选定第一个可用的 Provider 并代理所有调用。
type Manager struct {
	provider Provider
	timeout  time.Duration
}

// NewManager 按平台选择 Provider；没有可用实现时所有调用返回 ErrUnsupported。
func NewManager(opts Options) *Manager {
	candidates := opts.Providers
	if len(candidates) == 0 {
		goos := opts.GOOS
		if goos == "" {
			goos = runtime.GOOS
		}
		ex := OSExec()
		if opts.Exec != nil {
			ex = *opts.Exec
		}
		candidates = ProvidersFor(goos, ex)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Manager{timeout: timeout}
	for _, p := range candidates {
		if p != nil && p.Available() {
			m.provider = p
			break
		}
	}
	log := logger.Named("clipboard")
	if m.provider == nil {
		log.Warn("no clipboard provider available")
	} else {
		log.WithField("provider", m.provider.Name()).Debug("clipboard provider selected")
	}
	return m
}

// Available 报告是否选中了 Provider。
func (m *Manager) Available() bool {
	return m != nil && m.provider != nil
}

// Name 返回选中 Provider 的名称，未选中时为空。
func (m *Manager) Name() string {
	if !m.Available() {
		return ""
	}
	return m.provider.Name()
}

// Content 读取剪贴板文本，统一换行为 \n。
func (m *Manager) Content(ctx context.Context) (string, error) {
	if !m.Available() {
		return "", ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	text, err := m.provider.Read(ctx)
	if err != nil {
		return "", err
	}
	return NormalizeNewlines(text), nil
}

// SetContent 写入剪贴板。
func (m *Manager) SetContent(ctx context.Context, text string) error {
	if !m.Available() {
		return ErrUnsupported
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.provider.Write(ctx, text)
}

// NormalizeNewlines 把 \r\n 与单独的 \r 转换为 \n。
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
