// Package clipboard 通过各平台的原生剪贴板工具读写系统剪贴板。
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	atotto "github.com/atotto/clipboard"
)

// ErrUnsupported 表示当前平台没有可用的剪贴板工具。
var ErrUnsupported = errors.New("clipboard not supported")

// Provider 是单个平台剪贴板实现。
type Provider interface {
	Name() string
	Available() bool
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, text string) error
}

// CommandError 描述一次外部剪贴板工具调用失败。
type CommandError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Exec 抽象外部进程调用，测试中可替换。
type Exec struct {
	Run      func(ctx context.Context, stdin string, name string, args ...string) (string, error)
	LookPath func(name string) (string, error)
}

// OSExec 使用 os/exec 运行真实进程。
func OSExec() Exec {
	return Exec{Run: runCommand, LookPath: exec.LookPath}
}

func runCommand(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &CommandError{Tool: name, Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

type invocation struct {
	name string
	args []string
}

// commandProvider 以一对读/写命令实现 Provider。
type commandProvider struct {
	name  string
	read  invocation
	write invocation
	exec  Exec
}

func (p *commandProvider) Name() string { return p.name }

func (p *commandProvider) Available() bool {
	if p.exec.LookPath == nil {
		return false
	}
	_, err := p.exec.LookPath(p.read.name)
	return err == nil
}

func (p *commandProvider) Read(ctx context.Context) (string, error) {
	return p.exec.Run(ctx, "", p.read.name, p.read.args...)
}

func (p *commandProvider) Write(ctx context.Context, text string) error {
	_, err := p.exec.Run(ctx, text, p.write.name, p.write.args...)
	return err
}

// chainProvider 依次尝试多个工具，返回第一个成功的结果。
type chainProvider struct {
	name  string
	links []Provider
}

func (p *chainProvider) Name() string { return p.name }

func (p *chainProvider) Available() bool {
	for _, l := range p.links {
		if l.Available() {
			return true
		}
	}
	return false
}

func (p *chainProvider) Read(ctx context.Context) (string, error) {
	var errs []error
	for _, l := range p.links {
		if !l.Available() {
			continue
		}
		text, err := l.Read(ctx)
		if err == nil {
			return text, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return "", ErrUnsupported
	}
	return "", errors.Join(errs...)
}

func (p *chainProvider) Write(ctx context.Context, text string) error {
	var errs []error
	for _, l := range p.links {
		if !l.Available() {
			continue
		}
		err := l.Write(ctx, text)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return ErrUnsupported
	}
	return errors.Join(errs...)
}

// systemProvider 委托给 atotto/clipboard，作为兜底（例如 termux）。
type systemProvider struct{}

func (systemProvider) Name() string { return "system" }

func (systemProvider) Available() bool { return !atotto.Unsupported }

func (systemProvider) Read(ctx context.Context) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := atotto.ReadAll()
		done <- result{text: text, err: err}
	}()
	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (systemProvider) Write(ctx context.Context, text string) error {
	done := make(chan error, 1)
	go func() { done <- atotto.WriteAll(text) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProvidersFor 返回某个平台按优先级排列的候选实现。
func ProvidersFor(goos string, ex Exec) []Provider {
	switch goos {
	case "darwin":
		return []Provider{
			&commandProvider{
				name:  "pbpaste",
				read:  invocation{name: "pbpaste"},
				write: invocation{name: "pbcopy"},
				exec:  ex,
			},
			systemProvider{},
		}
	case "windows":
		return []Provider{
			&commandProvider{
				name:  "powershell",
				read:  invocation{name: "powershell", args: []string{"-NoProfile", "-NonInteractive", "-Command", "[Console]::Out.Write((Get-Clipboard -Raw))"}},
				write: invocation{name: "clip"},
				exec:  ex,
			},
			systemProvider{},
		}
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return []Provider{
			&chainProvider{
				name: "linux",
				links: []Provider{
					&commandProvider{
						name:  "xclip",
						read:  invocation{name: "xclip", args: []string{"-selection", "clipboard", "-o"}},
						write: invocation{name: "xclip", args: []string{"-selection", "clipboard"}},
						exec:  ex,
					},
					&commandProvider{
						name:  "xsel",
						read:  invocation{name: "xsel", args: []string{"--clipboard", "--output"}},
						write: invocation{name: "xsel", args: []string{"--clipboard", "--input"}},
						exec:  ex,
					},
					&commandProvider{
						name:  "wl-clipboard",
						read:  invocation{name: "wl-paste", args: []string{"--no-newline"}},
						write: invocation{name: "wl-copy"},
						exec:  ex,
					},
				},
			},
			systemProvider{},
		}
	default:
		return nil
	}
}
