// Package tools 实现模型可调用的只读工作区工具，所有访问都受 SessionConfig 约束。
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"coding-agent/internal/agent"
	"coding-agent/internal/config"
)

var (
	ErrOutsideWorkdir = errors.New("path escapes the working directory")
	ErrBlockedPath    = errors.New("path is blocked")
	ErrHiddenPath     = errors.New("hidden paths are not allowed")
	ErrTooLarge       = errors.New("file exceeds max_file_size")
)

// Invocation 是一次具体的工具调用。
type Invocation struct {
	CallID  string
	Name    string
	Payload json.RawMessage
	Session config.SessionConfig
}

// Decode 把参数解码到 v；空参数视为 {}。
func (inv Invocation) Decode(v any) error {
	if len(inv.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(inv.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", inv.Name, err)
	}
	return nil
}

// Handler 定义具体工具的执行入口。
type Handler interface {
	Name() string
	Spec() agent.ToolSpec
	Handle(ctx context.Context, inv Invocation) (string, error)
}

// ResolvePath 把工作目录内的相对路径解析为绝对路径，并检查隐藏与屏蔽规则。
// 返回的 rel 使用 "/" 分隔，"." 表示工作目录本身。
func ResolvePath(session config.SessionConfig, path string) (abs string, rel string, err error) {
	root := session.WorkingDirectory
	if root == "" {
		root = "."
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", "", err
	}
	path = strings.TrimSpace(path)
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)

	r, err := filepath.Rel(root, target)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%s: %w", path, ErrOutsideWorkdir)
	}
	rel = filepath.ToSlash(r)
	if rel == "." {
		return target, rel, nil
	}
	if session.IsBlocked(rel) {
		return "", "", fmt.Errorf("%s: %w", path, ErrBlockedPath)
	}
	if !session.AllowHidden {
		for _, seg := range strings.Split(rel, "/") {
			if strings.HasPrefix(seg, ".") {
				return "", "", fmt.Errorf("%s: %w", path, ErrHiddenPath)
			}
		}
	}
	return target, rel, nil
}
