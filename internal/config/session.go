package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxFileSize int64 = 1 << 20
	DefaultTimeout           = 2 * time.Minute
)

// DefaultBlockedPaths 列出依赖/构建目录，补全与工具都不会进入这些路径。
var DefaultBlockedPaths = []string{
	"node_modules", ".git", "dist", "build", "vendor", "target", "coverage", ".next", "__pycache__",
}

// SessionConfig 描述一次会话内只读的文件访问约束。
// 除 WorkingDirectory 外不可变；工作目录只能由所属会话通过 WithWorkingDirectory 重新绑定。
type SessionConfig struct {
	WorkingDirectory  string   `toml:"working_directory"`
	MaxFileSize       int64    `toml:"max_file_size"`
	Timeout           Duration `toml:"timeout"`
	AllowHidden       bool     `toml:"allow_hidden"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	BlockedPaths      []string `toml:"blocked_paths"`
}

func DefaultSession() SessionConfig {
	return SessionConfig{
		MaxFileSize:  DefaultMaxFileSize,
		Timeout:      Duration{DefaultTimeout},
		BlockedPaths: append([]string(nil), DefaultBlockedPaths...),
	}
}

// WithWorkingDirectory 返回绑定到新工作目录的副本，切片不与原值共享。
func (c SessionConfig) WithWorkingDirectory(dir string) SessionConfig {
	out := c.clone()
	out.WorkingDirectory = dir
	return out
}

// Extensions 返回小写、带前导点的扩展名集合；为空表示使用内置列表。
func (c SessionConfig) Extensions() map[string]bool {
	if len(c.AllowedExtensions) == 0 {
		return nil
	}
	out := make(map[string]bool, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = true
	}
	return out
}

// IsBlocked reports whether any path segment of rel is a blocked name.
func (c SessionConfig) IsBlocked(rel string) bool {
	rel = strings.ReplaceAll(rel, "\\", "/")
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" {
			continue
		}
		for _, blocked := range c.BlockedPaths {
			if strings.EqualFold(seg, strings.Trim(blocked, "/")) {
				return true
			}
		}
	}
	return false
}

func (c SessionConfig) clone() SessionConfig {
	out := c
	out.AllowedExtensions = append([]string(nil), c.AllowedExtensions...)
	out.BlockedPaths = append([]string(nil), c.BlockedPaths...)
	return out
}

func (c SessionConfig) normalized() SessionConfig {
	out := c.clone()
	if out.MaxFileSize <= 0 {
		out.MaxFileSize = DefaultMaxFileSize
	}
	if out.Timeout.Duration <= 0 {
		out.Timeout = Duration{DefaultTimeout}
	}
	return out
}

// Duration 允许在 TOML 中以 "90s"、"2m" 形式书写时长。
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}
