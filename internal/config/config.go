package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultModel 是未配置时使用的模型名称。
const DefaultModel = "gpt-4o-mini"

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderEcho      = "echo"
)

// Config is the only persisted config file schema.
type Config struct {
	// Provider 为空时：有 token 用 openai，否则用离线 echo。
	Provider string        `toml:"provider"`
	URL      string        `toml:"url"`
	Token    string        `toml:"token"`
	Model    string        `toml:"model"`
	LogLevel string        `toml:"log_level"`
	Session  SessionConfig `toml:"session"`
	Source   string        `toml:"-"`
}

func Default() Config {
	return Config{
		Model:    DefaultModel,
		LogLevel: "info",
		Session:  DefaultSession(),
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".coding-agent", "config.toml")
}

// Load 读取 TOML 配置；文件不存在时返回默认值，环境变量最后覆盖。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	cfg.Session = cfg.Session.normalized()
	applyEnv(&cfg)
	return cfg, nil
}

// ResolvedProvider 返回实际使用的模型提供方。
func (c Config) ResolvedProvider() string {
	switch p := strings.ToLower(strings.TrimSpace(c.Provider)); p {
	case ProviderOpenAI, ProviderAnthropic, ProviderEcho:
		if p != ProviderEcho && strings.TrimSpace(c.Token) == "" {
			return ProviderEcho
		}
		return p
	}
	if strings.TrimSpace(c.Token) == "" {
		return ProviderEcho
	}
	return ProviderOpenAI
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); env != "" {
		cfg.URL = env
	}
	if env := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); env != "" {
		cfg.Token = env
	}
	if env := strings.TrimSpace(os.Getenv("CODING_AGENT_PROVIDER")); env != "" {
		cfg.Provider = env
	}
	if env := strings.TrimSpace(os.Getenv("CODING_AGENT_MODEL")); env != "" {
		cfg.Model = env
	}
}
