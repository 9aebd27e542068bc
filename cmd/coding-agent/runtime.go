package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"coding-agent/internal/agent"
	anthropicmodel "coding-agent/internal/agent/anthropic"
	openaimodel "coding-agent/internal/agent/openai"
	"coding-agent/internal/config"
	"coding-agent/internal/instructions"
	"coding-agent/internal/logger"
	"coding-agent/internal/tools"
	"coding-agent/internal/tools/handlers"
)

// runtimeEnv 是一次进程运行解析出的配置与会话。
type runtimeEnv struct {
	cfg     config.Config
	session config.SessionConfig
	logs    io.Closer
}

func (e *runtimeEnv) Close() {
	if e.logs != nil {
		_ = e.logs.Close()
	}
}

// setupRuntime 加载配置、应用覆盖、初始化日志，并把会话绑定到工作目录。
func setupRuntime(args *interactiveArgs) (*runtimeEnv, error) {
	cfg, err := config.Load(args.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg = config.ApplyKVOverrides(cfg, args.overrides())

	logger.Configure(cfg.LogLevel)
	env := &runtimeEnv{cfg: cfg}
	if closer, path, err := logger.SetupFile(logger.FileOptions{Path: args.logPath}); err != nil {
		// TUI 占用终端，日志写不进文件时宁可丢弃。
		logger.Root().SetOutput(io.Discard)
	} else {
		env.logs = closer
		log.Debugf("logging to %s", path)
	}

	workdir := args.workdir
	if workdir == "" {
		workdir = cfg.Session.WorkingDirectory
	}
	env.session = cfg.Session.WithWorkingDirectory(resolveWorkdir(workdir))
	log.WithField("config", cfg.Source).Infof("session root %s", env.session.WorkingDirectory)
	return env, nil
}

// buildModelClient 按 provider 选择模型客户端；缺少凭据时退回离线 echo。
func buildModelClient(cfg config.Config) (agent.ModelClient, error) {
	switch cfg.ResolvedProvider() {
	case config.ProviderOpenAI:
		client, err := openaimodel.New(openaimodel.Options{
			APIKey:  cfg.Token,
			BaseURL: cfg.URL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return client, nil
	case config.ProviderAnthropic:
		client, err := anthropicmodel.New(anthropicmodel.Options{
			Token:   cfg.Token,
			BaseURL: cfg.URL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("init anthropic client: %w", err)
		}
		return client, nil
	default:
		log.Info("no model token configured; using echo fallback")
		return agent.EchoClient{Prefix: "assistant: "}, nil
	}
}

// buildAgent 组装对话核心：模型客户端、只读工具与项目上下文。
func buildAgent(env *runtimeEnv) (*agent.Runner, error) {
	client, err := buildModelClient(env.cfg)
	if err != nil {
		return nil, err
	}
	session := env.session
	sessionFn := func() config.SessionConfig { return session }
	return agent.NewRunner(agent.RunnerOptions{
		Client: client,
		Tools:  tools.NewRegistry(sessionFn, handlers.Default()...),
		LoadContext: func(context.Context) (string, error) {
			return instructions.ProjectContext(sessionFn())
		},
		Model: env.cfg.Model,
	}), nil
}

func resolveWorkdir(input string) string {
	if strings.TrimSpace(input) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		return wd
	}
	if filepath.IsAbs(input) {
		return filepath.Clean(input)
	}
	wd, err := os.Getwd()
	if err != nil {
		return input
	}
	return filepath.Join(wd, input)
}
