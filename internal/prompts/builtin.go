package prompts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed text/*
var builtinFS embed.FS

// Name 表示内置提示词的唯一标识。
type Name string

const (
	PromptCore              Name = "core"
	PromptProjectContext    Name = "project-context"
	PromptAdditionalContext Name = "additional-context"
)

const (
	projectContextPlaceholder = "{{PROJECT_CONTEXT}}"
	extraContextPlaceholder   = "{{EXTRA_CONTEXT}}"
)

var builtinFiles = map[Name]string{
	PromptCore:              "text/core_prompt.md",
	PromptProjectContext:    "text/project_context.md",
	PromptAdditionalContext: "text/additional_context.md",
}

var builtinPrompts = func() map[Name]string {
	out := make(map[Name]string, len(builtinFiles))
	for name, path := range builtinFiles {
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("load builtin prompt %q from %s: %v", name, path, err))
		}
		out[name] = strings.TrimSpace(string(data))
	}
	return out
}()

// Builtin 返回指定名称的内置提示词文本。
func Builtin(name Name) (string, bool) {
	text, ok := builtinPrompts[name]
	return text, ok
}

// Builtins 返回内置提示词的拷贝，便于统一管理与调试。
func Builtins() map[Name]string {
	out := make(map[Name]string, len(builtinPrompts))
	for k, v := range builtinPrompts {
		out[k] = v
	}
	return out
}

// System 拼接核心提示、项目上下文与本轮附加上下文，空段落被跳过。
func System(projectContext, extra string) string {
	parts := []string{builtinPrompts[PromptCore]}
	if s := strings.TrimSpace(projectContext); s != "" {
		parts = append(parts, strings.ReplaceAll(builtinPrompts[PromptProjectContext], projectContextPlaceholder, s))
	}
	if s := strings.TrimSpace(extra); s != "" {
		parts = append(parts, strings.ReplaceAll(builtinPrompts[PromptAdditionalContext], extraContextPlaceholder, s))
	}
	return strings.Join(parts, "\n\n")
}
