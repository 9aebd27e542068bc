package agent

import "coding-agent/internal/prompts"

// ToolSpec 描述可供模型调用的工具定义，遵循 function 工具的通用 schema 约定。
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Prompt 代表一次模型调用的完整请求，包括模型、消息与工具配置。
type Prompt struct {
	Model    string
	Messages []Message
	Tools    []ToolSpec
}

// Reply 是模型的一次回复：要么是最终文本，要么是一组工具调用。
type Reply struct {
	Text      string
	ToolCalls []ToolUse
}

// BuildSystemPrompt 拼接内置核心提示、项目上下文与本轮附加上下文。
func BuildSystemPrompt(projectContext, extra string) string {
	return prompts.System(projectContext, extra)
}
