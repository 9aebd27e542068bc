package agent

import "encoding/json"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolUse 是模型请求的一次函数调用。
type ToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// Args 把参数解码为 map，解析失败时返回 nil。
func (u ToolUse) Args() map[string]any {
	if len(u.Input) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(u.Input, &out); err != nil {
		return nil
	}
	return out
}

type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

// Message 是一条对话历史。assistant 消息可以携带多个 ToolCalls，
// tool 消息通过 ToolResult 回应其中一个。
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolUse
	ToolResult *ToolResult
}
