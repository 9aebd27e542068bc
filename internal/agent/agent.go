// Package agent 定义终端界面与对话核心之间的窄接口，以及基于 ModelClient 的默认实现。
package agent

import (
	"context"
	"errors"
)

// ErrNoMessage 表示提交了空消息。
var ErrNoMessage = errors.New("empty message")

// ProcessOptions 是单次 ProcessMessage 的可选参数。
type ProcessOptions struct {
	// Context 追加到本轮系统提示后的额外上下文。
	Context string
	// Verbose 请求更详细的工具结果（影响事件里 Result 的截断）。
	Verbose bool
}

// Agent 是界面唯一依赖的对话核心接口。
type Agent interface {
	ProcessMessage(ctx context.Context, text string, opts ProcessOptions) (string, error)
	ClearHistoryAndRefresh(ctx context.Context) error
	RefreshProjectContext(ctx context.Context) error
	// Subscribe 返回工具事件流与退订函数。
	Subscribe() (<-chan ToolEvent, func())
}

type ToolEventType string

const (
	ToolEventCall   ToolEventType = "tool_call"
	ToolEventResult ToolEventType = "tool_result"
)

// ToolEvent 描述一次工具调用的开始或结束，只用于展示。
type ToolEvent struct {
	Type     ToolEventType
	CallID   string
	ToolName string
	Args     map[string]any
	Success  bool
	Result   string
}
