// Package slash 定义会话内的本地命令表、解析与补全弹窗渲染。
package slash

import (
	"fmt"
	"strings"

	"coding-agent/internal/completion"
)

// Command 表示内置斜杠命令的标识符。
type Command string

const (
	CommandHelp         Command = "help"
	CommandExit         Command = "exit"
	CommandQuit         Command = "quit"
	CommandQ            Command = "q"
	CommandClear        Command = "clear"
	CommandRefresh      Command = "refresh"
	CommandTools        Command = "tools"
	CommandVerboseTools Command = "verbose-tools"
	CommandStatus       Command = "status"
	CommandCopy         Command = "copy"
)

// IsExit 报告命令是否结束会话。
func (c Command) IsExit() bool {
	return c == CommandExit || c == CommandQuit || c == CommandQ
}

// Item 是命令表中的一行。
type Item struct {
	Command     Command
	Description string
}

// DisplayName 返回带前缀斜杠的展示名称。
func (i Item) DisplayName() string {
	return "/" + string(i.Command)
}

// Builtins 是命令表，顺序即补全顺序。
var Builtins = []Item{
	{Command: CommandHelp, Description: "show commands and key bindings"},
	{Command: CommandExit, Description: "leave the session"},
	{Command: CommandQuit, Description: "leave the session"},
	{Command: CommandQ, Description: "leave the session"},
	{Command: CommandClear, Description: "clear the transcript and reset the conversation"},
	{Command: CommandRefresh, Description: "reload project context"},
	{Command: CommandTools, Description: "show or hide tool activity"},
	{Command: CommandVerboseTools, Description: "toggle detailed tool output"},
	{Command: CommandStatus, Description: "show model, working directory and toggles"},
	{Command: CommandCopy, Description: "copy the last reply to the clipboard"},
}

// CompletionCommands 把命令表转换为补全引擎使用的形式。
func CompletionCommands() []completion.Command {
	out := make([]completion.Command, 0, len(Builtins))
	for _, item := range Builtins {
		out = append(out, completion.Command{Name: string(item.Command), Description: item.Description})
	}
	return out
}

// Parse 识别本地命令：`/name [args]`，以及不带斜杠的 exit/quit/q。
// 不在命令表中的 `/x` 返回 false，交给 Agent 处理。
func Parse(input string) (Command, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}
	if !strings.HasPrefix(trimmed, "/") {
		cmd := Command(strings.ToLower(trimmed))
		return cmd, cmd.IsExit()
	}
	name := strings.TrimPrefix(trimmed, "/")
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}
	for _, item := range Builtins {
		if strings.EqualFold(string(item.Command), name) {
			return item.Command, true
		}
	}
	return "", false
}

// HelpText 返回 /help 展示的静态帮助。
func HelpText() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, item := range Builtins {
		sb.WriteString(fmt.Sprintf("  %-16s %s\n", item.DisplayName(), item.Description))
	}
	sb.WriteString("\nKeys:\n")
	sb.WriteString("  Enter            send (newline when the prompt is empty)\n")
	sb.WriteString("  Alt+Enter, \\     insert a newline\n")
	sb.WriteString("  Ctrl+J           send, or apply the highlighted completion\n")
	sb.WriteString("  @path            complete a file path\n")
	sb.WriteString("  Tab, ↑/↓         apply or move through completions\n")
	sb.WriteString("  Ctrl+V           paste from the clipboard\n")
	sb.WriteString("  Ctrl+T           toggle multiline mode\n")
	sb.WriteString("  Ctrl+D           delete the character under the cursor\n")
	sb.WriteString("  Esc              close completions, interrupt, or exit\n")
	sb.WriteString("  Ctrl+C           quit immediately")
	return sb.String()
}
