package main

import (
	"strings"

	"github.com/spf13/cobra"
)

// interactiveArgs 收集交互模式与 read 子命令共享的参数。
type interactiveArgs struct {
	cfgPath         string
	modelOverride   string
	workdir         string
	configOverrides []string
	verboseTools    bool
	hideTools       bool
	copyableOutput  bool
	logPath         string
}

func bindSharedFlags(cmd *cobra.Command, args *interactiveArgs) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.coding-agent/config.toml)")
	fs.StringVarP(&args.modelOverride, "model", "m", "", "Model override")
	fs.StringVarP(&args.workdir, "cd", "C", "", "Working directory for completions and tools")
	fs.StringArrayVarP(&args.configOverrides, "config-override", "c", nil, "Override config value key=value (repeatable)")
	fs.StringVar(&args.logPath, "log-file", "", "Log file path (default logs/coding-agent.log)")
}

func bindInteractiveFlags(cmd *cobra.Command, args *interactiveArgs) {
	fs := cmd.Flags()
	fs.BoolVar(&args.verboseTools, "verbose-tools", false, "Show tool arguments and results in the transcript")
	fs.BoolVar(&args.hideTools, "hide-tools", false, "Hide tool events from the transcript")
	fs.BoolVar(&args.copyableOutput, "copyable-output", false, "Disable alt screen to allow mouse selection/copy")
}

// overrides 把 --model 合并到 -c 覆盖列表末尾，使其优先级最高。
func (a *interactiveArgs) overrides() []string {
	out := append([]string{}, a.configOverrides...)
	if m := strings.TrimSpace(a.modelOverride); m != "" {
		out = append(out, "model="+m)
	}
	return out
}

func initialPrompt(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
