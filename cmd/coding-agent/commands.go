package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"coding-agent/internal/clipboard"
	"coding-agent/internal/config"
	"coding-agent/internal/tui"
)

func newRootCommand(stdin io.Reader, stdout io.Writer) *cobra.Command {
	args := &interactiveArgs{}
	root := &cobra.Command{
		Use:           "coding-agent [prompt]",
		Short:         "Interactive terminal front-end for a coding assistant",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			return runInteractive(cmd, args, initialPrompt(positional))
		},
	}
	bindSharedFlags(root, args)
	bindInteractiveFlags(root, args)
	root.AddCommand(newReadCommand(args, stdin, stdout))
	root.AddCommand(newInitCommand(args, stdout))
	return root
}

func runInteractive(cmd *cobra.Command, args *interactiveArgs, prompt string) error {
	env, err := setupRuntime(args)
	if err != nil {
		return err
	}
	defer env.Close()

	runner, err := buildAgent(env)
	if err != nil {
		return err
	}
	defer runner.Close()

	_, err = tui.Run(cmd.Context(), tui.Options{
		Agent:          runner,
		Session:        env.session,
		Model:          env.cfg.Model,
		Provider:       env.cfg.ResolvedProvider(),
		InitialPrompt:  prompt,
		ShowTools:      !args.hideTools,
		VerboseTools:   args.verboseTools,
		CopyableOutput: args.copyableOutput,
		Clipboard:      clipboard.NewManager(clipboard.Options{}),
	}, tui.IO{})
	if errors.Is(err, tui.ErrInterrupted) {
		log.Info("session killed")
	}
	return err
}

func newReadCommand(args *interactiveArgs, stdin io.Reader, stdout io.Writer) *cobra.Command {
	var placeholder string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read one message from the prompt and print it to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setupRuntime(args)
			if err != nil {
				return err
			}
			defer env.Close()

			var text string
			if isTerminal(stdin) {
				text, err = tui.ReadInput(cmd.Context(), tui.ReadOptions{
					Session:     env.session,
					Placeholder: placeholder,
					Clipboard:   clipboard.NewManager(clipboard.Options{}),
				}, tui.IO{Input: stdin, Output: os.Stderr})
			} else {
				text, err = readLine(stdin)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, text)
			return err
		},
	}
	cmd.Flags().StringVar(&placeholder, "placeholder", "", "Placeholder shown in the empty prompt")
	return cmd
}

// isTerminal 只对真实终端渲染输入框；管道输入走 readLine。
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readLine 读取一行（去掉行尾 \r\n）。空输入视为取消。
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && errors.Is(err, io.EOF) {
		return "", tui.ErrCancelled
	}
	return line, nil
}

// newInitCommand 写出一份默认配置（已应用 -c 覆盖）；目标存在时需要 --force。
func newInitCommand(args *interactiveArgs, stdout io.Writer) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := args.cfgPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg := config.ApplyKVOverrides(config.Default(), args.overrides())
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			_, err := fmt.Fprintf(stdout, "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
