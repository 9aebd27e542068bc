package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"coding-agent/internal/logger"
	"coding-agent/internal/tui"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

var log = logger.Named("main")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdin, stdout)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	code := exitCode(err)
	if code == exitError {
		fmt.Fprintf(stderr, "coding-agent: %v\n", err)
	}
	return code
}

// exitCode 把运行结果映射为进程退出码：Ctrl+C/SIGINT 为 130。
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, tui.ErrInterrupted):
		return exitInterrupted
	default:
		return exitError
	}
}
