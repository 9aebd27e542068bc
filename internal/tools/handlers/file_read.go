package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"coding-agent/internal/agent"
	"coding-agent/internal/tools"
)

type FileReadHandler struct{}

func (FileReadHandler) Name() string { return "read_file" }

func (FileReadHandler) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name:        "read_file",
		Description: "Read a text file inside the working directory. Optionally return only a range of lines.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "File path relative to the working directory.",
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "1-based line to start from.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of lines to return.",
				},
			},
			"required":             []string{"path"},
			"additionalProperties": false,
		},
	}
}

func (FileReadHandler) Handle(ctx context.Context, inv tools.Invocation) (string, error) {
	args := struct {
		Path   string `json:"path"`
		Offset int    `json:"offset"`
		Limit  int    `json:"limit"`
	}{}
	if err := inv.Decode(&args); err != nil {
		return "", err
	}
	if strings.TrimSpace(args.Path) == "" {
		return "", fmt.Errorf("invalid read_file payload: path is required")
	}
	target, _, err := tools.ResolvePath(inv.Session, args.Path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", args.Path)
	}
	if maxSize := inv.Session.MaxFileSize; maxSize > 0 && info.Size() > maxSize {
		return "", fmt.Errorf("%s (%d bytes): %w", args.Path, info.Size(), tools.ErrTooLarge)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", err
	}
	return sliceLines(string(data), args.Offset, args.Limit), nil
}

func sliceLines(text string, offset, limit int) string {
	if offset <= 1 && limit <= 0 {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	start := max(offset, 1) - 1
	if start >= len(lines) {
		return ""
	}
	end := len(lines)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return strings.Join(lines[start:end], "")
}
