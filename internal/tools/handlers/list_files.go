package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"coding-agent/internal/agent"
	"coding-agent/internal/fuzzy"
	"coding-agent/internal/search"
	"coding-agent/internal/tools"
)

// maxListed 限制一次返回给模型的条目数。
const maxListed = 200

type ListFilesHandler struct{}

func (ListFilesHandler) Name() string { return "list_files" }

func (ListFilesHandler) Spec() agent.ToolSpec {
	return agent.ToolSpec{
		Name:        "list_files",
		Description: "List files and directories (directories end with /) under a path in the working directory, optionally ranked by a fuzzy query.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Directory relative to the working directory; empty for the root.",
				},
				"query": map[string]any{
					"type":        "string",
					"description": "Optional fuzzy filter, e.g. \"button tsx\".",
				},
			},
			"additionalProperties": false,
		},
	}
}

func (ListFilesHandler) Handle(ctx context.Context, inv tools.Invocation) (string, error) {
	args := struct {
		Path  string `json:"path"`
		Query string `json:"query"`
	}{}
	if err := inv.Decode(&args); err != nil {
		return "", err
	}
	root, rel, err := tools.ResolvePath(inv.Session, args.Path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", args.Path)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	entries, err := search.ListCandidates(root, inv.Session, search.Options{})
	if err != nil {
		return "", err
	}
	if rel != "." {
		for i, e := range entries {
			entries[i] = rel + "/" + e
		}
	}
	if q := strings.TrimSpace(args.Query); q != "" {
		entries = fuzzy.Filter(entries, strings.ReplaceAll(q, " ", ""))
	}
	total := len(entries)
	if total == 0 {
		return "(no matching files)", nil
	}
	if total > maxListed {
		entries = entries[:maxListed]
	}
	out := strings.Join(entries, "\n")
	if total > maxListed {
		out += fmt.Sprintf("\n... (%d more)", total-maxListed)
	}
	return out, nil
}
