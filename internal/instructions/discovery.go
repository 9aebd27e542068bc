package instructions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coding-agent/internal/config"
	"coding-agent/internal/search"
)

const (
	// ProjectDocFilename 是默认的仓库说明文件名称。
	ProjectDocFilename = "AGENTS.md"
	// ProjectOverrideFilename 用于提供覆盖父级的说明文件。
	ProjectOverrideFilename = "AGENTS.override.md"

	overviewEntries = 40
)

// Discover reads AGENTS.md chain: ~/.coding-agent/AGENTS.md and directory tree overrides.
func Discover(workdir string) string {
	var parts []string

	home, _ := os.UserHomeDir()
	if home != "" {
		global := filepath.Join(home, ".coding-agent", ProjectDocFilename)
		if data, err := os.ReadFile(global); err == nil {
			parts = append(parts, string(data))
		}
	}

	dir := workdir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	dir = filepath.Clean(dir)

	chain := []string{}
	prev := ""
	for dir != prev && dir != string(filepath.Separator) {
		chain = append(chain, dir)
		prev = dir
		dir = filepath.Dir(dir)
	}
	// top-down precedence
	for i := len(chain) - 1; i >= 0; i-- {
		curr := chain[i]
		override := filepath.Join(curr, ProjectOverrideFilename)
		if data, err := os.ReadFile(override); err == nil {
			parts = append(parts, string(data))
			continue
		}
		path := filepath.Join(curr, ProjectDocFilename)
		if data, err := os.ReadFile(path); err == nil {
			parts = append(parts, string(data))
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// ProjectContext 汇总工作目录、顶层目录概览与 AGENTS.md 说明，供系统提示使用。
func ProjectContext(session config.SessionConfig) (string, error) {
	root := session.WorkingDirectory
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Working directory: %s\n", root)

	entries, err := search.ListCandidates(root, session, search.Options{MaxDepth: 1, MaxEntries: overviewEntries})
	if err != nil {
		return "", fmt.Errorf("list %s: %w", root, err)
	}
	if len(entries) > 0 {
		sb.WriteString("\nTop-level entries:\n")
		for _, e := range entries {
			sb.WriteString("- " + e + "\n")
		}
	}
	if doc := Discover(root); doc != "" {
		sb.WriteString("\nProject instructions:\n\n" + doc + "\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
