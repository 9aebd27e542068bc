// Package search 列出工作目录下可供 @ 引用补全的文件与目录。
package search

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"coding-agent/internal/config"
)

const (
	DefaultMaxDepth   = 4
	DefaultMaxEntries = 2000
)

// KnownExtensions 是未配置 allowed_extensions 时接受的代码/文档扩展名。
var KnownExtensions = []string{
	".go", ".mod", ".sum",
	".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx",
	".py", ".rb", ".rs", ".java", ".kt", ".swift", ".scala",
	".c", ".h", ".cc", ".cpp", ".hpp", ".cs",
	".php", ".lua", ".sh", ".bash", ".zsh", ".ps1", ".sql",
	".html", ".css", ".scss", ".vue", ".svelte",
	".json", ".yaml", ".yml", ".toml", ".xml", ".ini", ".env",
	".md", ".mdx", ".txt", ".rst", ".proto", ".graphql", ".dockerfile",
}

// Options 控制一次列举的边界。
type Options struct {
	MaxDepth   int
	MaxEntries int
}

// ListCandidates 深度优先列出 root 下的相对路径，目录带尾部 "/"。
// 跳过隐藏项（除非 AllowHidden）、BlockedPaths、.gitignore 命中项，
// 以及扩展名不在允许列表或超过 MaxFileSize 的文件。
func ListCandidates(root string, cfg config.SessionConfig, opts Options) ([]string, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	exts := cfg.Extensions()
	if exts == nil {
		exts = make(map[string]bool, len(KnownExtensions))
		for _, ext := range KnownExtensions {
			exts[ext] = true
		}
	}
	rules := loadIgnoreRules(root)

	paths := make([]string, 0, 64)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// 无权限等局部错误不终止整体列举。
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()
		depth := strings.Count(rel, "/") + 1

		if !cfg.AllowHidden && strings.HasPrefix(name, ".") {
			return skip(d)
		}
		if cfg.IsBlocked(rel) {
			return skip(d)
		}
		if rules != nil && (rules.MatchesPath(rel) || (d.IsDir() && rules.MatchesPath(rel+"/"))) {
			return skip(d)
		}

		if d.IsDir() {
			paths = append(paths, rel+"/")
			if len(paths) >= opts.MaxEntries {
				return fs.SkipAll
			}
			if depth >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != "" && !exts[ext] {
			return nil
		}
		if cfg.MaxFileSize > 0 {
			if info, err := d.Info(); err == nil && info.Size() > cfg.MaxFileSize {
				return nil
			}
		}
		paths = append(paths, rel)
		if len(paths) >= opts.MaxEntries {
			return fs.SkipAll
		}
		return nil
	})
	return paths, err
}

func skip(d fs.DirEntry) error {
	if d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

func loadIgnoreRules(root string) *ignore.GitIgnore {
	lines, err := readLines(filepath.Join(root, ".gitignore"))
	if err != nil || len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
