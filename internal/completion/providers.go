package completion

import (
	"context"
	"strings"
	"unicode"

	"coding-agent/internal/config"
	"coding-agent/internal/fuzzy"
	"coding-agent/internal/search"
)

// DefaultFileLimit 是文件补全最多返回的候选数。
const DefaultFileLimit = 15

// ListFunc 列出 root 下的候选路径。
type ListFunc func(root string, cfg config.SessionConfig) ([]string, error)

// FileProvider 在光标所在 token 含 @ 时补全工作目录内的路径。
type FileProvider struct {
	Session func() config.SessionConfig
	Limit   int
	List    ListFunc
}

func NewFileProvider(session func() config.SessionConfig) *FileProvider {
	return &FileProvider{Session: session, Limit: DefaultFileLimit}
}

func (p *FileProvider) Type() Type { return TypeFile }

func (p *FileProvider) CanHandle(input string, cursor int) bool {
	_, ok := fileTrigger([]rune(input), cursor)
	return ok
}

// Token 从最后一个 @ 之后开始；End 延伸到光标后的下一个空白。
func (p *FileProvider) Token(input string, cursor int) Token {
	runes := []rune(input)
	at, ok := fileTrigger(runes, cursor)
	if !ok {
		return Token{Start: cursor, End: cursor}
	}
	cursor = clamp(cursor, len(runes))
	end := cursor
	for end < len(runes) && !unicode.IsSpace(runes[end]) {
		end++
	}
	return Token{Start: at + 1, End: end, Partial: string(runes[at+1 : cursor])}
}

func (p *FileProvider) Completions(ctx context.Context, partial string) ([]Item, error) {
	cfg := config.DefaultSession()
	if p.Session != nil {
		cfg = p.Session()
	}
	root := cfg.WorkingDirectory
	if root == "" {
		root = "."
	}
	list := p.List
	if list == nil {
		list = func(root string, cfg config.SessionConfig) ([]string, error) {
			return search.ListCandidates(root, cfg, search.Options{})
		}
	}
	entries, err := list(root, cfg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultFileLimit
	}
	if partial != "" {
		entries = fuzzy.Filter(entries, partial)
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{Value: e, Type: TypeFile}
		if strings.HasSuffix(e, "/") {
			item.Description = "directory"
		}
		items = append(items, item)
	}
	return items, nil
}

// fileTrigger 返回光标前同一 token 内最后一个 @ 的位置。
func fileTrigger(runes []rune, cursor int) (int, bool) {
	cursor = clamp(cursor, len(runes))
	for i := cursor - 1; i >= 0; i-- {
		switch r := runes[i]; {
		case r == '@':
			return i, true
		case unicode.IsSpace(r):
			return 0, false
		}
	}
	return 0, false
}

// Command 是命令表中的一项。
type Command struct {
	Name        string
	Description string
}

// CommandProvider 在输入以 / 开头且光标不在开头时，对命令表做大小写不敏感的前缀过滤。
type CommandProvider struct {
	commands []Command
}

func NewCommandProvider(commands []Command) *CommandProvider {
	return &CommandProvider{commands: append([]Command(nil), commands...)}
}

func (p *CommandProvider) Type() Type { return TypeCommand }

func (p *CommandProvider) CanHandle(input string, cursor int) bool {
	return strings.HasPrefix(input, "/") && cursor > 0
}

func (p *CommandProvider) Token(input string, cursor int) Token {
	runes := []rune(input)
	cursor = clamp(cursor, len(runes))
	if cursor < 1 {
		return Token{Start: 1, End: 1}
	}
	return Token{Start: 1, End: cursor, Partial: string(runes[1:cursor])}
}

func (p *CommandProvider) Completions(_ context.Context, partial string) ([]Item, error) {
	prefix := strings.ToLower(partial)
	var items []Item
	for _, c := range p.commands {
		if strings.HasPrefix(strings.ToLower(c.Name), prefix) {
			items = append(items, Item{Value: c.Name, Type: TypeCommand, Description: c.Description})
		}
	}
	return items, nil
}

func clamp(n, length int) int {
	if n < 0 {
		return 0
	}
	if n > length {
		return length
	}
	return n
}
