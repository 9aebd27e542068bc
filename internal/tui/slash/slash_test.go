package slash

import (
	"reflect"
	"strings"
	"testing"

	"coding-agent/internal/completion"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  Command
		ok    bool
	}{
		{"/help", CommandHelp, true},
		{"  /HELP  ", CommandHelp, true},
		{"/clear now", CommandClear, true},
		{"/verbose-tools", CommandVerboseTools, true},
		{"/copy", CommandCopy, true},
		{"/q", CommandQ, true},
		{"exit", CommandExit, true},
		{"Quit", CommandQuit, true},
		{"q", CommandQ, true},
		{"help", "", false},
		{"/unknown", "", false},
		{"/", "", false},
		{"", "", false},
		{"explain q", "", false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.input)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("Parse(%q) = %q,%v want %q,%v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCompletionCommandsKeepTableOrder(t *testing.T) {
	cmds := CompletionCommands()
	if len(cmds) != len(Builtins) {
		t.Fatalf("len = %d", len(cmds))
	}
	var names []string
	for _, c := range cmds[:4] {
		names = append(names, c.Name)
	}
	if !reflect.DeepEqual(names, []string{"help", "exit", "quit", "q"}) {
		t.Fatalf("order = %v", names)
	}
}

func TestHelpTextListsEveryCommand(t *testing.T) {
	help := HelpText()
	for _, item := range Builtins {
		if !strings.Contains(help, item.DisplayName()) {
			t.Fatalf("help text missing %s", item.DisplayName())
		}
	}
}

func TestViewWindowFollowsSelection(t *testing.T) {
	items := make([]completion.Item, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, completion.Item{Value: string(rune('a' + i)), Type: completion.TypeFile})
	}
	st := completion.State{Items: items, Selected: 10, Visible: true, Type: completion.TypeFile}
	out := View(st, 40, 4)
	if lines := strings.Split(out, "\n"); len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(out, "k") || strings.Contains(out, "a ") {
		t.Fatalf("window should end at the selection:\n%s", out)
	}
	if View(completion.State{}, 40, 4) != "" {
		t.Fatalf("hidden state must render nothing")
	}
}

func TestMatchedIndexes(t *testing.T) {
	cmd := completion.Item{Value: "help", Type: completion.TypeCommand}
	if got := matchedIndexes(cmd, "/help", "he"); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("command highlights = %v", got)
	}
	file := completion.Item{Value: "src/index.ts", Type: completion.TypeFile}
	if got := matchedIndexes(file, "src/index.ts", "sr"); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("file highlights = %v", got)
	}
	if got := byteToRuneIndexes("日本a", []int{0, 6}); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Fatalf("rune conversion = %v", got)
	}
}
