package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"coding-agent/internal/logger"
)

func silenceRootLogger(t *testing.T) {
	t.Helper()
	root := logger.Root()
	prev := root.Out
	root.SetOutput(io.Discard)
	t.Cleanup(func() {
		root.SetOutput(prev)
	})
}

type scriptedClient struct {
	replies []Reply
	prompts []Prompt
	err     error
}

func (c *scriptedClient) Complete(_ context.Context, prompt Prompt) (Reply, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return Reply{}, c.err
	}
	if len(c.replies) == 0 {
		return Reply{Text: "done"}, nil
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

type fakeTools struct {
	calls []ToolUse
	fail  map[string]error
}

func (f *fakeTools) Specs() []ToolSpec {
	return []ToolSpec{{Name: "read_file"}, {Name: "list_files"}}
}

func (f *fakeTools) Execute(_ context.Context, call ToolUse) (string, error) {
	f.calls = append(f.calls, call)
	if err := f.fail[call.Name]; err != nil {
		return "", err
	}
	return "contents of " + call.Name, nil
}

func TestEchoAgentRepliesWithPrefix(t *testing.T) {
	silenceRootLogger(t)
	a := NewEchoAgent("echo: ")
	got, err := a.ProcessMessage(context.Background(), "  hi  ", ProcessOptions{})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if got != "echo: hi" {
		t.Fatalf("reply = %q", got)
	}
	if _, err := a.ProcessMessage(context.Background(), "   ", ProcessOptions{}); !errors.Is(err, ErrNoMessage) {
		t.Fatalf("expected ErrNoMessage, got %v", err)
	}
}

func TestRunnerToolLoopPublishesEvents(t *testing.T) {
	silenceRootLogger(t)
	client := &scriptedClient{replies: []Reply{
		{ToolCalls: []ToolUse{
			{ID: "c1", Name: "read_file", Input: json.RawMessage(`{"path":"main.go"}`)},
			{ID: "c2", Name: "list_files", Input: json.RawMessage(`{}`)},
		}},
		{Text: "main.go prints hello"},
	}}
	tools := &fakeTools{fail: map[string]error{"list_files": errors.New("denied")}}
	r := NewRunner(RunnerOptions{Client: client, Tools: tools})
	ch, unsub := r.Subscribe()
	defer unsub()

	got, err := r.ProcessMessage(context.Background(), "what does main.go do?", ProcessOptions{})
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if got != "main.go prints hello" {
		t.Fatalf("reply = %q", got)
	}

	var evts []ToolEvent
	for len(evts) < 4 {
		evts = append(evts, <-ch)
	}
	if evts[0].Type != ToolEventCall || evts[0].ToolName != "read_file" || evts[0].Args["path"] != "main.go" {
		t.Fatalf("unexpected first event %+v", evts[0])
	}
	if evts[1].Type != ToolEventResult || !evts[1].Success || evts[1].Result != "contents of read_file" {
		t.Fatalf("unexpected read result %+v", evts[1])
	}
	if evts[3].Type != ToolEventResult || evts[3].Success || evts[3].Result != "denied" {
		t.Fatalf("unexpected list result %+v", evts[3])
	}

	second := client.prompts[1].Messages
	last := second[len(second)-1]
	if last.Role != RoleTool || last.ToolResult == nil || !last.ToolResult.IsError || last.ToolResult.ToolUseID != "c2" {
		t.Fatalf("tool failure not fed back to the model: %+v", last)
	}
	// user, assistant(tool calls), 2 tool results, final assistant
	if r.HistoryLen() != 5 {
		t.Fatalf("history len = %d, want 5", r.HistoryLen())
	}
}

func TestRunnerStopsAfterMaxRounds(t *testing.T) {
	silenceRootLogger(t)
	loop := Reply{ToolCalls: []ToolUse{{ID: "x", Name: "list_files"}}}
	client := &scriptedClient{replies: []Reply{loop, loop, loop}}
	r := NewRunner(RunnerOptions{Client: client, Tools: &fakeTools{}, MaxToolRounds: 2})
	_, err := r.ProcessMessage(context.Background(), "go", ProcessOptions{})
	if err == nil || !strings.Contains(err.Error(), "2 rounds") {
		t.Fatalf("expected round limit error, got %v", err)
	}
	if r.HistoryLen() != 0 {
		t.Fatalf("failed turn must not be kept in history")
	}
}

func TestRunnerContextAndHistoryReset(t *testing.T) {
	silenceRootLogger(t)
	client := &scriptedClient{}
	loads := 0
	r := NewRunner(RunnerOptions{
		Client: client,
		LoadContext: func(context.Context) (string, error) {
			loads++
			return "repo uses Go", nil
		},
	})
	if err := r.RefreshProjectContext(context.Background()); err != nil {
		t.Fatalf("RefreshProjectContext: %v", err)
	}
	if _, err := r.ProcessMessage(context.Background(), "hi", ProcessOptions{Context: "selected: a.go"}); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	system := client.prompts[0].Messages[0]
	if system.Role != RoleSystem || !strings.Contains(system.Content, "repo uses Go") || !strings.Contains(system.Content, "selected: a.go") {
		t.Fatalf("system prompt missing context: %q", system.Content)
	}
	if r.HistoryLen() != 2 {
		t.Fatalf("history len = %d", r.HistoryLen())
	}
	if err := r.ClearHistoryAndRefresh(context.Background()); err != nil {
		t.Fatalf("ClearHistoryAndRefresh: %v", err)
	}
	if r.HistoryLen() != 0 || loads != 2 {
		t.Fatalf("history=%d loads=%d", r.HistoryLen(), loads)
	}
}

func TestRunnerPropagatesClientError(t *testing.T) {
	silenceRootLogger(t)
	boom := errors.New("http_500")
	r := NewRunner(RunnerOptions{Client: &scriptedClient{err: boom}})
	if _, err := r.ProcessMessage(context.Background(), "hi", ProcessOptions{}); !errors.Is(err, boom) {
		t.Fatalf("expected client error, got %v", err)
	}
}
