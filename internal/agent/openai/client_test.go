package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"coding-agent/internal/agent"
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

const toolCallBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 0,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "logprobs": null,
    "message": {
      "role": "assistant",
      "content": null,
      "refusal": null,
      "tool_calls": [{
        "id": "call_1",
        "type": "function",
        "function": {"name": "read_file", "arguments": "{\"path\":\"go.mod\"}"}
      }]
    }
  }]
}`

const textBody = `{
  "id": "chatcmpl-2",
  "object": "chat.completion",
  "created": 0,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "finish_reason": "stop",
    "logprobs": null,
    "message": {"role": "assistant", "content": "module coding-agent", "refusal": null}
  }]
}`

func TestComplete_ParsesToolCalls(t *testing.T) {
	silenceRootLogger(t)

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(toolCallBody))
	}))
	t.Cleanup(srv.Close)

	client, err := New(Options{APIKey: "test", BaseURL: srv.URL, Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	reply, err := client.Complete(ctx, agent.Prompt{
		Messages: []agent.Message{{Role: agent.RoleUser, Content: "what module is this?"}},
		Tools: []agent.ToolSpec{{
			Name:        "read_file",
			Description: "read a file",
			Parameters:  map[string]any{"type": "object"},
		}},
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("tool calls = %+v", reply.ToolCalls)
	}
	call := reply.ToolCalls[0]
	if call.ID != "call_1" || call.Name != "read_file" || call.Args()["path"] != "go.mod" {
		t.Fatalf("unexpected tool call %+v", call)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Fatalf("model = %v", gotBody["model"])
	}
	tools, _ := gotBody["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("tools not sent: %v", gotBody["tools"])
	}
}

func TestComplete_SendsToolHistory(t *testing.T) {
	silenceRootLogger(t)

	var gotBody struct {
		Messages []map[string]any `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(textBody))
	}))
	t.Cleanup(srv.Close)

	client, err := New(Options{APIKey: "test", BaseURL: srv.URL + "/v1", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	reply, err := client.Complete(context.Background(), agent.Prompt{
		Messages: []agent.Message{
			{Role: agent.RoleSystem, Content: "sys"},
			{Role: agent.RoleUser, Content: "what module is this?"},
			{Role: agent.RoleAssistant, ToolCalls: []agent.ToolUse{{ID: "call_1", Name: "read_file", Input: json.RawMessage(`{"path":"go.mod"}`)}}},
			{Role: agent.RoleTool, ToolResult: &agent.ToolResult{ToolUseID: "call_1", Content: "module coding-agent"}},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if reply.Text != "module coding-agent" || len(reply.ToolCalls) != 0 {
		t.Fatalf("unexpected reply %+v", reply)
	}

	if len(gotBody.Messages) != 4 {
		t.Fatalf("messages = %v", gotBody.Messages)
	}
	roles := []string{}
	for _, m := range gotBody.Messages {
		role, _ := m["role"].(string)
		roles = append(roles, role)
	}
	if strings.Join(roles, ",") != "system,user,assistant,tool" {
		t.Fatalf("roles = %v", roles)
	}
	if gotBody.Messages[3]["tool_call_id"] != "call_1" {
		t.Fatalf("tool message missing call id: %v", gotBody.Messages[3])
	}
	calls, _ := gotBody.Messages[2]["tool_calls"].([]any)
	if len(calls) != 1 {
		t.Fatalf("assistant tool calls not sent: %v", gotBody.Messages[2])
	}
}

func TestComplete_HTTPErrorIncludesStatus(t *testing.T) {
	silenceRootLogger(t)

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := New(Options{APIKey: "test", BaseURL: srv.URL, Model: "nope"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, err = client.Complete(context.Background(), agent.Prompt{
		Messages: []agent.Message{{Role: agent.RoleUser, Content: "hi"}},
	})
	if err == nil || !strings.Contains(err.Error(), "http_400") {
		t.Fatalf("Complete() error = %v, want http_400", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("400 must not be retried, calls=%d", calls.Load())
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestNormalizeBaseURL_EnsuresV1AndStripsEndpointSuffix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "https://api.openai.com", want: "https://api.openai.com/v1"},
		{in: "https://example.com/openai/v1/", want: "https://example.com/openai/v1"},
		{in: "https://example.com/openai/v1/chat/completions", want: "https://example.com/openai/v1"},
		{in: "https://example.com/v1/v1", want: "https://example.com/v1"},
		{in: "  ", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := normalizeBaseURL(tc.in); got != tc.want {
				t.Fatalf("normalizeBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
