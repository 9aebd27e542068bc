package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"coding-agent/internal/agent"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 4096

type Options struct {
	Token   string
	BaseURL string
	Model   string
}

type Client struct {
	api   *anthropic.Client
	model string
	// send 可在测试中替换。
	send func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

var _ agent.ModelClient = (*Client)(nil)

func New(opts Options) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, errors.New("missing token")
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(token),
	}
	if base := normalizeBaseURL(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	client := anthropic.NewClient(reqOpts...)
	c := &Client{
		api:   &client,
		model: strings.TrimSpace(opts.Model),
	}
	c.send = func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
		return c.api.Messages.New(ctx, params)
	}
	return c, nil
}

// normalizeBaseURL 去掉末尾的 /v1，SDK 会自行拼接。
func normalizeBaseURL(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	return strings.TrimRight(strings.TrimSuffix(base, "/v1"), "/")
}

func (c *Client) resolveModel(m string) anthropic.Model {
	if strings.TrimSpace(m) != "" {
		return anthropic.Model(strings.TrimSpace(m))
	}
	return anthropic.Model(c.model)
}

func (c *Client) Complete(ctx context.Context, prompt agent.Prompt) (agent.Reply, error) {
	params := buildMessageParams(prompt, c.resolveModel(prompt.Model))
	msg, err := c.send(ctx, params)
	if err != nil {
		return agent.Reply{}, err
	}
	return toReply(msg.Content), nil
}

func buildMessageParams(prompt agent.Prompt, model anthropic.Model) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	var pendingResults []anthropic.ContentBlockParamUnion

	flushResults := func() {
		if len(pendingResults) == 0 {
			return
		}
		messages = append(messages, anthropic.NewUserMessage(pendingResults...))
		pendingResults = nil
	}

	for _, msg := range prompt.Messages {
		if msg.Role == agent.RoleTool {
			if msg.ToolResult != nil {
				r := msg.ToolResult
				pendingResults = append(pendingResults, anthropic.NewToolResultBlock(r.ToolUseID, r.Content, r.IsError))
			}
			continue
		}
		flushResults()

		text := strings.TrimSpace(msg.Content)
		switch msg.Role {
		case agent.RoleSystem:
			if text != "" {
				system = append(system, anthropic.TextBlockParam{Text: text})
			}
		case agent.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(text))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, toolInput(call.Input), call.Name))
			}
			if len(blocks) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(blocks...))
			}
		default:
			if text != "" {
				messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
			}
		}
	}
	flushResults()

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: defaultMaxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(prompt.Tools) > 0 {
		params.Tools = toTools(prompt.Tools)
	}
	return params
}

func toolInput(raw json.RawMessage) any {
	var v map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil || v == nil {
		return map[string]any{}
	}
	return v
}

func toTools(specs []agent.ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			continue
		}
		schema := anthropic.ToolInputSchemaParam{
			Properties: spec.Parameters["properties"],
		}
		if req, ok := spec.Parameters["required"].([]string); ok {
			schema.Required = req
		}
		tool := anthropic.ToolParam{
			Name:        name,
			InputSchema: schema,
		}
		if desc := strings.TrimSpace(spec.Description); desc != "" {
			tool.Description = anthropic.String(desc)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out
}

func toReply(blocks []anthropic.ContentBlockUnion) agent.Reply {
	var reply agent.Reply
	var sb strings.Builder
	for _, block := range blocks {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(v.Text)
		case anthropic.ToolUseBlock:
			input := json.RawMessage(strings.TrimSpace(string(v.Input)))
			if len(input) == 0 {
				input = json.RawMessage(`{}`)
			}
			reply.ToolCalls = append(reply.ToolCalls, agent.ToolUse{ID: v.ID, Name: v.Name, Input: input})
		}
	}
	reply.Text = strings.TrimSpace(sb.String())
	return reply
}
