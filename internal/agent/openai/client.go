package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"coding-agent/internal/agent"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client 通过 Chat Completions 接口实现 agent.ModelClient，支持函数工具调用。
type Client struct {
	api   *openai.Client
	model string
}

// 确保Client实现了agent.ModelClient接口
var _ agent.ModelClient = (*Client)(nil)

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	cfg := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg = append(cfg, option.WithBaseURL(strings.TrimRight(normalizeBaseURL(base), "/")))
	}
	client := openai.NewClient(cfg...)

	return &Client{
		api:   &client,
		model: opts.Model,
	}, nil
}

func (c *Client) resolveModel(model string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return c.model
}

func (c *Client) Complete(ctx context.Context, prompt agent.Prompt) (agent.Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.resolveModel(prompt.Model)),
		Messages: toChatMessages(prompt.Messages),
	}
	if len(prompt.Tools) > 0 {
		params.Tools = toChatTools(prompt.Tools)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return agent.Reply{}, wrapHTTPError(err)
	}
	if len(resp.Choices) == 0 {
		return agent.Reply{}, errors.New("no completion choices returned")
	}
	msg := resp.Choices[0].Message
	reply := agent.Reply{Text: msg.Content}
	for _, call := range msg.ToolCalls {
		if strings.TrimSpace(call.Function.Name) == "" {
			continue
		}
		reply.ToolCalls = append(reply.ToolCalls, agent.ToolUse{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: rawArguments(call.Function.Arguments),
		})
	}
	return reply, nil
}

func rawArguments(args string) json.RawMessage {
	args = strings.TrimSpace(args)
	if args == "" || !json.Valid([]byte(args)) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(args)
}

func toChatMessages(msgs []agent.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case agent.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case agent.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			out = append(out, toAssistantToolCalls(msg))
		case agent.RoleTool:
			if msg.ToolResult == nil {
				continue
			}
			out = append(out, openai.ToolMessage(msg.ToolResult.Content, msg.ToolResult.ToolUseID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func toAssistantToolCalls(msg agent.Message) openai.ChatCompletionMessageParamUnion {
	param := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		param.Content.OfString = openai.String(msg.Content)
	}
	for _, call := range msg.ToolCalls {
		args := string(call.Input)
		if strings.TrimSpace(args) == "" {
			args = "{}"
		}
		param.ToolCalls = append(param.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      call.Name,
					Arguments: args,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &param}
}

func toChatTools(specs []agent.ToolSpec) []openai.ChatCompletionToolUnionParam {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			continue
		}
		fn := shared.FunctionDefinitionParam{
			Name:       name,
			Parameters: spec.Parameters,
		}
		if desc := strings.TrimSpace(spec.Description); desc != "" {
			fn.Description = openai.String(desc)
		}
		tools = append(tools, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: fn,
			},
		})
	}
	return tools
}

func wrapHTTPError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		raw := strings.TrimSpace(apiErr.RawJSON())
		if raw != "" {
			return fmt.Errorf("http_%d: %s", apiErr.StatusCode, raw)
		}
		return fmt.Errorf("http_%d: %v", apiErr.StatusCode, err)
	}
	return err
}
