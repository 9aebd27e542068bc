package agent

import (
	"context"
	"errors"
)

// ModelClient 定义模型客户端接口
type ModelClient interface {
	Complete(ctx context.Context, prompt Prompt) (Reply, error)
}

// EchoClient is a fallback when no API key is available.
type EchoClient struct {
	Prefix string
}

func (c EchoClient) Complete(ctx context.Context, prompt Prompt) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	for i := len(prompt.Messages) - 1; i >= 0; i-- {
		if msg := prompt.Messages[i]; msg.Role == RoleUser {
			return Reply{Text: c.Prefix + msg.Content}, nil
		}
	}
	return Reply{}, errors.New("no messages to echo")
}
