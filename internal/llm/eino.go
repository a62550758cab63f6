package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/coveredcall/config"
)

// ChatCompleter backs the Completer interface with an eino chat model.
type ChatCompleter struct {
	chatModel model.BaseChatModel
	timeout   time.Duration
}

// NewChatCompleter builds the chat model for the configured provider.
// "openai" covers any OpenAI-compatible endpoint via LLMBaseURL.
func NewChatCompleter(ctx context.Context, cfg *config.Config) (*ChatCompleter, error) {
	var (
		cm  model.BaseChatModel
		err error
	)

	switch cfg.LLMProvider {
	case "openai":
		maxTokens := 2048
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.LLMBaseURL,
			APIKey:    cfg.LLMAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: &maxTokens,
		})
	case "deepseek":
		cm, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.LLMAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: 2048,
		})
	default:
		return nil, fmt.Errorf("unsupported chat provider: %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", cfg.LLMProvider, err)
	}

	return &ChatCompleter{chatModel: cm, timeout: cfg.LLMTimeout}, nil
}

func (c *ChatCompleter) CompleteJSON(ctx context.Context, role, system, user string, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.chatModel.Generate(callCtx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: role=%s after %s", ErrCompletionTimeout, role, c.timeout)
		}
		return fmt.Errorf("%w: role=%s: %v", ErrCompletionProtocol, role, err)
	}
	if msg == nil || msg.Content == "" {
		return fmt.Errorf("%w: role=%s: empty completion", ErrCompletionProtocol, role)
	}

	return decodeJSON(msg.Content, out)
}
