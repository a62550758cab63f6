// Package llm is the text-completion collaborator. Callers describe the
// role and prompts; the client returns parsed JSON payloads bounded by a
// configured timeout.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dyike/coveredcall/config"
)

var (
	// ErrCompletionTimeout: the collaborator did not answer within the
	// configured deadline. Non-fatal for the workflow.
	ErrCompletionTimeout = errors.New("completion timed out")

	// ErrCompletionProtocol: the collaborator answered but the payload did
	// not satisfy the JSON contract. Non-fatal for the workflow.
	ErrCompletionProtocol = errors.New("completion violated response contract")
)

// Completer produces a structured completion for a role. Implementations
// must honor ctx cancellation and return ErrCompletionTimeout /
// ErrCompletionProtocol so node boundaries can classify the failure.
type Completer interface {
	CompleteJSON(ctx context.Context, role, system, user string, out any) error
}

// NewCompleter selects a completion backend from config. Provider "none"
// returns nil: deterministic mode needs no collaborator.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, error) {
	switch cfg.LLMProvider {
	case "", "none":
		return nil, nil
	case "mock":
		return NewMockCompleter(), nil
	case "openai", "deepseek":
		return NewChatCompleter(ctx, cfg)
	}
	return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLMProvider)
}

// extractFirstJSON returns the first balanced {...} block in text. Models
// wrap JSON in prose or fences often enough that strict unmarshal of the
// raw content is not an option.
func extractFirstJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", fmt.Errorf("%w: no JSON object found", ErrCompletionProtocol)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: incomplete JSON object", ErrCompletionProtocol)
}

// decodeJSON parses the first JSON object in text into out.
func decodeJSON(text string, out any) error {
	raw, err := extractFirstJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrCompletionProtocol, err)
	}
	return nil
}
