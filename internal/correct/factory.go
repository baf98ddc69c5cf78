package correct

import (
	"context"
	"fmt"

	"github.com/kdurfey/redline/internal/config"
)

// ForProvider builds the corrector selected by cfg.Provider, carrying the
// given instruction as the system prompt.
func ForProvider(ctx context.Context, cfg config.Config, instruction string) (Corrector, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, instruction, cfg.RequestTimeout), nil
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, instruction, cfg.RequestTimeout), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, instruction)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
