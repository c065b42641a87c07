package registry

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"zozabot/internal/providers"
	"zozabot/internal/providers/chat_completion"
	"zozabot/internal/providers/generation_array"
	"zozabot/internal/providers/single_prompt"
)

type BuildOptions struct {
	Kind        string
	URL         string
	APIKey      string
	Headers     map[string]string
	Separator   string
	HTTPClient  *http.Client
	MaxRetries  int
	BackoffBase time.Duration
}

func Build(opts BuildOptions) (providers.Provider, error) {
	switch NormalizeKind(opts.Kind) {
	case "chat_completion":
		return chat_completion.New(chat_completion.Config{
			URL:         opts.URL,
			APIKey:      opts.APIKey,
			Headers:     opts.Headers,
			Separator:   opts.Separator,
			HTTPClient:  opts.HTTPClient,
			MaxRetries:  opts.MaxRetries,
			BackoffBase: opts.BackoffBase,
		}), nil

	case "single_prompt":
		return single_prompt.New(single_prompt.Config{
			URL:         opts.URL,
			APIKey:      opts.APIKey,
			Headers:     opts.Headers,
			Separator:   opts.Separator,
			HTTPClient:  opts.HTTPClient,
			MaxRetries:  opts.MaxRetries,
			BackoffBase: opts.BackoffBase,
		}), nil

	case "generation_array":
		return generation_array.New(generation_array.Config{
			URL:         opts.URL,
			APIKey:      opts.APIKey,
			Headers:     opts.Headers,
			Separator:   opts.Separator,
			HTTPClient:  opts.HTTPClient,
			MaxRetries:  opts.MaxRetries,
			BackoffBase: opts.BackoffBase,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported provider kind %q", opts.Kind)
	}
}

func NormalizeKind(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "chat_completion", "chat-completion", "openai", "openai_compat":
		return "chat_completion"
	case "single_prompt", "single-prompt", "gemini":
		return "single_prompt"
	case "generation_array", "generation-array", "inference":
		return "generation_array"
	default:
		return ""
	}
}
