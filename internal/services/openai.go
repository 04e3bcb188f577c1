// OpenAI text-completion similar-song provider
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/songpush/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-3.5-turbo-instruct"
)

var listNumbering = regexp.MustCompile(`^\d+\.`)

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	N           int     `json:"n"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// OpenAISuggester asks a text-completion model for similar songs.
//
// Requests carry the API key as a bearer token through an [oauth2.StaticTokenSource].
type OpenAISuggester struct {
	api   *APIService
	model string
}

// NewOpenAISuggester creates a suggester for cfg. An empty API key is [shared.ErrMissingCredentials].
func NewOpenAISuggester(cfg shared.OpenAIConfig, timeout time.Duration, rps float64) (*OpenAISuggester, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: set credentials.openai.api_key or %s", shared.ErrMissingCredentials, shared.EnvOpenAIToken)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
	client := oauth2.NewClient(context.Background(), src)

	api := NewAPIService(baseURL, client).WithTimeout(timeout).WithRateLimit(rps)
	return &OpenAISuggester{api: api, model: model}, nil
}

func (o *OpenAISuggester) Name() string { return ProviderOpenAI }

// Similar requests n suggestions and returns the cleaned lines of the first choice.
func (o *OpenAISuggester) Similar(ctx context.Context, query string, n int) ([]string, error) {
	body := completionRequest{
		Model:       o.model,
		Prompt:      completionPrompt(query, n),
		MaxTokens:   50,
		N:           1,
		Temperature: 0.7,
	}

	resp, err := o.api.PostJSON(ctx, "/completions", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSuggestionUnavailable, err)
	}

	var out completionResponse
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSuggestionUnavailable, err)
	}
	if !resp.OK() {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("%w: %w: %s", shared.ErrSuggestionUnavailable, shared.ErrAPIRequest, msg)
	}
	if len(out.Choices) == 0 {
		return nil, nil
	}

	suggestions := ParseCompletion(out.Choices[0].Text)
	if n > 0 && len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions, nil
}

func completionPrompt(query string, n int) string {
	return fmt.Sprintf("Suggest %d songs similar to '%s'. Do **NOT** append [NUM]. to the beginning.:", n, query)
}

// ParseCompletion splits completion text into suggestions, dropping blank lines and leading "1." style numbering.
func ParseCompletion(text string) []string {
	var out []string
	for _, line := range nonEmptyLines(text) {
		line = strings.TrimSpace(listNumbering.ReplaceAllString(line, ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
