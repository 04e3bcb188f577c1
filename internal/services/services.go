// package services implements the external collaborators of the pipeline.
//
// Similar-song providers (OpenAI, Last.fm, search), the yt-dlp downloader and the adb transferer.
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/songpush/internal/shared"
)

// Provider names accepted by suggest.provider.
const (
	ProviderOpenAI = "openai"
	ProviderLastFM = "lastfm"
	ProviderSearch = "search"
	ProviderNone   = "none"
)

// Suggester defines the interface for similar-song providers.
type Suggester interface {
	// Similar returns up to n songs similar to query, best match first.
	Similar(ctx context.Context, query string, n int) ([]string, error)

	// Name returns the provider name (e.g., "openai", "lastfm")
	Name() string
}

// NewSuggester builds the provider named by cfg.Suggest.Provider.
//
// The search provider reuses yt for its flat searches.
func NewSuggester(cfg *shared.Config, yt *YtDlp) (Suggester, error) {
	timeout := cfg.SuggestTimeout()
	rps := cfg.Suggest.RateLimit

	switch cfg.Suggest.Provider {
	case ProviderOpenAI:
		return NewOpenAISuggester(cfg.Credentials.OpenAI, timeout, rps)
	case ProviderLastFM:
		return NewLastFMSuggester(cfg.Credentials.LastFM, timeout, rps)
	case ProviderSearch:
		if yt == nil {
			return nil, fmt.Errorf("%w: search provider needs yt-dlp", shared.ErrServiceUnavailable)
		}
		return NewSearchSuggester(yt), nil
	case ProviderNone:
		return NoneSuggester{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", shared.ErrInvalidConfig, cfg.Suggest.Provider)
	}
}

// NoneSuggester never suggests anything.
type NoneSuggester struct{}

func (NoneSuggester) Similar(ctx context.Context, query string, n int) ([]string, error) {
	return nil, nil
}

func (NoneSuggester) Name() string { return ProviderNone }
