// Last.fm track.getsimilar provider
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/songpush/internal/shared"
)

const defaultLastFMBaseURL = "http://ws.audioscrobbler.com/2.0/"

// lastFMTrackNotFound is the API error code for an unknown track.
const lastFMTrackNotFound = 6

var errTrackNotFound = errors.New("track not found")

type lastFMSimilarResponse struct {
	SimilarTracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"similartracks"`
	Error   int    `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// LastFMSuggester looks up similar tracks on Last.fm.
type LastFMSuggester struct {
	api    *APIService
	apiKey string
}

// NewLastFMSuggester creates a suggester for cfg. An empty API key is [shared.ErrMissingCredentials].
func NewLastFMSuggester(cfg shared.LastFMConfig, timeout time.Duration, rps float64) (*LastFMSuggester, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: set credentials.lastfm.api_key or %s", shared.ErrMissingCredentials, shared.EnvLastFMKey)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultLastFMBaseURL
	}

	api := NewAPIService(baseURL, nil).WithTimeout(timeout).WithRateLimit(rps)
	return &LastFMSuggester{api: api, apiKey: cfg.APIKey}, nil
}

func (l *LastFMSuggester) Name() string { return ProviderLastFM }

// Similar returns suggestions rendered as "<track> by <artist>".
//
// When the split query names a track Last.fm does not know, the whole query is retried as a bare track.
func (l *LastFMSuggester) Similar(ctx context.Context, query string, n int) ([]string, error) {
	track, artist := SplitQuery(query)

	suggestions, err := l.similar(ctx, track, artist, n)
	if artist != "" && (errors.Is(err, errTrackNotFound) || (err == nil && len(suggestions) == 0)) {
		return l.similar(ctx, strings.TrimSpace(query), "", n)
	}
	return suggestions, err
}

func (l *LastFMSuggester) similar(ctx context.Context, track, artist string, n int) ([]string, error) {
	params := url.Values{}
	params.Set("method", "track.getsimilar")
	params.Set("track", track)
	if artist != "" {
		params.Set("artist", artist)
	}
	params.Set("autocorrect", "1")
	params.Set("api_key", l.apiKey)
	params.Set("format", "json")
	if n > 0 {
		params.Set("limit", strconv.Itoa(n))
	}

	resp, err := l.api.Get(ctx, "?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSuggestionUnavailable, err)
	}

	var out lastFMSimilarResponse
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSuggestionUnavailable, err)
	}
	if out.Error == lastFMTrackNotFound {
		return nil, fmt.Errorf("%w: %w: %s", shared.ErrSuggestionUnavailable, errTrackNotFound, out.Message)
	}
	if !resp.OK() || out.Error != 0 {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w: %s", shared.ErrSuggestionUnavailable, shared.ErrAPIRequest, msg)
	}

	suggestions := make([]string, 0, len(out.SimilarTracks.Track))
	for _, t := range out.SimilarTracks.Track {
		if t.Name == "" {
			continue
		}
		if t.Artist.Name == "" {
			suggestions = append(suggestions, t.Name)
		} else {
			suggestions = append(suggestions, t.Name+" by "+t.Artist.Name)
		}
		if n > 0 && len(suggestions) == n {
			break
		}
	}
	return suggestions, nil
}

// SplitQuery separates a free-form query into track and artist.
//
// "Imagine by John Lennon" and "John Lennon - Imagine" both yield ("Imagine", "John Lennon").
// Only a lowercase " by " separates, so titles like "Stand By Me" stay whole.
// Anything else is treated as a bare track name.
func SplitQuery(query string) (track, artist string) {
	query = strings.TrimSpace(query)

	if i := strings.LastIndex(query, " by "); i > 0 {
		return strings.TrimSpace(query[:i]), strings.TrimSpace(query[i+len(" by "):])
	}
	if before, after, ok := strings.Cut(query, " - "); ok && before != "" && after != "" {
		return strings.TrimSpace(after), strings.TrimSpace(before)
	}
	return query, ""
}
