// Search-result similar-song provider
package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/desertthunder/songpush/internal/shared"
)

// DuplicateThreshold is the similarity ratio at or above which a search result counts as another upload of the top hit.
const DuplicateThreshold = 0.7

// TitleSearcher returns the titles of the top n search results for query.
type TitleSearcher interface {
	Search(ctx context.Context, query string, n int) ([]string, error)
}

// SearchSuggester derives suggestions from a video search.
//
// The top result is taken as the song itself. Other results whose titles are at least [DuplicateThreshold]
// similar to it are treated as re-uploads and skipped, so what remains are neighbouring songs.
type SearchSuggester struct {
	searcher  TitleSearcher
	threshold float64
	depth     int
}

// NewSearchSuggester creates a provider backed by s.
func NewSearchSuggester(s TitleSearcher) *SearchSuggester {
	return &SearchSuggester{searcher: s, threshold: DuplicateThreshold, depth: 10}
}

func (s *SearchSuggester) Name() string { return ProviderSearch }

func (s *SearchSuggester) Similar(ctx context.Context, query string, n int) ([]string, error) {
	titles, err := s.searcher.Search(ctx, query, max(s.depth, n+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSuggestionUnavailable, err)
	}
	return FilterSimilar(titles, n, s.threshold), nil
}

// FilterSimilar returns up to n titles after titles[0] that are less than threshold similar to it
// and not repeats of one another.
func FilterSimilar(titles []string, n int, threshold float64) []string {
	if len(titles) < 2 {
		return nil
	}
	ref := titles[0]

	var out []string
	seen := map[string]struct{}{shared.NormalizeKey(ref): {}}
	for _, title := range titles[1:] {
		key := shared.NormalizeKey(title)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		if Similarity(ref, title) >= threshold {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, title)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// Similarity is the normalized edit similarity of a and b in [0, 1], ignoring case and spacing.
func Similarity(a, b string) float64 {
	a, b = shared.NormalizeKey(a), shared.NormalizeKey(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
