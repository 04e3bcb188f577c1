package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/songpush/internal/shared"
)

func TestSplitQuery(t *testing.T) {
	tt := []struct {
		query, track, artist string
	}{
		{"Imagine by John Lennon", "Imagine", "John Lennon"},
		{"Stand By Me by Ben E. King", "Stand By Me", "Ben E. King"},
		{"John Lennon - Imagine", "Imagine", "John Lennon"},
		{"  Imagine  ", "Imagine", ""},
		{"- Imagine", "- Imagine", ""},
		{"Stand By Me", "Stand By Me", ""},
		{"Killed By Death", "Killed By Death", ""},
	}

	for _, tc := range tt {
		t.Run(tc.query, func(t *testing.T) {
			track, artist := SplitQuery(tc.query)
			if track != tc.track || artist != tc.artist {
				t.Errorf("SplitQuery(%q) = (%q, %q), want (%q, %q)", tc.query, track, artist, tc.track, tc.artist)
			}
		})
	}
}

func TestLastFMSuggester(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		if _, err := NewLastFMSuggester(shared.LastFMConfig{}, 0, 0); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Similar", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("method") != "track.getsimilar" || q.Get("format") != "json" {
				t.Errorf("unexpected params %s", r.URL.RawQuery)
			}
			if q.Get("track") != "Imagine" || q.Get("artist") != "John Lennon" {
				t.Errorf("expected split query, got %s", r.URL.RawQuery)
			}
			if q.Get("api_key") != "key" || q.Get("limit") != "2" {
				t.Errorf("unexpected params %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"similartracks":{"track":[
				{"name":"Jealous Guy","artist":{"name":"John Lennon"}},
				{"name":"","artist":{"name":"Nobody"}},
				{"name":"Let It Be","artist":{"name":"The Beatles"}},
				{"name":"Woman","artist":{"name":"John Lennon"}}
			]}}`))
		}))
		defer server.Close()

		s, err := NewLastFMSuggester(shared.LastFMConfig{APIKey: "key", BaseURL: server.URL + "/2.0/"}, 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := s.Similar(context.Background(), "Imagine by John Lennon", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "Jealous Guy by John Lennon|Let It Be by The Beatles"
		if strings.Join(got, "|") != want {
			t.Errorf("expected %s, got %v", want, got)
		}
	})

	t.Run("retries the whole query when the split track is unknown", func(t *testing.T) {
		var calls []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			calls = append(calls, q.Get("track")+"|"+q.Get("artist"))
			if q.Get("artist") != "" {
				w.Write([]byte(`{"error":6,"message":"Track not found"}`))
				return
			}
			w.Write([]byte(`{"similartracks":{"track":[{"name":"Lean on Me","artist":{"name":"Bill Withers"}}]}}`))
		}))
		defer server.Close()

		s, _ := NewLastFMSuggester(shared.LastFMConfig{APIKey: "key", BaseURL: server.URL + "/"}, 0, 0)
		got, err := s.Similar(context.Background(), "Stand by Me", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != "Lean on Me by Bill Withers" {
			t.Errorf("unexpected suggestions %v", got)
		}
		if strings.Join(calls, ",") != "Stand|Me,Stand by Me|" {
			t.Errorf("unexpected lookups %v", calls)
		}
	})

	t.Run("API error payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":6,"message":"Track not found"}`))
		}))
		defer server.Close()

		s, _ := NewLastFMSuggester(shared.LastFMConfig{APIKey: "key", BaseURL: server.URL + "/"}, 0, 0)
		_, err := s.Similar(context.Background(), "Nonexistent", 2)
		if !errors.Is(err, shared.ErrSuggestionUnavailable) {
			t.Fatalf("expected ErrSuggestionUnavailable, got %v", err)
		}
		if !strings.Contains(err.Error(), "Track not found") {
			t.Errorf("expected upstream message, got %v", err)
		}
	})
}
