package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songpush/internal/services"
	"github.com/desertthunder/songpush/internal/shared"
	"github.com/desertthunder/songpush/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Similar prints songs similar to the query without downloading anything.
func (r *Runner) Similar(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: song name", shared.ErrMissingArgument)
	}

	count := int(cmd.Int("count"))
	if count <= 0 {
		return fmt.Errorf("%w: count must be positive", shared.ErrInvalidArgument)
	}

	suggester := r.similar()
	if provider := cmd.String("provider"); provider != "" {
		config := *r.config
		config.Suggest.Provider = provider
		if err := config.Validate(); err != nil {
			return err
		}

		s, err := services.NewSuggester(&config, r.downloader())
		if err != nil {
			return err
		}
		suggester = s
	}

	r.logger.Debug("fetching suggestions", "provider", suggester.Name(), "query", query, "count", count)

	suggestions, err := suggester.Similar(ctx, query, count)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if suggestions == nil {
			suggestions = []string{}
		}
		return r.writeJSON(map[string]any{
			"query":       query,
			"provider":    suggester.Name(),
			"suggestions": suggestions,
		}, true)
	}

	if len(suggestions) == 0 {
		return r.writePlain("%s\n", tasks.NoSuggestions)
	}
	for i, s := range suggestions {
		r.writePlain("%d. %s\n", i+1, s)
	}
	return nil
}
