package updater

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/audio-info-updater/internal/logging"
	"github.com/handiism/audio-info-updater/internal/model"
	"github.com/handiism/audio-info-updater/internal/resolve"
)

// Fetcher materializes the placeholder files of a remote collection.
type Fetcher interface {
	Fetch(ctx context.Context, c *model.Collection) ([]*model.PartialFetchError, error)
}

// Outcome is the result of processing one collection.
type Outcome struct {
	Collection  *model.Collection
	Result      *resolve.Result
	Applied     *Applied
	FetchErrors []*model.PartialFetchError

	// Err is the error that stopped the collection, nil on success.
	Err error
}

// Runner processes collections independently, several at a time.
type Runner struct {
	pipeline *Pipeline
	fetcher  Fetcher
	limit    int

	// OnOutcome, when set, is called as soon as each collection finishes.
	// Calls may come from several goroutines at once.
	OnOutcome func(Outcome)
}

// NewRunner creates a Runner processing at most limit collections at a
// time. Fetcher may be nil when no collection holds placeholders.
func NewRunner(pipeline *Pipeline, fetcher Fetcher, limit int) *Runner {
	return &Runner{pipeline: pipeline, fetcher: fetcher, limit: max(1, limit)}
}

// Run fetches, resolves and applies every collection. A failing collection
// never stops the others. Outcomes are returned in input order, and the
// error joins the errors of every failed collection.
func (r *Runner) Run(ctx context.Context, collections []*model.Collection) ([]Outcome, error) {
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}
	logging.FromContext(ctx).Info().Int("collections", len(collections)).Msg("Starting run")

	outcomes := make([]Outcome, len(collections))

	var g errgroup.Group
	g.SetLimit(r.limit)
	for i, c := range collections {
		g.Go(func() error {
			outcomes[i] = r.process(ctx, c)
			if r.OnOutcome != nil {
				r.OnOutcome(outcomes[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Collection.Name, o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}

func (r *Runner) process(ctx context.Context, c *model.Collection) Outcome {
	ctx = logging.WithFields(ctx, "collection", c.Name)
	log := logging.FromContext(ctx)
	out := Outcome{Collection: c}

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	if r.fetcher != nil && hasPlaceholders(c) {
		failures, err := r.fetcher.Fetch(ctx, c)
		out.FetchErrors = failures
		for _, f := range failures {
			log.Warn().Err(f.Err).Str("item", f.Item).Msg("Fetch failed")
		}
		if err != nil {
			out.Err = err
			return out
		}
	}

	result, err := r.pipeline.Resolve(ctx, c)
	out.Result = result
	if err != nil {
		var cfgErr *model.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Error().Err(err).Msg("Invalid metadata, collection skipped")
		} else {
			log.Error().Err(err).Msg("Resolution incomplete, no file changed")
		}
		out.Err = err
		return out
	}

	applied, err := r.pipeline.Apply(ctx, c, result)
	out.Applied = applied
	if err != nil {
		log.Error().Err(err).Msg("Failed to apply metadata")
		out.Err = err
	}
	return out
}

func hasPlaceholders(c *model.Collection) bool {
	for _, f := range c.Files {
		if f.Placeholder {
			return true
		}
	}
	return false
}
