// ABOUTME: Runs a recommendation pass: batches pinned tracks, queries the provider and ranks results
// ABOUTME: Tolerates per-batch failures and aggregates whatever batches succeeded

// Package recommend grows a pinned track set with recommendations seeded from it.
package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"playlist-explorer/playlist"
)

// Sentinel errors returned by Run
var (
	ErrInvalidAccuracy = errors.New("accuracy must be between 1 and 5")
	ErrNoPinned        = errors.New("no pinned tracks")
)

// Provider returns recommended track IDs for up to MaxAccuracy seed IDs
type Provider interface {
	Recommendations(ctx context.Context, seedIDs []string) ([]string, error)
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(ctx context.Context, seedIDs []string) ([]string, error)

// Recommendations calls f
func (f ProviderFunc) Recommendations(ctx context.Context, seedIDs []string) ([]string, error) {
	return f(ctx, seedIDs)
}

// Candidate is a non-pinned playlist track returned by the provider
type Candidate struct {
	Index int // Stable track index
	Count int // Occurrences across successful batch responses
}

// BatchError records a provider call that failed
type BatchError struct {
	Batch int   // Batch number in submission order
	Seeds []int // Track indices that were sent
	Err   error
}

func (e BatchError) Error() string {
	return fmt.Sprintf("batch %d: %v", e.Batch, e.Err)
}

func (e BatchError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one recommendation run
type Result struct {
	RunID         string
	Batches       [][]int      // Seed batches as track indices
	Candidates    []Candidate  // Ranked by Count descending, ties in first-seen order
	Failed        []BatchError // Batches whose provider call failed
	Unknown       int          // Returned IDs not present in the playlist
	AlreadyPinned int          // Returned IDs that were already pinned
}

// RunnerConfig configures a Runner
type RunnerConfig struct {
	Timeout     time.Duration   // Per provider call; 0 means no timeout
	Concurrency int             // Provider calls in flight; <= 0 means 1
	Logger      *zerolog.Logger // Defaults to a no-op logger
	Metrics     *Metrics        // Optional
}

// Runner executes recommendation runs against a Provider
type Runner struct {
	provider    Provider
	rng         Rand
	timeout     time.Duration
	concurrency int
	logger      zerolog.Logger
	metrics     *Metrics
}

// NewRunner creates a runner. rng drives batch sampling.
func NewRunner(provider Provider, rng Rand, cfg RunnerConfig) *Runner {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Runner{
		provider:    provider,
		rng:         rng,
		timeout:     cfg.Timeout,
		concurrency: concurrency,
		logger:      logger,
		metrics:     cfg.Metrics,
	}
}

// Run builds seed batches of size k from pinned, queries the provider for each and
// aggregates the results. Failed batches are reported in Result.Failed and do not abort the run.
func (r *Runner) Run(ctx context.Context, pl *playlist.Playlist, pinned *PinnedSet, k int) (*Result, error) {
	if k < 1 || k > MaxAccuracy {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAccuracy, k)
	}

	if pinned.Len() == 0 {
		return nil, ErrNoPinned
	}

	start := time.Now()
	res := &Result{
		RunID:   uuid.NewString(),
		Batches: BuildBatches(pinned.Indices(), k, r.rng),
	}
	logger := r.logger.With().Str("run", res.RunID).Logger()

	logger.Debug().Int("pinned", pinned.Len()).Int("accuracy", k).Int("batches", len(res.Batches)).Msg("recommendation run started")

	responses := make([][]string, len(res.Batches))
	errs := make([]error, len(res.Batches))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, batch := range res.Batches {
		seeds := make([]string, len(batch))
		for j, idx := range batch {
			seeds[j] = pl.Track(idx).ID
		}

		g.Go(func() error {
			responses[i], errs[i] = r.call(ctx, seeds)

			return nil
		})
	}

	_ = g.Wait()

	// Aggregate in batch order so ranking ties do not depend on call completion order
	counts := make(map[int]int)

	var order []int

	for i, ids := range responses {
		if errs[i] != nil {
			res.Failed = append(res.Failed, BatchError{Batch: i, Seeds: res.Batches[i], Err: errs[i]})
			logger.Warn().Err(errs[i]).Int("batch", i).Msg("recommendation batch failed")

			continue
		}

		logger.Debug().Int("batch", i).Int("results", len(ids)).Msg("recommendation batch completed")

		for _, id := range ids {
			idx, ok := pl.Lookup(id)
			if !ok {
				res.Unknown++

				continue
			}

			if pinned.Contains(idx) {
				res.AlreadyPinned++

				continue
			}

			if _, seen := counts[idx]; !seen {
				order = append(order, idx)
			}
			counts[idx]++
		}
	}

	res.Candidates = make([]Candidate, len(order))
	for i, idx := range order {
		res.Candidates[i] = Candidate{Index: idx, Count: counts[idx]}
	}

	slices.SortStableFunc(res.Candidates, func(a, b Candidate) int {
		return cmp.Compare(b.Count, a.Count)
	})

	elapsed := time.Since(start)
	r.metrics.observeRun(res, elapsed)

	logger.Info().
		Int("batches", len(res.Batches)).
		Int("failed", len(res.Failed)).
		Int("candidates", len(res.Candidates)).
		Int("unknown", res.Unknown).
		Int("already_pinned", res.AlreadyPinned).
		Dur("elapsed", elapsed).
		Msg("recommendation run finished")

	return res, nil
}

// call queries the provider with the per-call timeout applied
func (r *Runner) call(ctx context.Context, seeds []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	return r.provider.Recommendations(ctx, seeds)
}
