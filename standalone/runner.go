// Package standalone runs a single lead hunt in-process, outside of any orchestration.
package standalone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/researchaccelerator-hub/youtube-lead-hunter/client"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/common"
	crawleryoutube "github.com/researchaccelerator-hub/youtube-lead-hunter/crawler/youtube"
	"github.com/researchaccelerator-hub/youtube-lead-hunter/state"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultProgressBufferSize is the number of progress lines that may queue up
// before the hunt waits for the renderer
const DefaultProgressBufferSize = 256

// ErrNoTerms is returned when none of the supplied terms is usable
var ErrNoTerms = errors.New("no search terms provided")

// HistoryRecorder records the lifecycle of a hunt run
type HistoryRecorder interface {
	RecordStart(ctx context.Context, run state.HuntRun) error
	RecordFinish(ctx context.Context, runID string, collected int, status string) error
}

// RunOptions configures RunHunt
type RunOptions struct {
	Hunt     common.HuntConfig
	Terms    []string
	Provider client.SearchProvider
	Store    crawleryoutube.LeadWriter

	// History is optional
	History HistoryRecorder

	// Render receives every progress line in order; defaults to zerolog at info level
	Render func(msg string)

	ProgressBufferSize int
	RunID              string
	Clock              func() time.Time
}

// RunHunt runs one hunt on a worker goroutine while the calling goroutine's
// renderer drains progress lines. Cancelling ctx stops the hunt after the
// candidate being processed; whatever was collected up to then is still saved.
func RunHunt(ctx context.Context, opts RunOptions) (crawleryoutube.Summary, error) {
	if opts.Provider == nil {
		return crawleryoutube.Summary{}, errors.New("search provider is required")
	}
	if opts.Store == nil {
		return crawleryoutube.Summary{}, errors.New("lead store is required")
	}
	if err := opts.Hunt.Validate(); err != nil {
		return crawleryoutube.Summary{}, fmt.Errorf("invalid hunt configuration: %w", err)
	}
	if !hasUsableTerm(opts.Terms) {
		return crawleryoutube.Summary{}, ErrNoTerms
	}

	runID := opts.RunID
	if runID == "" {
		runID = common.GenerateRunID()
	}

	bufferSize := opts.ProgressBufferSize
	if bufferSize < 1 {
		bufferSize = DefaultProgressBufferSize
	}

	render := opts.Render
	if render == nil {
		render = func(msg string) {
			log.Info().Str("run_id", runID).Msg(msg)
		}
	}

	progress := make(chan string, bufferSize)
	sink := func(msg string) {
		progress <- msg
	}

	hunterOpts := []crawleryoutube.Option{crawleryoutube.WithRunID(runID)}
	if opts.Clock != nil {
		hunterOpts = append(hunterOpts, crawleryoutube.WithClock(opts.Clock))
	}
	hunter := crawleryoutube.NewLeadHunter(opts.Hunt, opts.Provider, opts.Store, sink, hunterOpts...)

	log.Info().
		Str("run_id", runID).
		Str("provider", opts.Provider.Name()).
		Int("terms", len(opts.Terms)).
		Str("cutoff", hunter.CutoffDate()).
		Msg("Starting lead hunt")

	recordStart(ctx, opts.History, state.HuntRun{
		RunID:      runID,
		Provider:   opts.Provider.Name(),
		Terms:      opts.Terms,
		OutputFile: opts.Store.Path(),
		StartedAt:  time.Now(),
	})

	var summary crawleryoutube.Summary
	done := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(progress)
		defer close(done)
		summary = hunter.Search(ctx, opts.Terms)
		return nil
	})
	g.Go(func() error {
		for msg := range progress {
			render(msg)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			log.Info().Str("run_id", runID).Msg("Stop requested, finishing current candidate")
			hunter.Stop()
		case <-done:
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return summary, err
	}

	recordFinish(ctx, opts.History, summary)
	return summary, nil
}

// RunStatus maps a hunt summary to its history status
func RunStatus(summary crawleryoutube.Summary) string {
	switch {
	case summary.Collected > 0 && summary.Saved == 0:
		return state.StatusFailed
	case summary.Stopped:
		return state.StatusStopped
	default:
		return state.StatusCompleted
	}
}

func hasUsableTerm(terms []string) bool {
	for _, term := range terms {
		if strings.TrimSpace(term) != "" {
			return true
		}
	}
	return false
}

func recordStart(ctx context.Context, history HistoryRecorder, run state.HuntRun) {
	if history == nil {
		return
	}
	if err := history.RecordStart(ctx, run); err != nil {
		log.Warn().Err(err).Str("run_id", run.RunID).Msg("Failed to record hunt start")
	}
}

func recordFinish(ctx context.Context, history HistoryRecorder, summary crawleryoutube.Summary) {
	if history == nil {
		return
	}
	// a cancelled hunt is still recorded
	ctx = context.WithoutCancel(ctx)
	if err := history.RecordFinish(ctx, summary.RunID, summary.Collected, RunStatus(summary)); err != nil {
		log.Warn().Err(err).Str("run_id", summary.RunID).Msg("Failed to record hunt finish")
	}
}
