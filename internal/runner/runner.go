// Package runner drives session extraction: read a session log, run
// the reconstruction engine over it, and persist or emit the result.
//
// The engine keeps all state inside a single invocation, so the runner
// is free to process many sessions in parallel; workers share only the
// store handle, which is safe for concurrent use.
package runner

import (
	"context"
	"fmt"
	"sync"

	"actiontrace/internal/action"
	"actiontrace/internal/config"
	"actiontrace/internal/engine"
	"actiontrace/internal/logging"
	"actiontrace/internal/metrics"
	"actiontrace/internal/store"
	"actiontrace/internal/telemetry"
)

// Result is the outcome of extracting one session log.
type Result struct {
	Path       string
	SessionID  int64 // 0 when the session was not persisted
	EventCount int
	Actions    []action.Action
	ByType     map[string]int
	Err        error
}

// Options configures a Runner. Store and Metrics are optional.
type Options struct {
	Engine  engine.Config
	Strict  bool
	Store   *store.Store
	Metrics *metrics.Metrics
	Logger  *logging.Logger
}

// Runner extracts sessions.
type Runner struct {
	engineCfg engine.Config
	strict    bool
	store     *store.Store
	metrics   *metrics.Metrics
	log       *logging.Logger
}

// New creates a Runner.
func New(opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	return &Runner{
		engineCfg: opts.Engine,
		strict:    opts.Strict,
		store:     opts.Store,
		metrics:   opts.Metrics,
		log:       log.WithComponent("runner"),
	}
}

// EngineConfig converts the TOML engine section into engine thresholds.
func EngineConfig(c config.EngineConfig) engine.Config {
	return engine.Config{
		ClickDistancePx: c.ClickDistancePx,
		ClickDurationMs: c.ClickDurationMs,
		TextIdleMs:      c.TextIdleMs,
		DragPoints:      c.DragPoints,
	}
}

// Process extracts one session log. In strict mode the log is schema
// validated before extraction. When a store is configured the session
// is persisted and the result carries its ID.
func (r *Runner) Process(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.strict {
		if err := telemetry.ValidateLogFile(path); err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
	}

	events, err := telemetry.ReadLogFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	actions := engine.Extract(events, r.engineCfg)

	result := &Result{
		Path:       path,
		EventCount: len(events),
		Actions:    actions,
		ByType:     countByType(actions),
	}

	if r.metrics != nil {
		r.metrics.EventsTotal.Add(uint64(len(events)))
		r.metrics.SessionsTotal.Inc()
		r.metrics.CountActions(actions)
	}

	if r.store != nil {
		id, err := r.store.SaveSession(path, len(events), actions)
		if err != nil {
			return nil, fmt.Errorf("persist: %w", err)
		}
		result.SessionID = id
	}

	// Counts only; action payloads contain recorded user input.
	r.log.Info("session extracted",
		"path", path,
		"events", result.EventCount,
		"actions", len(actions),
		"session_id", result.SessionID,
	)
	return result, nil
}

// ProcessAll extracts the given session logs with the requested number
// of parallel workers. Results keep the input order; individual
// failures are recorded on their Result rather than aborting the batch.
// Only context cancellation returns an error.
func (r *Runner) ProcessAll(ctx context.Context, paths []string, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]*Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if r.metrics != nil {
					r.metrics.ActiveWorkers.Inc()
				}
				res, err := r.Process(ctx, paths[i])
				if r.metrics != nil {
					r.metrics.ActiveWorkers.Dec()
				}
				if err != nil {
					if r.metrics != nil && ctx.Err() == nil {
						r.metrics.ErrorsTotal.Inc()
					}
					r.log.Error("session extraction failed", "path", paths[i], "error", err)
					res = &Result{Path: paths[i], Err: err}
				}
				results[i] = res
			}
		}()
	}

	for i := range paths {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			return results, err
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	return results, nil
}

func countByType(actions []action.Action) map[string]int {
	counts := make(map[string]int)
	for _, a := range actions {
		counts[a.Type()]++
	}
	return counts
}
