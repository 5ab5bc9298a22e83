package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"quantsim/types"
)

// RunRequest is one independent backtest in a batch: its own candles,
// strategy and configuration, so runs share no mutable state.
type RunRequest struct {
	ID       string
	Symbol   string
	Strategy Strategy
	Config   *SimulationConfig
	Candles  []types.Candle
}

// RunOutcome pairs a request with its result or error. A batch cancelled
// mid-flight reports ctx.Err() for every run that never started; half-run
// results are discarded, never resumed.
type RunOutcome struct {
	ID     string
	Symbol string
	Result *Result
	Err    error
}

// Runner fans independent runs out over a bounded worker pool. Each run's
// internal loop stays single-threaded; only whole runs execute in parallel.
type Runner struct {
	workers      int
	showProgress bool
}

func NewRunner(workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{workers: workers}
}

func (r *Runner) ShowProgress(on bool) {
	r.showProgress = on
}

// Run executes all requests and returns outcomes in request order.
func (r *Runner) Run(ctx context.Context, requests []RunRequest) []RunOutcome {
	outcomes := make([]RunOutcome, len(requests))
	jobs := make(chan int)

	var bar *progressbar.ProgressBar
	if r.showProgress {
		bar = progressbar.Default(int64(len(requests)), "Running backtests...")
	}

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.runOne(ctx, requests[i])
				if bar != nil {
					bar.Add(1)
				}
			}
		}()
	}

	for i := range requests {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func (r *Runner) runOne(ctx context.Context, req RunRequest) RunOutcome {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	outcome := RunOutcome{ID: id, Symbol: req.Symbol}

	// Not-yet-started work is discarded on cancellation.
	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}

	eng, err := NewEngine(req.Strategy, req.Config)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	result, err := eng.Run(req.Symbol, req.Candles)
	if err != nil {
		log.Error().Err(err).Str("symbol", req.Symbol).Str("run", id).Msg("backtest failed")
		outcome.Err = err
		return outcome
	}
	outcome.Result = result
	return outcome
}
