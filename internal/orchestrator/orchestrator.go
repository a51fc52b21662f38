// ABOUTME: Concurrent session orchestration and cross-session aggregation
// ABOUTME: Runs N samplers in parallel and merges their results into one pool
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/echolat/echolat-go/internal/config"
	"github.com/echolat/echolat-go/internal/logging"
	"github.com/echolat/echolat-go/internal/sampler"
	"github.com/echolat/echolat-go/internal/timing"
)

// SessionOutcome is the terminal state of one session: either a result
// or an error, never both.
type SessionOutcome struct {
	Session int
	Result  *timing.SessionResult
	Err     error
}

// Failed reports whether the session ended without meeting its quota.
func (o *SessionOutcome) Failed() bool { return o.Err != nil }

// Result holds everything a run produced: per-session outcomes ordered
// by session number, and aggregate statistics over the union of all
// samples from successful sessions.
type Result struct {
	Sessions  []SessionOutcome
	Aggregate timing.AggregateStats
}

// Pool returns the merged sample sequence across all successful
// sessions, in session order.
func (r *Result) Pool() []timing.Sample {
	var pool []timing.Sample
	for _, o := range r.Sessions {
		if o.Result != nil {
			pool = append(pool, o.Result.Samples...)
		}
	}
	return pool
}

// Run starts one sampler per configured client, waits for every session
// to reach a terminal state, and aggregates. Sessions are numbered 1..N
// by creation order; the numbering is used only for labeling.
//
// If any session fails the run is reported as failed, but the returned
// Result still carries the outcomes and aggregate of the sessions that
// succeeded, so the caller can do best-effort reporting. Sibling
// sessions are never aborted by a failure (isolation); no retries are
// performed here.
func Run(ctx context.Context, cfg config.Config, onSample func(session, collected int)) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpointURL, err := cfg.EndpointURL()
	if err != nil {
		return nil, err
	}

	log := logging.L()
	log.Infof("starting run: %d clients x %d samples against %s", cfg.Clients, cfg.Samples, cfg.Endpoint)

	outcomes := make([]SessionOutcome, cfg.Clients)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Clients; i++ {
		session := i + 1
		s := sampler.New(sampler.Config{
			Session:  session,
			URL:      endpointURL,
			Target:   cfg.Samples,
			Interval: cfg.SampleInterval,
			OnSample: onSample,
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.Run(ctx)
			outcomes[session-1] = SessionOutcome{Session: session, Result: result, Err: err}
		}()
	}
	wg.Wait()

	result := &Result{Sessions: outcomes}
	result.Aggregate = timing.Aggregate(result.Pool())

	failed := 0
	var firstErr error
	for _, o := range outcomes {
		if o.Failed() {
			failed++
			if firstErr == nil {
				firstErr = o.Err
			}
			log.Errorf("session %d failed: %v", o.Session, o.Err)
		}
	}

	if failed > 0 {
		return result, fmt.Errorf("%d of %d sessions failed: %w", failed, cfg.Clients, firstErr)
	}

	log.Infof("run complete: %d samples aggregated", result.Aggregate.Count)
	return result, nil
}
