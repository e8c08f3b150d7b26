package resolution

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bob-anderson-ok/LunarOccultation/aperture"
	"github.com/bob-anderson-ok/LunarOccultation/internal/metrics"
)

// trialJob is a unit of work for the trial workers.
type trialJob struct {
	index  int
	stream uint64
	star   aperture.Aperture
}

// trialResult is the output of a single trial.
type trialResult struct {
	index int
	trial Trial
	err   error
}

// runTrials runs every trial of one candidate on a fixed set of workers.
// Results are returned in trial order whatever order the workers finish in.
func (e *Estimator) runTrials(ctx context.Context, candidate int, star aperture.Aperture) ([]trialResult, error) {
	jobs := make(chan trialJob, e.workers*2)
	results := make(chan trialResult, e.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < min(e.workers, e.trials); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				start := time.Now()
				t, err := e.trial(job.star, job.stream)
				e.observeTrial(t, err, time.Since(start))
				select {
				case results <- trialResult{index: job.index, trial: t, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < e.trials; i++ {
			job := trialJob{
				index:  i,
				stream: streamID(candidate, i),
				star:   star,
			}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]trialResult, e.trials)
	received := 0
	for r := range results {
		ordered[r.index] = r
		received++
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if received != e.trials {
		return nil, context.Canceled
	}
	return ordered, nil
}

func (e *Estimator) observeTrial(t Trial, err error, d time.Duration) {
	if e.observer == nil {
		return
	}
	switch {
	case err != nil:
		e.observer.ObserveTrial(metrics.OutcomeFailed, d)
	case t.Rejected():
		e.observer.ObserveTrial(metrics.OutcomeRejected, d)
	default:
		e.observer.ObserveTrial(metrics.OutcomeAccepted, d)
	}
}

// streamID gives every (candidate, trial) pair its own PCG stream so a
// trial's noise does not depend on which worker ran it.
func streamID(candidate, trial int) uint64 {
	return uint64(candidate)<<32 | uint64(uint32(trial))
}

func newNoise(seed, stream uint64) distuv.Normal {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, stream)}
}

// survival is the probability of a chi-square at least as large as chisq
// arising from a point source.
func survival(chisq float64, dof int) float64 {
	return distuv.ChiSquared{K: float64(dof)}.Survival(chisq)
}
