package distribution

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
)

// EstimateProbMoreThanN estimates P(S > n) by simulating whole years and
// counting how many exceed the threshold. The estimator is unbiased with
// standard error on the order of 1/sqrt(trials).
//
// src supplies the uniform draws; pass a seeded source for reproducible
// results. A nil src falls back to a time-seeded source.
func EstimateProbMoreThanN(p []float64, n, trials int, src *rand.Rand) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}
	if trials <= 0 {
		return 0, fmt.Errorf("trials=%d: %w", trials, ErrInvalidTrialCount)
	}
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	exceeded := 0
	for t := 0; t < trials; t++ {
		if simulateYear(p, src) > n {
			exceeded++
		}
	}
	return float64(exceeded) / float64(trials), nil
}

// simulateYear draws one year and returns its rainy-day count. A day is
// rainy when the uniform draw lands strictly below p[i], so a
// zero-probability day can never count as rainy and a certain day always
// does (Float64 returns values in [0, 1)).
func simulateYear(p []float64, src *rand.Rand) int {
	rainy := 0
	for _, pi := range p {
		if src.Float64() < pi {
			rainy++
		}
	}
	return rainy
}

// EstimateProbMoreThanNParallel is EstimateProbMoreThanN with the trials
// split across an ants worker pool. Each worker owns a rand.Rand derived
// from seed, so workers never contend on a shared source; partial exceed
// counts merge through a single atomic counter. workers <= 0 selects
// GOMAXPROCS. Results are reproducible for a fixed (seed, workers) pair.
func EstimateProbMoreThanNParallel(p []float64, n, trials, workers int, seed int64) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}
	if trials <= 0 {
		return 0, fmt.Errorf("trials=%d: %w", trials, ErrInvalidTrialCount)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > trials {
		workers = trials
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, fmt.Errorf("creating simulation pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		exceeded int64
	)
	base := trials / workers
	extra := trials % workers
	for w := 0; w < workers; w++ {
		chunk := base
		if w < extra {
			chunk++
		}
		src := rand.New(rand.NewSource(seed + int64(w)))
		wg.Add(1)
		task := func() {
			defer wg.Done()
			hits := 0
			for t := 0; t < chunk; t++ {
				if simulateYear(p, src) > n {
					hits++
				}
			}
			atomic.AddInt64(&exceeded, int64(hits))
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			wg.Wait()
			return 0, fmt.Errorf("submitting simulation chunk: %w", err)
		}
	}
	wg.Wait()

	return float64(atomic.LoadInt64(&exceeded)) / float64(trials), nil
}

// StandardError returns the binomial standard error of a Monte Carlo
// estimate, sqrt(est*(1-est)/trials).
func StandardError(estimate float64, trials int) float64 {
	if trials <= 0 {
		return math.NaN()
	}
	return math.Sqrt(estimate * (1 - estimate) / float64(trials))
}
