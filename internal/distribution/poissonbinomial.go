// Package distribution implements the Poisson-Binomial distribution: the
// distribution of the number of successes among independent Bernoulli trials
// with per-trial success probabilities. For a year of daily rain
// probabilities, this answers "what is the chance it rains on more than n
// days?" exactly, without enumerating the 2^365 possible outcomes.
//
// All entry points validate their probability vector eagerly and return
// ErrInvalidProbability rather than propagating garbage through the
// convolution.
package distribution

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidProbability indicates a probability outside [0, 1] or NaN.
	ErrInvalidProbability = errors.New("probability outside [0, 1]")

	// ErrInvalidTrialCount indicates a non-positive Monte Carlo trial count.
	ErrInvalidTrialCount = errors.New("trial count must be positive")
)

// validate checks every entry of p against the [0, 1] contract.
func validate(p []float64) error {
	for i, pi := range p {
		if math.IsNaN(pi) || pi < 0 || pi > 1 {
			return fmt.Errorf("day %d: p=%v: %w", i, pi, ErrInvalidProbability)
		}
	}
	return nil
}

// ComputePMF returns the exact probability mass function of the sum of
// len(p) independent Bernoulli trials with success probabilities p. The
// result has len(p)+1 entries; entry k is the probability of exactly k
// successes. An empty p yields the zero-trial distribution [1].
func ComputePMF(p []float64) ([]float64, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	return convolve(p), nil
}

// convolve runs the incremental Bernoulli convolution without validating p.
// pmf starts as the zero-trial distribution and folds one day in per pass:
//
//	pmf[k] = p[i]*pmf[k-1] + (1-p[i])*pmf[k]
//
// The inner loop must walk k downward. pmf[k] reads pmf[k-1] from the
// previous day's distribution, so a forward walk would consume a value the
// current pass already overwrote. Entry i+1 is still zero when day i is
// folded in, which gives the top edge pmf[i+1] = p[i]*pmf[i] for free.
func convolve(p []float64) []float64 {
	pmf := make([]float64, len(p)+1)
	pmf[0] = 1
	for i, pi := range p {
		qi := 1 - pi
		for k := i + 1; k > 0; k-- {
			pmf[k] = pi*pmf[k-1] + qi*pmf[k]
		}
		pmf[0] = qi * pmf[0]
	}
	return pmf
}

// ProbMoreThanN returns the exact probability that more than n of the len(p)
// trials succeed, that is P(S > n).
//
// Thresholds outside the support degenerate rather than fail: n >= len(p)
// yields 0 (you cannot exceed the number of trials) and n < 0 yields 1 (a
// non-negative count always exceeds a negative threshold). This keeps the
// tail non-increasing in n over all integers; the common case runs the full
// convolution and sums the upper tail.
func ProbMoreThanN(p []float64, n int) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}
	switch {
	case n < 0:
		return 1, nil
	case n >= len(p):
		return 0, nil
	}
	pmf := convolve(p)
	return floats.Sum(pmf[n+1:]), nil
}
