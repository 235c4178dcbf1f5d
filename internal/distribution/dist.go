package distribution

import "gonum.org/v1/gonum/floats"

// PoissonBinomial is the distribution of the number of successes among
// independent Bernoulli trials with per-trial probabilities. Construction
// runs the full convolution once; the query methods are O(1) or O(D) slice
// walks over the cached mass function.
type PoissonBinomial struct {
	p   []float64
	pmf []float64
}

// NewPoissonBinomial builds the distribution for the given per-trial
// success probabilities. The input slice is copied; the caller keeps
// ownership of p.
func NewPoissonBinomial(p []float64) (*PoissonBinomial, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	cp := append([]float64(nil), p...)
	return &PoissonBinomial{p: cp, pmf: convolve(cp)}, nil
}

// NumTrials returns the number of Bernoulli trials D.
func (d *PoissonBinomial) NumTrials() int {
	return len(d.p)
}

// PMF returns a copy of the full probability mass function, indexed by
// success count 0..D.
func (d *PoissonBinomial) PMF() []float64 {
	return append([]float64(nil), d.pmf...)
}

// Prob returns the probability of exactly k successes. Counts outside
// [0, D] have probability zero.
func (d *PoissonBinomial) Prob(k int) float64 {
	if k < 0 || k >= len(d.pmf) {
		return 0
	}
	return d.pmf[k]
}

// CDF returns the probability of at most k successes.
func (d *PoissonBinomial) CDF(k int) float64 {
	switch {
	case k < 0:
		return 0
	case k >= len(d.p):
		return 1
	}
	return floats.Sum(d.pmf[:k+1])
}

// Survival returns the probability of strictly more than n successes,
// with the same degenerate-threshold convention as ProbMoreThanN.
func (d *PoissonBinomial) Survival(n int) float64 {
	switch {
	case n < 0:
		return 1
	case n >= len(d.p):
		return 0
	}
	return floats.Sum(d.pmf[n+1:])
}

// Mean returns the expected number of successes, sum of p[i].
func (d *PoissonBinomial) Mean() float64 {
	return floats.Sum(d.p)
}

// Variance returns the variance of the success count, sum of p[i]*(1-p[i]).
func (d *PoissonBinomial) Variance() float64 {
	var v float64
	for _, pi := range d.p {
		v += pi * (1 - pi)
	}
	return v
}
