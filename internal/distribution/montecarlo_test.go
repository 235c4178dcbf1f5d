package distribution

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestEstimateProbMoreThanNConverges(t *testing.T) {
	src := rand.New(rand.NewSource(17))
	p := randomProbabilities(30, src)
	n := 12
	trials := 100000

	exact, err := ProbMoreThanN(p, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	estimate, err := EstimateProbMoreThanN(p, n, trials, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Worst-case binomial standard error is 0.5/sqrt(trials); five of those
	// is a generous deterministic bound for a fixed seed.
	tolerance := 5 * 0.5 / math.Sqrt(float64(trials))
	if math.Abs(estimate-exact) > tolerance {
		t.Errorf("estimate %v differs from exact %v by more than %v", estimate, exact, tolerance)
	}
}

func TestEstimateProbMoreThanNDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		p        []float64
		n        int
		expected float64
	}{
		{
			name:     "always rains",
			p:        []float64{1, 1, 1, 1},
			n:        3,
			expected: 1.0,
		},
		{
			name:     "never rains",
			p:        []float64{0, 0, 0, 0},
			n:        0,
			expected: 0.0,
		},
		{
			name:     "negative threshold always exceeded",
			p:        []float64{0, 0},
			n:        -1,
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Degenerate vectors leave nothing to chance, so any seed must
			// produce the exact answer.
			got, err := EstimateProbMoreThanN(tt.p, tt.n, 500, rand.New(rand.NewSource(5)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestEstimateProbMoreThanNInvalidArguments(t *testing.T) {
	if _, err := EstimateProbMoreThanN([]float64{0.5}, 0, 0, nil); !errors.Is(err, ErrInvalidTrialCount) {
		t.Errorf("trials=0: expected ErrInvalidTrialCount, got %v", err)
	}
	if _, err := EstimateProbMoreThanN([]float64{0.5}, 0, -10, nil); !errors.Is(err, ErrInvalidTrialCount) {
		t.Errorf("trials=-10: expected ErrInvalidTrialCount, got %v", err)
	}
	if _, err := EstimateProbMoreThanN([]float64{1.5}, 0, 100, nil); !errors.Is(err, ErrInvalidProbability) {
		t.Errorf("p=1.5: expected ErrInvalidProbability, got %v", err)
	}
	if _, err := EstimateProbMoreThanNParallel([]float64{0.5}, 0, 0, 4, 1); !errors.Is(err, ErrInvalidTrialCount) {
		t.Errorf("parallel trials=0: expected ErrInvalidTrialCount, got %v", err)
	}
}

func TestEstimateProbMoreThanNParallel(t *testing.T) {
	src := rand.New(rand.NewSource(29))
	p := randomProbabilities(30, src)
	n := 14
	trials := 100000

	exact, err := ProbMoreThanN(p, n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	estimate, err := EstimateProbMoreThanNParallel(p, n, trials, 8, 1234)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tolerance := 5 * 0.5 / math.Sqrt(float64(trials))
	if math.Abs(estimate-exact) > tolerance {
		t.Errorf("parallel estimate %v differs from exact %v by more than %v", estimate, exact, tolerance)
	}
}

func TestEstimateProbMoreThanNParallelReproducible(t *testing.T) {
	p := []float64{0.2, 0.8, 0.5, 0.5, 0.9}

	first, err := EstimateProbMoreThanNParallel(p, 2, 10000, 4, 77)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := EstimateProbMoreThanNParallel(p, 2, 10000, 4, 77)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("same seed and worker count produced %v then %v", first, second)
	}
}

func TestEstimateProbMoreThanNParallelFewTrials(t *testing.T) {
	// More workers than trials must still run every trial exactly once.
	got, err := EstimateProbMoreThanNParallel([]float64{1, 1}, 1, 3, 16, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.0 {
		t.Errorf("expected 1.0, got %v", got)
	}
}

func TestStandardError(t *testing.T) {
	if got := StandardError(0.5, 10000); math.Abs(got-0.005) > 1e-12 {
		t.Errorf("expected 0.005, got %v", got)
	}
	if got := StandardError(0, 100); got != 0 {
		t.Errorf("expected 0 for a zero estimate, got %v", got)
	}
	if got := StandardError(0.5, 0); !math.IsNaN(got) {
		t.Errorf("expected NaN for zero trials, got %v", got)
	}
}
