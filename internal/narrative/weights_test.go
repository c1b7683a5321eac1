package narrative

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Run("rescales preserving relative weights", func(t *testing.T) {
		targets := []Target{
			{EventID: "a", Probability: 2},
			{EventID: "b", Probability: 1},
			{EventID: "c", Probability: 1},
		}
		Normalize(targets)
		if !Normalized(targets) {
			t.Fatalf("expected normalized sum, got %v", ProbabilitySum(targets))
		}
		if math.Abs(targets[0].Probability-0.5) > SumTolerance {
			t.Fatalf("expected first weight 0.5, got %v", targets[0].Probability)
		}
		if math.Abs(targets[1].Probability-0.25) > SumTolerance {
			t.Fatalf("expected second weight 0.25, got %v", targets[1].Probability)
		}
	})

	t.Run("zero sum falls back to equal weights", func(t *testing.T) {
		targets := []Target{{EventID: "a"}, {EventID: "b"}}
		Normalize(targets)
		for i, target := range targets {
			if math.Abs(target.Probability-0.5) > SumTolerance {
				t.Fatalf("target %d: expected 0.5, got %v", i, target.Probability)
			}
		}
	})

	t.Run("single target becomes certain", func(t *testing.T) {
		targets := []Target{{EventID: "a", Probability: 0.3}}
		Normalize(targets)
		if math.Abs(targets[0].Probability-1) > SumTolerance {
			t.Fatalf("expected 1.0, got %v", targets[0].Probability)
		}
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		Normalize(nil)
		Normalize([]Target{})
	})

	t.Run("idempotent once normalized", func(t *testing.T) {
		targets := []Target{
			{EventID: "a", Probability: 0.7},
			{EventID: "b", Probability: 0.3},
		}
		Normalize(targets)
		first := append([]Target(nil), targets...)
		Normalize(targets)
		for i := range targets {
			if math.Abs(targets[i].Probability-first[i].Probability) > SumTolerance {
				t.Fatalf("target %d drifted: %v vs %v", i, targets[i].Probability, first[i].Probability)
			}
		}
	})
}

func TestEvenDistribution(t *testing.T) {
	t.Run("assigns equal share regardless of prior weights", func(t *testing.T) {
		targets := []Target{
			{EventID: "a", Probability: 0.9},
			{EventID: "b", Probability: 0.05},
			{EventID: "c", Probability: 0.05},
		}
		EvenDistribution(targets)
		for i, target := range targets {
			if math.Abs(target.Probability-1.0/3) > SumTolerance {
				t.Fatalf("target %d: expected 1/3, got %v", i, target.Probability)
			}
		}
		if !Normalized(targets) {
			t.Fatalf("expected normalized sum, got %v", ProbabilitySum(targets))
		}
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		EvenDistribution(nil)
	})
}

func TestNormalized(t *testing.T) {
	if !Normalized(nil) {
		t.Fatalf("empty list should count as normalized")
	}
	within := []Target{{Probability: 0.5}, {Probability: 0.5 + 1e-12}}
	if !Normalized(within) {
		t.Fatalf("sum within tolerance should count as normalized")
	}
	outside := []Target{{Probability: 0.5}, {Probability: 0.6}}
	if Normalized(outside) {
		t.Fatalf("sum 1.1 should not count as normalized")
	}
}
