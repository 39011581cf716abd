package sla

import "testing"

func TestPercentile_FixedSample(t *testing.T) {
	sample := []float64{10, 20, 30, 40, 50, 200}

	median, ok := Median(sample)
	if !ok {
		t.Fatal("expected a median")
	}
	if median != 35 {
		t.Fatalf("median: got %v, want 35", median)
	}

	// position = 0.9 * 5 = 4.5 → 50 + 0.5*(200-50) = 125
	p90, ok := Percentile(sample, 90)
	if !ok {
		t.Fatal("expected a p90")
	}
	if p90 != 125 {
		t.Fatalf("p90: got %v, want 125", p90)
	}
}

func TestPercentile_Empty(t *testing.T) {
	if _, ok := Percentile(nil, 50); ok {
		t.Fatal("empty input should report no value")
	}
}

func TestPercentile_SingleValue(t *testing.T) {
	for _, pct := range []float64{0, 50, 90, 100} {
		v, ok := Percentile([]float64{42}, pct)
		if !ok || v != 42 {
			t.Fatalf("pct %v: got %v ok=%v, want 42", pct, v, ok)
		}
	}
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	sample := []float64{30, 10, 20}
	if _, ok := Percentile(sample, 50); !ok {
		t.Fatal("expected a value")
	}
	if sample[0] != 30 || sample[1] != 10 || sample[2] != 20 {
		t.Fatalf("input mutated: %v", sample)
	}
}

func TestPercentile_Bounds(t *testing.T) {
	sample := []float64{10, 20, 30}
	if v, _ := Percentile(sample, 0); v != 10 {
		t.Fatalf("p0: got %v, want 10", v)
	}
	if v, _ := Percentile(sample, 100); v != 30 {
		t.Fatalf("p100: got %v, want 30", v)
	}
}
