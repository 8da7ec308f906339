package common

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("expected 2.5, got %f", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS([]float64{3, 4}); math.Abs(got-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("expected sqrt(12.5), got %f", got)
	}
	if got := RMS([]float64{0, 0, 0}); got != 0 {
		t.Errorf("expected 0 for silence, got %f", got)
	}
}

func TestPopulationStdDev(t *testing.T) {
	// Constant data has zero spread
	if got := PopulationStdDev([]float64{2, 2, 2, 2}); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}

	// {1, 3} has population variance 1
	if got := PopulationStdDev([]float64{1, 3}); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestDiff(t *testing.T) {
	got := Diff([]float64{1, 4, 9, 16})
	want := []float64{3, 5, 7}

	if len(got) != len(want) {
		t.Fatalf("expected %d diffs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("diff %d: expected %f, got %f", i, want[i], got[i])
		}
	}

	if got := Diff([]float64{5}); len(got) != 0 {
		t.Errorf("expected empty diff for single element, got %v", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(-3, 0, 10); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := ClampInt(15, 0, 10); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if got := ClampInt(7, 0, 10); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestFindPeaks(t *testing.T) {
	data := []float64{0, 1, 0, 0, 2, 0, 0, 0, 3, 0}

	peaks := FindPeaks(data, 0.5, 1)
	want := []int{1, 4, 8}

	if len(peaks) != len(want) {
		t.Fatalf("expected peaks %v, got %v", want, peaks)
	}
	for i := range want {
		if peaks[i] != want[i] {
			t.Errorf("peak %d: expected %d, got %d", i, want[i], peaks[i])
		}
	}
}

func TestFindPeaksMinDistance(t *testing.T) {
	data := []float64{0, 1, 0, 1, 0, 1, 0}

	// With spacing 4 only every other local max survives
	peaks := FindPeaks(data, 0.5, 4)
	want := []int{1, 5}

	if len(peaks) != len(want) {
		t.Fatalf("expected peaks %v, got %v", want, peaks)
	}
	for i := range want {
		if peaks[i] != want[i] {
			t.Errorf("peak %d: expected %d, got %d", i, want[i], peaks[i])
		}
	}
}

func TestFindPeaksMinHeight(t *testing.T) {
	data := []float64{0, 0.2, 0, 5, 0}

	peaks := FindPeaks(data, 1.0, 1)
	if len(peaks) != 1 || peaks[0] != 3 {
		t.Errorf("expected single peak at 3, got %v", peaks)
	}
}
