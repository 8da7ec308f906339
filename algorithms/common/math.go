package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared across algorithms, using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// PopulationStdDev calculates the population standard deviation (divides by n).
// Frame-wise feature summaries use this form rather than the sample estimator.
func PopulationStdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	mean := Mean(data)
	sum := 0.0
	for _, v := range data {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(data)))
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}

	return math.Sqrt(sumSquares / float64(len(data)))
}

// Max returns the maximum value of a non-empty slice, 0 otherwise
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data)
}

// Min returns the minimum value of a non-empty slice, 0 otherwise
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Min(data)
}

// Diff returns consecutive differences data[i+1]-data[i]
func Diff(data []float64) []float64 {
	if len(data) < 2 {
		return []float64{}
	}

	diffs := make([]float64, len(data)-1)
	for i := range diffs {
		diffs[i] = data[i+1] - data[i]
	}
	return diffs
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampInt constrains an integer to a range
func ClampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// FindPeaks finds local maxima in data at least minHeight tall and
// minDistance indices apart
func FindPeaks(data []float64, minHeight float64, minDistance int) []int {
	if len(data) < 3 {
		return []int{}
	}

	var peaks []int
	lastPeak := -minDistance

	for i := 1; i < len(data)-1; i++ {
		if data[i] > data[i-1] && data[i] > data[i+1] &&
			data[i] >= minHeight &&
			i-lastPeak >= minDistance {
			peaks = append(peaks, i)
			lastPeak = i
		}
	}

	return peaks
}
