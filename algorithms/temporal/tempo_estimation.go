package temporal

import (
	"github.com/mveldt/beatframe/algorithms/common"
)

// TempoEstimation estimates tempo and beat positions from an audio signal
type TempoEstimation struct {
	onsetDetector *OnsetDetection
}

// TempoResult holds the outcome of beat tracking
type TempoResult struct {
	BPM       float64   `json:"bpm"`        // Estimated tempo in beats per minute, 0 when undetectable
	BeatTimes []float64 `json:"beat_times"` // Beat timestamps in seconds
}

const (
	minTrackableBPM = 40.0
	maxTrackableBPM = 240.0
)

// NewTempoEstimation creates a new tempo estimator
func NewTempoEstimation() *TempoEstimation {
	return &TempoEstimation{
		onsetDetector: NewOnsetDetection(),
	}
}

// EstimateTempo estimates BPM from the autocorrelation of the onset-strength
// envelope and picks beat timestamps at the detected period. A signal with no
// detectable periodicity (silence, sustained tones) yields BPM 0 and no beats.
func (te *TempoEstimation) EstimateTempo(signal []float64, sampleRate, windowSize, hopSize int) (*TempoResult, error) {
	envelope, err := te.onsetDetector.ComputeStrength(signal, sampleRate, windowSize, hopSize)
	if err != nil {
		return nil, err
	}

	if len(envelope) < 4 {
		return &TempoResult{}, nil
	}

	timePerFrame := float64(hopSize) / float64(sampleRate)
	bpm, periodFrames := te.tempoFromAutocorrelation(envelope, timePerFrame)
	if bpm == 0 {
		return &TempoResult{}, nil
	}

	// Beats must be at least ~80% of a period apart
	minInterval := int(0.8 * float64(periodFrames))
	if minInterval < 1 {
		minInterval = 1
	}

	peakFrames := te.onsetDetector.PickPeaks(envelope, minInterval)

	beatTimes := make([]float64, len(peakFrames))
	for i, frame := range peakFrames {
		beatTimes[i] = float64(frame) * timePerFrame
	}

	return &TempoResult{
		BPM:       bpm,
		BeatTimes: beatTimes,
	}, nil
}

// tempoFromAutocorrelation searches the onset envelope autocorrelation for the
// strongest periodicity in the trackable BPM range
func (te *TempoEstimation) tempoFromAutocorrelation(envelope []float64, timePerFrame float64) (float64, int) {
	autocorr := te.autocorrelation(envelope, len(envelope)/2)
	if len(autocorr) < 4 {
		return 0, 0
	}

	minLag := int((60.0 / maxTrackableBPM) / timePerFrame)
	maxLag := int((60.0 / minTrackableBPM) / timePerFrame)

	minLag = common.ClampInt(minLag, 1, len(autocorr)-2)
	maxLag = common.ClampInt(maxLag, minLag, len(autocorr)-2)

	maxVal := 0.0
	bestLag := 0

	for lag := minLag; lag <= maxLag; lag++ {
		if autocorr[lag] > autocorr[lag-1] &&
			autocorr[lag] > autocorr[lag+1] &&
			autocorr[lag] > maxVal {
			maxVal = autocorr[lag]
			bestLag = lag
		}
	}

	if bestLag == 0 || maxVal <= 0 {
		return 0, 0
	}

	period := float64(bestLag) * timePerFrame
	return 60.0 / period, bestLag
}

// autocorrelation calculates the normalized autocorrelation function
func (te *TempoEstimation) autocorrelation(signal []float64, maxLag int) []float64 {
	if maxLag > len(signal) {
		maxLag = len(signal)
	}

	autocorr := make([]float64, maxLag)

	for lag := 0; lag < maxLag; lag++ {
		sum := 0.0
		count := 0

		for i := 0; i < len(signal)-lag; i++ {
			sum += signal[i] * signal[i+lag]
			count++
		}

		if count > 0 {
			autocorr[lag] = sum / float64(count)
		}
	}

	if len(autocorr) > 0 && autocorr[0] > 0 {
		for i := range autocorr {
			autocorr[i] /= autocorr[0]
		}
	}

	return autocorr
}
