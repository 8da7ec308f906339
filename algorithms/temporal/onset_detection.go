package temporal

import (
	"github.com/mveldt/beatframe/algorithms/common"
	"github.com/mveldt/beatframe/algorithms/spectral"
	"github.com/mveldt/beatframe/algorithms/windowing"
)

// OnsetDetection derives note/event onset information from audio signals
type OnsetDetection struct {
	stft *spectral.STFT
	flux *spectral.SpectralFlux
}

// NewOnsetDetection creates a new onset detector
func NewOnsetDetection() *OnsetDetection {
	return &OnsetDetection{
		stft: spectral.NewSTFT(),
		flux: spectral.NewSpectralFlux(),
	}
}

// ComputeStrength computes the onset-strength envelope: half-wave rectified
// spectral flux over a Hann-windowed STFT. One value per analysis frame
// transition; an all-zero signal yields an all-zero envelope.
func (od *OnsetDetection) ComputeStrength(signal []float64, sampleRate, windowSize, hopSize int) ([]float64, error) {
	if len(signal) < windowSize {
		return []float64{}, nil
	}

	window := windowing.NewHann(windowSize, false)
	stftResult, err := od.stft.ComputeWithWindow(signal, windowSize, hopSize, sampleRate, window)
	if err != nil {
		return nil, err
	}

	return od.flux.Compute(stftResult.Magnitude), nil
}

// PickPeaks selects onset frames from a strength envelope using an adaptive
// threshold and a minimum spacing in frames
func (od *OnsetDetection) PickPeaks(envelope []float64, minInterval int) []int {
	if len(envelope) < 3 {
		return []int{}
	}

	threshold := common.Mean(envelope) + 0.5*common.PopulationStdDev(envelope)
	if threshold <= 0 {
		// Degenerate envelope (silence); a zero threshold would admit noise floor
		return []int{}
	}

	return common.FindPeaks(envelope, threshold, minInterval)
}
