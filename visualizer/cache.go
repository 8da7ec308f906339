package visualizer

import (
	"fmt"
	"math"

	"github.com/mveldt/beatframe/algorithms/common"
	"github.com/mveldt/beatframe/algorithms/spectral"
	"github.com/mveldt/beatframe/algorithms/temporal"
	"github.com/mveldt/beatframe/algorithms/windowing"
	"github.com/mveldt/beatframe/transcode"
)

// Spectrogram geometry for the reactive render pass
const (
	spectrogramWindowSize = 1024
	spectrogramHopSize    = 256

	envelopeWindowSize = 2048
	envelopeHopSize    = 512
)

// featureCache holds the audio features precomputed once at engine
// construction: onset-strength envelope, RMS envelope and magnitude
// spectrogram. All lookups map continuous playback time to the nearest
// analysis frame; nothing is mutated after construction.
type featureCache struct {
	onsetEnv      []float64
	rmsEnv        []float64
	spectrogram   [][]float64 // Time x Frequency
	audioDuration float64
}

// newFeatureCache precomputes all time-indexed features for a waveform
func newFeatureCache(audio *transcode.AudioData) (*featureCache, error) {
	if audio == nil || len(audio.PCM) == 0 {
		return nil, fmt.Errorf("empty audio signal")
	}

	onsetDetector := temporal.NewOnsetDetection()
	onsetEnv, err := onsetDetector.ComputeStrength(audio.PCM, audio.SampleRate, envelopeWindowSize, envelopeHopSize)
	if err != nil {
		return nil, fmt.Errorf("onset envelope failed: %w", err)
	}

	envelope := temporal.NewEnvelope()
	rmsEnv := envelope.ComputeRMS(audio.PCM, envelopeWindowSize, envelopeHopSize)

	spectrogram, err := computeSpectrogram(audio.PCM, audio.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("spectrogram failed: %w", err)
	}

	return &featureCache{
		onsetEnv:      onsetEnv,
		rmsEnv:        rmsEnv,
		spectrogram:   spectrogram,
		audioDuration: audio.DurationSeconds(),
	}, nil
}

// featureIndex maps playback time t to an analysis-frame index. The mapping
// is monotonically nondecreasing in t and always lands inside
// [0, featureLength-1], even when t slightly overshoots the audio duration.
func (fc *featureCache) featureIndex(t float64, featureLength int) int {
	if featureLength <= 0 {
		return 0
	}
	if fc.audioDuration <= 0 {
		return 0
	}

	idx := int(math.Round((t / fc.audioDuration) * float64(featureLength)))
	return common.ClampInt(idx, 0, featureLength-1)
}

// RMSAt returns the RMS envelope value nearest to time t
func (fc *featureCache) RMSAt(t float64) float64 {
	if len(fc.rmsEnv) == 0 {
		return 0
	}
	return fc.rmsEnv[fc.featureIndex(t, len(fc.rmsEnv))]
}

// OnsetAt returns the onset-strength value nearest to time t
func (fc *featureCache) OnsetAt(t float64) float64 {
	if len(fc.onsetEnv) == 0 {
		return 0
	}
	return fc.onsetEnv[fc.featureIndex(t, len(fc.onsetEnv))]
}

// SpectrumAt returns the magnitude-spectrogram column nearest to time t
func (fc *featureCache) SpectrumAt(t float64) []float64 {
	if len(fc.spectrogram) == 0 {
		return nil
	}
	return fc.spectrogram[fc.featureIndex(t, len(fc.spectrogram))]
}

// computeSpectrogram builds the magnitude spectrogram used by the waveform
// overlay. A clip shorter than one analysis window still yields one frame.
func computeSpectrogram(signal []float64, sampleRate int) ([][]float64, error) {
	stft := spectral.NewSTFT()

	windowSize := spectrogramWindowSize
	if len(signal) < windowSize {
		windowSize = len(signal)
	}

	window := windowing.NewHann(windowSize, false)
	result, err := stft.ComputeWithWindow(signal, windowSize, spectrogramHopSize, sampleRate, window)
	if err != nil {
		return nil, err
	}

	return result.Magnitude, nil
}
