package features

import (
	"github.com/mveldt/beatframe/algorithms/chroma"
	"github.com/mveldt/beatframe/algorithms/common"
	"github.com/mveldt/beatframe/algorithms/spectral"
	"github.com/mveldt/beatframe/algorithms/temporal"
	"github.com/mveldt/beatframe/algorithms/windowing"
	"github.com/mveldt/beatframe/logging"
	"github.com/mveldt/beatframe/transcode"
)

// Analysis frame geometry, shared by the RMS, centroid and chroma passes
const (
	analysisWindowSize = 2048
	analysisHopSize    = 512
)

// Analyzer extracts a summary FeatureRecord from an audio file.
// It composes the envelope, tempo, centroid and chroma algorithms over a
// single decoded mono waveform.
type Analyzer struct {
	decoder *transcode.Decoder
	logger  logging.Logger
}

// NewAnalyzer creates a feature analyzer using the given decoder
// configuration (nil for defaults)
func NewAnalyzer(decoderConfig *transcode.DecoderConfig) *Analyzer {
	return &Analyzer{
		decoder: transcode.NewDecoder(decoderConfig),
		logger: logging.WithFields(logging.Fields{
			"component": "feature_analyzer",
		}),
	}
}

// Analyze decodes the file at audioPath and extracts its feature record.
// It never returns a Go error: decode and numerical failures are converted
// into an error-valued Result, which is the contract callers depend on.
func (a *Analyzer) Analyze(audioPath string) (result Result) {
	logger := a.logger.WithFields(logging.Fields{
		"audio_path": audioPath,
	})

	defer func() {
		if r := recover(); r != nil {
			logger.Error(nil, "Analysis panicked", logging.Fields{"panic": r})
			result = Errf("analysis failed: %v", r)
		}
	}()

	audio, err := a.decoder.DecodeFile(audioPath)
	if err != nil {
		logger.Error(err, "Audio decode failed")
		return Errf("decode failed: %v", err)
	}

	return a.AnalyzePCM(audio)
}

// AnalyzePCM extracts the feature record from already-decoded audio
func (a *Analyzer) AnalyzePCM(audio *transcode.AudioData) Result {
	if audio == nil || len(audio.PCM) == 0 {
		return Errf("empty audio signal")
	}
	if audio.SampleRate <= 0 {
		return Errf("invalid sample rate: %d", audio.SampleRate)
	}

	signal := audio.PCM
	sampleRate := audio.SampleRate
	durationSec := audio.DurationSeconds()

	logger := a.logger.WithFields(logging.Fields{
		"samples":     len(signal),
		"sample_rate": sampleRate,
	})
	logger.Debug("Starting feature extraction")

	// Tempo and beat positions
	tempoEstimator := temporal.NewTempoEstimation()
	tempoResult, err := tempoEstimator.EstimateTempo(signal, sampleRate, analysisWindowSize, analysisHopSize)
	if err != nil {
		return Errf("tempo estimation failed: %v", err)
	}

	tempoStability := 0.0
	if len(tempoResult.BeatTimes) >= 2 {
		intervals := common.Diff(tempoResult.BeatTimes)
		tempoStability = 1.0 - common.PopulationStdDev(intervals)
		if len(intervals) == 1 {
			// A single interval has zero spread
			tempoStability = 1.0
		}
	}

	// Short-time energy
	envelope := temporal.NewEnvelope()
	rmsEnvelope := envelope.ComputeRMS(signal, analysisWindowSize, analysisHopSize)

	energyRMS := common.Mean(rmsEnvelope)
	dynamicRange := common.Max(rmsEnvelope) - common.Min(rmsEnvelope)

	// Brightness
	window := windowing.NewHann(analysisWindowSize, false)
	stft := spectral.NewSTFT()
	stftResult, err := stft.ComputeWithWindow(signal, analysisWindowSize, analysisHopSize, sampleRate, window)
	brightness := 0.0
	if err == nil {
		centroid := spectral.NewSpectralCentroid(sampleRate)
		brightness = common.Mean(centroid.ComputeFrames(stftResult.Magnitude))
	}

	// Key detection: arg-max over the time-averaged chroma profile.
	// A dominance heuristic, not a full tonal-key estimator.
	chromaCalc := chroma.NewChromaSTFTDefault(sampleRate)
	chromagram, err := chromaCalc.ComputeChroma(signal, analysisWindowSize, analysisHopSize, window)
	key := chroma.PitchClasses[0]
	keyConfidence := 0.0
	if err == nil && len(chromagram) > 0 {
		profile := chromaCalc.MeanProfile(chromagram)
		bin, magnitude := chromaCalc.DominantBin(profile)
		key = chroma.PitchClasses[bin]
		keyConfidence = magnitude
	}

	logger.Debug("Feature extraction completed", logging.Fields{
		"bpm":      tempoResult.BPM,
		"key":      key,
		"duration": durationSec,
	})

	return Ok(&FeatureRecord{
		BPM:            tempoResult.BPM,
		Key:            key,
		KeyConfidence:  keyConfidence,
		EnergyRMS:      energyRMS,
		Brightness:     brightness,
		DynamicRange:   dynamicRange,
		TempoStability: tempoStability,
		DurationSec:    durationSec,
	})
}
