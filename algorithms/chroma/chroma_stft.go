package chroma

import (
	"math"

	"github.com/mveldt/beatframe/algorithms/spectral"
)

// ChromaSTFT computes a chromagram using the Short-Time Fourier Transform:
// spectral energy folded onto the 12 semitone pitch classes
// (C, C#, D, D#, E, F, F#, G, G#, A, A#, B), octave-independent,
// with adjustable tuning (default A4=440Hz).
type ChromaSTFT struct {
	sampleRate int
	stft       *spectral.STFT
	tuningFreq float64 // A4 frequency
	chromaBins int     // Always 12
	minFreq    float64 // Minimum frequency to consider
	maxFreq    float64 // Maximum frequency to consider
}

// PitchClasses are the chroma bin labels, bin 0 = C
var PitchClasses = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NewChromaSTFT creates a new STFT-based chromagram calculator
func NewChromaSTFT(sampleRate int, tuningFreq float64) *ChromaSTFT {
	return &ChromaSTFT{
		sampleRate: sampleRate,
		stft:       spectral.NewSTFT(),
		tuningFreq: tuningFreq,
		chromaBins: 12,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
	}
}

// NewChromaSTFTDefault creates a chromagram calculator with standard A4=440Hz tuning
func NewChromaSTFTDefault(sampleRate int) *ChromaSTFT {
	return NewChromaSTFT(sampleRate, 440.0)
}

// ComputeChroma computes the chromagram (time x 12) from an audio signal
func (cs *ChromaSTFT) ComputeChroma(signal []float64, windowSize, hopSize int, window spectral.Window) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, nil
	}

	stftResult, err := cs.stft.ComputeWithWindow(signal, windowSize, hopSize, cs.sampleRate, window)
	if err != nil {
		return nil, err
	}

	return cs.convertSTFTToChroma(stftResult), nil
}

// MeanProfile averages a chromagram across time into a single 12-bin profile
func (cs *ChromaSTFT) MeanProfile(chromagram [][]float64) []float64 {
	profile := make([]float64, cs.chromaBins)
	if len(chromagram) == 0 {
		return profile
	}

	for t := range chromagram {
		for bin := range chromagram[t] {
			profile[bin] += chromagram[t][bin]
		}
	}
	for bin := range profile {
		profile[bin] /= float64(len(chromagram))
	}

	return profile
}

// DominantBin returns the arg-max bin of a chroma profile and its magnitude.
// This is a deliberately simple heuristic: no key-profile correlation and no
// major/minor discrimination, just pitch-class dominance.
func (cs *ChromaSTFT) DominantBin(profile []float64) (int, float64) {
	maxBin := 0
	maxEnergy := 0.0

	for bin, energy := range profile {
		if energy > maxEnergy {
			maxEnergy = energy
			maxBin = bin
		}
	}

	return maxBin, maxEnergy
}

// convertSTFTToChroma folds an STFT magnitude spectrogram onto chroma bins
func (cs *ChromaSTFT) convertSTFTToChroma(stftResult *spectral.STFTResult) [][]float64 {
	chromagram := make([][]float64, stftResult.TimeFrames)

	chromaMapping := cs.calculateChromaMapping(stftResult.FreqBins, stftResult.FreqResolution)

	for t := 0; t < stftResult.TimeFrames; t++ {
		chromagram[t] = make([]float64, cs.chromaBins)

		for f := 0; f < stftResult.FreqBins; f++ {
			magnitude := stftResult.Magnitude[t][f]
			chromaBin := chromaMapping[f]

			if chromaBin >= 0 && chromaBin < cs.chromaBins {
				// Use magnitude squared for energy
				chromagram[t][chromaBin] += magnitude * magnitude
			}
		}

		cs.normalizeChromaFrame(chromagram[t])
	}

	return chromagram
}

// calculateChromaMapping maps FFT bins to chroma bins
func (cs *ChromaSTFT) calculateChromaMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := 0; f < freqBins; f++ {
		frequency := float64(f) * freqResolution

		if frequency < cs.minFreq || frequency > cs.maxFreq {
			mapping[f] = -1 // Outside valid range
			continue
		}

		midiNote := cs.frequencyToMIDI(frequency)

		chromaBin := int(math.Round(midiNote)) % 12
		mapping[f] = chromaBin
	}

	return mapping
}

// frequencyToMIDI converts frequency to MIDI note number.
// A4 (440 Hz) = MIDI note 69.
func (cs *ChromaSTFT) frequencyToMIDI(frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}

	return 69.0 + 12.0*math.Log2(frequency/cs.tuningFreq)
}

// normalizeChromaFrame scales a chroma frame so its maximum bin is 1
func (cs *ChromaSTFT) normalizeChromaFrame(chromaFrame []float64) {
	maxEnergy := 0.0
	for _, energy := range chromaFrame {
		if energy > maxEnergy {
			maxEnergy = energy
		}
	}

	if maxEnergy > 1e-10 {
		for i := range chromaFrame {
			chromaFrame[i] /= maxEnergy
		}
	}
}

// SetTuning updates the tuning frequency (A4)
func (cs *ChromaSTFT) SetTuning(tuningFreq float64) {
	cs.tuningFreq = tuningFreq
}
