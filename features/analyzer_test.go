package features

import (
	"math"
	"testing"
	"time"

	"github.com/mveldt/beatframe/transcode"
)

func sineAudio(freq float64, sampleRate int, seconds float64) *transcode.AudioData {
	numSamples := int(float64(sampleRate) * seconds)
	pcm := make([]float64, numSamples)
	for i := range pcm {
		pcm[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return &transcode.AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Duration:   time.Duration(seconds * float64(time.Second)),
	}
}

func silentAudio(sampleRate int, seconds float64) *transcode.AudioData {
	numSamples := int(float64(sampleRate) * seconds)
	return &transcode.AudioData{
		PCM:        make([]float64, numSamples),
		SampleRate: sampleRate,
		Duration:   time.Duration(seconds * float64(time.Second)),
	}
}

func clickAudio(sampleRate, numSamples, periodSamples, offset int) *transcode.AudioData {
	pcm := make([]float64, numSamples)
	for i := offset; i < numSamples; i += periodSamples {
		pcm[i] = 1.0
	}
	return &transcode.AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Duration:   time.Duration(numSamples) * time.Second / time.Duration(sampleRate),
	}
}

func TestAnalyzePCMSilence(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	result := analyzer.AnalyzePCM(silentAudio(8000, 5))
	if result.Failed() {
		t.Fatalf("expected success for silence, got error: %s", result.Err)
	}

	record := result.Record
	if record.BPM != 0 {
		t.Errorf("expected BPM 0, got %f", record.BPM)
	}
	if record.TempoStability != 0 {
		t.Errorf("expected stability 0, got %f", record.TempoStability)
	}
	if record.EnergyRMS != 0 {
		t.Errorf("expected energy 0, got %f", record.EnergyRMS)
	}
	if record.DynamicRange != 0 {
		t.Errorf("expected dynamic range 0, got %f", record.DynamicRange)
	}
	if record.Brightness != 0 {
		t.Errorf("expected brightness 0, got %f", record.Brightness)
	}
	if record.Key != "C" {
		t.Errorf("expected default key C, got %s", record.Key)
	}
	if record.KeyConfidence != 0 {
		t.Errorf("expected confidence 0, got %f", record.KeyConfidence)
	}
	if math.Abs(record.DurationSec-5.0) > 1e-9 {
		t.Errorf("expected duration 5.0, got %f", record.DurationSec)
	}
}

func TestAnalyzePCMSine(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	result := analyzer.AnalyzePCM(sineAudio(440, 8000, 10))
	if result.Failed() {
		t.Fatalf("expected success, got error: %s", result.Err)
	}

	record := result.Record

	// 0.5 amplitude sine has RMS around 0.354
	if math.Abs(record.EnergyRMS-0.5/math.Sqrt2) > 0.01 {
		t.Errorf("expected energy near 0.354, got %f", record.EnergyRMS)
	}

	// A steady tone has almost no frame-to-frame level variation
	if record.DynamicRange > 0.05 {
		t.Errorf("expected flat dynamics, got range %f", record.DynamicRange)
	}

	// Centroid of a pure 440 Hz tone sits near 440
	if record.Brightness < 350 || record.Brightness > 550 {
		t.Errorf("expected brightness near 440 Hz, got %f", record.Brightness)
	}

	if record.Key != "A" {
		t.Errorf("expected key A for a 440 Hz tone, got %s", record.Key)
	}
	if record.KeyConfidence <= 0 {
		t.Errorf("expected positive key confidence, got %f", record.KeyConfidence)
	}

	if math.Abs(record.DurationSec-10.0) > 1e-9 {
		t.Errorf("expected duration 10.0, got %f", record.DurationSec)
	}
}

func TestAnalyzePCMClickTrain(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	// One click every 1.024 s at 8 kHz, offset off the hop grid
	result := analyzer.AnalyzePCM(clickAudio(8000, 160000, 8192, 256))
	if result.Failed() {
		t.Fatalf("expected success, got error: %s", result.Err)
	}

	record := result.Record

	wantBPM := 60.0 / 1.024
	if math.Abs(record.BPM-wantBPM) > 5.0 {
		t.Errorf("expected around %.1f BPM, got %f", wantBPM, record.BPM)
	}

	// Perfectly periodic clicks give maximal tempo stability
	if record.TempoStability < 0.9 {
		t.Errorf("expected stability near 1, got %f", record.TempoStability)
	}
}

func TestAnalyzePCMEmptySignal(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	if result := analyzer.AnalyzePCM(&transcode.AudioData{SampleRate: 8000}); !result.Failed() {
		t.Error("expected failure for empty signal")
	}
	if result := analyzer.AnalyzePCM(nil); !result.Failed() {
		t.Error("expected failure for nil audio")
	}
}

func TestAnalyzePCMInvalidSampleRate(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	audio := &transcode.AudioData{PCM: make([]float64, 1000)}
	if result := analyzer.AnalyzePCM(audio); !result.Failed() {
		t.Error("expected failure for missing sample rate")
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	result := analyzer.Analyze("/nonexistent/audio.mp3")
	if !result.Failed() {
		t.Fatal("expected failure for missing file")
	}
	if result.Err == "" {
		t.Error("expected error message in result")
	}
	if result.Record != nil {
		t.Error("expected nil record on failure")
	}
}

func TestAnalyzeShortClip(t *testing.T) {
	analyzer := NewAnalyzer(nil)

	// Shorter than one analysis window; must degrade, not fail
	result := analyzer.AnalyzePCM(sineAudio(440, 8000, 0.1))
	if result.Failed() {
		t.Fatalf("expected success for short clip, got error: %s", result.Err)
	}

	record := result.Record
	if record.BPM != 0 {
		t.Errorf("expected BPM 0 for sub-window clip, got %f", record.BPM)
	}
	if record.EnergyRMS <= 0 {
		t.Errorf("expected positive energy, got %f", record.EnergyRMS)
	}
}
