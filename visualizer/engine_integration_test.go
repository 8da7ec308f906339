package visualizer

import (
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/fogleman/gg"

	"github.com/mveldt/beatframe/transcode"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

// makeTestInputs synthesizes a sine-tone wav and a solid still image
func makeTestInputs(t *testing.T, dir string, seconds int) (imagePath, audioPath string) {
	t.Helper()

	audioPath = filepath.Join(dir, "tone.wav")
	cmd := exec.Command("ffmpeg", "-y", "-v", "error",
		"-f", "lavfi", "-i", "sine=frequency=440:duration="+strconv.Itoa(seconds),
		"-ar", "8000", audioPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("test audio generation failed: %v: %s", err, out)
	}

	imagePath = filepath.Join(dir, "still.png")
	dc := gg.NewContext(320, 200)
	dc.SetRGB255(40, 90, 140)
	dc.Clear()
	if err := dc.SavePNG(imagePath); err != nil {
		t.Fatalf("test image generation failed: %v", err)
	}

	return imagePath, audioPath
}

func TestBuildEndToEnd(t *testing.T) {
	skipIfNoFFmpeg(t)
	if testing.Short() {
		t.Skip("skipping render in short mode")
	}

	dir := t.TempDir()
	imagePath, audioPath := makeTestInputs(t, dir, 2)

	engine, err := NewEngine(Config{
		ImagePath: imagePath,
		AudioPath: audioPath,
		Duration:  2,
		FPS:       10,
		Effects:   Effects{Pulse: true, Waveform: true},
	})
	if err != nil {
		t.Fatalf("engine construction failed: %v", err)
	}

	if got := engine.FrameCount(); got != 20 {
		t.Errorf("expected 20 frames for 2 s at 10 fps, got %d", got)
	}

	outputPath := filepath.Join(dir, "out.mp4")
	path, err := engine.Build(outputPath)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if path != outputPath {
		t.Errorf("expected returned path %q, got %q", outputPath, path)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("output file is empty")
	}

	// The muxed audio stream must carry the configured duration
	decoder := transcode.NewDecoder(nil)
	metadata, err := decoder.ProbeFile(outputPath)
	if err != nil {
		t.Fatalf("probe of output failed: %v", err)
	}
	if metadata.Codec != "aac" {
		t.Errorf("expected aac audio, got %s", metadata.Codec)
	}
	if math.Abs(metadata.Duration-2.0) > 0.5 {
		t.Errorf("expected about 2 s of audio, got %f", metadata.Duration)
	}
}

func TestNewEngineMissingAudio(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	imagePath, _ := makeTestInputs(t, dir, 1)

	_, err := NewEngine(Config{
		ImagePath: imagePath,
		AudioPath: filepath.Join(dir, "missing.mp3"),
		Duration:  1,
	})
	if err == nil {
		t.Fatal("expected construction failure for missing audio")
	}
}

func TestNewEngineMissingImage(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	_, audioPath := makeTestInputs(t, dir, 1)

	_, err := NewEngine(Config{
		ImagePath: filepath.Join(dir, "missing.png"),
		AudioPath: audioPath,
		Duration:  1,
	})
	if err == nil {
		t.Fatal("expected construction failure for missing image")
	}
}

func TestNewEngineInvalidDuration(t *testing.T) {
	if _, err := NewEngine(Config{ImagePath: "x.png", AudioPath: "y.mp3", Duration: 0}); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, err := NewEngine(Config{ImagePath: "x.png", AudioPath: "y.mp3", Duration: -3}); err == nil {
		t.Error("expected error for negative duration")
	}
	if _, err := NewEngine(Config{ImagePath: "x.png", AudioPath: "y.mp3", Duration: 5, FPS: -1}); err == nil {
		t.Error("expected error for negative fps")
	}
}
