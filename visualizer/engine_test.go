package visualizer

import (
	"image"
	"testing"
)

// testEngine builds an engine around synthetic audio without touching ffmpeg
func testEngine(t *testing.T, duration, fps int, effects Effects) *Engine {
	t.Helper()

	cache, err := newFeatureCache(testAudio(float64(duration)))
	if err != nil {
		t.Fatalf("cache construction failed: %v", err)
	}

	background := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	for i := 0; i < len(background.Pix); i += 4 {
		background.Pix[i] = 80
		background.Pix[i+1] = 120
		background.Pix[i+2] = 160
		background.Pix[i+3] = 0xff
	}

	return &Engine{
		config:     Config{Duration: duration, Effects: effects},
		fps:        fps,
		background: background,
		cache:      cache,
	}
}

func TestFrameCount(t *testing.T) {
	engine := testEngine(t, 5, 30, Effects{Pulse: true})

	if got := engine.FrameCount(); got != 150 {
		t.Errorf("expected 150 frames for 5 s at 30 fps, got %d", got)
	}
}

func TestFrameCountCustomFPS(t *testing.T) {
	engine := testEngine(t, 3, 24, Effects{})

	if got := engine.FrameCount(); got != 72 {
		t.Errorf("expected 72 frames for 3 s at 24 fps, got %d", got)
	}
}

func TestFrameAtDimensions(t *testing.T) {
	engine := testEngine(t, 5, 30, Effects{Pulse: true, Zoom: true, VHS: true, Waveform: true})

	for _, tm := range []float64{0, 1.5, 4.97} {
		frame := engine.FrameAt(tm)
		bounds := frame.Bounds()
		if bounds.Dx() != FrameWidth || bounds.Dy() != FrameHeight {
			t.Fatalf("t=%f: expected %dx%d, got %dx%d", tm, FrameWidth, FrameHeight, bounds.Dx(), bounds.Dy())
		}
		if len(frame.Pix) != FrameWidth*FrameHeight*4 {
			t.Fatalf("t=%f: unexpected pixel buffer length %d", tm, len(frame.Pix))
		}
	}
}

func TestFrameAtNoEffects(t *testing.T) {
	engine := testEngine(t, 5, 30, Effects{})

	frame := engine.FrameAt(1.0)
	if frame == engine.background {
		t.Fatal("expected a copy, not the shared background")
	}

	c := frame.RGBAAt(100, 100)
	if c.R != 80 || c.G != 120 || c.B != 160 {
		t.Errorf("expected untouched background color, got %+v", c)
	}
}

func TestFrameAtReservedSpectrumToggle(t *testing.T) {
	plain := testEngine(t, 5, 30, Effects{}).FrameAt(2.0)
	reserved := testEngine(t, 5, 30, Effects{Spectrum: true}).FrameAt(2.0)

	for i := range plain.Pix {
		if plain.Pix[i] != reserved.Pix[i] {
			t.Fatal("reserved spectrum toggle must not change frames")
		}
	}
}

func TestFrameAtPastAudioEnd(t *testing.T) {
	// Render longer than the audio: lookups clamp to the final feature frame
	engine := testEngine(t, 5, 30, Effects{Pulse: true, Waveform: true})
	engine.config.Duration = 8

	frame := engine.FrameAt(7.5)
	bounds := frame.Bounds()
	if bounds.Dx() != FrameWidth || bounds.Dy() != FrameHeight {
		t.Fatalf("expected %dx%d, got %dx%d", FrameWidth, FrameHeight, bounds.Dx(), bounds.Dy())
	}
}
