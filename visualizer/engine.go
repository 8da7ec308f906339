package visualizer

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"

	"github.com/mveldt/beatframe/logging"
	"github.com/mveldt/beatframe/transcode"
)

// Output canvas geometry. Fixed, not caller-configurable.
const (
	FrameWidth  = 1280
	FrameHeight = 720

	DefaultFPS = 30
)

// Config holds the construction options for a render job
type Config struct {
	ImagePath string // Still image source
	AudioPath string // Audio source
	Duration  int    // Render duration in seconds
	FPS       int    // Output frame rate, DefaultFPS when 0
	Effects   Effects

	Decoder *transcode.DecoderConfig // nil for defaults
	Encoder *transcode.EncoderConfig // nil for defaults
}

// Engine renders an audio-reactive video from a still image and a waveform.
// All audio features are precomputed at construction; each output frame is a
// pure function of elapsed time, the effect toggles and the cached features.
// One engine serves one render; instances share no state.
type Engine struct {
	config     Config
	fps        int
	background *image.RGBA
	cache      *featureCache
	encoder    *transcode.Encoder
	logger     logging.Logger
}

// NewEngine decodes the audio, loads and scales the still image, and
// precomputes the feature cache. Decode failures are fatal here, unlike the
// feature analyzer's error-as-data contract.
func NewEngine(config Config) (*Engine, error) {
	if config.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive: %d", config.Duration)
	}

	fps := config.FPS
	if fps == 0 {
		fps = DefaultFPS
	}
	if fps < 0 {
		return nil, fmt.Errorf("fps must be positive: %d", fps)
	}

	logger := logging.WithFields(logging.Fields{
		"component":  "visualizer_engine",
		"image_path": config.ImagePath,
		"audio_path": config.AudioPath,
	})

	decoder := transcode.NewDecoder(config.Decoder)
	audio, err := decoder.DecodeFile(config.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("audio decode failed: %w", err)
	}

	cache, err := newFeatureCache(audio)
	if err != nil {
		return nil, fmt.Errorf("feature precompute failed: %w", err)
	}

	background, err := loadBackground(config.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("image load failed: %w", err)
	}

	logger.Debug("Engine constructed", logging.Fields{
		"audio_duration": cache.audioDuration,
		"duration":       config.Duration,
		"fps":            fps,
	})

	return &Engine{
		config:     config,
		fps:        fps,
		background: background,
		cache:      cache,
		encoder:    transcode.NewEncoder(config.Encoder),
		logger:     logger,
	}, nil
}

// loadBackground decodes the still image and scales it to the output canvas
func loadBackground(imagePath string) (*image.RGBA, error) {
	img, err := gg.LoadImage(imagePath)
	if err != nil {
		return nil, err
	}

	scaled := resize.Resize(FrameWidth, FrameHeight, img, resize.Bilinear)

	background := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	draw.Draw(background, background.Bounds(), scaled, image.Point{}, draw.Src)
	return background, nil
}

// FrameCount returns the number of output frames for the configured
// duration and frame rate
func (e *Engine) FrameCount() int {
	return int(math.Round(float64(e.config.Duration) * float64(e.fps)))
}

// FrameAt renders the output frame for playback time t: the scaled still,
// the enabled geometric effects in fixed order (pulse, zoom, vhs), then the
// waveform overlay. Canvas dimensions are invariant across the chain.
func (e *Engine) FrameAt(t float64) *image.RGBA {
	frame := e.background

	if e.config.Effects.Pulse {
		frame = scaleCenter(frame, pulseScale(e.cache.RMSAt(t)))
	}

	if e.config.Effects.Zoom {
		frame = scaleCenter(frame, zoomScale(t))
	}

	if e.config.Effects.VHS {
		frame = shiftHorizontal(frame, vhsShift(t))
	}

	if e.config.Effects.Waveform {
		overlay := waveformOverlay(e.cache.SpectrumAt(t), FrameWidth, FrameHeight)
		frame = blendOverlay(frame, overlay)
	}

	// e.config.Effects.Spectrum is reserved; no rendering behavior yet

	if frame == e.background {
		// No effect touched the frame; hand the encoder its own copy
		copied := image.NewRGBA(frame.Bounds())
		copy(copied.Pix, frame.Pix)
		frame = copied
	}

	return frame
}

// Build renders every frame, streams them to the encoder and muxes in the
// source audio trimmed to the configured duration. Returns the output path
// on success. A failure during any frame aborts the whole render; there is
// no partial output.
func (e *Engine) Build(outputPath string) (string, error) {
	frameCount := e.FrameCount()

	logger := e.logger.WithFields(logging.Fields{
		"output":      outputPath,
		"frame_count": frameCount,
	})
	logger.Info("Starting render")

	session, err := e.encoder.Start(outputPath, e.config.AudioPath, FrameWidth, FrameHeight, e.fps, float64(e.config.Duration))
	if err != nil {
		return "", fmt.Errorf("encoder start failed: %w", err)
	}

	for i := 0; i < frameCount; i++ {
		t := float64(i) / float64(e.fps)
		frame := e.FrameAt(t)

		if err := session.WriteFrame(frame.Pix); err != nil {
			session.Abort()
			return "", fmt.Errorf("frame %d failed: %w", i, err)
		}
	}

	if err := session.Close(); err != nil {
		return "", err
	}

	logger.Info("Render completed")
	return outputPath, nil
}
