package transcode

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/mveldt/beatframe/logging"
)

// EncoderConfig holds video encoder configuration
type EncoderConfig struct {
	FFmpegPath string `json:"ffmpeg_path"`
	VideoCodec string `json:"video_codec"`
	AudioCodec string `json:"audio_codec"`
	Preset     string `json:"preset"`
	CRF        int    `json:"crf"`
}

// DefaultEncoderConfig returns default encoder configuration:
// H.264 video with AAC audio, the widely compatible pairing
func DefaultEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		FFmpegPath: "ffmpeg",
		VideoCodec: "libx264",
		AudioCodec: "aac",
		Preset:     "medium",
		CRF:        23,
	}
}

// Encoder muxes a raw RGBA frame stream with an audio file into a single
// output container using FFmpeg
type Encoder struct {
	config *EncoderConfig
}

// NewEncoder creates a new video encoder
func NewEncoder(config *EncoderConfig) *Encoder {
	if config == nil {
		config = DefaultEncoderConfig()
	}
	return &Encoder{config: config}
}

// EncodeSession is a running ffmpeg process accepting raw RGBA frames on
// stdin. Frames must be written in order; Close flushes and finalizes the
// output file.
type EncodeSession struct {
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     *bytes.Buffer
	outputPath string
	frameBytes int
	closed     bool
	logger     logging.Logger
}

// Start launches an encode: raw RGBA frames of the given geometry on stdin,
// audio from audioPath trimmed to duration seconds, muxed into outputPath
func (e *Encoder) Start(outputPath, audioPath string, width, height, fps int, duration float64) (*EncodeSession, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid frame geometry %dx%d@%d", width, height, fps)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive: %f", duration)
	}

	args := buildEncodeArgs(e.config, outputPath, audioPath, width, height, fps, duration)

	logger := logging.WithFields(logging.Fields{
		"component": "video_encoder",
		"output":    outputPath,
	})

	cmd := exec.Command(e.config.FFmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	logger.Debug("Encode session started", logging.Fields{
		"width":    width,
		"height":   height,
		"fps":      fps,
		"duration": duration,
	})

	return &EncodeSession{
		cmd:        cmd,
		stdin:      stdin,
		stderr:     &stderr,
		outputPath: outputPath,
		frameBytes: width * height * 4,
		logger:     logger,
	}, nil
}

// buildEncodeArgs assembles the ffmpeg invocation for a frame-pipe encode
func buildEncodeArgs(cfg *EncoderConfig, outputPath, audioPath string, width, height, fps int, duration float64) []string {
	return []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "pipe:0",
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", cfg.VideoCodec,
		"-preset", cfg.Preset,
		"-crf", strconv.Itoa(cfg.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", cfg.AudioCodec,
		outputPath,
	}
}

// WriteFrame sends one raw RGBA frame to the encoder
func (s *EncodeSession) WriteFrame(pix []byte) error {
	if s.closed {
		return fmt.Errorf("encode session already closed")
	}
	if len(pix) != s.frameBytes {
		return fmt.Errorf("frame size %d does not match expected %d bytes", len(pix), s.frameBytes)
	}

	if _, err := s.stdin.Write(pix); err != nil {
		return fmt.Errorf("frame write failed: %w", err)
	}
	return nil
}

// Close finishes the frame stream and waits for ffmpeg to finalize the
// output. On encode failure the partial output file is removed.
func (s *EncodeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.stdin.Close(); err != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
		os.Remove(s.outputPath)
		return fmt.Errorf("failed to close frame stream: %w", err)
	}

	if err := s.cmd.Wait(); err != nil {
		os.Remove(s.outputPath)
		s.logger.Error(err, "Ffmpeg encode failed", logging.Fields{
			"stderr": s.stderr.String(),
		})
		return fmt.Errorf("ffmpeg encode failed: %w, stderr: %s", err, s.stderr.String())
	}

	s.logger.Debug("Encode session completed")
	return nil
}

// Abort kills the encoder and removes any partial output
func (s *EncodeSession) Abort() {
	if s.closed {
		return
	}
	s.closed = true

	s.stdin.Close()
	s.cmd.Process.Kill()
	s.cmd.Wait()
	os.Remove(s.outputPath)
}
