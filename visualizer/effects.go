package visualizer

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

// Effects selects which visual effects run during a render. The set is fixed
// at engine construction and immutable for the render's duration.
type Effects struct {
	Pulse    bool `json:"pulse" yaml:"pulse"`       // RMS-driven scale pulse
	Zoom     bool `json:"zoom" yaml:"zoom"`         // Slow oscillating breathing motion
	VHS      bool `json:"vhs" yaml:"vhs"`           // Horizontal tracking-error glitch
	Waveform bool `json:"waveform" yaml:"waveform"` // Spectrum bar overlay
	Spectrum bool `json:"spectrum" yaml:"spectrum"` // Reserved, no effect yet
}

// ParseEffects builds an effect set from a comma-separated list of names
func ParseEffects(list string) (Effects, error) {
	var effects Effects

	if strings.TrimSpace(list) == "" {
		return effects, nil
	}

	for _, name := range strings.Split(list, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "pulse":
			effects.Pulse = true
		case "zoom":
			effects.Zoom = true
		case "vhs":
			effects.VHS = true
		case "waveform":
			effects.Waveform = true
		case "spectrum":
			effects.Spectrum = true
		default:
			return Effects{}, fmt.Errorf("unknown effect %q", name)
		}
	}

	return effects, nil
}

const (
	pulseGain     = 2.5
	zoomBase      = 1.02
	zoomDepth     = 0.005
	zoomRate      = 0.7
	vhsAmplitude  = 5.0
	vhsRate       = 25.0
	waveformBars  = 100
	barHeightFrac = 0.4
	frameWeight   = 0.7
	overlayWeight = 0.3
)

// pulseScale derives the pulse effect's scale factor from an RMS value
func pulseScale(rms float64) float64 {
	return 1.0 + rms*pulseGain
}

// zoomScale derives the breathing-motion scale factor at time t.
// Independent of audio features.
func zoomScale(t float64) float64 {
	return zoomBase + zoomDepth*math.Sin(zoomRate*t)
}

// vhsShift derives the horizontal pixel offset at time t
func vhsShift(t float64) int {
	return int(math.Round(vhsAmplitude * math.Sin(vhsRate * t)))
}

// scaleCenter scales a frame by factor and center-crops the result back to
// the original canvas size, so frame dimensions never change. Factors below 1
// return the frame unchanged; the pulse and zoom effects only scale up.
func scaleCenter(frame *image.RGBA, factor float64) *image.RGBA {
	bounds := frame.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if factor <= 1.0 {
		return frame
	}

	scaledW := int(math.Round(float64(w) * factor))
	scaledH := int(math.Round(float64(h) * factor))
	if scaledW <= w || scaledH <= h {
		return frame
	}

	scaled := resize.Resize(uint(scaledW), uint(scaledH), frame, resize.Bilinear)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	offset := image.Pt((scaledW-w)/2, (scaledH-h)/2)
	draw.Draw(out, out.Bounds(), scaled, offset, draw.Src)

	return out
}

// shiftHorizontal moves frame content sideways inside the fixed canvas.
// Positive offsets move content left, negative move it right; revealed edge
// columns stay black and pushed-out columns are lost.
func shiftHorizontal(frame *image.RGBA, offset int) *image.RGBA {
	if offset == 0 {
		return frame
	}

	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)

	dst := bounds
	srcPt := bounds.Min
	if offset > 0 {
		dst.Max.X -= offset
		srcPt.X += offset
	} else {
		dst.Min.X -= offset // offset is negative
	}

	draw.Draw(out, dst, frame, srcPt, draw.Src)
	return out
}

// barValues buckets a spectrogram column into waveformBars values normalized
// to [0, 1). Samples are taken at evenly spaced bin indices; the max sampled
// value plus a small epsilon is the normalizer, so an all-zero column yields
// all-zero bars instead of dividing by zero.
func barValues(spectrum []float64) []float64 {
	values := make([]float64, waveformBars)
	if len(spectrum) == 0 {
		return values
	}

	sampled := make([]float64, waveformBars)
	maxVal := 0.0
	for i := 0; i < waveformBars; i++ {
		idx := i * len(spectrum) / waveformBars
		if idx > len(spectrum)-1 {
			idx = len(spectrum) - 1
		}
		sampled[i] = spectrum[idx]
		if sampled[i] > maxVal {
			maxVal = sampled[i]
		}
	}

	norm := maxVal + 1e-6
	for i := range sampled {
		values[i] = sampled[i] / norm
	}

	return values
}

// waveformOverlay draws the spectrum bars for one frame: solid bars anchored
// to the bottom edge, height proportional to the normalized bucket value
func waveformOverlay(spectrum []float64, w, h int) *image.RGBA {
	values := barValues(spectrum)

	dc := gg.NewContext(w, h)
	dc.SetRGB255(0, 0, 0)
	dc.Clear()

	dc.SetRGB255(0, 255, 200)
	barWidth := w / waveformBars

	for i, v := range values {
		barHeight := v * barHeightFrac * float64(h)
		if barHeight <= 0 {
			continue
		}
		x := float64(i * barWidth)
		y := float64(h) - barHeight
		dc.DrawRectangle(x, y, float64(barWidth-1), barHeight)
	}
	dc.Fill()

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return out
}

// blendOverlay mixes the overlay onto the frame at fixed opacity:
// out = 0.7*frame + 0.3*overlay across the whole canvas
func blendOverlay(frame, overlay *image.RGBA) *image.RGBA {
	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)

	for i := 0; i < len(frame.Pix); i += 4 {
		out.Pix[i] = blendByte(frame.Pix[i], overlay.Pix[i])
		out.Pix[i+1] = blendByte(frame.Pix[i+1], overlay.Pix[i+1])
		out.Pix[i+2] = blendByte(frame.Pix[i+2], overlay.Pix[i+2])
		out.Pix[i+3] = 0xff
	}

	return out
}

func blendByte(a, b uint8) uint8 {
	return uint8(frameWeight*float64(a) + overlayWeight*float64(b))
}
