package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mveldt/beatframe/features"
	"github.com/mveldt/beatframe/internal/config"
	"github.com/mveldt/beatframe/logging"
	"github.com/mveldt/beatframe/transcode"
	"github.com/mveldt/beatframe/visualizer"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beatframe",
	Short: "beatframe - audio analysis and reactive video rendering",
	Long:  "Extracts musical features from audio files and renders audio-reactive videos from still images.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		if verbose {
			logging.SetLevel(logging.DebugLevel)
		} else {
			logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./beatframe.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderImage, "image", "i", "", "still image to animate (required)")
	renderCmd.Flags().IntVarP(&renderDuration, "duration", "d", 0, "output duration in seconds (required)")
	renderCmd.Flags().IntVar(&renderFPS, "fps", 0, "output frame rate (default from config)")
	renderCmd.Flags().StringVarP(&renderEffects, "effects", "e", "", "comma-separated effect list (default from config)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "output.mp4", "output video path")
	renderCmd.MarkFlagRequired("image")
	renderCmd.MarkFlagRequired("duration")
}

func decoderConfig() *transcode.DecoderConfig {
	return &transcode.DecoderConfig{
		FFmpegPath:  cfg.FFmpeg.BinaryPath,
		FFprobePath: cfg.FFmpeg.ProbePath,
		Timeout:     time.Duration(cfg.FFmpeg.TimeoutSecs) * time.Second,
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [audio file]",
	Short: "Extract musical features from an audio file",
	Long:  "Decodes an audio file and prints its feature record as JSON. Failures are reported inside the JSON document, not as a non-zero exit.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer := features.NewAnalyzer(decoderConfig())
		result := analyzer.Analyze(args[0])

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(data))
		return nil
	},
}

var (
	renderImage    string
	renderDuration int
	renderFPS      int
	renderEffects  string
	renderOutput   string
)

var renderCmd = &cobra.Command{
	Use:   "render [audio file]",
	Short: "Render an audio-reactive video from a still image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		effectsList := renderEffects
		if effectsList == "" {
			effectsList = cfg.Render.Effects
		}
		effects, err := visualizer.ParseEffects(effectsList)
		if err != nil {
			return err
		}

		fps := renderFPS
		if fps == 0 {
			fps = cfg.Render.FPS
		}

		engine, err := visualizer.NewEngine(visualizer.Config{
			ImagePath: renderImage,
			AudioPath: args[0],
			Duration:  renderDuration,
			FPS:       fps,
			Effects:   effects,
			Decoder:   decoderConfig(),
			Encoder: &transcode.EncoderConfig{
				FFmpegPath: cfg.FFmpeg.BinaryPath,
				VideoCodec: "libx264",
				AudioCodec: "aac",
				Preset:     cfg.FFmpeg.Preset,
				CRF:        cfg.FFmpeg.CRF,
			},
		})
		if err != nil {
			return err
		}

		path, err := engine.Build(renderOutput)
		if err != nil {
			return err
		}

		fmt.Println(path)
		return nil
	},
}
