package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Render settings
	Render RenderConfig `yaml:"render"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

type FFmpegConfig struct {
	BinaryPath  string `yaml:"binary_path"`
	ProbePath   string `yaml:"probe_path"`
	Preset      string `yaml:"preset"`
	CRF         int    `yaml:"crf"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type RenderConfig struct {
	FPS     int    `yaml:"fps"`
	Effects string `yaml:"effects"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func defaultConfig() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			BinaryPath:  "ffmpeg",
			ProbePath:   "ffprobe",
			Preset:      "medium",
			CRF:         23,
			TimeoutSecs: 60,
		},
		Render: RenderConfig{
			FPS:     30,
			Effects: "pulse,zoom,vhs,waveform",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./beatframe.yaml",
		"./beatframe.yml",
		filepath.Join(os.Getenv("HOME"), ".beatframe", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
