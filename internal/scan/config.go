package scan

import (
	"time"

	"github.com/banshee-data/serve.report/internal/config"
	"github.com/banshee-data/serve.report/internal/serve"
)

// Config controls the fixed-step scan.
type Config struct {
	SampleRateHz     float64       // analysis steps per second of video
	InferenceTimeout time.Duration // per-call pose estimation deadline
	ThumbnailWidth   int           // pixels; 0 disables thumbnails
	Serve            serve.Config
}

// DefaultConfig returns scan configuration loaded from the canonical tuning
// defaults file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		SampleRateHz:     cfg.GetSampleRateHz(),
		InferenceTimeout: cfg.GetInferenceTimeout(),
		ThumbnailWidth:   cfg.GetThumbnailWidth(),
		Serve:            serve.ConfigFromTuning(cfg),
	}
}
