package serve

import (
	"github.com/banshee-data/serve.report/internal/config"
	"github.com/banshee-data/serve.report/internal/features"
)

// Config holds the phase machine, impact detector and selector thresholds.
// Angles are degrees, heights normalized image units, durations seconds.
type Config struct {
	Features       features.Config
	BufferCapacity int

	// LOADING -> DROPPING
	LoadedElbowMax            float64
	LoadedShoulderMin         float64
	TossDropThreshold         float64
	FallbackTrophyShoulderMin float64
	FallbackTrophyHoldSecs    float64
	FallbackDropElbowMax      float64
	FallbackDropHoldSecs      float64

	// DROPPING -> STRIKING
	DropDepthMax      float64
	DropExtensionMin  float64
	StrikeVelocityMin float64
	StrikeRiseMargin  float64
	StrikeShoulderMin float64
	StuckDroppingSecs float64

	// Impact detector
	ImpactMarginStrict   float64
	ImpactMarginLoose    float64
	ImpactElbowMin       float64
	ImpactReboundMin     float64
	ImpactReboundConfirm float64
	ImpactReboundSecs    float64

	// STRIKING -> FINISHED and finish capture
	FinishDropBelowShoulder float64
	FinishPeakQuietSecs     float64
	FinishCaptureSecs       float64
	FinishCaptureMaxSecs    float64

	// Selector
	RacketDropWindowFraction float64
	TrophyTossHeightMax      float64
}

// DefaultConfig returns serve configuration loaded from the canonical
// tuning defaults file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Features:       features.ConfigFromTuning(cfg),
		BufferCapacity: cfg.GetFrameBufferCapacity(),

		LoadedElbowMax:            cfg.GetLoadedElbowMax(),
		LoadedShoulderMin:         cfg.GetLoadedShoulderMin(),
		TossDropThreshold:         cfg.GetTossDropThreshold(),
		FallbackTrophyShoulderMin: cfg.GetFallbackTrophyShoulderMin(),
		FallbackTrophyHoldSecs:    cfg.GetFallbackTrophyHoldSecs(),
		FallbackDropElbowMax:      cfg.GetFallbackDropElbowMax(),
		FallbackDropHoldSecs:      cfg.GetFallbackDropHoldSecs(),

		DropDepthMax:      cfg.GetDropDepthMax(),
		DropExtensionMin:  cfg.GetDropExtensionMin(),
		StrikeVelocityMin: cfg.GetStrikeVelocityMin(),
		StrikeRiseMargin:  cfg.GetStrikeRiseMargin(),
		StrikeShoulderMin: cfg.GetStrikeShoulderMin(),
		StuckDroppingSecs: cfg.GetStuckDroppingSecs(),

		ImpactMarginStrict:   cfg.GetImpactMarginStrict(),
		ImpactMarginLoose:    cfg.GetImpactMarginLoose(),
		ImpactElbowMin:       cfg.GetImpactElbowMin(),
		ImpactReboundMin:     cfg.GetImpactReboundMin(),
		ImpactReboundConfirm: cfg.GetImpactReboundConfirm(),
		ImpactReboundSecs:    cfg.GetImpactReboundSecs(),

		FinishDropBelowShoulder: cfg.GetFinishDropBelowShoulder(),
		FinishPeakQuietSecs:     cfg.GetFinishPeakQuietSecs(),
		FinishCaptureSecs:       cfg.GetFinishCaptureSecs(),
		FinishCaptureMaxSecs:    cfg.GetFinishCaptureMaxSecs(),

		RacketDropWindowFraction: cfg.GetRacketDropWindowFraction(),
		TrophyTossHeightMax:      cfg.GetTrophyTossHeightMax(),
	}
}
