package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// ReducedConfigPath is the reduced-rate preset (lower sample rate, smaller
// buffer). Fields it omits fall back to the built-in defaults.
const ReducedConfigPath = "config/tuning.reduced.json"

// TuningConfig represents the root configuration for serve analysis.
// Every field is optional; the Get* accessors supply the default for any
// field left out of the JSON file, so partial configs are safe.
type TuningConfig struct {
	// Subject / pose model
	Handedness          *string  `json:"handedness,omitempty"` // "right" or "left"
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`

	// Scan driver
	SampleRateHz     *float64 `json:"sample_rate_hz,omitempty"`
	InferenceTimeout *string  `json:"inference_timeout,omitempty"` // duration string like "3000ms"
	ThumbnailWidth   *int     `json:"thumbnail_width,omitempty"`

	// Frame buffer and feature extraction
	FrameBufferCapacity     *int     `json:"frame_buffer_capacity,omitempty"`
	VelocitySmoothingWindow *int     `json:"velocity_smoothing_window,omitempty"`
	VelocityScale           *float64 `json:"velocity_scale,omitempty"`
	MinVelocityDt           *float64 `json:"min_velocity_dt,omitempty"` // seconds
	PronationCap            *float64 `json:"pronation_cap,omitempty"`
	VelocityHistoryLength   *int     `json:"velocity_history_length,omitempty"`
	JumpScaleInches         *float64 `json:"jump_scale_inches,omitempty"`
	DriftScaleFeet          *float64 `json:"drift_scale_feet,omitempty"`

	// LOADING -> DROPPING
	LoadedElbowMax            *float64 `json:"loaded_elbow_max,omitempty"`
	LoadedShoulderMin         *float64 `json:"loaded_shoulder_min,omitempty"`
	TossDropThreshold         *float64 `json:"toss_drop_threshold,omitempty"`
	FallbackTrophyShoulderMin *float64 `json:"fallback_trophy_shoulder_min,omitempty"`
	FallbackTrophyHoldSecs    *float64 `json:"fallback_trophy_hold_secs,omitempty"`
	FallbackDropElbowMax      *float64 `json:"fallback_drop_elbow_max,omitempty"`
	FallbackDropHoldSecs      *float64 `json:"fallback_drop_hold_secs,omitempty"`

	// DROPPING -> STRIKING
	DropDepthMax      *float64 `json:"drop_depth_max,omitempty"`
	DropExtensionMin  *float64 `json:"drop_extension_min,omitempty"`
	StrikeVelocityMin *float64 `json:"strike_velocity_min,omitempty"`
	StrikeRiseMargin  *float64 `json:"strike_rise_margin,omitempty"`
	StrikeShoulderMin *float64 `json:"strike_shoulder_min,omitempty"`
	StuckDroppingSecs *float64 `json:"stuck_dropping_secs,omitempty"`

	// Impact detector
	ImpactMarginStrict   *float64 `json:"impact_margin_strict,omitempty"`
	ImpactMarginLoose    *float64 `json:"impact_margin_loose,omitempty"`
	ImpactElbowMin       *float64 `json:"impact_elbow_min,omitempty"`
	ImpactReboundMin     *float64 `json:"impact_rebound_min,omitempty"`
	ImpactReboundConfirm *float64 `json:"impact_rebound_confirm,omitempty"`
	ImpactReboundSecs    *float64 `json:"impact_rebound_secs,omitempty"`

	// STRIKING -> FINISHED and finish capture
	FinishDropBelowShoulder *float64 `json:"finish_drop_below_shoulder,omitempty"`
	FinishPeakQuietSecs     *float64 `json:"finish_peak_quiet_secs,omitempty"`
	FinishCaptureSecs       *float64 `json:"finish_capture_secs,omitempty"`
	FinishCaptureMaxSecs    *float64 `json:"finish_capture_max_secs,omitempty"`

	// Retroactive selector
	RacketDropWindowFraction *float64 `json:"racket_drop_window_fraction,omitempty"`
	TrophyTossHeightMax      *float64 `json:"trophy_toss_height_max,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for the repository-relative path in the current
// directory and its parents, so binaries and tests can run from any package
// directory. It returns the first candidate that exists.
func FindConfigFile(path string) (string, bool) {
	for _, prefix := range []string{"", "../", "../../", "../../../", "../../../../"} {
		candidate := prefix + path
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	path, ok := FindConfigFile(DefaultConfigPath)
	if !ok {
		panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
	}
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		panic(fmt.Sprintf("cannot load %s: %v", path, err))
	}
	return cfg
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.Handedness != nil && *c.Handedness != "right" && *c.Handedness != "left" {
		return fmt.Errorf("handedness must be \"right\" or \"left\", got %q", *c.Handedness)
	}

	if c.ConfidenceThreshold != nil {
		if *c.ConfidenceThreshold < 0 || *c.ConfidenceThreshold > 1 {
			return fmt.Errorf("confidence_threshold must be between 0 and 1, got %f", *c.ConfidenceThreshold)
		}
	}

	if c.SampleRateHz != nil && *c.SampleRateHz <= 0 {
		return fmt.Errorf("sample_rate_hz must be positive, got %f", *c.SampleRateHz)
	}

	if c.InferenceTimeout != nil && *c.InferenceTimeout != "" {
		d, err := time.ParseDuration(*c.InferenceTimeout)
		if err != nil {
			return fmt.Errorf("invalid inference_timeout '%s': %w", *c.InferenceTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("inference_timeout must be positive, got %s", d)
		}
	}

	if c.FrameBufferCapacity != nil && *c.FrameBufferCapacity < 1 {
		return fmt.Errorf("frame_buffer_capacity must be at least 1, got %d", *c.FrameBufferCapacity)
	}

	if c.VelocitySmoothingWindow != nil && *c.VelocitySmoothingWindow < 1 {
		return fmt.Errorf("velocity_smoothing_window must be at least 1, got %d", *c.VelocitySmoothingWindow)
	}

	if c.VelocityHistoryLength != nil && c.VelocitySmoothingWindow != nil &&
		*c.VelocityHistoryLength < *c.VelocitySmoothingWindow {
		return fmt.Errorf("velocity_history_length (%d) must not be shorter than velocity_smoothing_window (%d)",
			*c.VelocityHistoryLength, *c.VelocitySmoothingWindow)
	}

	if c.RacketDropWindowFraction != nil {
		if *c.RacketDropWindowFraction < 0 || *c.RacketDropWindowFraction > 1 {
			return fmt.Errorf("racket_drop_window_fraction must be between 0 and 1, got %f", *c.RacketDropWindowFraction)
		}
	}

	return nil
}

// GetHandedness returns the handedness value or the default.
func (c *TuningConfig) GetHandedness() string {
	if c.Handedness == nil || *c.Handedness == "" {
		return "right"
	}
	return *c.Handedness
}

// GetConfidenceThreshold returns the landmark visibility gate or the default.
func (c *TuningConfig) GetConfidenceThreshold() float64 {
	if c.ConfidenceThreshold == nil {
		return 0.5
	}
	return *c.ConfidenceThreshold
}

// GetSampleRateHz returns the scan step rate or the default.
func (c *TuningConfig) GetSampleRateHz() float64 {
	if c.SampleRateHz == nil {
		return 30
	}
	return *c.SampleRateHz
}

// GetInferenceTimeout parses and returns the InferenceTimeout as a time.Duration.
func (c *TuningConfig) GetInferenceTimeout() time.Duration {
	if c.InferenceTimeout == nil || *c.InferenceTimeout == "" {
		return 3000 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.InferenceTimeout)
	if err != nil {
		return 3000 * time.Millisecond // default on parse error
	}
	return d
}

// GetThumbnailWidth returns the thumbnail width in pixels or the default.
func (c *TuningConfig) GetThumbnailWidth() int {
	if c.ThumbnailWidth == nil {
		return 160
	}
	return *c.ThumbnailWidth
}

// GetFrameBufferCapacity returns the frame buffer capacity or the default.
func (c *TuningConfig) GetFrameBufferCapacity() int {
	if c.FrameBufferCapacity == nil {
		return 80 // ~4s at 20fps
	}
	return *c.FrameBufferCapacity
}

// GetVelocitySmoothingWindow returns the velocity smoothing window or the default.
func (c *TuningConfig) GetVelocitySmoothingWindow() int {
	if c.VelocitySmoothingWindow == nil {
		return 5
	}
	return *c.VelocitySmoothingWindow
}

// GetVelocityScale returns the wrist velocity scale or the default.
func (c *TuningConfig) GetVelocityScale() float64 {
	if c.VelocityScale == nil {
		return 100
	}
	return *c.VelocityScale
}

// GetMinVelocityDt returns the shortest usable velocity interval in seconds.
func (c *TuningConfig) GetMinVelocityDt() float64 {
	if c.MinVelocityDt == nil {
		return 0.005
	}
	return *c.MinVelocityDt
}

// GetPronationCap returns the pronation index ceiling or the default.
func (c *TuningConfig) GetPronationCap() float64 {
	if c.PronationCap == nil {
		return 100
	}
	return *c.PronationCap
}

// GetVelocityHistoryLength returns the retained raw velocity history length.
func (c *TuningConfig) GetVelocityHistoryLength() int {
	if c.VelocityHistoryLength == nil {
		return 120
	}
	return *c.VelocityHistoryLength
}

// GetJumpScaleInches returns the normalized-height to inches factor.
func (c *TuningConfig) GetJumpScaleInches() float64 {
	if c.JumpScaleInches == nil {
		return 80
	}
	return *c.JumpScaleInches
}

// GetDriftScaleFeet returns the normalized-width to feet factor.
func (c *TuningConfig) GetDriftScaleFeet() float64 {
	if c.DriftScaleFeet == nil {
		return 15
	}
	return *c.DriftScaleFeet
}

// GetLoadedElbowMax returns the loaded_elbow_max value or the default.
func (c *TuningConfig) GetLoadedElbowMax() float64 {
	if c.LoadedElbowMax == nil {
		return 165
	}
	return *c.LoadedElbowMax
}

// GetLoadedShoulderMin returns the loaded_shoulder_min value or the default.
func (c *TuningConfig) GetLoadedShoulderMin() float64 {
	if c.LoadedShoulderMin == nil {
		return 60
	}
	return *c.LoadedShoulderMin
}

// GetTossDropThreshold returns the toss_drop_threshold value or the default.
func (c *TuningConfig) GetTossDropThreshold() float64 {
	if c.TossDropThreshold == nil {
		return 0.05
	}
	return *c.TossDropThreshold
}

// GetFallbackTrophyShoulderMin returns the fallback_trophy_shoulder_min value or the default.
func (c *TuningConfig) GetFallbackTrophyShoulderMin() float64 {
	if c.FallbackTrophyShoulderMin == nil {
		return 90
	}
	return *c.FallbackTrophyShoulderMin
}

// GetFallbackTrophyHoldSecs returns the fallback_trophy_hold_secs value or the default.
func (c *TuningConfig) GetFallbackTrophyHoldSecs() float64 {
	if c.FallbackTrophyHoldSecs == nil {
		return 0.3
	}
	return *c.FallbackTrophyHoldSecs
}

// GetFallbackDropElbowMax returns the fallback_drop_elbow_max value or the default.
func (c *TuningConfig) GetFallbackDropElbowMax() float64 {
	if c.FallbackDropElbowMax == nil {
		return 135
	}
	return *c.FallbackDropElbowMax
}

// GetFallbackDropHoldSecs returns the fallback_drop_hold_secs value or the default.
func (c *TuningConfig) GetFallbackDropHoldSecs() float64 {
	if c.FallbackDropHoldSecs == nil {
		return 0.3
	}
	return *c.FallbackDropHoldSecs
}

// GetDropDepthMax returns the drop_depth_max value or the default.
func (c *TuningConfig) GetDropDepthMax() float64 {
	if c.DropDepthMax == nil {
		return 155
	}
	return *c.DropDepthMax
}

// GetDropExtensionMin returns the drop_extension_min value or the default.
func (c *TuningConfig) GetDropExtensionMin() float64 {
	if c.DropExtensionMin == nil {
		return 15
	}
	return *c.DropExtensionMin
}

// GetStrikeVelocityMin returns the strike_velocity_min value or the default.
func (c *TuningConfig) GetStrikeVelocityMin() float64 {
	if c.StrikeVelocityMin == nil {
		return 250
	}
	return *c.StrikeVelocityMin
}

// GetStrikeRiseMargin returns the strike_rise_margin value or the default.
func (c *TuningConfig) GetStrikeRiseMargin() float64 {
	if c.StrikeRiseMargin == nil {
		return 5
	}
	return *c.StrikeRiseMargin
}

// GetStrikeShoulderMin returns the strike_shoulder_min value or the default.
func (c *TuningConfig) GetStrikeShoulderMin() float64 {
	if c.StrikeShoulderMin == nil {
		return 100
	}
	return *c.StrikeShoulderMin
}

// GetStuckDroppingSecs returns the stuck_dropping_secs value or the default.
func (c *TuningConfig) GetStuckDroppingSecs() float64 {
	if c.StuckDroppingSecs == nil {
		return 1.5
	}
	return *c.StuckDroppingSecs
}

// GetImpactMarginStrict returns the impact_margin_strict value or the default.
func (c *TuningConfig) GetImpactMarginStrict() float64 {
	if c.ImpactMarginStrict == nil {
		return 0.10
	}
	return *c.ImpactMarginStrict
}

// GetImpactMarginLoose returns the impact_margin_loose value or the default.
func (c *TuningConfig) GetImpactMarginLoose() float64 {
	if c.ImpactMarginLoose == nil {
		return 0.05
	}
	return *c.ImpactMarginLoose
}

// GetImpactElbowMin returns the impact_elbow_min value or the default.
func (c *TuningConfig) GetImpactElbowMin() float64 {
	if c.ImpactElbowMin == nil {
		return 145
	}
	return *c.ImpactElbowMin
}

// GetImpactReboundMin returns the impact_rebound_min value or the default.
func (c *TuningConfig) GetImpactReboundMin() float64 {
	if c.ImpactReboundMin == nil {
		return 0.015
	}
	return *c.ImpactReboundMin
}

// GetImpactReboundConfirm returns the impact_rebound_confirm value or the default.
func (c *TuningConfig) GetImpactReboundConfirm() float64 {
	if c.ImpactReboundConfirm == nil {
		return 0.03
	}
	return *c.ImpactReboundConfirm
}

// GetImpactReboundSecs returns the impact_rebound_secs value or the default.
func (c *TuningConfig) GetImpactReboundSecs() float64 {
	if c.ImpactReboundSecs == nil {
		return 0.04
	}
	return *c.ImpactReboundSecs
}

// GetFinishDropBelowShoulder returns the finish_drop_below_shoulder value or the default.
func (c *TuningConfig) GetFinishDropBelowShoulder() float64 {
	if c.FinishDropBelowShoulder == nil {
		return 0.15
	}
	return *c.FinishDropBelowShoulder
}

// GetFinishPeakQuietSecs returns the finish_peak_quiet_secs value or the default.
func (c *TuningConfig) GetFinishPeakQuietSecs() float64 {
	if c.FinishPeakQuietSecs == nil {
		return 0.2
	}
	return *c.FinishPeakQuietSecs
}

// GetFinishCaptureSecs returns the finish_capture_secs value or the default.
func (c *TuningConfig) GetFinishCaptureSecs() float64 {
	if c.FinishCaptureSecs == nil {
		return 0.4
	}
	return *c.FinishCaptureSecs
}

// GetFinishCaptureMaxSecs returns the finish_capture_max_secs value or the default.
func (c *TuningConfig) GetFinishCaptureMaxSecs() float64 {
	if c.FinishCaptureMaxSecs == nil {
		return 1.2
	}
	return *c.FinishCaptureMaxSecs
}

// GetRacketDropWindowFraction returns the racket_drop_window_fraction value or the default.
func (c *TuningConfig) GetRacketDropWindowFraction() float64 {
	if c.RacketDropWindowFraction == nil {
		return 0.6
	}
	return *c.RacketDropWindowFraction
}

// GetTrophyTossHeightMax returns the trophy_toss_height_max value or the default.
func (c *TuningConfig) GetTrophyTossHeightMax() float64 {
	if c.TrophyTossHeightMax == nil {
		return 0.50
	}
	return *c.TrophyTossHeightMax
}
