package serve

import "github.com/banshee-data/serve.report/internal/features"

type impactResult int

const (
	impactNone impactResult = iota
	impactNewPeak
	impactConfirmed
)

// impactDetector locates racket-ball contact from a peak-then-rebound
// pattern in hitting-wrist height. Lower y is higher on screen, so the
// peak is the running minimum.
type impactDetector struct {
	peakY      float64
	peakT      float64
	hasPeak    bool
	descending bool // rebound confirmed for the current peak
}

// observe folds one STRIKING frame into the detector.
//
// A frame can move the peak only when the wrist is above the shoulder by
// the strict margin; a rebound is accepted down to the loose margin. Both
// require the elbow to be unknown or extended.
func (d *impactDetector) observe(cfg Config, t float64, f features.Features) impactResult {
	wy, ok := f.WristY.Get()
	if !ok {
		return impactNone
	}
	sy, ok := f.ShoulderY.Get()
	if !ok {
		return impactNone
	}
	if f.Elbow.OK() && !f.Elbow.Above(cfg.ImpactElbowMin) {
		return impactNone
	}

	if wy < sy-cfg.ImpactMarginStrict && (!d.hasPeak || wy < d.peakY) {
		d.peakY, d.peakT, d.hasPeak = wy, t, true
		d.descending = false
		return impactNewPeak
	}

	if !d.hasPeak || d.descending || wy >= sy-cfg.ImpactMarginLoose {
		return impactNone
	}
	excess := wy - d.peakY
	if excess <= cfg.ImpactReboundMin {
		return impactNone
	}
	if excess > cfg.ImpactReboundConfirm || t-d.peakT > cfg.ImpactReboundSecs {
		d.descending = true
		return impactConfirmed
	}
	return impactNone
}

// lastPeak returns the time of the tracked peak, or fallback if none.
func (d *impactDetector) lastPeak(fallback float64) float64 {
	if !d.hasPeak {
		return fallback
	}
	return d.peakT
}
