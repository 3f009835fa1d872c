package features

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Velocity tracks hitting-wrist speed across frames. Speeds are in
// normalized image units per second multiplied by the configured scale.
type Velocity struct {
	window     int
	historyLen int
	scale      float64
	minDt      float64
	cap        float64

	prev     r2.Vec
	prevT    float64
	hasPrev  bool
	raw      []float64
	smoothed float64
}

// NewVelocity returns an empty tracker.
func NewVelocity(cfg Config) *Velocity {
	window := cfg.SmoothingWindow
	if window < 1 {
		window = 1
	}
	historyLen := cfg.VelocityHistoryLength
	if historyLen < window {
		historyLen = window
	}
	return &Velocity{
		window:     window,
		historyLen: historyLen,
		scale:      cfg.VelocityScale,
		minDt:      cfg.MinVelocityDt,
		cap:        cfg.PronationCap,
	}
}

// Observe records the wrist position at time t and returns the vertical
// velocity component for this step (negative = rising). It returns false
// for the first observation and for steps shorter than the minimum
// interval; in both cases the smoothed speed is left unchanged.
func (v *Velocity) Observe(t float64, wrist r2.Vec) (float64, bool) {
	if !v.hasPrev {
		v.prev, v.prevT, v.hasPrev = wrist, t, true
		return 0, false
	}
	dt := t - v.prevT
	if dt < v.minDt {
		return 0, false
	}

	speed := r2.Norm(r2.Sub(wrist, v.prev)) / dt * v.scale
	vertical := (wrist.Y - v.prev.Y) / dt * v.scale

	v.raw = append(v.raw, speed)
	if len(v.raw) > v.historyLen {
		v.raw = v.raw[len(v.raw)-v.historyLen:]
	}
	if len(v.raw) >= v.window {
		v.smoothed = stat.Mean(v.raw[len(v.raw)-v.window:], nil)
	} else {
		v.smoothed = speed
	}

	v.prev, v.prevT = wrist, t
	return vertical, true
}

// Smoothed returns the uncapped smoothed speed.
func (v *Velocity) Smoothed() float64 {
	return v.smoothed
}

// Pronation returns the smoothed speed capped at the pronation ceiling.
func (v *Velocity) Pronation() float64 {
	return math.Min(v.smoothed, v.cap)
}

// History returns a copy of the retained raw speed samples, oldest first.
func (v *Velocity) History() []float64 {
	out := make([]float64, len(v.raw))
	copy(out, v.raw)
	return out
}
