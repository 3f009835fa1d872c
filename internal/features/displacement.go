package features

import "math"

// Displacement measures vertical jump and lateral drift of the hip point
// relative to the baseline captured at serve start. Both are running
// maxima and never decrease.
type Displacement struct {
	jumpScale  float64
	driftScale float64

	baseX, baseY float64
	minY         float64
	hasBase      bool

	Jump  float64 // inches
	Drift float64 // feet
}

// NewDisplacement returns a tracker without a baseline.
func NewDisplacement(cfg Config) *Displacement {
	return &Displacement{jumpScale: cfg.JumpScaleInches, driftScale: cfg.DriftScaleFeet}
}

// SetBaseline records the hip point at serve start and clears the maxima.
func (d *Displacement) SetBaseline(x, y float64) {
	d.baseX, d.baseY, d.minY = x, y, y
	d.hasBase = true
	d.Jump, d.Drift = 0, 0
}

// Reset drops the baseline and the maxima.
func (d *Displacement) Reset() {
	d.baseX, d.baseY, d.minY = 0, 0, 0
	d.hasBase = false
	d.Jump, d.Drift = 0, 0
}

// HasBaseline reports whether a baseline has been captured.
func (d *Displacement) HasBaseline() bool {
	return d.hasBase
}

// Observe folds one hip point into the running maxima. It is a no-op
// before a baseline exists.
func (d *Displacement) Observe(x, y float64) {
	if !d.hasBase {
		return
	}
	if y < d.minY {
		d.minY = y
	}
	jump := math.Max(0, d.baseY-d.minY) * d.jumpScale
	if jump > d.Jump {
		d.Jump = jump
	}
	drift := math.Abs(x-d.baseX) * d.driftScale
	if drift > d.Drift {
		d.Drift = drift
	}
}
