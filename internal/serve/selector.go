package serve

import (
	"math"

	"github.com/banshee-data/serve.report/internal/framebuffer"
)

// Selector rescans the frame buffer when a trigger event fires and
// replaces earlier snapshot picks with better-confirmed ones.
//
// Every pick scans oldest to newest and keeps a candidate only if it is
// strictly better, so the earliest of equal-scoring frames wins.
type Selector struct {
	cfg Config
}

// NewSelector returns a Selector for cfg.
func NewSelector(cfg Config) Selector {
	return Selector{cfg: cfg}
}

// Handle applies the rescans for ev. Transitions into DROPPING and
// STRIKING anchor on the transition time; ImpactConfirmed anchors on the
// impact (peak) time.
func (sel Selector) Handle(s *TrackingState, ev Event) {
	switch e := ev.(type) {
	case PhaseTransitioned:
		switch e.To {
		case Dropping:
			sel.applyTrophy(s)
			sel.rescan(s, e.At)
		case Striking:
			sel.rescan(s, e.At)
		}
	case ImpactConfirmed:
		sel.rescan(s, e.PeakAt)
	}
}

func (sel Selector) rescan(s *TrackingState, anchor float64) {
	if best := PickRacketDrop(s.Buffer, s.ServeStartTime, anchor, sel.cfg.RacketDropWindowFraction); best != nil {
		v, _ := best.Features.Elbow.Get()
		s.Extrema.MinRacketDrop = Extremum{v, best.Time}
		s.Snapshots.RacketDrop = snapshotOf(best)
		tracef("racket drop rescan (anchor %.3f): %.0f at t=%.3f", anchor, v, best.Time)
	}

	if best := PickKneeBend(s.Buffer); best != nil {
		v, _ := best.Features.Knee.Get()
		if v < s.Extrema.MinKnee.Value {
			s.Extrema.MinKnee = Extremum{v, best.Time}
			s.Snapshots.KneeBend = snapshotOf(best)
			tracef("knee bend improved by rescan: %.0f at t=%.3f", v, best.Time)
		}
	}

	if best := PickXFactor(s.Buffer, s.ServeStartTime); best != nil {
		v, _ := best.Features.XFactor.Get()
		s.Extrema.MaxXFactor = Extremum{v, best.Time}
		s.Snapshots.XFactor = snapshotOf(best)
	}
}

func (sel Selector) applyTrophy(s *TrackingState) {
	if best := PickTrophy(s.Buffer, sel.cfg.TrophyTossHeightMax); best != nil {
		s.Snapshots.Trophy = snapshotOf(best)
		tracef("trophy picked at t=%.3f", best.Time)
	}
}

// PickRacketDrop returns the sample with the smallest elbow angle among
// those in [serveStart + fraction*(anchor-serveStart), anchor], or nil.
func PickRacketDrop(buf *framebuffer.Buffer, serveStart, anchor, fraction float64) *framebuffer.Sample {
	from := serveStart + fraction*(anchor-serveStart)
	var best *framebuffer.Sample
	bestV := math.Inf(1)
	buf.Scan(func(x *framebuffer.Sample) bool {
		if x.Time < from || x.Time > anchor {
			return true
		}
		if v, ok := x.Features.Elbow.Get(); ok && v < bestV {
			best, bestV = x, v
		}
		return true
	})
	return best
}

// PickKneeBend returns the buffered sample with the smallest knee angle,
// pre-serve frames included, or nil.
func PickKneeBend(buf *framebuffer.Buffer) *framebuffer.Sample {
	var best *framebuffer.Sample
	bestV := math.Inf(1)
	buf.Scan(func(x *framebuffer.Sample) bool {
		if v, ok := x.Features.Knee.Get(); ok && v < bestV {
			best, bestV = x, v
		}
		return true
	})
	return best
}

// PickXFactor returns the sample at or after serveStart with the largest
// hip-shoulder separation, or nil.
func PickXFactor(buf *framebuffer.Buffer, serveStart float64) *framebuffer.Sample {
	var best *framebuffer.Sample
	bestV := math.Inf(-1)
	buf.Scan(func(x *framebuffer.Sample) bool {
		if x.Time < serveStart {
			return true
		}
		if v, ok := x.Features.XFactor.Get(); ok && v > bestV {
			best, bestV = x, v
		}
		return true
	})
	return best
}

// PickTrophy returns the most loaded sample with the toss hand above
// tossMax, scored by knee + elbow angle (lower is better). With no such
// sample it falls back to the lowest elbow angle in the buffer.
func PickTrophy(buf *framebuffer.Buffer, tossMax float64) *framebuffer.Sample {
	var best, fallback *framebuffer.Sample
	bestScore, bestElbow := math.Inf(1), math.Inf(1)
	buf.Scan(func(x *framebuffer.Sample) bool {
		f := x.Features
		elbow, ok := f.Elbow.Get()
		if !ok {
			return true
		}
		if elbow < bestElbow {
			fallback, bestElbow = x, elbow
		}
		knee, ok := f.Knee.Get()
		if ok && f.TossHeight.Below(tossMax) && knee+elbow < bestScore {
			best, bestScore = x, knee+elbow
		}
		return true
	})
	if best != nil {
		return best
	}
	return fallback
}
