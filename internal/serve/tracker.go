package serve

import (
	"github.com/banshee-data/serve.report/internal/features"
	"github.com/banshee-data/serve.report/internal/framebuffer"
	"github.com/banshee-data/serve.report/internal/pose"
)

// Tracker runs the per-frame pipeline for one subject. It is the sole
// writer of its TrackingState and is not safe for concurrent use.
type Tracker struct {
	cfg       Config
	extractor features.Extractor
	machine   machine
	selector  Selector
	state     *TrackingState

	lastT   float64
	hasLast bool
}

// NewTracker creates a tracker with a fresh TrackingState.
func NewTracker(cfg Config) *Tracker {
	if cfg.BufferCapacity < 1 {
		cfg.BufferCapacity = 80
	}
	return &Tracker{
		cfg:       cfg,
		extractor: features.NewExtractor(cfg.Features),
		machine:   machine{cfg: cfg},
		selector:  NewSelector(cfg),
		state:     NewTrackingState(cfg),
	}
}

// Config returns the tracker configuration.
func (tr *Tracker) Config() Config {
	return tr.cfg
}

// State returns the current tracking state. Callers must treat it as
// read-only.
func (tr *Tracker) State() *TrackingState {
	return tr.state
}

// Reset replaces the tracking state with a fresh one.
func (tr *Tracker) Reset() {
	tr.state = NewTrackingState(tr.cfg)
	tr.hasLast = false
}

// Process feeds one frame at time t (seconds) through the pipeline and
// returns the events it fired. A nil frame means no detection: it is
// counted and otherwise ignored. Frames must arrive in strictly increasing
// time order; out-of-order frames are dropped.
func (tr *Tracker) Process(t float64, f *pose.Frame, thumb framebuffer.Thumbnail) []Event {
	s := tr.state
	if tr.hasLast && t <= tr.lastT {
		opsf("dropping out-of-order frame t=%.3f (last t=%.3f)", t, tr.lastT)
		return nil
	}
	tr.lastT, tr.hasLast = t, true

	if f == nil {
		s.FramesMissed++
		tracef("t=%.3f no detection", t)
		return nil
	}

	feat := tr.extractor.Extract(t, f, s.Velocity)
	s.Buffer.Add(framebuffer.Sample{
		Index:    s.FramesProcessed,
		Time:     t,
		Pose:     f,
		Thumb:    thumb,
		Features: feat,
	})
	s.FramesProcessed++
	sample := s.Buffer.Previous(1)

	if logs.TraceEnabled() {
		tracef("t=%.3f %s shoulder=%s elbow=%s knee=%s toss=%s wrist=%s vel=%.1f",
			t, s.Phase, feat.Shoulder, feat.Elbow, feat.Knee, feat.TossHeight, feat.WristY, feat.Velocity)
	}

	if s.ServeStarted && s.Phase < Finished {
		tr.updateExtrema(s, sample)
	}

	events := tr.machine.step(s, sample)
	for _, ev := range events {
		tr.selector.Handle(s, ev)
	}
	return events
}

// updateExtrema folds the live frame into the running extrema. Knee bend
// also takes the live frame as its snapshot when it improves, so a later
// rescan only replaces it with a strictly deeper bend.
func (tr *Tracker) updateExtrema(s *TrackingState, sample *framebuffer.Sample) {
	ex, t, f := &s.Extrema, sample.Time, sample.Features

	if v, ok := f.Shoulder.Get(); ok && v > ex.MaxShoulder.Value {
		ex.MaxShoulder = Extremum{v, t}
	}
	if v, ok := f.Elbow.Get(); ok {
		if v < ex.MinElbow.Value {
			ex.MinElbow = Extremum{v, t}
		}
		if s.Phase == Dropping && v < ex.MinRacketDrop.Value {
			ex.MinRacketDrop = Extremum{v, t}
		}
	}
	if v, ok := f.Knee.Get(); ok && v < ex.MinKnee.Value {
		ex.MinKnee = Extremum{v, t}
		s.Snapshots.KneeBend = snapshotOf(sample)
	}
	if f.Pronation > ex.MaxPronation.Value {
		ex.MaxPronation = Extremum{f.Pronation, t}
	}
	if v, ok := f.XFactor.Get(); ok && v > ex.MaxXFactor.Value {
		ex.MaxXFactor = Extremum{v, t}
	}

	if x, ok := f.HipX.Get(); ok {
		if y, ok := f.HipY.Get(); ok {
			// Hips hidden at serve start: baseline on first sighting.
			if !s.Displacement.HasBaseline() {
				s.Displacement.SetBaseline(x, y)
			}
			s.Displacement.Observe(x, y)
			ex.MaxJump = s.Displacement.Jump
			ex.MaxDrift = s.Displacement.Drift
		}
	}
}
