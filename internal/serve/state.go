package serve

import (
	"fmt"

	"github.com/banshee-data/serve.report/internal/features"
	"github.com/banshee-data/serve.report/internal/framebuffer"
)

// Phase is a serve motion phase. Phases are ordered; a serve attempt only
// moves forward through them.
type Phase int

const (
	PreServe Phase = iota // waiting for the serve-start pose
	Loading               // toss rising, hitting arm cocking
	Dropping              // racket dropping behind the back
	Striking              // upward swing towards contact
	Finished              // contact made, follow-through
)

var phaseNames = [...]string{"PRE_SERVE", "LOADING", "DROPPING", "STRIKING", "FINISHED"}

func (p Phase) String() string {
	if p < PreServe || p > Finished {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Unset marks an extremum time that has never been recorded.
const Unset = -1.0

// Extremum is a running best value and the time it was seen.
type Extremum struct {
	Value float64 `json:"value"`
	Time  float64 `json:"time"`
}

// Recorded reports whether the extremum has been updated since reset.
func (e Extremum) Recorded() bool {
	return e.Time != Unset
}

// Extrema holds the per-serve running extrema.
type Extrema struct {
	MaxShoulder   Extremum `json:"max_shoulder"`
	MinElbow      Extremum `json:"min_elbow"`
	MinKnee       Extremum `json:"min_knee"`
	MinRacketDrop Extremum `json:"min_racket_drop"`
	MaxPronation  Extremum `json:"max_pronation"`
	MaxXFactor    Extremum `json:"max_x_factor"`
	MaxJump       float64  `json:"max_jump_inches"`
	MaxDrift      float64  `json:"max_drift_feet"`
}

// InitialExtrema returns the reset sentinels: maxima at 0, minima at 180,
// all times Unset.
func InitialExtrema() Extrema {
	return Extrema{
		MaxShoulder:   Extremum{0, Unset},
		MinElbow:      Extremum{180, Unset},
		MinKnee:       Extremum{180, Unset},
		MinRacketDrop: Extremum{180, Unset},
		MaxPronation:  Extremum{0, Unset},
		MaxXFactor:    Extremum{0, Unset},
	}
}

// Snapshot is a frame chosen to illustrate a metric.
type Snapshot struct {
	Time       float64
	FrameIndex int
	Thumb      framebuffer.Thumbnail
	Features   features.Features
}

func snapshotOf(s *framebuffer.Sample) *Snapshot {
	return &Snapshot{
		Time:       s.Time,
		FrameIndex: s.Index,
		Thumb:      s.Thumb,
		Features:   s.Features,
	}
}

// Snapshots holds the named snapshot slots. Each is nil until chosen.
type Snapshots struct {
	Trophy     *Snapshot
	KneeBend   *Snapshot
	RacketDrop *Snapshot
	Impact     *Snapshot
	Finish     *Snapshot
	XFactor    *Snapshot
}

// TrackingState is everything known about one subject's serve. It is
// written only by its Tracker and is read-only once a scan completes.
type TrackingState struct {
	Phase          Phase
	PhaseStartTime float64

	Extrema Extrema

	ServeStarted   bool
	ServeStartTime float64

	ImpactDetected bool
	ImpactTime     float64

	Snapshots Snapshots

	Buffer       *framebuffer.Buffer
	Velocity     *features.Velocity
	Displacement *features.Displacement

	// Transitions lists the phase changes of the current attempt.
	Transitions []PhaseTransitioned

	FramesProcessed int // frames with a detected pose
	FramesMissed    int // timeouts and no-detection frames
	ServeAttempts   int

	machine machineState
	impact  impactDetector
}

// NewTrackingState returns a fresh state with all sentinels in place.
func NewTrackingState(cfg Config) *TrackingState {
	return &TrackingState{
		Phase:          PreServe,
		PhaseStartTime: 0,
		Extrema:        InitialExtrema(),
		ServeStartTime: Unset,
		ImpactTime:     Unset,
		Buffer:         framebuffer.New(cfg.BufferCapacity),
		Velocity:       features.NewVelocity(cfg.Features),
		Displacement:   features.NewDisplacement(cfg.Features),
		machine:        newMachineState(),
	}
}

// beginAttempt clears everything scoped to one serve attempt. The frame
// buffer and velocity history survive so pre-serve frames stay searchable.
func (s *TrackingState) beginAttempt(t float64) {
	s.Extrema = InitialExtrema()
	s.Snapshots = Snapshots{}
	s.ServeStarted = true
	s.ServeStartTime = t
	s.ImpactDetected = false
	s.ImpactTime = Unset
	s.Transitions = nil
	s.ServeAttempts++
	s.machine = newMachineState()
	s.impact = impactDetector{}
	s.Displacement.Reset()
}
