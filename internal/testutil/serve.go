package testutil

import (
	"math"

	"github.com/banshee-data/serve.report/internal/pose"
)

// Key is one keyframe of a Curve.
type Key struct {
	T float64 // seconds
	V float64
}

// Curve is a piecewise-linear function of time through its keys, held
// constant before the first and after the last key. Keys must be sorted.
type Curve []Key

// At evaluates the curve at t.
func (c Curve) At(t float64) float64 {
	if len(c) == 0 {
		return 0
	}
	if t <= c[0].T {
		return c[0].V
	}
	for i := 1; i < len(c); i++ {
		k0, k1 := c[i-1], c[i]
		if t <= k1.T {
			return k0.V + (k1.V-k0.V)*(t-k0.T)/(k1.T-k0.T)
		}
	}
	return c[len(c)-1].V
}

// Shift returns a copy of c moved later by dt.
func (c Curve) Shift(dt float64) Curve {
	out := make(Curve, len(c))
	for i, k := range c {
		out[i] = Key{k.T + dt, k.V}
	}
	return out
}

// Then returns c followed by next.
func (c Curve) Then(next Curve) Curve {
	out := make(Curve, 0, len(c)+len(next))
	out = append(out, c...)
	return append(out, next...)
}

// Skeleton proportions in normalized image units.
const (
	upperArm  = 0.12
	forearm   = 0.12
	shin      = 0.15
	shoulderW = 0.10
)

// ServeScript describes a synthetic single-player serve by joint-angle
// curves. Frames are built so the extracted angles match the curves
// (rounded to whole degrees).
type ServeScript struct {
	FPS      float64
	Duration float64

	Handedness pose.Handedness

	Shoulder Curve // hitting-side hip-shoulder-elbow angle
	Elbow    Curve // hitting-side shoulder-elbow-wrist angle
	Knee     Curve // hitting-side hip-knee-ankle angle
	XFactor  Curve // hip-shoulder separation
	TossY    Curve // toss wrist height
	HipY     Curve // hip height

	// Missing reports steps with no detection.
	Missing func(i int) bool
}

// DefaultServe returns the reference serve sampled at fps over 3 seconds:
// serve start at 0.2 s, toss peak at 0.5 s falling 0.06 by 0.7 s, knee
// bottoming at 95° at 0.45 s, racket drop at 0.8 s, wrist peak at 1.0 s
// and a 0.04 rebound by 1.05 s.
func DefaultServe(fps float64) ServeScript {
	return ServeScript{
		FPS:        fps,
		Duration:   3.0,
		Handedness: pose.RightHanded,
		Shoulder:   Curve{{0, 20}, {0.05, 20}, {0.2, 150}, {0.8, 150}, {1.0, 170}, {1.05, 140}, {1.8, 30}},
		Elbow:      Curve{{0, 170}, {0.2, 170}, {0.5, 80}, {0.7, 80}, {0.8, 60}, {1.0, 170}, {1.05, 170}, {1.8, 150}},
		Knee:       Curve{{0, 170}, {0.45, 95}, {0.9, 170}},
		XFactor:    Curve{{0, 0}, {0.8, 40}, {1.2, 10}},
		TossY:      Curve{{0, 0.55}, {0.15, 0.30}, {0.5, 0.10}, {0.7, 0.16}, {1.2, 0.55}},
		HipY:       Curve{{0, 0.60}, {0.9, 0.60}, {1.05, 0.57}, {1.4, 0.60}},
	}
}

// Times returns the sample times i/FPS up to and including Duration.
func (s ServeScript) Times() []float64 {
	var out []float64
	for i := 0; ; i++ {
		t := float64(i) / s.FPS
		if t > s.Duration+1e-9 {
			return out
		}
		out = append(out, t)
	}
}

// Frame builds the pose at time t.
func (s ServeScript) Frame(t float64) *pose.Frame {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dir := func(deg float64) (float64, float64) { return math.Sin(rad(deg)), math.Cos(rad(deg)) }

	ts, te, tk := s.Shoulder.At(t), s.Elbow.At(t), s.Knee.At(t)
	phi, tossY, hipY := s.XFactor.At(t), s.TossY.At(t), s.HipY.At(t)

	// Angles are measured from straight down; y grows downward.
	sx, sy := 0.55, 0.30
	ux, uy := dir(ts)
	ex, ey := sx+upperArm*ux, sy+upperArm*uy
	vx, vy := dir(ts + 180 - te)
	wx, wy := ex+forearm*vx, ey+forearm*vy

	hx := 0.55
	kdx, kdy := dir(tk)
	kx, ky := hx+shin*kdx, hipY-shin*kdy

	hit := map[string]pose.Landmark{
		"shoulder": {X: sx, Y: sy},
		"elbow":    {X: ex, Y: ey},
		"wrist":    {X: wx, Y: wy},
		"hip":      {X: hx, Y: hipY},
		"knee":     {X: kx, Y: ky},
		"ankle":    {X: kx, Y: ky + shin},
	}
	toss := map[string]pose.Landmark{
		"shoulder": {X: sx - shoulderW*math.Cos(rad(phi)), Y: sy, Z: shoulderW * math.Sin(rad(phi))},
		"elbow":    {X: 0.40, Y: (sy + tossY) / 2},
		"wrist":    {X: 0.40, Y: tossY},
		"hip":      {X: 0.45, Y: hipY},
		"knee":     {X: 0.45, Y: hipY + shin},
		"ankle":    {X: 0.45, Y: hipY + 2*shin},
	}

	right := map[string]int{
		"shoulder": pose.RightShoulder, "elbow": pose.RightElbow, "wrist": pose.RightWrist,
		"hip": pose.RightHip, "knee": pose.RightKnee, "ankle": pose.RightAnkle,
	}
	left := map[string]int{
		"shoulder": pose.LeftShoulder, "elbow": pose.LeftElbow, "wrist": pose.LeftWrist,
		"hip": pose.LeftHip, "knee": pose.LeftKnee, "ankle": pose.LeftAnkle,
	}
	hitIdx, tossIdx := right, left
	mirror := s.Handedness == pose.LeftHanded
	if mirror {
		hitIdx, tossIdx = left, right
	}

	f := &pose.Frame{}
	for i := range f.Landmarks {
		f.Landmarks[i] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: 0.1}
	}
	place := func(idx int, lm pose.Landmark) {
		if mirror {
			lm.X = 1 - lm.X
		}
		lm.Visibility = 0.99
		f.Landmarks[idx] = lm
	}
	for role, lm := range hit {
		place(hitIdx[role], lm)
	}
	for role, lm := range toss {
		place(tossIdx[role], lm)
	}
	place(pose.Nose, pose.Landmark{X: 0.5, Y: 0.20})
	return f
}

// Recording samples the script into a landmark recording.
func (s ServeScript) Recording(subject string) *pose.Recording {
	rec := &pose.Recording{
		Subject:    subject,
		Handedness: s.Handedness,
		FPS:        s.FPS,
		Duration:   s.Duration,
	}
	for i, t := range s.Times() {
		if s.Missing != nil && s.Missing(i) {
			rec.Frames = append(rec.Frames, pose.RecordedFrame{T: t, Missing: true})
			continue
		}
		rec.Frames = append(rec.Frames, pose.RecordFrame(t, s.Frame(t)))
	}
	return rec
}
