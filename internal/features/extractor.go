package features

import (
	"github.com/banshee-data/serve.report/internal/config"
	"github.com/banshee-data/serve.report/internal/pose"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds feature extraction parameters.
type Config struct {
	Roles                 pose.Roles
	ConfidenceThreshold   float64 // landmarks must exceed this visibility
	VelocityScale         float64 // multiplier applied to normalized units/s
	MinVelocityDt         float64 // seconds; shorter steps reuse the previous speed
	SmoothingWindow       int     // raw samples averaged into the smoothed speed
	PronationCap          float64
	VelocityHistoryLength int
	JumpScaleInches       float64 // normalized height -> inches
	DriftScaleFeet        float64 // normalized width -> feet
}

// DefaultConfig returns feature configuration loaded from the canonical
// tuning defaults file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	h, err := pose.ParseHandedness(cfg.GetHandedness())
	if err != nil {
		h = pose.RightHanded
	}
	return Config{
		Roles:                 pose.RolesFor(h),
		ConfidenceThreshold:   cfg.GetConfidenceThreshold(),
		VelocityScale:         cfg.GetVelocityScale(),
		MinVelocityDt:         cfg.GetMinVelocityDt(),
		SmoothingWindow:       cfg.GetVelocitySmoothingWindow(),
		PronationCap:          cfg.GetPronationCap(),
		VelocityHistoryLength: cfg.GetVelocityHistoryLength(),
		JumpScaleInches:       cfg.GetJumpScaleInches(),
		DriftScaleFeet:        cfg.GetDriftScaleFeet(),
	}
}

// Features is the derived snapshot for one frame.
type Features struct {
	Shoulder pose.Value `json:"shoulder"` // hip-shoulder-elbow, hitting side
	Elbow    pose.Value `json:"elbow"`    // shoulder-elbow-wrist, hitting side
	Knee     pose.Value `json:"knee"`     // hip-knee-ankle, hitting side
	XFactor  pose.Value `json:"x_factor"`

	// Heights are raw normalized Y; smaller is higher.
	TossHeight    pose.Value `json:"toss_height"` // toss wrist
	TossShoulderY pose.Value `json:"toss_shoulder_y"`
	WristY        pose.Value `json:"wrist_y"` // hitting wrist
	ShoulderY     pose.Value `json:"shoulder_y"`
	NoseY         pose.Value `json:"nose_y"`
	HipX          pose.Value `json:"hip_x"`
	HipY          pose.Value `json:"hip_y"`

	Velocity         float64    `json:"velocity"`          // smoothed, uncapped
	VerticalVelocity pose.Value `json:"vertical_velocity"` // this step only
	Pronation        float64    `json:"pronation"`         // smoothed, capped
}

// Extractor computes Features from frames. It holds configuration only;
// running state is passed in.
type Extractor struct {
	cfg Config
}

// NewExtractor returns an Extractor for cfg.
func NewExtractor(cfg Config) Extractor {
	return Extractor{cfg: cfg}
}

// Config returns the extractor configuration.
func (x Extractor) Config() Config {
	return x.cfg
}

// Extract derives the features of frame f at time t, folding the hitting
// wrist into vel. A nil frame yields only the carried-over speeds.
func (x Extractor) Extract(t float64, f *pose.Frame, vel *Velocity) Features {
	out := Features{}
	if f != nil {
		x.fill(t, f, vel, &out)
	}
	out.Velocity = vel.Smoothed()
	out.Pronation = vel.Pronation()
	return out
}

func (x Extractor) fill(t float64, f *pose.Frame, vel *Velocity, out *Features) {
	th := x.cfg.ConfidenceThreshold
	r := x.cfg.Roles

	if f.AllVisible(th, r.HitHip, r.HitShoulder, r.HitElbow) {
		out.Shoulder = Angle3D(f.At(r.HitHip), f.At(r.HitShoulder), f.At(r.HitElbow))
	}
	if f.AllVisible(th, r.HitShoulder, r.HitElbow, r.HitWrist) {
		out.Elbow = Angle3D(f.At(r.HitShoulder), f.At(r.HitElbow), f.At(r.HitWrist))
	}
	if f.AllVisible(th, r.HitHip, r.HitKnee, r.HitAnkle) {
		out.Knee = Angle3D(f.At(r.HitHip), f.At(r.HitKnee), f.At(r.HitAnkle))
	}
	out.XFactor = XFactor(
		f.Visible(pose.LeftHip, th), f.Visible(pose.RightHip, th),
		f.Visible(pose.LeftShoulder, th), f.Visible(pose.RightShoulder, th),
	)

	if w := f.Visible(r.HitWrist, th); w != nil {
		out.WristY = pose.Some(w.Y)
		if vy, ok := vel.Observe(t, r2.Vec{X: w.X, Y: w.Y}); ok {
			out.VerticalVelocity = pose.Some(vy)
		}
	}
	if s := f.Visible(r.HitShoulder, th); s != nil {
		out.ShoulderY = pose.Some(s.Y)
	}
	if n := f.Visible(pose.Nose, th); n != nil {
		out.NoseY = pose.Some(n.Y)
	}
	if tw := f.Visible(r.TossWrist, th); tw != nil {
		out.TossHeight = pose.Some(tw.Y)
	}
	if ts := f.Visible(r.TossShoulder, th); ts != nil {
		out.TossShoulderY = pose.Some(ts.Y)
	}

	hit, toss := f.Visible(r.HitHip, th), f.Visible(r.TossHip, th)
	switch {
	case hit != nil && toss != nil:
		out.HipX = pose.Some((hit.X + toss.X) / 2)
		out.HipY = pose.Some((hit.Y + toss.Y) / 2)
	case hit != nil:
		out.HipX = pose.Some(hit.X)
		out.HipY = pose.Some(hit.Y)
	}
}
