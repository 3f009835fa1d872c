package serve

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/serve.report/internal/fsutil"
	"github.com/banshee-data/serve.report/internal/pose"
	"github.com/banshee-data/serve.report/internal/units"
)

// SnapshotReport is the exported form of a Snapshot.
type SnapshotReport struct {
	Time       float64    `json:"time"`
	FrameIndex int        `json:"frame_index"`
	Shoulder   pose.Value `json:"shoulder"`
	Elbow      pose.Value `json:"elbow"`
	Knee       pose.Value `json:"knee"`
	XFactor    pose.Value `json:"x_factor"`
	WristY     pose.Value `json:"wrist_y"`
}

// Report is the JSON summary of a finished TrackingState.
type Report struct {
	RunID   string `json:"run_id,omitempty"`
	Subject string `json:"subject,omitempty"`

	Phase          Phase   `json:"phase"`
	ServeStarted   bool    `json:"serve_started"`
	ServeStartTime float64 `json:"serve_start_time"`
	ImpactDetected bool    `json:"impact_detected"`
	ImpactTime     float64 `json:"impact_time"`

	Extrema Extrema `json:"extrema"`
	Units   string  `json:"units"`
	Jump    float64 `json:"jump"`  // MaxJump in Units
	Drift   float64 `json:"drift"` // MaxDrift in Units

	Snapshots   map[string]SnapshotReport `json:"snapshots"`
	Transitions []PhaseTransitioned       `json:"transitions"`

	FramesProcessed int       `json:"frames_processed"`
	FramesMissed    int       `json:"frames_missed"`
	ServeAttempts   int       `json:"serve_attempts"`
	VelocityHistory []float64 `json:"velocity_history"`
}

// NewReport summarises s with jump and drift converted to unit.
func NewReport(s *TrackingState, unit string) (Report, error) {
	if !units.IsValid(unit) {
		return Report{}, fmt.Errorf("invalid units %q: must be one of %s", unit, units.GetValidUnitsString())
	}
	r := Report{
		Phase:           s.Phase,
		ServeStarted:    s.ServeStarted,
		ServeStartTime:  s.ServeStartTime,
		ImpactDetected:  s.ImpactDetected,
		ImpactTime:      s.ImpactTime,
		Extrema:         s.Extrema,
		Units:           unit,
		Jump:            units.ConvertInches(s.Extrema.MaxJump, unit),
		Drift:           units.ConvertFeet(s.Extrema.MaxDrift, unit),
		Snapshots:       make(map[string]SnapshotReport),
		Transitions:     append([]PhaseTransitioned(nil), s.Transitions...),
		FramesProcessed: s.FramesProcessed,
		FramesMissed:    s.FramesMissed,
		ServeAttempts:   s.ServeAttempts,
		VelocityHistory: s.Velocity.History(),
	}
	for name, snap := range map[string]*Snapshot{
		"trophy":      s.Snapshots.Trophy,
		"knee_bend":   s.Snapshots.KneeBend,
		"racket_drop": s.Snapshots.RacketDrop,
		"impact":      s.Snapshots.Impact,
		"finish":      s.Snapshots.Finish,
		"x_factor":    s.Snapshots.XFactor,
	} {
		if snap == nil {
			continue
		}
		r.Snapshots[name] = SnapshotReport{
			Time:       snap.Time,
			FrameIndex: snap.FrameIndex,
			Shoulder:   snap.Features.Shoulder,
			Elbow:      snap.Features.Elbow,
			Knee:       snap.Features.Knee,
			XFactor:    snap.Features.XFactor,
			WristY:     snap.Features.WristY,
		}
	}
	return r, nil
}

// JSON returns the indented JSON encoding of the report.
func (r Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteReport encodes r as JSON to path, creating parent directories.
func WriteReport(fsys fsutil.FileSystem, path string, r Report) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAll(fsys, path, data); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
