package scan

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/banshee-data/serve.report/internal/pose"
)

// Default replay frame size, matching a 4:3 capture.
const (
	DefaultReplayWidth  = 320
	DefaultReplayHeight = 240
)

// ReplaySource plays a Recording back as a FrameSource. Captured frames are
// flat grey images whose brightness follows the playhead, so thumbnails
// carry pixels without decoding any video.
type ReplaySource struct {
	rec    *pose.Recording
	bounds image.Rectangle
	pos    float64
}

// NewReplaySource creates a source over rec producing width x height frames.
func NewReplaySource(rec *pose.Recording, width, height int) *ReplaySource {
	if width < 1 {
		width = DefaultReplayWidth
	}
	if height < 1 {
		height = DefaultReplayHeight
	}
	return &ReplaySource{rec: rec, bounds: image.Rect(0, 0, width, height)}
}

// Duration returns the recording duration in seconds.
func (s *ReplaySource) Duration() float64 {
	return s.rec.Duration
}

// Seek moves the playhead to t. Rendering is immediate.
func (s *ReplaySource) Seek(ctx context.Context, t float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t < 0 || t > s.rec.Duration+timeEpsilon {
		return fmt.Errorf("seek to %.3f outside [0, %.3f]", t, s.rec.Duration)
	}
	s.pos = t
	return nil
}

// Position returns the playhead in seconds.
func (s *ReplaySource) Position() float64 {
	return s.pos
}

// Capture renders the frame at the playhead.
func (s *ReplaySource) Capture() (image.Image, error) {
	img := image.NewGray(s.bounds)
	var level uint8
	if s.rec.Duration > 0 {
		level = uint8(255 * math.Min(s.pos/s.rec.Duration, 1))
	}
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img, nil
}

// ReplayEstimator answers with the recorded landmarks for t, holding the
// latest entry at or before t. Missing entries, and times before the first
// entry, report no detection.
type ReplayEstimator struct {
	rec *pose.Recording
}

// NewReplayEstimator creates an estimator over rec.
func NewReplayEstimator(rec *pose.Recording) *ReplayEstimator {
	return &ReplayEstimator{rec: rec}
}

// Estimate ignores the image and looks t up in the recording.
func (e *ReplayEstimator) Estimate(ctx context.Context, _ image.Image, t float64) (*pose.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rf, ok := e.rec.FrameAt(t)
	if !ok {
		return nil, nil
	}
	return rf.Frame()
}

// ReplaySubject builds a Subject that replays rec at the default frame size.
func ReplaySubject(rec *pose.Recording) Subject {
	return Subject{
		Name:       rec.Subject,
		Handedness: rec.Handedness,
		Source:     NewReplaySource(rec, DefaultReplayWidth, DefaultReplayHeight),
		Estimator:  NewReplayEstimator(rec),
	}
}
