package pose

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/banshee-data/serve.report/internal/fsutil"
)

// maxRecordingBytes bounds recordings read from disk.
const maxRecordingBytes = 64 * 1024 * 1024

// timeEpsilon absorbs float drift when matching scan steps to recorded
// timestamps.
const timeEpsilon = 1e-9

// Recording is a captured landmark stream for one subject, used to replay
// an analysis without the pose model.
type Recording struct {
	Subject    string          `json:"subject,omitempty"`
	Handedness Handedness      `json:"handedness,omitempty"`
	FPS        float64         `json:"fps"`
	Duration   float64         `json:"duration"` // seconds
	Frames     []RecordedFrame `json:"frames"`
}

// RecordedFrame is one entry of a Recording. Landmarks are [x, y, z,
// visibility] tuples in BlazePose order; Missing marks a frame where the
// model reported no detection.
type RecordedFrame struct {
	T         float64      `json:"t"`
	Missing   bool         `json:"missing,omitempty"`
	Landmarks [][4]float64 `json:"landmarks,omitempty"`
}

// RecordFrame converts a Frame into its recorded form.
func RecordFrame(t float64, f *Frame) RecordedFrame {
	if f == nil {
		return RecordedFrame{T: t, Missing: true}
	}
	rf := RecordedFrame{T: t, Landmarks: make([][4]float64, NumLandmarks)}
	for i, lm := range f.Landmarks {
		rf.Landmarks[i] = [4]float64{lm.X, lm.Y, lm.Z, lm.Visibility}
	}
	return rf
}

// Frame converts the recorded entry back into a Frame. It returns nil for
// Missing entries.
func (rf RecordedFrame) Frame() (*Frame, error) {
	if rf.Missing {
		return nil, nil
	}
	if len(rf.Landmarks) > NumLandmarks {
		return nil, fmt.Errorf("frame at t=%.3f has %d landmarks (max %d)", rf.T, len(rf.Landmarks), NumLandmarks)
	}
	f := &Frame{}
	for i, lm := range rf.Landmarks {
		f.Landmarks[i] = Landmark{X: lm[0], Y: lm[1], Z: lm[2], Visibility: lm[3]}
	}
	return f, nil
}

// Validate checks timestamps are strictly increasing and within Duration.
func (r *Recording) Validate() error {
	if r.Duration < 0 {
		return fmt.Errorf("negative duration %f", r.Duration)
	}
	if r.Handedness != "" {
		if _, err := ParseHandedness(string(r.Handedness)); err != nil {
			return err
		}
	}
	for i, rf := range r.Frames {
		if i > 0 && rf.T <= r.Frames[i-1].T {
			return fmt.Errorf("frame %d: timestamp %.6f not after %.6f", i, rf.T, r.Frames[i-1].T)
		}
		if rf.T < 0 || rf.T > r.Duration+timeEpsilon {
			return fmt.Errorf("frame %d: timestamp %.6f outside [0, %.6f]", i, rf.T, r.Duration)
		}
		if len(rf.Landmarks) > NumLandmarks {
			return fmt.Errorf("frame %d: %d landmarks (max %d)", i, len(rf.Landmarks), NumLandmarks)
		}
	}
	return nil
}

// FrameAt returns the latest recorded entry at or before t, or false when
// t precedes the first entry.
func (r *Recording) FrameAt(t float64) (RecordedFrame, bool) {
	i := sort.Search(len(r.Frames), func(i int) bool {
		return r.Frames[i].T > t+timeEpsilon
	})
	if i == 0 {
		return RecordedFrame{}, false
	}
	return r.Frames[i-1], true
}

// LoadRecording reads and validates a JSON recording.
func LoadRecording(fsys fsutil.FileSystem, path string) (*Recording, error) {
	data, err := fsutil.ReadFileLimited(fsys, path, maxRecordingBytes)
	if err != nil {
		return nil, err
	}
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse recording %s: %w", path, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recording %s: %w", path, err)
	}
	return &rec, nil
}

// SaveRecording writes rec as indented JSON.
func SaveRecording(fsys fsutil.FileSystem, path string, rec *Recording) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	return fsutil.WriteFileAll(fsys, path, data)
}
