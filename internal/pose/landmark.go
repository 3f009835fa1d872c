package pose

import "fmt"

// NumLandmarks is the number of landmarks a pose model reports per frame.
const NumLandmarks = 33

// Landmark indices used by serve analysis (BlazePose order).
const (
	Nose          = 0
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
	LeftKnee      = 25
	RightKnee     = 26
	LeftAnkle     = 27
	RightAnkle    = 28
)

// Landmark is a normalized image-space position with a visibility
// confidence in [0,1]. Y grows downward: smaller Y is higher on screen.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Frame is one pose estimate. Landmarks the model did not report are left
// at zero visibility.
type Frame struct {
	Landmarks [NumLandmarks]Landmark
}

// NewFrame builds a Frame from up to NumLandmarks landmarks.
func NewFrame(landmarks []Landmark) (*Frame, error) {
	if len(landmarks) > NumLandmarks {
		return nil, fmt.Errorf("pose frame has %d landmarks (max %d)", len(landmarks), NumLandmarks)
	}
	f := &Frame{}
	copy(f.Landmarks[:], landmarks)
	return f, nil
}

// At returns the landmark at idx, or nil when idx is out of range.
func (f *Frame) At(idx int) *Landmark {
	if f == nil || idx < 0 || idx >= NumLandmarks {
		return nil
	}
	return &f.Landmarks[idx]
}

// Visible returns the landmark at idx when its visibility exceeds
// threshold, nil otherwise.
func (f *Frame) Visible(idx int, threshold float64) *Landmark {
	lm := f.At(idx)
	if lm == nil || lm.Visibility <= threshold {
		return nil
	}
	return lm
}

// AllVisible reports whether every listed landmark exceeds threshold.
func (f *Frame) AllVisible(threshold float64, idx ...int) bool {
	for _, i := range idx {
		if f.Visible(i, threshold) == nil {
			return false
		}
	}
	return true
}

// Handedness selects which arm hits and which arm tosses.
type Handedness string

const (
	RightHanded Handedness = "right"
	LeftHanded  Handedness = "left"
)

// ParseHandedness converts a config string into a Handedness.
func ParseHandedness(s string) (Handedness, error) {
	switch Handedness(s) {
	case RightHanded, "":
		return RightHanded, nil
	case LeftHanded:
		return LeftHanded, nil
	default:
		return "", fmt.Errorf("unknown handedness %q", s)
	}
}

// Roles maps the fixed serve roles onto landmark indices for one
// handedness.
type Roles struct {
	HitShoulder  int
	HitElbow     int
	HitWrist     int
	HitHip       int
	HitKnee      int
	HitAnkle     int
	TossShoulder int
	TossElbow    int
	TossWrist    int
	TossHip      int
}

// RolesFor returns the landmark roles for h. Unknown values are treated as
// right-handed.
func RolesFor(h Handedness) Roles {
	if h == LeftHanded {
		return Roles{
			HitShoulder:  LeftShoulder,
			HitElbow:     LeftElbow,
			HitWrist:     LeftWrist,
			HitHip:       LeftHip,
			HitKnee:      LeftKnee,
			HitAnkle:     LeftAnkle,
			TossShoulder: RightShoulder,
			TossElbow:    RightElbow,
			TossWrist:    RightWrist,
			TossHip:      RightHip,
		}
	}
	return Roles{
		HitShoulder:  RightShoulder,
		HitElbow:     RightElbow,
		HitWrist:     RightWrist,
		HitHip:       RightHip,
		HitKnee:      RightKnee,
		HitAnkle:     RightAnkle,
		TossShoulder: LeftShoulder,
		TossElbow:    LeftElbow,
		TossWrist:    LeftWrist,
		TossHip:      LeftHip,
	}
}
