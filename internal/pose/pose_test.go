package pose

import (
	"encoding/json"
	"testing"

	"github.com/banshee-data/serve.report/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Frame and roles
// ---------------------------------------------------------------------------

func TestFrame_Visibility(t *testing.T) {
	t.Parallel()

	f := &Frame{}
	f.Landmarks[RightWrist] = Landmark{X: 0.5, Y: 0.2, Visibility: 0.9}
	f.Landmarks[RightElbow] = Landmark{X: 0.5, Y: 0.3, Visibility: 0.5}

	assert.NotNil(t, f.Visible(RightWrist, 0.5))
	assert.Nil(t, f.Visible(RightElbow, 0.5), "visibility equal to the threshold is not enough")
	assert.Nil(t, f.Visible(-1, 0.5))
	assert.Nil(t, f.Visible(NumLandmarks, 0.5))
	assert.True(t, f.AllVisible(0.5, RightWrist))
	assert.False(t, f.AllVisible(0.5, RightWrist, RightElbow))

	var nilFrame *Frame
	assert.Nil(t, nilFrame.At(RightWrist))
}

func TestNewFrame(t *testing.T) {
	t.Parallel()

	f, err := NewFrame([]Landmark{{X: 0.1, Visibility: 1}})
	require.NoError(t, err)
	assert.Equal(t, 0.1, f.Landmarks[Nose].X)

	_, err = NewFrame(make([]Landmark, NumLandmarks+1))
	assert.Error(t, err)
}

func TestRolesFor(t *testing.T) {
	t.Parallel()

	right := RolesFor(RightHanded)
	assert.Equal(t, RightWrist, right.HitWrist)
	assert.Equal(t, LeftWrist, right.TossWrist)

	left := RolesFor(LeftHanded)
	assert.Equal(t, LeftWrist, left.HitWrist)
	assert.Equal(t, RightShoulder, left.TossShoulder)
	assert.Equal(t, LeftKnee, left.HitKnee)

	h, err := ParseHandedness("")
	require.NoError(t, err)
	assert.Equal(t, RightHanded, h)
	_, err = ParseHandedness("ambidextrous")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Value
// ---------------------------------------------------------------------------

func TestValue(t *testing.T) {
	t.Parallel()

	assert.False(t, None.OK())
	assert.Equal(t, 42.0, None.Or(42))
	assert.False(t, None.Below(1000))
	assert.False(t, None.Above(-1000))
	assert.Equal(t, "none", None.String())

	v := Some(90)
	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, 90.0, got)
	assert.True(t, v.Below(91))
	assert.False(t, v.Below(90))
	assert.True(t, v.Above(89))
	assert.True(t, v.Equal(Some(90)))
	assert.False(t, v.Equal(None))
	assert.True(t, None.Equal(Value{}))
}

func TestValue_JSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}
	data, err := json.Marshal(wrapper{A: Some(12.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":12.5,"b":null}`, string(data))

	var back wrapper
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.A.Equal(Some(12.5)))
	assert.False(t, back.B.OK())
}

// ---------------------------------------------------------------------------
// Recording
// ---------------------------------------------------------------------------

func TestRecording_SaveLoadAndLookup(t *testing.T) {
	t.Parallel()

	f := &Frame{}
	f.Landmarks[Nose] = Landmark{X: 0.5, Y: 0.1, Z: -0.1, Visibility: 0.99}

	rec := &Recording{
		Subject:    "player-a",
		Handedness: RightHanded,
		FPS:        10,
		Duration:   0.2,
		Frames: []RecordedFrame{
			RecordFrame(0, f),
			RecordFrame(0.1, nil),
			RecordFrame(0.2, f),
		},
	}

	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, SaveRecording(fsys, "/rec/a.json", rec))

	loaded, err := LoadRecording(fsys, "/rec/a.json")
	require.NoError(t, err)
	require.Len(t, loaded.Frames, 3)

	rf, ok := loaded.FrameAt(0.15)
	require.True(t, ok)
	assert.Equal(t, 0.1, rf.T)
	frame, err := rf.Frame()
	require.NoError(t, err)
	assert.Nil(t, frame, "missing entries replay as no detection")

	rf, ok = loaded.FrameAt(0.2)
	require.True(t, ok)
	frame, err = rf.Frame()
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, 0.99, frame.Landmarks[Nose].Visibility)

	_, ok = loaded.FrameAt(-0.01)
	assert.False(t, ok)
}

func TestRecording_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  Recording
	}{
		{"non-increasing", Recording{Duration: 1, Frames: []RecordedFrame{{T: 0.1}, {T: 0.1}}}},
		{"past duration", Recording{Duration: 1, Frames: []RecordedFrame{{T: 1.5}}}},
		{"too many landmarks", Recording{Duration: 1, Frames: []RecordedFrame{{T: 0, Landmarks: make([][4]float64, NumLandmarks+1)}}}},
		{"bad handedness", Recording{Duration: 1, Handedness: "both"}},
		{"negative duration", Recording{Duration: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.rec.Validate())
		})
	}
}

func TestLoadRecording_BadJSON(t *testing.T) {
	t.Parallel()

	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("/bad.json", []byte("{"), 0644))
	_, err := LoadRecording(fsys, "/bad.json")
	assert.Error(t, err)
}
