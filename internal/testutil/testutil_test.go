package testutil

import (
	"errors"
	"testing"

	"github.com/banshee-data/serve.report/internal/features"
	"github.com/banshee-data/serve.report/internal/pose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	t.Parallel()
	AssertError(t, errors.New("test error"))
}

func TestAssertNear(t *testing.T) {
	t.Parallel()
	AssertNear(t, 1.0000001, 1, 1e-6)
}

// ---------------------------------------------------------------------------
// Curves
// ---------------------------------------------------------------------------

func TestCurve_At(t *testing.T) {
	t.Parallel()

	c := Curve{{0, 10}, {1, 20}, {2, 0}}
	assert.Equal(t, 10.0, c.At(-1), "held before first key")
	assert.Equal(t, 15.0, c.At(0.5))
	assert.Equal(t, 10.0, c.At(1.5))
	assert.Equal(t, 0.0, c.At(5), "held after last key")
	assert.Equal(t, 0.0, Curve(nil).At(1))
}

func TestCurve_ShiftThen(t *testing.T) {
	t.Parallel()

	c := Curve{{0, 1}, {1, 2}}
	both := c.Then(c.Shift(2))
	require.Len(t, both, 4)
	assert.Equal(t, Key{2, 1}, both[2])
	assert.Equal(t, 1.5, both.At(2.5))
	assert.Equal(t, Key{0, 1}, c[0], "Shift copies")
}

// ---------------------------------------------------------------------------
// Synthetic serve
// ---------------------------------------------------------------------------

func TestServeScript_AnglesRoundTrip(t *testing.T) {
	t.Parallel()

	for _, h := range []pose.Handedness{pose.RightHanded, pose.LeftHanded} {
		script := DefaultServe(20)
		script.Handedness = h
		cfg := features.DefaultConfig()
		cfg.Roles = pose.RolesFor(h)
		x := features.NewExtractor(cfg)

		for _, ts := range []float64{0.45, 0.8, 1.0} {
			feat := x.Extract(ts, script.Frame(ts), features.NewVelocity(cfg))
			assert.True(t, feat.Elbow.Equal(pose.Some(math0(script.Elbow.At(ts)))), "%s elbow at %.2f: %s", h, ts, feat.Elbow)
			assert.True(t, feat.Knee.Equal(pose.Some(math0(script.Knee.At(ts)))), "%s knee at %.2f: %s", h, ts, feat.Knee)
			assert.True(t, feat.Shoulder.Equal(pose.Some(math0(script.Shoulder.At(ts)))), "%s shoulder at %.2f: %s", h, ts, feat.Shoulder)
			xf, ok := feat.XFactor.Get()
			require.True(t, ok)
			assert.InDelta(t, script.XFactor.At(ts), xf, 1e-6)
			assert.InDelta(t, script.TossY.At(ts), feat.TossHeight.Or(-1), 1e-12)
		}
	}
}

// math0 rounds a keyframe angle the way the extractor does.
func math0(v float64) float64 {
	return float64(int(v + 0.5))
}

func TestServeScript_Recording(t *testing.T) {
	t.Parallel()

	script := DefaultServe(20)
	script.Missing = func(i int) bool { return i == 3 }
	rec := script.Recording("synthetic")

	require.NoError(t, rec.Validate())
	assert.Len(t, rec.Frames, 61)
	assert.True(t, rec.Frames[3].Missing)
	assert.Equal(t, 1.0, rec.Frames[20].T)

	f, err := rec.Frames[20].Frame()
	require.NoError(t, err)
	assert.Equal(t, *script.Frame(1.0), *f)
}
