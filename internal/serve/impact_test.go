package serve

import (
	"testing"

	"github.com/banshee-data/serve.report/internal/features"
	"github.com/banshee-data/serve.report/internal/pose"
	"github.com/stretchr/testify/assert"
)

func wrist(y float64, elbow pose.Value) features.Features {
	return features.Features{WristY: pose.Some(y), ShoulderY: pose.Some(0.30), Elbow: elbow}
}

func TestImpactDetector(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	straight := pose.Some(170)

	tests := []struct {
		name  string
		steps []features.Features
		times []float64
		want  []impactResult
		peakT float64
	}{
		{
			name:  "large rebound confirms immediately",
			steps: []features.Features{wrist(0.10, straight), wrist(0.08, straight), wrist(0.12, straight)},
			times: []float64{0.90, 0.93, 0.96},
			want:  []impactResult{impactNewPeak, impactNewPeak, impactConfirmed},
			peakT: 0.93,
		},
		{
			name:  "small rebound waits for elapsed time",
			steps: []features.Features{wrist(0.08, straight), wrist(0.10, straight), wrist(0.10, straight)},
			times: []float64{1.0, 1.03, 1.06},
			want:  []impactResult{impactNewPeak, impactNone, impactConfirmed},
			peakT: 1.0,
		},
		{
			name:  "jitter below rebound minimum ignored",
			steps: []features.Features{wrist(0.08, straight), wrist(0.09, straight), wrist(0.09, straight)},
			times: []float64{1.0, 1.1, 1.2},
			want:  []impactResult{impactNewPeak, impactNone, impactNone},
			peakT: 1.0,
		},
		{
			name:  "bent elbow frames ignored",
			steps: []features.Features{wrist(0.05, pose.Some(120)), wrist(0.08, straight), wrist(0.15, pose.Some(140))},
			times: []float64{1.0, 1.05, 1.1},
			want:  []impactResult{impactNone, impactNewPeak, impactNone},
			peakT: 1.05,
		},
		{
			name:  "unknown elbow qualifies",
			steps: []features.Features{wrist(0.08, pose.None), wrist(0.13, pose.None)},
			times: []float64{1.0, 1.05},
			want:  []impactResult{impactNewPeak, impactConfirmed},
			peakT: 1.0,
		},
		{
			name:  "peak needs the strict margin",
			steps: []features.Features{wrist(0.22, straight), wrist(0.24, straight)},
			times: []float64{1.0, 1.1},
			want:  []impactResult{impactNone, impactNone},
			peakT: 0,
		},
		{
			name:  "rebound below the loose margin ignored",
			steps: []features.Features{wrist(0.15, straight), wrist(0.27, straight)},
			times: []float64{1.0, 1.1},
			want:  []impactResult{impactNewPeak, impactNone},
			peakT: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d impactDetector
			for i, f := range tt.steps {
				assert.Equal(t, tt.want[i], d.observe(cfg, tt.times[i], f), "step %d", i)
			}
			assert.Equal(t, tt.peakT, d.lastPeak(0))
		})
	}
}

func TestImpactDetector_ConfirmsOnce(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	var d impactDetector
	d.observe(cfg, 1.0, wrist(0.08, pose.None))
	assert.Equal(t, impactConfirmed, d.observe(cfg, 1.05, wrist(0.13, pose.None)))
	assert.Equal(t, impactNone, d.observe(cfg, 1.10, wrist(0.14, pose.None)))
}
