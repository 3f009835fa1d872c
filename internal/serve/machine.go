package serve

import (
	"github.com/banshee-data/serve.report/internal/features"
	"github.com/banshee-data/serve.report/internal/framebuffer"
)

// machineState is the per-attempt bookkeeping behind the transition rules.
type machineState struct {
	// LOADING
	tossPeakY        float64
	hasTossPeak      bool
	loadedSince      float64
	fallbackTrophyAt float64

	// DROPPING
	dropMin float64

	// FINISHED
	finishCaptured bool
	released       bool // start pose let go since the finish
}

func newMachineState() machineState {
	return machineState{
		loadedSince:      Unset,
		fallbackTrophyAt: Unset,
		dropMin:          180,
	}
}

// machine applies the phase transition rules. It holds configuration only.
type machine struct {
	cfg Config
}

// step advances the phase for the newest buffered sample and returns the
// events it fired, in order.
func (m machine) step(s *TrackingState, sample *framebuffer.Sample) []Event {
	t, f := sample.Time, sample.Features
	switch s.Phase {
	case PreServe:
		if startPose(f) {
			return []Event{m.start(s, t, f)}
		}
	case Loading:
		return m.stepLoading(s, t, f)
	case Dropping:
		return m.stepDropping(s, t, f)
	case Striking:
		return m.stepStriking(s, sample)
	case Finished:
		return m.stepFinished(s, sample)
	}
	return nil
}

// startPose reports hitting wrist above the nose and toss wrist above the
// toss shoulder.
func startPose(f features.Features) bool {
	ny, ok := f.NoseY.Get()
	if !ok || !f.WristY.Below(ny) {
		return false
	}
	sy, ok := f.TossShoulderY.Get()
	return ok && f.TossHeight.Below(sy)
}

func (m machine) transition(s *TrackingState, to Phase, t float64, reason string) PhaseTransitioned {
	ev := PhaseTransitioned{From: s.Phase, To: to, At: t, Reason: reason}
	s.Phase = to
	s.PhaseStartTime = t
	s.Transitions = append(s.Transitions, ev)
	diagf("t=%.3f %s -> %s (%s)", t, ev.From, ev.To, reason)
	return ev
}

func (m machine) start(s *TrackingState, t float64, f features.Features) PhaseTransitioned {
	s.beginAttempt(t)
	if x, ok := f.HipX.Get(); ok {
		if y, ok := f.HipY.Get(); ok {
			s.Displacement.SetBaseline(x, y)
		}
	}
	opsf("serve attempt %d started at t=%.3f", s.ServeAttempts, t)
	return m.transition(s, Loading, t, ReasonServeStart)
}

func (m machine) stepLoading(s *TrackingState, t float64, f features.Features) []Event {
	c, ms := m.cfg, &s.machine

	tossY, tossOK := f.TossHeight.Get()
	loaded := f.Elbow.Below(c.LoadedElbowMax) && tossOK && f.Shoulder.Above(c.LoadedShoulderMin)
	if loaded {
		if ms.loadedSince == Unset {
			ms.loadedSince = t
		}
		if !ms.hasTossPeak || tossY < ms.tossPeakY {
			ms.tossPeakY, ms.hasTossPeak = tossY, true
		}
	} else {
		ms.loadedSince = Unset
	}

	if ms.hasTossPeak && tossOK && tossY > ms.tossPeakY+c.TossDropThreshold {
		return []Event{m.transition(s, Dropping, t, ReasonTossPeak)}
	}

	if ms.fallbackTrophyAt == Unset {
		if loaded && f.Shoulder.Above(c.FallbackTrophyShoulderMin) && t-ms.loadedSince > c.FallbackTrophyHoldSecs {
			ms.fallbackTrophyAt = t
			diagf("t=%.3f fallback trophy marked (shoulder=%s)", t, f.Shoulder)
		}
		return nil
	}
	if f.Elbow.Below(c.FallbackDropElbowMax) && t-ms.fallbackTrophyAt > c.FallbackDropHoldSecs {
		return []Event{m.transition(s, Dropping, t, ReasonFallbackTrophy)}
	}
	return nil
}

func (m machine) stepDropping(s *TrackingState, t float64, f features.Features) []Event {
	c, ms := m.cfg, &s.machine

	if e, ok := f.Elbow.Get(); ok && e < ms.dropMin {
		ms.dropMin = e
	}
	extending := ms.dropMin < c.DropDepthMax && f.Elbow.Above(ms.dropMin+c.DropExtensionMin)
	rising := f.Velocity > c.StrikeVelocityMin || f.VerticalVelocity.Below(-c.StrikeRiseMargin)
	if extending && rising && handAboveShoulder(f) && f.Shoulder.Above(c.StrikeShoulderMin) {
		return []Event{m.transition(s, Striking, t, ReasonArmExtension)}
	}
	if t-s.PhaseStartTime > c.StuckDroppingSecs {
		opsf("t=%.3f stuck in %s for %.2fs, forcing %s", t, Dropping, t-s.PhaseStartTime, Striking)
		return []Event{m.transition(s, Striking, t, ReasonStuckDropping)}
	}
	return nil
}

func (m machine) stepStriking(s *TrackingState, sample *framebuffer.Sample) []Event {
	c, t, f := m.cfg, sample.Time, sample.Features
	if s.ImpactDetected {
		return nil
	}

	switch s.impact.observe(c, t, f) {
	case impactNewPeak:
		s.Snapshots.Impact = snapshotOf(sample)
	case impactConfirmed:
		s.ImpactDetected = true
		s.ImpactTime = s.impact.peakT
		diagf("t=%.3f impact confirmed, assigned to peak t=%.3f", t, s.ImpactTime)
		return []Event{
			ImpactConfirmed{At: t, PeakAt: s.ImpactTime},
			m.transition(s, Finished, t, ReasonImpact),
		}
	}

	wy, wok := f.WristY.Get()
	sy, sok := f.ShoulderY.Get()
	if wok && sok && wy > sy+c.FinishDropBelowShoulder &&
		t-s.impact.lastPeak(s.PhaseStartTime) > c.FinishPeakQuietSecs {
		opsf("t=%.3f hand dropped without a confirmed impact", t)
		return []Event{m.transition(s, Finished, t, ReasonHandDropped)}
	}
	return nil
}

func (m machine) stepFinished(s *TrackingState, sample *framebuffer.Sample) []Event {
	c, ms, t, f := m.cfg, &s.machine, sample.Time, sample.Features

	if !ms.finishCaptured {
		elapsed := t - s.PhaseStartTime
		dropped := false
		if wy, ok := f.WristY.Get(); ok {
			dropped = f.ShoulderY.Below(wy)
		}
		if (elapsed >= c.FinishCaptureSecs && dropped) || elapsed >= c.FinishCaptureMaxSecs {
			s.Snapshots.Finish = snapshotOf(sample)
			ms.finishCaptured = true
			diagf("t=%.3f finish captured %.2fs after contact", t, elapsed)
		}
		return nil
	}

	if !startPose(f) {
		ms.released = true
		return nil
	}
	if ms.released {
		return []Event{m.start(s, t, f)}
	}
	return nil
}

func handAboveShoulder(f features.Features) bool {
	sy, ok := f.ShoulderY.Get()
	return ok && f.WristY.Below(sy)
}
