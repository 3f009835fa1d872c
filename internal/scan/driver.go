package scan

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/serve.report/internal/framebuffer"
	"github.com/banshee-data/serve.report/internal/pose"
	"github.com/banshee-data/serve.report/internal/serve"
	"github.com/banshee-data/serve.report/internal/timeutil"
)

// timeEpsilon absorbs float drift when comparing step times to durations.
const timeEpsilon = 1e-9

// ErrAnalysisInProgress is returned when a pass is requested while another
// pass on the same Driver is still running.
var ErrAnalysisInProgress = errors.New("analysis already in progress")

// errInferenceTimeout marks a pose estimation call that missed its deadline.
var errInferenceTimeout = errors.New("inference timed out")

// FrameSource is a seekable video.
type FrameSource interface {
	// Duration returns the video length in seconds.
	Duration() float64
	// Seek positions the source at t seconds and returns once the frame
	// for t has been rendered.
	Seek(ctx context.Context, t float64) error
	// Capture returns an owned copy of the current frame.
	Capture() (image.Image, error)
}

// Estimator runs pose estimation on a captured frame. t is the frame's
// video timestamp, which streaming models use to track across frames. A nil
// frame with a nil error means no person was detected. Implementations
// must return promptly once ctx is cancelled.
type Estimator interface {
	Estimate(ctx context.Context, img image.Image, t float64) (*pose.Frame, error)
}

// Subject is one video to analyze.
type Subject struct {
	Name       string
	Handedness pose.Handedness // overrides the configured roles when set
	Source     FrameSource
	Estimator  Estimator
}

// Result is the outcome of one subject's pass.
type Result struct {
	RunID    string
	Subject  string
	State    *serve.TrackingState
	Steps    int
	Timeouts int
	Elapsed  time.Duration
}

// Report summarises the result with jump and drift converted to unit.
func (r *Result) Report(unit string) (serve.Report, error) {
	rep, err := serve.NewReport(r.State, unit)
	if err != nil {
		return serve.Report{}, err
	}
	rep.RunID = r.RunID
	rep.Subject = r.Subject
	return rep, nil
}

// Driver runs fixed-step analysis passes. A Driver runs one pass at a
// time; its methods are safe to call from multiple goroutines.
type Driver struct {
	cfg     Config
	clock   timeutil.Clock
	running atomic.Bool
}

// NewDriver creates a driver. A nil clock uses the wall clock.
func NewDriver(cfg Config, clock timeutil.Clock) *Driver {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Driver{cfg: cfg, clock: clock}
}

// Config returns the driver configuration.
func (d *Driver) Config() Config {
	return d.cfg
}

// Running reports whether a pass is in progress.
func (d *Driver) Running() bool {
	return d.running.Load()
}

// Run analyzes a single subject.
func (d *Driver) Run(ctx context.Context, s Subject) (*Result, error) {
	results, err := d.run(ctx, []Subject{s})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Compare analyzes two subjects on a shared normalized timeline. Subject a
// sets the step times; b is sampled at t * durB / durA so both reach the
// end together. Within each step a is processed before b.
func (d *Driver) Compare(ctx context.Context, a, b Subject) (*Result, *Result, error) {
	results, err := d.run(ctx, []Subject{a, b})
	if err != nil {
		return nil, nil, err
	}
	return results[0], results[1], nil
}

// pass is the per-subject state of a run.
type pass struct {
	subject  Subject
	duration float64
	tracker  *serve.Tracker
	result   *Result

	// inflight is closed when the last estimation call returns. It stays
	// set after a timeout so the next call waits for the straggler.
	inflight chan struct{}
}

func (d *Driver) newPass(runID string, s Subject) (*pass, error) {
	if s.Source == nil || s.Estimator == nil {
		return nil, fmt.Errorf("subject %q: source and estimator are required", s.Name)
	}
	cfg := d.cfg.Serve
	if s.Handedness != "" {
		cfg.Features.Roles = pose.RolesFor(s.Handedness)
	}
	dur := s.Source.Duration()
	if dur < 0 {
		return nil, fmt.Errorf("subject %q: negative duration %f", s.Name, dur)
	}
	return &pass{
		subject:  s,
		duration: dur,
		tracker:  serve.NewTracker(cfg),
		result:   &Result{RunID: runID, Subject: s.Name},
	}, nil
}

func (d *Driver) run(ctx context.Context, subjects []Subject) ([]*Result, error) {
	if !d.running.CompareAndSwap(false, true) {
		return nil, ErrAnalysisInProgress
	}
	defer d.running.Store(false)

	if d.cfg.SampleRateHz <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %v", d.cfg.SampleRateHz)
	}
	if d.cfg.InferenceTimeout <= 0 {
		return nil, fmt.Errorf("inference timeout must be positive, got %v", d.cfg.InferenceTimeout)
	}

	runID := uuid.New().String()
	passes := make([]*pass, len(subjects))
	names := make([]string, len(subjects))
	for i, s := range subjects {
		p, err := d.newPass(runID, s)
		if err != nil {
			return nil, err
		}
		passes[i] = p
		names[i] = s.Name
	}

	lead := passes[0]
	start := d.clock.Now()
	opsf("[Driver] Started run %s for %s (%.3fs at %.0f fps)",
		runID, strings.Join(names, ", "), lead.duration, d.cfg.SampleRateHz)

	for i := 0; ; i++ {
		t := float64(i) / d.cfg.SampleRateHz
		if t > lead.duration+timeEpsilon {
			break
		}
		if err := ctx.Err(); err != nil {
			opsf("[Driver] Run %s cancelled at step %d (t=%.3f): %v", runID, i, t, err)
			return nil, fmt.Errorf("run %s cancelled: %w", runID, err)
		}
		for _, p := range passes {
			d.step(ctx, p, i, scaleTime(t, lead.duration, p.duration))
		}
	}

	elapsed := d.clock.Since(start)
	results := make([]*Result, len(passes))
	for i, p := range passes {
		st := p.tracker.State()
		p.result.State = st
		p.result.Elapsed = elapsed
		results[i] = p.result
		opsf("[Driver] Completed run %s for %s: steps=%d processed=%d missed=%d timeouts=%d phase=%s in %v",
			runID, p.subject.Name, p.result.Steps, st.FramesProcessed, st.FramesMissed,
			p.result.Timeouts, st.Phase, elapsed)
	}
	return results, nil
}

// scaleTime maps a lead-subject time onto a subject of duration dur.
func scaleTime(t, leadDur, dur float64) float64 {
	if leadDur == dur {
		return t
	}
	if leadDur <= 0 {
		return 0
	}
	scaled := t * dur / leadDur
	if scaled > dur {
		scaled = dur
	}
	return scaled
}

// step samples one frame for p and feeds it to the tracker.
func (d *Driver) step(ctx context.Context, p *pass, i int, t float64) {
	p.result.Steps++
	f, thumb := d.sample(ctx, p, i, t)
	events := p.tracker.Process(t, f, thumb)
	for _, ev := range events {
		if tr, ok := ev.(serve.PhaseTransitioned); ok {
			diagf("%s: %s -> %s at t=%.3f (%s)", p.subject.Name, tr.From, tr.To, tr.At, tr.Reason)
		}
	}
}

// sample seeks, captures and estimates the frame at t. Any failure yields
// a nil frame, which the tracker counts as a missed frame.
func (d *Driver) sample(ctx context.Context, p *pass, i int, t float64) (*pose.Frame, framebuffer.Thumbnail) {
	thumb := framebuffer.Thumbnail{FrameIndex: i}
	src := p.subject.Source
	if err := src.Seek(ctx, t); err != nil {
		opsf("%s: seek to t=%.3f failed: %v", p.subject.Name, t, err)
		return nil, thumb
	}
	img, err := src.Capture()
	if err != nil {
		opsf("%s: capture at t=%.3f failed: %v", p.subject.Name, t, err)
		return nil, thumb
	}
	thumb.Image = Thumbnail(img, d.cfg.ThumbnailWidth)

	f, err := d.estimate(ctx, p, img, t)
	switch {
	case errors.Is(err, errInferenceTimeout):
		p.result.Timeouts++
		diagf("%s: inference at t=%.3f timed out after %v", p.subject.Name, t, d.cfg.InferenceTimeout)
	case err != nil:
		diagf("%s: inference at t=%.3f failed: %v", p.subject.Name, t, err)
	case f == nil:
		tracef("%s: no pose at t=%.3f", p.subject.Name, t)
	}
	if err != nil {
		return nil, thumb
	}
	return f, thumb
}

// estimate runs one estimation call against the inference deadline. The
// deadline also covers waiting for a call left over from a timed-out step,
// so at most one call per subject is ever in flight.
func (d *Driver) estimate(ctx context.Context, p *pass, img image.Image, t float64) (*pose.Frame, error) {
	timer := d.clock.NewTimer(d.cfg.InferenceTimeout)
	defer timer.Stop()

	if p.inflight != nil {
		select {
		case <-p.inflight:
			p.inflight = nil
		case <-timer.C():
			return nil, errInferenceTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		frame *pose.Frame
		err   error
	}
	done := make(chan outcome, 1)
	inflight := make(chan struct{})
	p.inflight = inflight
	go func() {
		defer close(inflight)
		f, err := p.subject.Estimator.Estimate(callCtx, img, t)
		done <- outcome{f, err}
	}()

	select {
	case o := <-done:
		p.inflight = nil
		return o.frame, o.err
	case <-timer.C():
		return nil, errInferenceTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
