package serve

// Event is emitted by the phase machine and consumed by the selector.
type Event interface {
	isEvent()
}

// Transition reasons.
const (
	ReasonServeStart     = "serve-start"     // hitting wrist above nose, toss above shoulder
	ReasonTossPeak       = "toss-peak"       // toss arm fell from its peak
	ReasonFallbackTrophy = "fallback-trophy" // elbow folded after a shoulder-based trophy
	ReasonArmExtension   = "arm-extension"   // elbow extending with the wrist rising
	ReasonStuckDropping  = "stuck-dropping"
	ReasonImpact         = "impact"
	ReasonHandDropped    = "hand-dropped"
)

// PhaseTransitioned reports a phase change at time At.
type PhaseTransitioned struct {
	From   Phase   `json:"from"`
	To     Phase   `json:"to"`
	At     float64 `json:"at"`
	Reason string  `json:"reason"`
}

// ImpactConfirmed reports that contact was confirmed at time At and is
// assigned to the earlier wrist peak at PeakAt.
type ImpactConfirmed struct {
	At     float64
	PeakAt float64
}

func (PhaseTransitioned) isEvent() {}
func (ImpactConfirmed) isEvent()   {}
