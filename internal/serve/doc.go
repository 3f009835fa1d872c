// Package serve turns a stream of pose frames into a serve phase timeline,
// biomechanical extrema and the frames that illustrate them.
//
// The per-frame pipeline is:
//
//	features -> frame buffer -> live extrema -> jump/drift -> phase machine
//	         -> events -> retroactive selector
//
// The phase machine owns the phase and its entry time and emits
// PhaseTransitioned and ImpactConfirmed events. The selector reacts to
// those events by rescanning the bounded frame buffer and replacing
// earlier, worse snapshot picks once later motion confirms the true
// extremum. All state for one subject lives in a TrackingState owned by a
// single Tracker; resetting replaces it with a fresh value.
package serve
