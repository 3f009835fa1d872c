// Package scan drives a deterministic, fixed-step pass over a recorded
// serve video.
//
// Playback speed never influences the result: the driver seeks the frame
// source to t = i/fps, waits for the frame to render, captures it, runs pose
// estimation with a timeout and feeds the outcome into a serve.Tracker
// before moving to the next step. Comparison mode walks two subjects in
// lockstep on a normalized timeline, one after the other per step.
package scan
