// Package features converts one pose frame into the joint angles, trunk
// rotation separation and wrist speed that drive serve phase detection.
//
// Every feature is visibility gated: a landmark at or below the confidence
// threshold, or degenerate geometry, yields pose.None rather than NaN.
// Per-subject running state (previous wrist position, velocity history,
// displacement baseline) lives in Velocity and Displacement values owned by
// the caller, so a fresh analysis starts from fresh values.
package features
