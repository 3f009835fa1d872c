package features

import (
	"math"

	"github.com/banshee-data/serve.report/internal/pose"
	"gonum.org/v1/gonum/spatial/r3"
)

func vec(l *pose.Landmark) r3.Vec {
	return r3.Vec{X: l.X, Y: l.Y, Z: l.Z}
}

// Angle3D returns the angle at vertex b between rays b->a and b->c in whole
// degrees. It returns None when any point is missing or either ray has zero
// length.
func Angle3D(a, b, c *pose.Landmark) pose.Value {
	if a == nil || b == nil || c == nil {
		return pose.None
	}
	ba := r3.Sub(vec(a), vec(b))
	bc := r3.Sub(vec(c), vec(b))
	na, nc := r3.Norm(ba), r3.Norm(bc)
	if na == 0 || nc == 0 {
		return pose.None
	}
	cos := r3.Dot(ba, bc) / (na * nc)
	cos = math.Max(-1, math.Min(1, cos))
	deg := math.Acos(cos) * 180 / math.Pi
	return pose.Some(math.Round(deg))
}

// bearing is the heading of the line p->q in the horizontal (x, z) plane.
func bearing(p, q *pose.Landmark) float64 {
	return math.Atan2(q.Z-p.Z, q.X-p.X) * 180 / math.Pi
}

// Separation folds the absolute difference of two bearings (degrees) into
// [0, 90]: a line has no direction, so 170° apart is 10° of rotation.
func Separation(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > 180 {
		diff = 360 - diff
	}
	if diff > 90 {
		diff = 180 - diff
	}
	return diff
}

// XFactor returns the hip-shoulder separation in degrees, or None when any
// landmark is missing.
func XFactor(leftHip, rightHip, leftShoulder, rightShoulder *pose.Landmark) pose.Value {
	if leftHip == nil || rightHip == nil || leftShoulder == nil || rightShoulder == nil {
		return pose.None
	}
	return pose.Some(Separation(bearing(leftHip, rightHip), bearing(leftShoulder, rightShoulder)))
}
