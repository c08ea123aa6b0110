package geo

import "math"

// Vec3 is a position in a Cartesian frame, in kilometers.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the straight-line distance between two positions.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Norm()
}

// DistanceSq returns the squared distance. Cheaper than Distance; use it for
// threshold comparisons against a squared range.
func DistanceSq(a, b Vec3) float64 {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// WithinRange reports whether a and b are at most rng apart.
func WithinRange(a, b Vec3, rng float64) bool {
	return DistanceSq(a, b) <= rng*rng
}
