package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the tolerance used for "on the line" style comparisons.
const Epsilon = 1e-9

// LineSide returns which side of s the point p lies on. Positive values are
// on the front (right-hand) side, negative on the back side and zero means
// collinear. The magnitude is twice the area of the triangle (s.Start, s.End, p).
func LineSide(p Point, s Seg) float64 {
	return (p.X-s.Start.X)*(s.End.Y-s.Start.Y) - (p.Y-s.Start.Y)*(s.End.X-s.Start.X)
}

// ClosestPoint returns the point on s nearest to p together with its
// parameter along the segment, clamped to [0, 1].
func ClosestPoint(p Point, s Seg) (Point, float64) {
	d := s.Dir()
	l2 := r2.Dot(d, d)
	if l2 == 0 {
		return s.Start, 0
	}
	t := r2.Dot(r2.Sub(p, s.Start), d) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Add(s.Start, r2.Scale(t, d)), t
}

// DistanceToSegment returns the distance from p to the nearest point of s.
func DistanceToSegment(p Point, s Seg) float64 {
	c, _ := ClosestPoint(p, s)
	return Distance(p, c)
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// SegmentsIntersect returns the point where a and b properly cross. Parallel
// and collinear segments never intersect, nor do segments that only touch
// at an endpoint; callers split at shared vertices beforehand.
func SegmentsIntersect(a, b Seg) (Point, bool) {
	da := a.Dir()
	db := b.Dir()
	denom := r2.Cross(da, db)
	if math.Abs(denom) < Epsilon {
		return Point{}, false
	}
	diff := r2.Sub(b.Start, a.Start)
	t := r2.Cross(diff, db) / denom
	u := r2.Cross(diff, da) / denom
	const edge = 1e-7
	if t <= edge || t >= 1-edge || u <= edge || u >= 1-edge {
		return Point{}, false
	}
	return r2.Add(a.Start, r2.Scale(t, da)), true
}

// RaySegmentDistance casts a ray from origin along dir and returns the ray
// parameter (in multiples of dir) where it crosses s. Hits exactly at the
// origin are reported with distance 0; parallel segments are never hit.
func RaySegmentDistance(origin, dir Point, s Seg) (float64, bool) {
	ds := s.Dir()
	denom := r2.Cross(dir, ds)
	if math.Abs(denom) < Epsilon {
		return 0, false
	}
	diff := r2.Sub(s.Start, origin)
	t := r2.Cross(diff, ds) / denom
	u := r2.Cross(diff, dir) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// AngleBetween returns the counter-clockwise sweep from (prev - pivot) to
// (next - pivot), in radians within [0, 2π). A region lying on the right of a
// path prev→pivot→next occupies exactly this wedge around pivot, so the
// smallest value among candidate next points is the tightest right turn.
func AngleBetween(prev, pivot, next Point) float64 {
	a := r2.Sub(prev, pivot)
	b := r2.Sub(next, pivot)
	angle := math.Atan2(r2.Cross(a, b), r2.Dot(a, b))
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle >= 2*math.Pi {
		angle = 0
	}
	return angle
}

// RotatePoint rotates p counter-clockwise around origin by degrees.
func RotatePoint(origin, p Point, degrees float64) Point {
	return r2.Rotate(p, degrees*math.Pi/180, origin)
}

// SignedArea returns the shoelace sum of a closed point loop, halved.
// Counter-clockwise loops are positive, clockwise loops negative.
func SignedArea(points []Point) float64 {
	var sum float64
	n := len(points)
	for i := 0; i < n; i++ {
		sum += Cross(points[i], points[(i+1)%n])
	}
	return sum / 2
}

// Cross returns the z component of a × b.
func Cross(a, b Point) float64 {
	return r2.Cross(a, b)
}

// Equal reports whether two points coincide within tolerance eps.
func Equal(a, b Point, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}
