package libroom

import "math"

// Orientation values returned by Ccw3p.
const (
	Clockwise        = -1
	Collinear        = 0
	CounterClockwise = 1
)

// Ccw3p computes the orientation of the three 2D points (p1, p2, p3):
// CounterClockwise, Clockwise, or Collinear when the cross product of
// (p2-p1) and (p3-p1) is within eps of zero.
func Ccw3p(p1, p2, p3 Vec, eps Real) int {
	d := (p2.X-p1.X)*(p3.Y-p1.Y) - (p3.X-p1.X)*(p2.Y-p1.Y)
	if math.Abs(d) < eps {
		return Collinear
	}
	if d < 0 {
		return Clockwise
	}
	return CounterClockwise
}

// onSegment2D reports whether p, known to be collinear with [a, b],
// lies within the segment's bounding box (inflated by eps).
func onSegment2D(a, b, p Vec, eps Real) bool {
	return p.X >= math.Min(a.X, b.X)-eps && p.X <= math.Max(a.X, b.X)+eps &&
		p.Y >= math.Min(a.Y, b.Y)-eps && p.Y <= math.Max(a.Y, b.Y)+eps
}

// SegmentsIntersect2D reports whether the closed segments [a1, a2] and
// [b1, b2] intersect, including collinear-overlap and shared-endpoint
// configurations.
func SegmentsIntersect2D(a1, a2, b1, b2 Vec, eps Real) bool {
	d1 := Ccw3p(b1, b2, a1, eps)
	d2 := Ccw3p(b1, b2, a2, eps)
	d3 := Ccw3p(a1, a2, b1, eps)
	d4 := Ccw3p(a1, a2, b2, eps)

	if d1 != d2 && d3 != d4 && d1 != Collinear && d2 != Collinear &&
		d3 != Collinear && d4 != Collinear {
		return true
	}
	// Degenerate cases: an endpoint of one segment lies on the other.
	if d1 == Collinear && onSegment2D(b1, b2, a1, eps) {
		return true
	}
	if d2 == Collinear && onSegment2D(b1, b2, a2, eps) {
		return true
	}
	if d3 == Collinear && onSegment2D(a1, a2, b1, eps) {
		return true
	}
	if d4 == Collinear && onSegment2D(a1, a2, b2, eps) {
		return true
	}
	return false
}

// Intersection2DSegments computes the intersection point of [a1, a2]
// and [b1, b2]. endA and endB report whether the point coincides
// (within eps) with an endpoint of the first or second segment.
// ok is false for disjoint pairs and for collinear overlaps that do not
// reduce to a single shared endpoint.
func Intersection2DSegments(a1, a2, b1, b2 Vec, eps Real) (p Vec, endA, endB, ok bool) {
	if !SegmentsIntersect2D(a1, a2, b1, b2, eps) {
		return Vec{}, false, false, false
	}

	da := a2.Sub(a1)
	db := b2.Sub(b1)
	den := da.X*db.Y - da.Y*db.X
	if math.Abs(den) < eps {
		// Collinear: only a shared endpoint yields a unique point.
		for _, ea := range []Vec{a1, a2} {
			for _, eb := range []Vec{b1, b2} {
				if ea.Sub(eb).Len() < eps {
					return ea, true, true, true
				}
			}
		}
		return Vec{}, false, false, false
	}

	t := ((b1.X-a1.X)*db.Y - (b1.Y-a1.Y)*db.X) / den
	p = a1.Add(da.Mul(t))

	endA = p.Sub(a1).Len() < eps || p.Sub(a2).Len() < eps
	endB = p.Sub(b1).Len() < eps || p.Sub(b2).Len() < eps
	return p, endA, endB, true
}

// Intersection3DSegmentPlane intersects the segment [a1, a2] with the
// plane through planePoint with the given normal. ok is false when the
// segment is parallel to the plane (within eps) or the crossing
// parameter falls outside [0, 1]. endpoint reports whether the
// intersection coincides with a1 or a2.
func Intersection3DSegmentPlane(a1, a2, planePoint, normal Vec, eps Real) (p Vec, endpoint, ok bool) {
	u := a2.Sub(a1)
	den := normal.Dot(u)
	if math.Abs(den) < eps {
		return Vec{}, false, false
	}
	num := normal.Dot(planePoint.Sub(a1))
	t := num / den
	if t < -eps || t > 1+eps {
		return Vec{}, false, false
	}
	endpoint = t < eps || t > 1-eps
	return a1.Add(u.Mul(t)), endpoint, true
}

// IsInside2DPolygon classifies a point against a simple 2D polygon by
// ray casting. A point within eps of any edge is reported as
// onBoundary (and inside), a distinguished case rather than a silent
// inside/outside call.
func IsInside2DPolygon(p Vec, corners []Vec, eps Real) (inside, onBoundary bool) {
	n := len(corners)
	if n < 3 {
		return false, false
	}

	for i := 0; i < n; i++ {
		a := corners[i]
		b := corners[(i+1)%n]
		if distSegmentPoint2D(a, b, p) < eps {
			return true, true
		}
	}

	// Standard crossing parity against a +X ray.
	crossings := 0
	for i := 0; i < n; i++ {
		a := corners[i]
		b := corners[(i+1)%n]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if x > p.X {
				crossings++
			}
		}
	}
	return crossings%2 == 1, false
}

// distSegmentPoint2D is the distance from p to the closed segment [a, b].
func distSegmentPoint2D(a, b, p Vec) Real {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := p.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Sub(a.Add(ab.Mul(t))).Len()
}

// Area2DPolygon returns the signed shoelace area; positive for
// counter-clockwise winding.
func Area2DPolygon(corners []Vec) Real {
	n := len(corners)
	if n < 3 {
		return 0
	}
	var sum Real
	for i := 0; i < n; i++ {
		a := corners[i]
		b := corners[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// CosAngleBetween returns the cosine of the angle between two vectors,
// clamped to [-1, 1] against rounding drift.
func CosAngleBetween(v1, v2 Vec) Real {
	d := v1.Len() * v2.Len()
	if d == 0 {
		return 0
	}
	c := v1.Dot(v2) / d
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return c
}

// AngleBetween returns the angle between two vectors in radians.
func AngleBetween(v1, v2 Vec) Real {
	return math.Acos(CosAngleBetween(v1, v2))
}

// DistLinePoint returns the distance from p to the infinite line
// through a and b.
func DistLinePoint(a, b, p Vec) Real {
	dir := b.Sub(a)
	l := dir.Len()
	if l == 0 {
		return p.Sub(a).Len()
	}
	return p.Sub(a).Cross(dir).Len() / l
}
