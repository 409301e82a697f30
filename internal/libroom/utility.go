package libroom

import "math"

// LineEquation computes a and b in y = a*x + b for the line through p1
// and p2. ok is false for a vertical line.
func LineEquation(p1, p2 Vec) (a, b Real, ok bool) {
	dx := p2.X - p1.X
	if dx == 0 {
		return 0, 0, false
	}
	a = (p2.Y - p1.Y) / dx
	b = p1.Y - a*p1.X
	return a, b, true
}

// SegmentEnd returns start + length * dir, normalizing dir first.
func SegmentEnd(start, dir Vec, length Real) Vec {
	return start.Add(dir.Norm().Mul(length))
}

// ReflectedEnd takes the incident path start->hit and the unit surface
// normal at hit, and returns the point E such that hit->E continues the
// path specularly with |hit->E| = length.
func ReflectedEnd(start, hit, normal Vec, length Real) Vec {
	d := hit.Sub(start).Norm()
	r := d.Sub(normal.Mul(2 * d.Dot(normal)))
	return hit.Add(r.Norm().Mul(length))
}

// SolveQuad returns the real roots of a*x^2 + b*x + c, ordered
// r1 <= r2 when n == 2. A negative discriminant yields n == 0; a zero
// discriminant yields the single tangent root in r1.
func SolveQuad(a, b, c Real) (r1, r2 Real, n int) {
	if a == 0 {
		if b == 0 {
			return 0, 0, 0
		}
		return -c / b, 0, 1
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, 0
	}
	if disc == 0 {
		return -b / (2 * a), 0, 1
	}
	sq := math.Sqrt(disc)
	r1 = (-b - sq) / (2 * a)
	r2 = (-b + sq) / (2 * a)
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return r1, r2, 2
}

// micQuad reduces the segment [start, end] against the sphere
// (center, radius) to a quadratic in the segment parameter t.
func micQuad(start, end, center Vec, radius Real) (a, b, c Real) {
	d := end.Sub(start)
	oc := start.Sub(center)
	a = d.Dot(d)
	b = 2 * oc.Dot(d)
	c = oc.Dot(oc) - radius*radius
	return
}

// IntersectsMic reports whether the segment [start, end] crosses the
// detection sphere of the given center and radius.
func IntersectsMic(start, end, center Vec, radius Real) bool {
	a, b, c := micQuad(start, end, center, radius)
	r1, r2, n := SolveQuad(a, b, c)
	if n == 0 {
		return false
	}
	if r1 >= 0 && r1 <= 1 {
		return true
	}
	return n == 2 && r2 >= 0 && r2 <= 1
}

// MicIntersection returns the first crossing of [start, end] with the
// sphere: the entry point and its arc length along the segment.
func MicIntersection(start, end, center Vec, radius Real) (p Vec, dist Real, ok bool) {
	a, b, c := micQuad(start, end, center, radius)
	r1, r2, n := SolveQuad(a, b, c)
	if n == 0 {
		return Vec{}, 0, false
	}
	t := r1
	if t < 0 || t > 1 {
		if n < 2 || r2 < 0 || r2 > 1 {
			return Vec{}, 0, false
		}
		t = r2
	}
	d := end.Sub(start)
	return start.Add(d.Mul(t)), t * d.Len(), true
}
