package libroom

import (
	"fmt"
	"math"
)

// Isect classifies a segment/wall intersection.
type Isect int

const (
	IsectNone     Isect = iota // no crossing of the bounded wall
	IsectValid                 // proper crossing through the interior
	IsectEndpoint              // crossing at an endpoint of the query segment
	IsectBoundary              // crossing on the polygon boundary (edge or corner)
)

func (t Isect) String() string {
	switch t {
	case IsectNone:
		return "none"
	case IsectValid:
		return "valid"
	case IsectEndpoint:
		return "endpoint"
	case IsectBoundary:
		return "boundary"
	}
	return fmt.Sprintf("isect(%d)", int(t))
}

// Wall is a bounded planar polygon (a segment in 2D) with absorption
// and scattering coefficients. All derived geometry is computed once
// at construction; a Wall is immutable afterwards.
type Wall struct {
	Dim        int
	Corners    []Vec
	Absorption Real
	Scattering Real
	Name       string
	Eps        Real

	// cached
	Origin Vec
	Normal Vec    // unit outward normal
	Basis  [2]Vec // 3D only: orthonormal in-plane basis
	Flat   []Vec  // 3D only: corners in the (Basis, Origin) frame
}

// NewWall builds a wall from its corner sequence. 2D walls are
// segments (exactly two corners); 3D walls are simple convex polygons
// whose corners must be coplanar within eps.
func NewWall(dim int, corners []Vec, absorption, scattering Real, name string, eps Real) (*Wall, error) {
	if dim != 2 && dim != 3 {
		return nil, fmt.Errorf("wall %q: dimension must be 2 or 3, got %d", name, dim)
	}
	if absorption < 0 || absorption > 1 {
		return nil, fmt.Errorf("wall %q: absorption must be in [0,1], got %.6g", name, absorption)
	}
	if scattering < 0 || scattering > 1 {
		return nil, fmt.Errorf("wall %q: scattering must be in [0,1], got %.6g", name, scattering)
	}
	if eps <= 0 {
		eps = DefaultEps
	}

	w := &Wall{
		Dim:        dim,
		Corners:    append([]Vec(nil), corners...),
		Absorption: absorption,
		Scattering: scattering,
		Name:       name,
		Eps:        eps,
	}

	if dim == 2 {
		if len(corners) != 2 {
			return nil, fmt.Errorf("wall %q: 2D wall needs exactly 2 corners, got %d", name, len(corners))
		}
		d := corners[1].Sub(corners[0])
		if d.Len() < eps {
			return nil, fmt.Errorf("wall %q: degenerate segment", name)
		}
		w.Origin = corners[0]
		// right-hand normal of the travel direction corner0 -> corner1
		w.Normal = Vec{d.Y, -d.X, 0}.Norm()
		DebugLog("Created 2D wall %q: corners=%v normal=%v", name, w.Corners, w.Normal)
		return w, nil
	}

	if len(corners) < 3 {
		return nil, fmt.Errorf("wall %q: 3D wall needs at least 3 corners, got %d", name, len(corners))
	}
	w.Origin = corners[0]
	u := corners[1].Sub(corners[0])
	if u.Len() < eps {
		return nil, fmt.Errorf("wall %q: coincident corners", name)
	}
	u = u.Norm()
	var v Vec
	ok := false
	for i := 2; i < len(corners); i++ {
		t := corners[i].Sub(corners[0])
		t = t.Sub(u.Mul(t.Dot(u)))
		if t.Len() > eps {
			v = t.Norm()
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("wall %q: collinear corners", name)
	}
	w.Normal = u.Cross(v).Norm()

	// flatten and check coplanarity
	w.Flat = make([]Vec, len(corners))
	for i, c := range corners {
		d := c.Sub(w.Origin)
		if math.Abs(d.Dot(w.Normal)) > eps {
			return nil, fmt.Errorf("wall %q: corner %d is off-plane by %.6g", name, i, d.Dot(w.Normal))
		}
		w.Flat[i] = Vec{d.Dot(u), d.Dot(v), 0}
	}
	area := Area2DPolygon(w.Flat)
	if math.Abs(area) < eps {
		return nil, fmt.Errorf("wall %q: zero area", name)
	}
	if area < 0 {
		// flip to keep (Basis[0], Basis[1], Normal) right-handed with a
		// counter-clockwise flat polygon
		v = v.Mul(-1)
		w.Normal = w.Normal.Mul(-1)
		for i := range w.Flat {
			w.Flat[i].Y = -w.Flat[i].Y
		}
	}
	w.Basis = [2]Vec{u, v}
	DebugLog("Created 3D wall %q: %d corners, normal=%v, area=%.6g", name, len(corners), w.Normal, w.Area())
	return w, nil
}

// Area returns the polygon area (segment length in 2D).
func (w *Wall) Area() Real {
	if w.Dim == 2 {
		return w.Corners[1].Sub(w.Corners[0]).Len()
	}
	return math.Abs(Area2DPolygon(w.Flat))
}

// Side classifies a point relative to the wall plane: +1 on the normal
// side, -1 opposite, 0 within Eps of the plane.
func (w *Wall) Side(p Vec) int {
	d := p.Sub(w.Origin).Dot(w.Normal)
	if math.Abs(d) < w.Eps {
		return 0
	}
	if d < 0 {
		return -1
	}
	return 1
}

// localize projects a 3D in-plane point into the wall's flat frame.
func (w *Wall) localize(p Vec) Vec {
	d := p.Sub(w.Origin)
	return Vec{d.Dot(w.Basis[0]), d.Dot(w.Basis[1]), 0}
}

// Intersection intersects the segment [p1, p2] with the bounded wall
// and classifies the crossing. The returned point is meaningful only
// when the tag is not IsectNone. A crossing at an endpoint of the
// query segment takes precedence over a boundary-edge crossing.
func (w *Wall) Intersection(p1, p2 Vec) (Vec, Isect) {
	if w.Dim == 2 {
		p, endSeg, endWall, ok := Intersection2DSegments(p1, p2, w.Corners[0], w.Corners[1], w.Eps)
		if !ok {
			return Vec{}, IsectNone
		}
		switch {
		case endSeg:
			return p, IsectEndpoint
		case endWall:
			return p, IsectBoundary
		}
		return p, IsectValid
	}

	p, endpoint, ok := Intersection3DSegmentPlane(p1, p2, w.Origin, w.Normal, w.Eps)
	if !ok {
		return Vec{}, IsectNone
	}
	inside, onBoundary := IsInside2DPolygon(w.localize(p), w.Flat, w.Eps)
	if !inside {
		return Vec{}, IsectNone
	}
	switch {
	case endpoint:
		return p, IsectEndpoint
	case onBoundary:
		return p, IsectBoundary
	}
	return p, IsectValid
}

// Intersects reports whether [p1, p2] crosses the bounded wall. It is
// defined through Intersection so the two stay consistent on every
// degenerate case.
func (w *Wall) Intersects(p1, p2 Vec) bool {
	_, tag := w.Intersection(p1, p2)
	return tag != IsectNone
}

// Reflect mirrors a point across the wall plane. Reflecting twice is
// the identity up to Eps.
func (w *Wall) Reflect(p Vec) Vec {
	return p.Sub(w.Normal.Mul(2 * p.Sub(w.Origin).Dot(w.Normal)))
}

// ReflectDir bounces a direction specularly off the wall:
// d' = d - 2 (d.n) n.
func (w *Wall) ReflectDir(d Vec) Vec {
	return d.Sub(w.Normal.Mul(2 * d.Dot(w.Normal)))
}

// SameAs reports geometric identity: same dimension and the same
// corner multiset within Eps, regardless of ordering.
func (w *Wall) SameAs(o *Wall) bool {
	if w.Dim != o.Dim || len(w.Corners) != len(o.Corners) {
		return false
	}
	used := make([]bool, len(o.Corners))
	for _, c := range w.Corners {
		found := false
		for j, oc := range o.Corners {
			if !used[j] && c.Sub(oc).Len() < w.Eps {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
