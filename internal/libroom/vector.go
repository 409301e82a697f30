package libroom

import "math"

// Vec is a point or direction in 2 or 3 dimensions. Two-dimensional
// rooms leave Z at zero; the owning Room/Wall tracks the dimension.
type Vec struct {
	X, Y, Z Real
}

func (a Vec) Add(b Vec) Vec  { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec) Sub(b Vec) Vec  { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (v Vec) Mul(s Real) Vec { return Vec{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product between two vectors.
func (a Vec) Dot(b Vec) Real {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the 3D cross product.
func (a Vec) Cross(b Vec) Vec {
	return Vec{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the Euclidean length of the vector.
func (v Vec) Len() Real { return math.Sqrt(v.Dot(v)) }

// Norm returns a unit-length version of the vector.
func (v Vec) Norm() Vec {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec{v.X / l, v.Y / l, v.Z / l}
}

// Dist returns the distance between two points.
func (a Vec) Dist(b Vec) Real { return a.Sub(b).Len() }

func isFinite(x Real) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }
