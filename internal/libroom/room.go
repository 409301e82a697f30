package libroom

import (
	"fmt"
	"math"
	"math/rand"
)

// Room aggregates the ordered boundary walls, the subset of wall
// indices that only obstruct sight lines, and the microphone set.
// Geometry is immutable after construction; only the simulation
// accumulators (Sources, Hist) mutate, and only during a run.
type Room struct {
	Dim              int
	Walls            []*Wall
	ObstructingWalls []int
	Microphones      []Vec
	MaxDist          Real
	Eps              Real
	AttenThreshold   Real // ISM branch pruning floor; 0 means AttenThres

	// simulation accumulators
	Sources []ImageSource // image-source records, in emission order
	Hist    [][]HistEntry // per-microphone ray-tracing histogram

	obstructing map[int]bool
}

// NewRoom validates and assembles a room. The dimension is derived
// from the first wall; every wall and microphone must agree with it.
func NewRoom(walls []*Wall, obstructing []int, mics []Vec, eps Real) (*Room, error) {
	if len(walls) == 0 {
		return nil, fmt.Errorf("room needs at least one wall")
	}
	if len(mics) == 0 {
		return nil, fmt.Errorf("room needs at least one microphone")
	}
	if eps <= 0 {
		eps = DefaultEps
	}
	dim := walls[0].Dim
	for i, w := range walls {
		if w.Dim != dim {
			return nil, fmt.Errorf("wall %d (%q) has dimension %d, room is %dD", i, w.Name, w.Dim, dim)
		}
	}
	if dim == 2 {
		for i, m := range mics {
			if m.Z != 0 {
				return nil, fmt.Errorf("microphone %d has a Z component in a 2D room", i)
			}
		}
	}
	obs := make(map[int]bool, len(obstructing))
	for _, idx := range obstructing {
		if idx < 0 || idx >= len(walls) {
			return nil, fmt.Errorf("obstructing wall index %d out of range [0,%d)", idx, len(walls))
		}
		obs[idx] = true
	}

	r := &Room{
		Dim:              dim,
		Walls:            walls,
		ObstructingWalls: append([]int(nil), obstructing...),
		Microphones:      append([]Vec(nil), mics...),
		Eps:              eps,
		obstructing:      obs,
		Hist:             make([][]HistEntry, len(mics)),
	}
	r.MaxDist = r.GetMaxDistance()
	DebugLog("Created %dD room: %d walls (%d obstructing), %d mics, maxDist=%.4g",
		dim, len(walls), len(obstructing), len(mics), r.MaxDist)
	return r, nil
}

// GetWall returns the i-th wall.
func (r *Room) GetWall(i int) *Wall { return r.Walls[i] }

// IsObstructing reports whether wall i occludes sight lines without
// being part of the enclosing boundary.
func (r *Room) IsObstructing(i int) bool { return r.obstructing[i] }

// GetMaxDistance returns the largest pairwise distance between wall
// corners and microphones, plus one; it bounds ray travel and the
// image lattice extent.
func (r *Room) GetMaxDistance() Real {
	var pts []Vec
	for _, w := range r.Walls {
		pts = append(pts, w.Corners...)
	}
	pts = append(pts, r.Microphones...)
	var best Real
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			if d := pts[i].Dist(pts[j]); d > best {
				best = d
			}
		}
	}
	return best + 1
}

// boundingBox covers the boundary walls only.
func (r *Room) boundingBox() (lo, hi Vec) {
	lo = Vec{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = Vec{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, w := range r.Walls {
		if r.obstructing[i] {
			continue
		}
		for _, c := range w.Corners {
			lo.X = math.Min(lo.X, c.X)
			lo.Y = math.Min(lo.Y, c.Y)
			lo.Z = math.Min(lo.Z, c.Z)
			hi.X = math.Max(hi.X, c.X)
			hi.Y = math.Max(hi.Y, c.Y)
			hi.Z = math.Max(hi.Z, c.Z)
		}
	}
	return lo, hi
}

// Contains reports whether p lies inside the room's boundary. It
// counts crossings of a segment from p to a point outside the bounding
// box against the boundary walls; a degenerate crossing (segment
// grazing an edge or corner) restarts with a jittered target. Points
// sitting on a wall are contained.
func (r *Room) Contains(p Vec) bool {
	lo, hi := r.boundingBox()
	if p.X < lo.X-r.Eps || p.X > hi.X+r.Eps ||
		p.Y < lo.Y-r.Eps || p.Y > hi.Y+r.Eps ||
		(r.Dim == 3 && (p.Z < lo.Z-r.Eps || p.Z > hi.Z+r.Eps)) {
		return false
	}

	rng := rand.New(rand.NewSource(1))
	base := Vec{lo.X - 1, lo.Y - 1, 0}
	if r.Dim == 3 {
		base.Z = lo.Z - 1
	}
	for attempt := 0; attempt < 32; attempt++ {
		outside := base
		if attempt > 0 {
			outside.X -= rng.Float64()
			outside.Y -= rng.Float64()
			if r.Dim == 3 {
				outside.Z -= rng.Float64()
			}
		}
		crossings, ambiguous := 0, false
		for i, w := range r.Walls {
			if r.obstructing[i] {
				continue
			}
			_, tag := w.Intersection(p, outside)
			switch tag {
			case IsectValid:
				crossings++
			case IsectBoundary:
				ambiguous = true
			case IsectEndpoint:
				// grazing at p itself means p sits on the wall
				if w.Side(p) == 0 {
					return true
				}
				ambiguous = true
			}
			if ambiguous {
				break
			}
		}
		if !ambiguous {
			return crossings%2 == 1
		}
	}
	// persistent degeneracy: p is on (or vanishingly close to) a wall
	return true
}

// NextWallHit finds the nearest wall crossed by a ray from pos along
// dir, ignoring lastWall (the wall the ray just left; pass -1 for
// none) and hits closer than Eps. It returns the hit point, the wall
// index (-1 when nothing is ahead), and the travel distance.
func (r *Room) NextWallHit(pos, dir Vec, lastWall int) (Vec, int, Real) {
	end := pos.Add(dir.Norm().Mul(r.MaxDist))
	bestIdx := -1
	bestDist := math.Inf(1)
	var bestHit Vec
	for i, w := range r.Walls {
		if i == lastWall {
			continue
		}
		p, tag := w.Intersection(pos, end)
		if tag == IsectNone {
			continue
		}
		d := p.Sub(pos).Len()
		if d < r.Eps {
			continue
		}
		if d < bestDist {
			bestDist, bestIdx, bestHit = d, i, p
		}
	}
	return bestHit, bestIdx, bestDist
}
