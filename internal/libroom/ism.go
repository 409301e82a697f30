package libroom

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// ImageSource is one node of the mirror-image tree. Records are
// immutable once appended to Room.Sources.
type ImageSource struct {
	Position    Vec
	Order       int
	Attenuation Real
	GenWall     int // index into Room.Walls, -1 at order 0
	Parent      int // index into Room.Sources, -1 at order 0
	VisibleMics []bool
}

// Visible reports whether the image reaches at least one microphone.
func (s *ImageSource) Visible() bool {
	for _, v := range s.VisibleMics {
		if v {
			return true
		}
	}
	return false
}

// attenThreshold is the branch-pruning floor, falling back to the
// package default when the Room carries no override.
func (r *Room) attenThreshold() Real {
	if r.AttenThreshold > 0 {
		return r.AttenThreshold
	}
	return AttenThres
}

// checkVisibility tests the straight segment from the image position
// to the microphone: for order > 0 it must cross the bounded polygon
// of the generating wall, and it must cross no obstructing wall and no
// other boundary wall.
func (r *Room) checkVisibility(pos Vec, order, genWall int, mic Vec) bool {
	if order > 0 {
		if !r.Walls[genWall].Intersects(mic, pos) {
			return false
		}
	}
	for i, w := range r.Walls {
		if order > 0 && i == genWall {
			continue
		}
		if w.Intersects(mic, pos) {
			return false
		}
	}
	return true
}

func (r *Room) finishImage(img *ImageSource) {
	img.VisibleMics = make([]bool, len(r.Microphones))
	for m, mic := range r.Microphones {
		img.VisibleMics[m] = r.checkVisibility(img.Position, img.Order, img.GenWall, mic)
	}
}

// ImageSourceModel populates Room.Sources with the mirror images of
// the source up to maxOrder, breadth first. A branch stops expanding
// when it reaches maxOrder or its attenuation falls below the pruning
// floor. Emission order is deterministic: increasing order, then
// parent order, then wall index — preserved under the parallel
// per-level expansion by merging an indexed candidate slice.
func (r *Room) ImageSourceModel(source Vec, maxOrder int) {
	r.Sources = r.Sources[:0]

	root := ImageSource{Position: source, Order: 0, Attenuation: 1, GenWall: -1, Parent: -1}
	r.finishImage(&root)
	r.Sources = append(r.Sources, root)

	thres := r.attenThreshold()
	level := []int{0} // arena indices of the current order

	for order := 1; order <= maxOrder; order++ {
		nw := len(r.Walls)
		cands := make([]*ImageSource, len(level)*nw)

		expand := func(li int) {
			parentIdx := level[li]
			parent := &r.Sources[parentIdx]
			for wi, w := range r.Walls {
				if wi == parent.GenWall {
					continue // trivial immediate back-reflection
				}
				atten := parent.Attenuation * (1 - w.Absorption)
				if atten < thres {
					continue
				}
				img := &ImageSource{
					Position:    w.Reflect(parent.Position),
					Order:       order,
					Attenuation: atten,
					GenWall:     wi,
					Parent:      parentIdx,
				}
				r.finishImage(img)
				cands[li*nw+wi] = img
			}
		}

		if workers := runtime.NumCPU(); workers > 1 && len(level) >= 2*workers {
			var wg sync.WaitGroup
			next := make(chan int)
			wg.Add(workers)
			for k := 0; k < workers; k++ {
				go func() {
					defer wg.Done()
					for li := range next {
						expand(li)
					}
				}()
			}
			for li := range level {
				next <- li
			}
			close(next)
			wg.Wait()
		} else {
			for li := range level {
				expand(li)
			}
		}

		level = level[:0]
		for _, img := range cands {
			if img == nil {
				continue
			}
			r.Sources = append(r.Sources, *img)
			level = append(level, len(r.Sources)-1)
		}
		if len(level) == 0 {
			break
		}
	}
	DebugLog("ISM: %d image sources up to order %d", len(r.Sources), maxOrder)
}

// shoeboxWalls locates, per axis and side, the boundary wall lying in
// the corresponding plane of the axis-aligned box [0, dims].
func (r *Room) shoeboxWalls(dims Vec) (lo, hi [3]int, err error) {
	axes := [3]Vec{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	d := [3]Real{dims.X, dims.Y, dims.Z}
	for a := 0; a < r.Dim; a++ {
		lo[a], hi[a] = -1, -1
		for i, w := range r.Walls {
			if math.Abs(math.Abs(w.Normal.Dot(axes[a]))-1) > r.Eps {
				continue
			}
			var off Real
			switch a {
			case 0:
				off = w.Origin.X
			case 1:
				off = w.Origin.Y
			default:
				off = w.Origin.Z
			}
			if math.Abs(off) < r.Eps {
				lo[a] = i
			} else if math.Abs(off-d[a]) < r.Eps {
				hi[a] = i
			}
		}
		if lo[a] < 0 || hi[a] < 0 {
			return lo, hi, fmt.Errorf("room is not the axis-aligned box [0, %v]: missing wall on axis %d", dims, a)
		}
	}
	return lo, hi, nil
}

// axisImage maps a lattice index n along one axis to the image
// coordinate and the reflection counts off the low and high walls.
func axisImage(n int, x, l Real) (pos Real, nLo, nHi int) {
	if n%2 == 0 {
		pos = Real(n)*l + x
	} else {
		pos = Real(n+1)*l - x
	}
	if n >= 0 {
		return pos, n / 2, (n + 1) / 2
	}
	m := -n
	return pos, (m + 1) / 2, m / 2
}

// ImageSourceShoebox is the closed-form fast path for the axis-aligned
// rectangular room [0, dims]: the image lattice is regular, so valid
// images up to maxOrder are enumerated directly by per-axis reflection
// counts instead of the generic wall-by-wall expansion. For small
// orders it produces the same multiset of (position, order,
// attenuation) as ImageSourceModel. A shoebox is convex, so every
// image is visible to every microphone; generating walls are not
// tracked (-1).
func (r *Room) ImageSourceShoebox(source, dims Vec, maxOrder int) error {
	loW, hiW, err := r.shoeboxWalls(dims)
	if err != nil {
		return err
	}
	r.Sources = r.Sources[:0]

	src := [3]Real{source.X, source.Y, source.Z}
	dim := [3]Real{dims.X, dims.Y, dims.Z}
	thres := r.attenThreshold()

	allVisible := make([]bool, len(r.Microphones))
	for i := range allVisible {
		allVisible[i] = true
	}

	emit := func(n [3]int, order int) {
		var p [3]Real
		atten := Real(1)
		for a := 0; a < r.Dim; a++ {
			pos, nLo, nHi := axisImage(n[a], src[a], dim[a])
			p[a] = pos
			atten *= math.Pow(1-r.Walls[loW[a]].Absorption, Real(nLo)) *
				math.Pow(1-r.Walls[hiW[a]].Absorption, Real(nHi))
		}
		if atten < thres && order > 0 {
			return
		}
		r.Sources = append(r.Sources, ImageSource{
			Position:    Vec{p[0], p[1], p[2]},
			Order:       order,
			Attenuation: atten,
			GenWall:     -1,
			Parent:      -1,
			VisibleMics: append([]bool(nil), allVisible...),
		})
	}

	for order := 0; order <= maxOrder; order++ {
		for nx := -order; nx <= order; nx++ {
			rest := order - abs(nx)
			if r.Dim == 2 {
				for _, ny := range []int{-rest, rest} {
					if abs(nx)+abs(ny) != order {
						continue
					}
					emit([3]int{nx, ny, 0}, order)
					if rest == 0 {
						break // avoid emitting ny=0 twice
					}
				}
				continue
			}
			for ny := -rest; ny <= rest; ny++ {
				rem := rest - abs(ny)
				for _, nz := range []int{-rem, rem} {
					emit([3]int{nx, ny, nz}, order)
					if rem == 0 {
						break
					}
				}
			}
		}
	}
	DebugLog("ISM shoebox: %d image sources up to order %d", len(r.Sources), maxOrder)
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
