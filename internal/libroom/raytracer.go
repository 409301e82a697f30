package libroom

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
)

// HistEntry is one microphone detection in the ray-tracing histogram.
type HistEntry struct {
	Distance Real // cumulative travel distance at detection
	Energy   Real
	Bounces  int
}

// TraceCfg bundles the stochastic simulation parameters. Zero fields
// take the package defaults (withDefaults).
type TraceCfg struct {
	MicRadius   Real
	EnergyThres Real
	MaxBounces  int
	MaxDist     Real // travel budget; 0 means DistFactor * Room.MaxDist
}

func (c TraceCfg) withDefaults(r *Room) TraceCfg {
	if c.MicRadius <= 0 {
		c.MicRadius = MicRadius
	}
	if c.EnergyThres <= 0 {
		c.EnergyThres = EnergyThres
	}
	if c.MaxBounces <= 0 {
		c.MaxBounces = MaxBounces
	}
	if c.MaxDist <= 0 {
		c.MaxDist = DistFactor * r.MaxDist
	}
	return c
}

// sampleScatteredDir returns a cosine-weighted unit direction on the
// hemisphere (half circle in 2D) around the unit inward normal n.
// 3D construction: uniform point on the unit disk for the tangent
// part, normal component sqrt(1 - r^2).
func sampleScatteredDir(n Vec, dim int, rng *rand.Rand) Vec {
	if dim == 2 {
		t := Vec{-n.Y, n.X, 0}
		s := 2*rng.Float64() - 1 // sin of the deflection, cosine-weighted
		c := math.Sqrt(1 - s*s)
		return n.Mul(c).Add(t.Mul(s))
	}

	// orthonormal tangent basis around n
	h := Vec{1, 0, 0}
	if math.Abs(n.X) > 0.9 {
		h = Vec{0, 1, 0}
	}
	u := h.Sub(n.Mul(h.Dot(n))).Norm()
	v := n.Cross(u)

	rr := math.Sqrt(rng.Float64())
	phi := 2 * math.Pi * rng.Float64()
	tx, ty := rr*math.Cos(phi), rr*math.Sin(phi)
	nn := math.Sqrt(math.Max(0, 1-tx*tx-ty*ty))
	return u.Mul(tx).Add(v.Mul(ty)).Add(n.Mul(nn)).Norm()
}

// detectAlong records, into hist, every microphone whose detection
// sphere is crossed by the segment [pos, end]. Microphones are
// transparent listening points: detection never terminates the ray.
func (r *Room) detectAlong(pos, end Vec, energy, totalDist Real, bounce int, cfg TraceCfg, hist [][]HistEntry) {
	for m, mic := range r.Microphones {
		if _, along, ok := MicIntersection(pos, end, mic, cfg.MicRadius); ok {
			d := totalDist + along
			hist[m] = append(hist[m], HistEntry{
				Distance: d,
				Energy:   energy / (d*d + epsDist),
				Bounces:  bounce,
			})
			if debugEnabled {
				logRay("mic_detect", Detect, pos, end.Sub(pos).Norm(), bounce, d, energy)
			}
		}
	}
}

// scatRayInto deposits the diffuse contribution of a scattering event
// at hit (on wall wallIdx, inward normal n) into every microphone that
// is in line of sight of the hit point. A single scattered sample does
// not trace to every microphone, so each contribution is weighted by
// the fraction of the hemisphere the detection sphere subtends:
// 1 - sqrt(1 - r^2/d^2).
func (r *Room) scatRayInto(hit Vec, wallIdx int, n Vec, energy, totalDist Real, bounce int, cfg TraceCfg, hist [][]HistEntry) {
	for m, mic := range r.Microphones {
		if mic.Sub(hit).Dot(n) <= 0 {
			continue // behind the wall
		}
		blocked := false
		for i, w := range r.Walls {
			if i == wallIdx {
				continue
			}
			if w.Intersects(hit, mic) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		d := mic.Sub(hit).Len()
		weight := Real(1)
		if d > cfg.MicRadius {
			ratio := cfg.MicRadius / d
			weight = 1 - math.Sqrt(1-ratio*ratio)
		}
		total := totalDist + d
		hist[m] = append(hist[m], HistEntry{
			Distance: total,
			Energy:   energy * weight / (total*total + epsDist),
			Bounces:  bounce,
		})
	}
}

// ScatRay is the exposed single-event form of the diffuse deposit: it
// evaluates the scattered contribution of a ray of the given energy
// hitting wall wallIdx at hit, appending into the Room histogram.
func (r *Room) ScatRay(hit Vec, wallIdx int, incident Vec, energy, totalDist Real, cfg TraceCfg) {
	cfg = cfg.withDefaults(r)
	n := r.Walls[wallIdx].Normal
	if incident.Dot(n) > 0 {
		n = n.Mul(-1)
	}
	r.scatRayInto(hit, wallIdx, n, energy, totalDist, 0, cfg, r.Hist)
}

// simulRay traces one stochastic ray from pos along dir, appending
// microphone detections into hist. Each ray is an independent
// particle: private position/direction/energy/distance state, no
// shared mutation beyond the append-only histogram.
func (r *Room) simulRay(pos, dir Vec, rng *rand.Rand, cfg TraceCfg, hist [][]HistEntry) {
	dir = dir.Norm()
	energy := Real(1)
	totalDist := Real(0)
	lastWall := -1

	for bounce := 0; bounce < cfg.MaxBounces; bounce++ {
		hit, wi, d := r.NextWallHit(pos, dir, lastWall)
		if wi < 0 {
			if debugEnabled {
				logRay("escaped", Escape, pos, dir, bounce, totalDist, energy)
			}
			return
		}
		if debugEnabled {
			logRay("wall_hit", WallHit, hit, dir, bounce, totalDist+d, energy)
		}

		r.detectAlong(pos, hit, energy, totalDist, bounce, cfg, hist)

		totalDist += d
		if totalDist > cfg.MaxDist {
			if debugEnabled {
				logRay("distance_budget", DistLimit, hit, dir, bounce, totalDist, energy)
			}
			return
		}

		w := r.Walls[wi]
		energy *= 1 - w.Absorption
		if energy < cfg.EnergyThres {
			if debugEnabled {
				logRay("absorbed", Absorb, hit, dir, bounce, totalDist, energy)
			}
			return
		}

		// inward normal at the hit
		n := w.Normal
		if dir.Dot(n) > 0 {
			n = n.Mul(-1)
		}

		if rng.Float64() < w.Scattering {
			r.scatRayInto(hit, wi, n, energy, totalDist, bounce, cfg, hist)
			dir = sampleScatteredDir(n, r.Dim, rng)
			if debugEnabled {
				logRay("scattered", Scatter, hit, dir, bounce, totalDist, energy)
			}
		} else {
			dir = w.ReflectDir(dir).Norm()
			if debugEnabled {
				logRay("reflected", SpecRefl, hit, dir, bounce, totalDist, energy)
			}
		}

		pos = hit.Add(dir.Mul(bumpShift))
		lastWall = wi
	}

	if debugEnabled {
		logRay("bounce_cap", HopLimit, pos, dir, cfg.MaxBounces, totalDist, energy)
	}
}

// SimulRay traces one ray, appending detections into the Room
// histogram. External orchestration decides how many rays to launch.
func (r *Room) SimulRay(pos, dir Vec, rng *rand.Rand, cfg TraceCfg) {
	r.simulRay(pos, dir, rng, cfg.withDefaults(r), r.Hist)
}

// randUnitDir samples a direction uniformly on the unit circle (2D) or
// sphere (3D).
func randUnitDir(dim int, rng *rand.Rand) Vec {
	if dim == 2 {
		phi := 2 * math.Pi * rng.Float64()
		return Vec{math.Cos(phi), math.Sin(phi), 0}
	}
	for {
		v := Vec{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		if l := v.Len(); l > 1e-12 {
			return v.Mul(1 / l)
		}
	}
}

// TraceRays launches nRays independent rays from the source with
// uniformly sampled initial directions, spread across NumCPU workers.
// Each worker owns a private RNG and histogram buffer; buffers are
// merged into Room.Hist in worker order after all rays complete, so
// the accumulator only ever sees append-only insertion.
func (r *Room) TraceRays(source Vec, nRays int, cfg TraceCfg, seed int64) {
	if nRays <= 0 {
		return
	}
	cfg = cfg.withDefaults(r)

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > nRays {
		workers = nRays
	}
	per, rem := nRays/workers, nRays%workers

	locals := make([][][]HistEntry, workers)
	for w := range locals {
		locals[w] = make([][]HistEntry, len(r.Microphones))
	}

	var counter int64
	nextPrint := int64(0)
	if nRays >= progressSteps {
		nextPrint = int64(nRays / progressSteps)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		n := per
		if w < rem {
			n++
		}
		go func(wid, n int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed ^ int64(uint64(wid)*0x9e3779b97f4a7c15)))
			local := locals[wid]
			for s := 0; s < n; s++ {
				r.simulRay(source, randUnitDir(r.Dim, rng), rng, cfg, local)
				fired := atomic.AddInt64(&counter, 1)
				if nextPrint > 0 && fired%nextPrint == 0 {
					fmt.Printf("[PROGRESS] %.2f%%\n", Real(fired)*100/Real(nRays))
				}
			}
		}(w, n)
	}
	wg.Wait()

	for _, local := range locals {
		for m := range r.Hist {
			r.Hist[m] = append(r.Hist[m], local[m]...)
		}
	}
}
