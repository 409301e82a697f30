package libroom

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleScatteredDirCosine3D(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := Vec{0, 0, 1}
	const samples = 200_000
	var sum Real
	for i := 0; i < samples; i++ {
		d := sampleScatteredDir(n, 3, rng)
		if !nearly(d.Len(), 1, 1e-9) {
			t.Fatalf("sample not unit: %g", d.Len())
		}
		c := d.Dot(n)
		if c < -1e-12 {
			t.Fatalf("sample below the surface: cos=%g", c)
		}
		sum += c
	}
	// cosine-weighted hemisphere: E[cos theta] = 2/3
	mean := sum / samples
	if math.Abs(mean-2.0/3.0) > 0.01 {
		t.Fatalf("mean cosine %g, want 2/3", mean)
	}
}

func TestSampleScatteredDirCosine2D(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	n := Vec{0, 1, 0}
	const samples = 200_000
	var sum Real
	for i := 0; i < samples; i++ {
		d := sampleScatteredDir(n, 2, rng)
		if !nearly(d.Len(), 1, 1e-9) {
			t.Fatalf("sample not unit: %g", d.Len())
		}
		if d.Z != 0 {
			t.Fatal("2D sample has a Z component")
		}
		c := d.Dot(n)
		if c < -1e-12 {
			t.Fatalf("sample below the surface: cos=%g", c)
		}
		sum += c
	}
	// cosine-weighted half circle: E[cos theta] = pi/4
	mean := sum / samples
	if math.Abs(mean-math.Pi/4) > 0.01 {
		t.Fatalf("mean cosine %g, want pi/4", mean)
	}
}

func TestSimulRayDirectDetection(t *testing.T) {
	// Fully absorbing walls terminate the ray at its first hit, so the
	// single pass over the microphone is the only detection.
	r := mustRoom(t, boxWalls2D(t, 2, 2, [4]Real{1, 1, 1, 1}, 0), nil, []Vec{{1.5, 1, 0}})
	cfg := TraceCfg{MicRadius: 0.1}

	rng := rand.New(rand.NewSource(1))
	r.SimulRay(Vec{0.3, 1, 0}, Vec{1, 0, 0}, rng, cfg)

	if len(r.Hist[0]) != 1 {
		t.Fatalf("expected exactly one detection, got %d", len(r.Hist[0]))
	}
	e := r.Hist[0][0]
	wantDist := 1.2 - cfg.MicRadius // sphere entry at x = 1.4
	if !nearly(e.Distance, wantDist, 1e-9) {
		t.Fatalf("detection distance %g, want %g", e.Distance, wantDist)
	}
	wantEnergy := 1 / (wantDist*wantDist + epsDist)
	if !nearly(e.Energy, wantEnergy, 1e-9) {
		t.Fatalf("detection energy %g, want %g", e.Energy, wantEnergy)
	}
	if e.Bounces != 0 {
		t.Fatalf("direct hit should record zero bounces, got %d", e.Bounces)
	}
}

func TestSimulRayMissesOffAxisMic(t *testing.T) {
	r := mustRoom(t, boxWalls2D(t, 2, 2, [4]Real{1, 1, 1, 1}, 0), nil, []Vec{{1.5, 1.5, 0}})
	rng := rand.New(rand.NewSource(1))
	r.SimulRay(Vec{0.3, 1, 0}, Vec{1, 0, 0}, rng, TraceCfg{MicRadius: 0.1})
	if len(r.Hist[0]) != 0 {
		t.Fatalf("ray passing 0.5 away from a 0.1 sphere recorded %d detections", len(r.Hist[0]))
	}
}

func TestSimulRaySpecularBounce(t *testing.T) {
	// Lossless mirror walls, no scattering: the ray along +X oscillates
	// between east and west, recrossing the microphone until the travel
	// budget runs out. Crossing count = floor(budget / width), one
	// detection per pass.
	r := mustRoom(t, boxWalls2D(t, 2, 2, [4]Real{0, 0, 0, 0}, 0), nil, []Vec{{1, 1, 0}})
	cfg := TraceCfg{MicRadius: 0.1, MaxDist: 7, MaxBounces: 100}
	rng := rand.New(rand.NewSource(1))
	r.SimulRay(Vec{0.5, 1, 0}, Vec{1, 0, 0}, rng, cfg)

	// segments: 0.5->east (1.5), east->west (2), west->east (2), then
	// the budget (7) is exceeded at the east wall (totals 1.5, 3.5, 5.5, 7.5)
	if len(r.Hist[0]) != 4 {
		t.Fatalf("expected 4 passes over the microphone, got %d", len(r.Hist[0]))
	}
	for i, e := range r.Hist[0] {
		if e.Bounces != i {
			t.Fatalf("pass %d recorded %d bounces", i, e.Bounces)
		}
		if i > 0 && e.Distance <= r.Hist[0][i-1].Distance {
			t.Fatalf("detection distances not increasing: %v", r.Hist[0])
		}
	}
}

func TestScatRayDeposit(t *testing.T) {
	r := mustRoom(t, boxWalls2D(t, 4, 4, [4]Real{}, 1), nil, []Vec{{2, 1, 0}})
	cfg := TraceCfg{MicRadius: 0.5}.withDefaults(r)

	// scattering event on the south wall directly below the microphone
	hit := Vec{2, 0, 0}
	r.ScatRay(hit, 0, Vec{0, -1, 0}, 1, 2, cfg)

	if len(r.Hist[0]) != 1 {
		t.Fatalf("expected one deposit, got %d", len(r.Hist[0]))
	}
	e := r.Hist[0][0]
	d := Real(1) // hit to microphone
	total := 2 + d
	ratio := cfg.MicRadius / d
	want := (1 - math.Sqrt(1-ratio*ratio)) / (total*total + epsDist)
	if !nearly(e.Energy, want, 1e-12) {
		t.Fatalf("deposit energy %g, want %g", e.Energy, want)
	}
	if !nearly(e.Distance, total, 1e-12) {
		t.Fatalf("deposit distance %g, want %g", e.Distance, total)
	}
}

func TestScatRayOcclusion(t *testing.T) {
	walls := boxWalls2D(t, 4, 4, [4]Real{}, 1)
	screen := mustWall(t, 2, []Vec{{1, 0.5, 0}, {3, 0.5, 0}}, 0, 0, "screen")
	r := mustRoom(t, append(walls, screen), []int{4}, []Vec{{2, 1, 0}})

	r.ScatRay(Vec{2, 0, 0}, 0, Vec{0, -1, 0}, 1, 0, TraceCfg{MicRadius: 0.1})
	if len(r.Hist[0]) != 0 {
		t.Fatalf("screened microphone received %d deposits", len(r.Hist[0]))
	}
}

func TestTraceRaysDeterministic(t *testing.T) {
	run := func() [][]HistEntry {
		r := mustRoom(t, boxWalls2D(t, 3, 2, [4]Real{0.3, 0.3, 0.3, 0.3}, 0.2), nil,
			[]Vec{{2.2, 1.1, 0}})
		r.TraceRays(Vec{0.8, 0.9, 0}, 500, TraceCfg{}, 12345)
		return r.Hist
	}
	h1, h2 := run(), run()
	if len(h1[0]) != len(h2[0]) {
		t.Fatalf("detection counts differ: %d vs %d", len(h1[0]), len(h2[0]))
	}
	for i := range h1[0] {
		if h1[0][i] != h2[0][i] {
			t.Fatalf("histograms diverge at %d: %+v vs %+v", i, h1[0][i], h2[0][i])
		}
	}
}

func TestTraceRaysEnergyBounds(t *testing.T) {
	r := mustRoom(t, boxWalls2D(t, 3, 2, [4]Real{0.2, 0.2, 0.2, 0.2}, 0.5), nil,
		[]Vec{{1.5, 1, 0}})
	cfg := TraceCfg{}.withDefaults(r)
	r.TraceRays(Vec{0.8, 0.9, 0}, 2000, cfg, 7)

	if len(r.Hist[0]) == 0 {
		t.Fatal("no detections in a small live room")
	}
	for _, e := range r.Hist[0] {
		if e.Energy <= 0 || math.IsNaN(e.Energy) || math.IsInf(e.Energy, 0) {
			t.Fatalf("bad detection energy %g", e.Energy)
		}
		if e.Distance <= 0 || e.Distance > cfg.MaxDist+r.MaxDist {
			t.Fatalf("detection distance %g outside the travel budget", e.Distance)
		}
		if e.Bounces < 0 || e.Bounces >= cfg.MaxBounces {
			t.Fatalf("bad bounce count %d", e.Bounces)
		}
	}
}

func TestRandUnitDir(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	var sum2, sum3 Vec
	const samples = 100_000
	for i := 0; i < samples; i++ {
		d2 := randUnitDir(2, rng)
		if !nearly(d2.Len(), 1, 1e-9) || d2.Z != 0 {
			t.Fatalf("bad 2D direction %+v", d2)
		}
		sum2 = sum2.Add(d2)
		d3 := randUnitDir(3, rng)
		if !nearly(d3.Len(), 1, 1e-9) {
			t.Fatalf("bad 3D direction %+v", d3)
		}
		sum3 = sum3.Add(d3)
	}
	if sum2.Len()/samples > 0.01 || sum3.Len()/samples > 0.01 {
		t.Fatalf("directional bias: mean2=%g mean3=%g", sum2.Len()/samples, sum3.Len()/samples)
	}
}
