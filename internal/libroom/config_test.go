package libroom

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const boxConfig = `{
  "dim": 2,
  "walls": [
    {"corners": [[0,0],[2,0]], "absorption": 0.1, "name": "south"},
    {"corners": [[2,0],[2,3]], "absorption": 0.2, "name": "east"},
    {"corners": [[2,3],[0,3]], "absorption": 0.3, "name": "north"},
    {"corners": [[0,3],[0,0]], "absorption": 0.4, "name": "west"}
  ],
  "microphones": [[1.3, 2.1]],
  "sources": [[0.5, 0.7]],
  "shoebox": [2, 3]
}`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, boxConfig))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Eps != DefaultEps {
		t.Errorf("eps default %g", cfg.Eps)
	}
	if cfg.SpeedOfSound != SpeedOfSound {
		t.Errorf("speed default %g", cfg.SpeedOfSound)
	}
	if cfg.MaxOrder != MaxISMOrder {
		t.Errorf("order default %d", cfg.MaxOrder)
	}
	if cfg.Rays != DefaultRays {
		t.Errorf("rays default %d", cfg.Rays)
	}
	if cfg.MicRadius != MicRadius {
		t.Errorf("mic radius default %g", cfg.MicRadius)
	}
	if cfg.MaxBounces != MaxBounces {
		t.Errorf("bounce default %d", cfg.MaxBounces)
	}
	if cfg.Out != "rir.json" {
		t.Errorf("out default %q", cfg.Out)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"bad dim", `{"dim": 4, "walls": [{"corners": [[0,0],[1,0]]}]}`},
		{"no walls", `{"dim": 2, "walls": []}`},
	}
	for _, c := range cases {
		if _, err := loadConfig(writeConfig(t, c.body)); err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file: expected an error")
	}
}

func TestConfigBuildRoom(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, boxConfig))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	room, err := cfg.BuildRoom()
	if err != nil {
		t.Fatalf("BuildRoom: %v", err)
	}
	if room.Dim != 2 || len(room.Walls) != 4 || len(room.Microphones) != 1 {
		t.Fatalf("room shape wrong: dim=%d walls=%d mics=%d", room.Dim, len(room.Walls), len(room.Microphones))
	}
	if room.Walls[1].Name != "east" || room.Walls[1].Absorption != 0.2 {
		t.Fatalf("wall 1 wrong: %+v", room.Walls[1])
	}
	if !room.Contains(Vec{1, 1, 0}) {
		t.Fatal("built room should contain its interior")
	}

	srcs, err := cfg.SourceVecs()
	if err != nil || len(srcs) != 1 || !vecAlmostEq(srcs[0], Vec{0.5, 0.7, 0}, 0) {
		t.Fatalf("sources wrong: %v %v", srcs, err)
	}
	dims, ok, err := cfg.ShoeboxDims()
	if err != nil || !ok || !vecAlmostEq(dims, Vec{2, 3, 0}, 0) {
		t.Fatalf("shoebox dims wrong: %v %v %v", dims, ok, err)
	}
}

func TestConfigCoordinateArity(t *testing.T) {
	bad := `{
  "dim": 2,
  "walls": [{"corners": [[0,0,0],[1,0,0]]}],
  "microphones": [[1,1]],
  "sources": [[0.5,0.5]]
}`
	cfg, err := loadConfig(writeConfig(t, bad))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if _, err := cfg.BuildRoom(); err == nil {
		t.Fatal("3-coordinate corners in a 2D room should fail")
	}
}

func TestConfigTraceCfg(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, boxConfig))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	room, err := cfg.BuildRoom()
	if err != nil {
		t.Fatalf("BuildRoom: %v", err)
	}

	tc := cfg.TraceCfg(room)
	if tc.MicRadius != MicRadius || tc.MaxBounces != MaxBounces {
		t.Fatalf("trace defaults not carried: %+v", tc)
	}
	if tc.MaxDist != 0 {
		t.Fatalf("distance budget should stay unset without a factor, got %g", tc.MaxDist)
	}

	cfg.DistFactor = 10
	tc = cfg.TraceCfg(room)
	if !nearly(tc.MaxDist, 10*room.MaxDist, 1e-12) {
		t.Fatalf("distance budget %g, want %g", tc.MaxDist, 10*room.MaxDist)
	}
}
