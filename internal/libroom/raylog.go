package libroom

import (
	"fmt"
	"sync"
)

type Category uint8

const (
	Detect    Category = iota // ray crossed a microphone sphere
	WallHit                   // ray hit a wall
	Scatter                   // diffuse bounce
	SpecRefl                  // specular bounce
	Absorb                    // energy fell below the threshold
	Escape                    // no wall ahead (open geometry)
	DistLimit                 // distance budget exhausted
	HopLimit                  // bounce cap reached
)

type RayLog struct {
	Name      string
	Category  Category
	Position  Vec
	Direction Vec
	Bounce    int
	Distance  Real
	Energy    Real
}

type rayLogCache struct {
	mu   sync.Mutex
	rays map[string][]RayLog
}

var cache = &rayLogCache{
	rays: make(map[string][]RayLog),
}

func logRay(name string, category Category, pos, dir Vec, bounce int, distance, energy Real) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.rays[name] = append(cache.rays[name], RayLog{
		Name:      name,
		Category:  category,
		Position:  pos,
		Direction: dir,
		Bounce:    bounce,
		Distance:  distance,
		Energy:    energy,
	})
}

func RaysStats() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	for k, v := range cache.rays {
		fmt.Printf("Ray type %s: %d logs\n", k, len(v))
	}
}
