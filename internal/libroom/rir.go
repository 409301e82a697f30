package libroom

import (
	"encoding/json"
	"math"
	"os"
	"sort"
)

// RIREntry is one arrival at a microphone, ready for an external
// synthesis stage.
type RIREntry struct {
	Delay     Real `json:"delay"`
	Amplitude Real `json:"amplitude"`
	Order     int  `json:"order"` // reflection order or bounce count
}

// GetRIREntries derives, per microphone, the ordered (delay,
// amplitude) sequence from the accumulated image sources and the
// ray-tracing histogram, given the propagation speed c. Image sources
// contribute attenuation/(4*pi*distance) at distance/c; histogram
// entries carry energy, converted to amplitude by a square root.
func (r *Room) GetRIREntries(c Real) [][]RIREntry {
	out := make([][]RIREntry, len(r.Microphones))
	for m, mic := range r.Microphones {
		var entries []RIREntry
		for _, s := range r.Sources {
			if !s.VisibleMics[m] {
				continue
			}
			d := s.Position.Dist(mic)
			if d < r.Eps {
				continue // microphone embedded in the source
			}
			entries = append(entries, RIREntry{
				Delay:     d / c,
				Amplitude: s.Attenuation / (4 * math.Pi * d),
				Order:     s.Order,
			})
		}
		for _, h := range r.Hist[m] {
			entries = append(entries, RIREntry{
				Delay:     h.Distance / c,
				Amplitude: math.Sqrt(h.Energy),
				Order:     h.Bounces,
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Delay < entries[j].Delay })
		out[m] = entries
	}
	return out
}

// ClearHist drops the ray-tracing histogram, keeping capacity.
func (r *Room) ClearHist() {
	for m := range r.Hist {
		r.Hist[m] = r.Hist[m][:0]
	}
}

// rirOutput is the on-disk shape of a simulation result.
type rirOutput struct {
	SpeedOfSound Real         `json:"speedOfSound"`
	Microphones  [][]RIREntry `json:"microphones"`
}

// WriteRIR saves per-microphone RIR entries as JSON.
func WriteRIR(path string, c Real, entries [][]RIREntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(rirOutput{SpeedOfSound: c, Microphones: entries})
}
