package libroom

import (
	"fmt"
	"time"
)

// Run loads a simulation config, builds the room, runs the image
// source model and the stochastic ray tracer for every source, and
// writes the merged per-microphone RIR entries to the configured
// output file.
func Run(cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	room, err := cfg.BuildRoom()
	if err != nil {
		return err
	}
	sources, err := cfg.SourceVecs()
	if err != nil {
		return err
	}
	boxDims, shoebox, err := cfg.ShoeboxDims()
	if err != nil {
		return err
	}
	tcfg := cfg.TraceCfg(room)

	merged := make([][]RIREntry, len(room.Microphones))
	for i, src := range sources {
		if !room.Contains(src) {
			return fmt.Errorf("source %d at %v is outside the room", i, src)
		}

		if shoebox {
			if err := room.ImageSourceShoebox(src, boxDims, cfg.MaxOrder); err != nil {
				return err
			}
		} else {
			room.ImageSourceModel(src, cfg.MaxOrder)
		}
		DebugLog("Source #%d: %d image sources", i, len(room.Sources))

		room.ClearHist()
		start := time.Now()
		room.TraceRays(src, cfg.Rays, tcfg, cfg.Seed+int64(i))
		DebugLog("Source #%d: %d rays, time: %s", i, cfg.Rays, time.Since(start))

		for m, entries := range room.GetRIREntries(cfg.SpeedOfSound) {
			merged[m] = append(merged[m], entries...)
		}
	}

	if debugEnabled {
		RaysStats()
	}

	if err := WriteRIR(cfg.Out, cfg.SpeedOfSound, merged); err != nil {
		return err
	}
	fmt.Println("Saved RIR entries:", cfg.Out)
	return nil
}
