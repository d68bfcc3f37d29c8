// cmd/sepcore/main.go
//
// sepcore runs the conflict-detection-and-resolution core's offline
// pipeline over a JSON mission file: compile each mission to segments,
// detect pairwise conflicts, and optionally run the strategic resolver
// until the mission set is clear.
//
// Usage:
//
//	go run ./cmd/sepcore -resolve missions.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/flightcore/sepcore/pkg/conflict"
	"github.com/flightcore/sepcore/pkg/log"
	smath "github.com/flightcore/sepcore/pkg/math"
	"github.com/flightcore/sepcore/pkg/mission"
	"github.com/flightcore/sepcore/pkg/realtime"
	"github.com/flightcore/sepcore/pkg/resolve"
	"github.com/flightcore/sepcore/pkg/track"
	"github.com/flightcore/sepcore/pkg/util"
)

func main() {
	resolveFlag := flag.Bool("resolve", false, "run the strategic resolver until conflict-free or exhausted")
	timeShift := flag.Bool("time-shift", false, "use the time-shift-only resolver instead of the grid-search resolver")
	safetyRadius := flag.Float64("safety-radius", conflict.DefaultConfig().SafetyRadius, "horizontal safety radius in meters")
	verticalRadius := flag.Float64("vertical-radius", conflict.DefaultConfig().VerticalSafetyRadius, "vertical safety radius in meters")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	realtimeDemo := flag.Bool("realtime", false, "after the offline check, replay the compiled segments through a synthetic real-time tick loop")
	tickDT := flag.Float64("tick-dt", 1.0, "seconds between real-time monitor ticks, used with -realtime")
	flag.Parse()

	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "usage: sepcore [flags] <missions.json>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	lg := log.New(false, *logLevel, "")

	data, err := os.ReadFile(flag.Args()[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var elog util.ErrorLogger
	missions, err := mission.DecodeMissions(data, &elog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if elog.HaveErrors() {
		fmt.Fprintf(os.Stderr, "%s", elog.String())
	}

	cfg := conflict.Config{SafetyRadius: *safetyRadius, VerticalSafetyRadius: *verticalRadius}

	segments := make(map[string][]mission.Segment)
	var allSegments []mission.Segment
	for _, dm := range missions {
		segs := mission.Compile(dm.DroneID, dm.Spec)
		segments[dm.DroneID] = segs
		allSegments = append(allSegments, segs...)
	}

	reports := conflict.NewDetector(cfg, allSegments, lg).Detect()
	printReports("initial", reports)

	if *resolveFlag && len(reports) > 0 {
		var result resolve.Result
		if *timeShift {
			result = resolve.ResolveTimeShiftOnly(cfg, segments, lg)
		} else {
			result = resolve.Resolve(cfg, segments, lg)
		}
		printResolution(result)

		var final []mission.Segment
		for _, segs := range result.Segments {
			final = append(final, segs...)
		}
		after := conflict.NewDetector(cfg, final, lg).Detect()
		printReports("after resolution", after)
	}

	if *realtimeDemo {
		runRealtimeDemo(allSegments, *tickDT, lg)
	}
}

// runRealtimeDemo replays a mission set's compiled segments through the
// real-time monitor (spec §4.G/4.H): every drone is ingested as a
// cooperative (controlled) telemetry source at tickDT-second steps and the
// monitor is ticked once per step, printing any conflicts it raises.
func runRealtimeDemo(segments []mission.Segment, tickDT float64, lg *log.Logger) {
	byDrone := make(map[string][]mission.Segment)
	tMin, tMax := 0.0, 0.0
	first := true
	for _, s := range segments {
		byDrone[s.DroneID] = append(byDrone[s.DroneID], s)
		if first || s.TStart < tMin {
			tMin = s.TStart
		}
		if first || s.TEnd > tMax {
			tMax = s.TEnd
		}
		first = false
	}
	if len(byDrone) == 0 {
		return
	}

	tm := realtime.NewTelemeter(realtime.DefaultRollingBufferSize, track.NewTracker(lg))
	monitor := realtime.NewMonitor(realtime.DefaultMonitorConfig(), tm)

	fmt.Printf("realtime demo: %d drone(s), t in [%.1f, %.1f], dt=%.1f\n", len(byDrone), tMin, tMax, tickDT)
	for t := tMin; t <= tMax; t += tickDT {
		for droneID, segs := range byDrone {
			pos, vel, active := positionAt(segs, t)
			if !active {
				continue
			}
			tm.Ingest(realtime.Observation{
				ID: droneID, Kind: realtime.KindControlled,
				X: pos[0], Y: pos[1], Z: pos[2],
				VX: vel[0], VY: vel[1], VZ: vel[2], HasVelocity: true,
				T: t,
			})
		}

		for _, c := range monitor.Tick() {
			b, _ := json.Marshal(c)
			fmt.Printf("  t=%.1f conflict: %s\n", t, b)
		}
	}
}

// positionAt returns the position and velocity of a drone's compiled
// segments at time t, or active=false if the drone has no segment covering
// t (before launch or after its final leg ends).
func positionAt(segs []mission.Segment, t float64) (pos, vel smath.Vec3, active bool) {
	for _, s := range segs {
		if t < s.TStart || t > s.TEnd {
			continue
		}
		p := smath.Add3(s.A0, smath.Scale3(s.Velocity, t-s.TStart))
		return p, s.Velocity, true
	}
	return smath.Vec3{}, smath.Vec3{}, false
}

func printReports(label string, reports []conflict.Report) {
	fmt.Printf("%s: %d conflict(s)\n", label, len(reports))
	for _, r := range reports {
		b, _ := json.Marshal(r)
		fmt.Printf("  %s\n", b)
	}
}

func printResolution(result resolve.Result) {
	fmt.Printf("resolver: method=%s iterations=%d\n", result.Method, result.Iterations)
	for id, res := range result.Resolutions {
		b, _ := json.Marshal(res)
		fmt.Printf("  %s: %s\n", id, b)
	}
}
