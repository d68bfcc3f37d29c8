// cmd/sepproof prints an analytic closest-point-of-approach proof for one
// aircraft pair: the parametric motion equations, the relative-motion
// reduction, and the exact CPA time, distance, and safety verdict.
//
// Usage:
//
//	go run ./cmd/sepproof -radius 10 \
//	    -pA 0,0,50 -vA 5,5,0 -pB 0,100,50 -vB 5,-5,0 -t0 0 -t1 20
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/flightcore/sepcore/pkg/geo"
	smath "github.com/flightcore/sepcore/pkg/math"
)

func main() {
	radius := flag.Float64("radius", 10.0, "safety radius in meters (tactical-proof default)")
	pAStr := flag.String("pA", "0,0,50", "aircraft A initial position, x,y,z")
	vAStr := flag.String("vA", "5,5,0", "aircraft A velocity, vx,vy,vz")
	pBStr := flag.String("pB", "0,100,50", "aircraft B initial position, x,y,z")
	vBStr := flag.String("vB", "5,-5,0", "aircraft B velocity, vx,vy,vz")
	t0 := flag.Float64("t0", 0, "evaluation window start, seconds")
	t1 := flag.Float64("t1", 20, "evaluation window end, seconds")
	flag.Parse()

	p0A, errA := parseVec3(*pAStr)
	vA, errvA := parseVec3(*vAStr)
	p0B, errB := parseVec3(*pBStr)
	vB, errvB := parseVec3(*vBStr)
	if err := firstError(errA, errvA, errB, errvB); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Println("ASSUMPTIONS:")
	fmt.Println("- Constant velocity per segment")
	fmt.Println("- Straight-line motion")
	fmt.Println("- No GPS noise")
	fmt.Println("- No wind")
	fmt.Println("- No acceleration")
	fmt.Println()

	fmt.Println("Parametric modeling:")
	fmt.Printf("  P_A(t) = %v + %v * t\n", p0A, vA)
	fmt.Printf("  P_B(t) = %v + %v * t\n", p0B, vB)
	fmt.Println()

	w0 := smath.Sub3(p0A, p0B)
	v := smath.Sub3(vA, vB)
	fmt.Println("Analytic optimization:")
	fmt.Printf("  Relative motion D(t) = %v + %v * t\n", w0, v)
	fmt.Println("  Minimizing squared distance D^2(t)")
	fmt.Println()

	tCpa, minDist := geo.CPA3(p0A, vA, p0B, vB)

	// Clamp to the evaluation window (the offline detector clamps only
	// against its upper endpoint; this standalone proof mirrors the
	// original's two-sided clamp since it has no notion of a segment's
	// own start time to anchor t0 against).
	switch {
	case tCpa < *t0:
		tCpa = *t0
		minDist = smath.Length3(smath.Add3(w0, smath.Scale3(v, tCpa)))
	case tCpa > *t1:
		tCpa = *t1
		minDist = smath.Length3(smath.Add3(w0, smath.Scale3(v, tCpa)))
	}

	fmt.Println("Exact evaluation:")
	fmt.Printf("  CPA time: %.3fs\n", tCpa)
	fmt.Printf("  Min distance: %.3fm\n", minDist)
	fmt.Printf("  Threshold: %.1fm\n", *radius)

	status := "SAFE"
	if minDist < *radius {
		status = "VIOLATION"
	}
	fmt.Printf("  Status: %s\n", status)
	fmt.Println()

	fmt.Println("Conclusion:")
	if status == "VIOLATION" {
		fmt.Printf("  The mathematical bounds predict a critically severe minimum distance of %.3fm at exactly t=%.3fs.\n", minDist, tCpa)
	} else {
		fmt.Printf("  The planned trajectory is mathematically guaranteed to maintain at least %.3fm separation within the evaluation window.\n", minDist)
	}
}

func parseVec3(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("%q: expected 3 comma-separated components", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("%q: %w", s, err)
		}
		v[i] = f
	}
	return v, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
