// pkg/mission/mission_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mission

import (
	"testing"

	"github.com/flightcore/sepcore/pkg/util"
)

func TestDecodeMissionsPreservesOrder(t *testing.T) {
	data := []byte(`{
		"Charlie": {"waypoints": [{"x":0,"y":0},{"x":10,"y":0}]},
		"Alpha":   {"waypoints": [{"x":0,"y":0},{"x":10,"y":0}]},
		"Bravo":   {"waypoints": [{"x":0,"y":0},{"x":10,"y":0}]}
	}`)

	dms, err := DecodeMissions(data, nil)
	if err != nil {
		t.Fatalf("DecodeMissions: %v", err)
	}
	want := []string{"Charlie", "Alpha", "Bravo"}
	if len(dms) != len(want) {
		t.Fatalf("expected %d missions, got %d", len(want), len(dms))
	}
	for i, id := range want {
		if dms[i].DroneID != id {
			t.Errorf("mission %d: got %q, expected %q (insertion order must survive decoding, spec §5)", i, dms[i].DroneID, id)
		}
	}
}

func TestDecodeMissionsSkipsMalformedEntrySilently(t *testing.T) {
	data := []byte(`{
		"Good": {"waypoints": [{"x":0,"y":0},{"x":10,"y":0}]},
		"Bad":  {"waypoints": "not-a-list"}
	}`)

	var elog util.ErrorLogger
	dms, err := DecodeMissions(data, &elog)
	if err != nil {
		t.Fatalf("DecodeMissions: %v", err)
	}
	if len(dms) != 1 || dms[0].DroneID != "Good" {
		t.Fatalf("expected only the well-formed mission to survive, got %+v", dms)
	}
	if !elog.HaveErrors() {
		t.Errorf("expected the malformed entry to be recorded on the error logger")
	}
}

func TestDecodeMissionsEmptyInputYieldsEmptyResult(t *testing.T) {
	dms, err := DecodeMissions([]byte(`{}`), nil)
	if err != nil {
		t.Fatalf("DecodeMissions: %v", err)
	}
	if len(dms) != 0 {
		t.Errorf("expected no missions for an empty input map, got %d", len(dms))
	}
}
