package game

import (
	"strings"
	"testing"
)

func TestMove_IsFree(t *testing.T) {
	s := newTestSession(t)

	res := s.Move("Scarlett", "Garden")
	if !res.OK() {
		t.Fatalf("Expected successful move, got %+v", res)
	}
	if res.TurnConsumed {
		t.Error("Moving must not consume a turn")
	}
	if s.Turn != 0 {
		t.Errorf("Turn cursor must not advance on a move, got %d", s.Turn)
	}

	p := s.Players["Scarlett"]
	if p.Location != "Garden" {
		t.Errorf("Expected Scarlett in the Garden, got %q", p.Location)
	}
	if len(p.Colocated) != 0 {
		t.Errorf("Expected Scarlett alone after moving, got %v", p.Colocated)
	}
	if len(p.Evidence) != 1 || p.Evidence[0] != "footprints" {
		t.Errorf("Expected Garden evidence after moving, got %v", p.Evidence)
	}

	// Several moves in a row are fine; it is still the same turn.
	s.Move("Scarlett", "Kitchen")
	s.Move("Scarlett", "Library")
	if s.Turn != 0 {
		t.Errorf("Turn cursor must survive repeated moves, got %d", s.Turn)
	}
}

func TestMove_RefreshesEveryView(t *testing.T) {
	s := newTestSession(t)

	// A move changes who everyone is co-located with, not just the
	// mover, and the stored views the API serves must all reflect it.
	s.Move("Scarlett", "Garden")

	got := s.Players["Mustard"].Colocated
	if len(got) != 1 || got[0] != "Plum" {
		t.Errorf("Mustard's stored view should no longer include Scarlett, got %v", got)
	}
	got = s.Players["Plum"].Colocated
	if len(got) != 1 || got[0] != "Mustard" {
		t.Errorf("Plum's stored view should no longer include Scarlett, got %v", got)
	}

	s.Move("Mustard", "Garden")
	got = s.Players["Scarlett"].Colocated
	if len(got) != 1 || got[0] != "Mustard" {
		t.Errorf("Scarlett's stored view should now include Mustard, got %v", got)
	}
}

func TestMove_InvalidLocation(t *testing.T) {
	s := newTestSession(t)

	res := s.Move("Scarlett", "Attic")
	if res.Kind != ResultInvalidLocation {
		t.Fatalf("Expected ResultInvalidLocation, got %s", res.Kind)
	}
	if len(res.ValidOptions) != 3 {
		t.Errorf("Expected all locations as valid options, got %v", res.ValidOptions)
	}
	if s.Players["Scarlett"].Location != "Library" {
		t.Error("A failed move must not change position")
	}
	if s.Turn != 0 {
		t.Error("A failed move must not consume a turn")
	}
}

func TestInspect_ConsumesTurnAndBroadcasts(t *testing.T) {
	s := newTestSession(t)
	s.Move("Plum", "Garden")

	res := s.Inspect("Scarlett", "knife")
	if !res.OK() {
		t.Fatalf("Expected successful inspection, got %+v", res)
	}
	if !res.TurnConsumed {
		t.Error("Inspecting must consume a turn")
	}
	if s.Turn != 1 {
		t.Errorf("Expected turn cursor 1 after inspection, got %d", s.Turn)
	}
	if res.Evidence != "knife" || !strings.Contains(res.EvidenceInfo, "dried blood") {
		t.Errorf("Expected evidence payload, got %+v", res)
	}

	// Mustard shares the Library and witnesses the inspection; Plum,
	// in the Garden, does not.
	line := "Scarlett examined the knife at the Library."
	if !containsLine(s.Players["Scarlett"].Log, line) {
		t.Error("Actor's transcript missing the inspection line")
	}
	if !containsLine(s.Players["Mustard"].Log, line) {
		t.Error("Co-located witness's transcript missing the inspection line")
	}
	if containsLine(s.Players["Plum"].Log, line) {
		t.Error("A character in another location must not witness the inspection")
	}
	if !containsLine(s.Events, line) {
		t.Error("Event log missing the inspection line")
	}
}

func TestInspect_UsesFreshPosition(t *testing.T) {
	s := newTestSession(t)

	// Moving then inspecting in the same turn must inspect at the new
	// location.
	s.Move("Scarlett", "Garden")
	res := s.Inspect("Scarlett", "knife")
	if res.Kind != ResultEvidenceNotFound {
		t.Fatalf("The knife is not in the Garden; got %s", res.Kind)
	}
	if len(res.ValidOptions) != 1 || res.ValidOptions[0] != "footprints" {
		t.Errorf("Expected the Garden's evidence as valid options, got %v", res.ValidOptions)
	}
	if s.Turn != 0 {
		t.Error("A failed inspection must not consume a turn")
	}

	res = s.Inspect("Scarlett", "footprints")
	if !res.OK() {
		t.Fatalf("Expected footprints at the Garden, got %+v", res)
	}
}

func TestInspect_EmptyLocation(t *testing.T) {
	s := newTestSession(t)
	s.Move("Scarlett", "Kitchen")

	res := s.Inspect("Scarlett", "knife")
	if res.Kind != ResultEvidenceNotFound {
		t.Fatalf("Expected ResultEvidenceNotFound, got %s", res.Kind)
	}
	if len(res.ValidOptions) != 0 {
		t.Errorf("Expected no valid options in an empty room, got %v", res.ValidOptions)
	}
}

func containsLine(log []string, line string) bool {
	for _, l := range log {
		if l == line {
			return true
		}
	}
	return false
}
