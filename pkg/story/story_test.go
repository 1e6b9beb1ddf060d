package story

import (
	"errors"
	"reflect"
	"testing"
)

func testStory() *Story {
	return &Story{
		Name:      "manor",
		Narrative: "A body in the library.",
		Characters: []Character{
			{Name: "Scarlett", Backstory: "secret a"},
			{Name: "Mustard", Backstory: "secret b"},
		},
		Locations: []Location{
			{Name: "Library", Evidence: map[string]string{
				"knife":  "A bloody knife.",
				"ledger": "The victim's ledger, one page torn out.",
			}},
			{Name: "Garden", Evidence: map[string]string{}},
		},
	}
}

func TestStory_StartingLocation(t *testing.T) {
	st := testStory()
	if got := st.StartingLocation(); got != "Library" {
		t.Errorf("Expected first location in definition order, got %q", got)
	}

	empty := &Story{}
	if got := empty.StartingLocation(); got != "" {
		t.Errorf("Expected empty starting location, got %q", got)
	}
}

func TestStory_Lookups(t *testing.T) {
	st := testStory()

	if st.Location("Garden") == nil {
		t.Error("Expected Garden to exist")
	}
	if st.Location("Attic") != nil {
		t.Error("Expected Attic lookup to return nil")
	}
	if st.Character("Mustard") == nil {
		t.Error("Expected Mustard to exist")
	}
	if st.Character("Green") != nil {
		t.Error("Expected Green lookup to return nil")
	}
}

func TestStory_EvidenceNames(t *testing.T) {
	st := testStory()

	got := st.EvidenceNames("Library")
	want := []string{"knife", "ledger"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected sorted evidence names %v, got %v", want, got)
	}

	if got := st.EvidenceNames("Garden"); len(got) != 0 {
		t.Errorf("Expected no evidence in the Garden, got %v", got)
	}
	if got := st.EvidenceNames("Attic"); got != nil {
		t.Errorf("Expected nil for unknown location, got %v", got)
	}
}

func TestStory_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Story)
		wantErr bool
	}{
		{"valid", func(s *Story) {}, false},
		{"empty name", func(s *Story) { s.Name = " " }, true},
		{"no characters", func(s *Story) { s.Characters = nil }, true},
		{"no locations", func(s *Story) { s.Locations = nil }, true},
		{"duplicate character", func(s *Story) {
			s.Characters = append(s.Characters, Character{Name: "Scarlett"})
		}, true},
		{"duplicate location", func(s *Story) {
			s.Locations = append(s.Locations, Location{Name: "Library"})
		}, true},
		{"empty character name", func(s *Story) {
			s.Characters[0].Name = ""
		}, true},
		{"empty evidence name", func(s *Story) {
			s.Locations[0].Evidence[""] = "mystery"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := testStory()
			tt.mutate(st)
			err := st.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected validation error, got nil")
				}
				if !errors.Is(err, ErrMalformedStory) {
					t.Errorf("Expected ErrMalformedStory, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("Expected valid story, got %v", err)
			}
		})
	}
}
