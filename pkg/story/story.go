package story

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedStory indicates story artifacts that cannot seed a session.
// It is fatal to session creation only, never to a running session.
var ErrMalformedStory = errors.New("malformed story")

// Character is one playable role in a story. The backstory is private
// text shown only to whoever controls the character.
type Character struct {
	Name      string `json:"name"`
	Backstory string `json:"backstory"`
}

// Location is one place in the story world, with the evidence that can
// be inspected there.
type Location struct {
	Name     string            `json:"name"`
	Evidence map[string]string `json:"evidence"` // evidence name -> description
}

// Story is the immutable world model for one detective scenario.
// Characters and Locations keep story-definition order: the first
// location is the universal starting location, and the character
// ordering drives the turn rotation for the whole session.
type Story struct {
	Name       string      `json:"name"`
	Narrative  string      `json:"narrative"`
	Characters []Character `json:"characters"`
	Locations  []Location  `json:"locations"`
}

// StartingLocation returns the first location in definition order.
func (s *Story) StartingLocation() string {
	if len(s.Locations) == 0 {
		return ""
	}
	return s.Locations[0].Name
}

// Location returns the named location, or nil if it does not exist.
func (s *Story) Location(name string) *Location {
	for i := range s.Locations {
		if s.Locations[i].Name == name {
			return &s.Locations[i]
		}
	}
	return nil
}

// Character returns the named character, or nil if it does not exist.
func (s *Story) Character(name string) *Character {
	for i := range s.Characters {
		if s.Characters[i].Name == name {
			return &s.Characters[i]
		}
	}
	return nil
}

// LocationNames returns all location names in definition order.
func (s *Story) LocationNames() []string {
	names := make([]string, 0, len(s.Locations))
	for _, l := range s.Locations {
		names = append(names, l.Name)
	}
	return names
}

// CharacterNames returns all character names in definition order.
func (s *Story) CharacterNames() []string {
	names := make([]string, 0, len(s.Characters))
	for _, c := range s.Characters {
		names = append(names, c.Name)
	}
	return names
}

// EvidenceNames returns the evidence names at the given location,
// sorted for stable presentation.
func (s *Story) EvidenceNames(location string) []string {
	l := s.Location(location)
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.Evidence))
	for name := range l.Evidence {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the story can seed a session. All failures wrap
// ErrMalformedStory.
func (s *Story) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: story name is empty", ErrMalformedStory)
	}
	if len(s.Characters) == 0 {
		return fmt.Errorf("%w: story %q has no characters", ErrMalformedStory, s.Name)
	}
	if len(s.Locations) == 0 {
		return fmt.Errorf("%w: story %q has no locations", ErrMalformedStory, s.Name)
	}

	seen := make(map[string]bool)
	for _, c := range s.Characters {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: story %q has a character with an empty name", ErrMalformedStory, s.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate character %q", ErrMalformedStory, c.Name)
		}
		seen[c.Name] = true
	}

	seen = make(map[string]bool)
	for _, l := range s.Locations {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("%w: story %q has a location with an empty name", ErrMalformedStory, s.Name)
		}
		if seen[l.Name] {
			return fmt.Errorf("%w: duplicate location %q", ErrMalformedStory, l.Name)
		}
		seen[l.Name] = true
		for name := range l.Evidence {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("%w: location %q has evidence with an empty name", ErrMalformedStory, l.Name)
			}
		}
	}
	return nil
}
