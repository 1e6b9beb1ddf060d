package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/crime-scene/pkg/story"
)

// Character is one playable role within a session. Human is resolved
// once per session, when a human player claims the character; every
// other character is agent-controlled.
type Character struct {
	Name      string `json:"name"`
	Backstory string `json:"backstory"`
	Human     bool   `json:"human,omitempty"`
}

// PlayerState is the mutable per-character state owned by a session.
// Colocated and Evidence are derived from Location and recomputed on
// every move; they are never incrementally maintained.
type PlayerState struct {
	Location  string   `json:"location"`
	Log       []string `json:"log"`
	Colocated []string `json:"colocated"`
	Evidence  []string `json:"evidence"`
}

// Session is one independent playthrough. The turn cursor is a
// monotonically increasing counter; the current character is the
// character list (story-definition order, captured at creation)
// indexed by cursor mod roster size.
type Session struct {
	ID           string                  `json:"id"`
	StoryName    string                  `json:"story_name"`
	Characters   []Character             `json:"characters"`
	Players      map[string]*PlayerState `json:"players"`
	Turn         int                     `json:"turn"`
	Conversation *Conversation           `json:"conversation,omitempty"`
	Events       []string                `json:"events"`
	EnforceTurns bool                    `json:"enforce_turns,omitempty"`
	IsEnded      bool                    `json:"is_ended,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`

	// Story is attached after load and shared read-only across
	// sessions that play the same story. It is not persisted with
	// the session.
	Story *story.Story `json:"-"`
}

// NewSession builds a session from a validated story: every character
// starts at the story's first location with an empty log, and the turn
// cursor is zero. The ID is a timestamp plus an opaque suffix, unique
// across concurrently live sessions.
func NewSession(st *story.Story, enforceTurns bool) *Session {
	now := time.Now()
	s := &Session{
		ID:           fmt.Sprintf("%s_%s", now.Format("20060102150405"), uuid.New().String()),
		StoryName:    st.Name,
		Players:      make(map[string]*PlayerState),
		Events:       make([]string, 0),
		EnforceTurns: enforceTurns,
		CreatedAt:    now,
		UpdatedAt:    now,
		Story:        st,
	}

	for _, c := range st.Characters {
		s.Characters = append(s.Characters, Character{
			Name:      c.Name,
			Backstory: c.Backstory,
		})
		s.Players[c.Name] = &PlayerState{
			Location: st.StartingLocation(),
			Log:      make([]string, 0),
		}
	}
	for name := range s.Players {
		s.recomputeDerived(name)
	}
	return s
}

// AttachStory re-links the shared world model after a session is
// loaded from storage and refreshes every character's derived sets.
func (s *Session) AttachStory(st *story.Story) {
	s.Story = st
	for name := range s.Players {
		s.recomputeDerived(name)
	}
}

// CurrentCharacter returns the character whose turn it is.
func (s *Session) CurrentCharacter() Character {
	return s.Characters[s.Turn%len(s.Characters)]
}

// Advance increments the turn cursor by exactly one and returns the
// new current character. Callers only invoke this once per
// turn-consuming action; no validation happens here.
func (s *Session) Advance() Character {
	s.Turn++
	return s.CurrentCharacter()
}

// IsTurnOf reports whether it is the named character's turn.
func (s *Session) IsTurnOf(name string) bool {
	return s.CurrentCharacter().Name == name
}

// Character returns the session's copy of the named character, or nil.
func (s *Session) Character(name string) *Character {
	for i := range s.Characters {
		if s.Characters[i].Name == name {
			return &s.Characters[i]
		}
	}
	return nil
}

// CharacterNames returns the roster in turn order.
func (s *Session) CharacterNames() []string {
	names := make([]string, 0, len(s.Characters))
	for _, c := range s.Characters {
		names = append(names, c.Name)
	}
	return names
}

// HumanCharacter returns the claimed character name, or "" if the
// session is fully agent-controlled.
func (s *Session) HumanCharacter() string {
	for _, c := range s.Characters {
		if c.Human {
			return c.Name
		}
	}
	return ""
}

// ClaimCharacter marks one character human-controlled and returns its
// private backstory. At most one character per session may be claimed.
func (s *Session) ClaimCharacter(name string) (*Character, Result) {
	c := s.Character(name)
	if c == nil {
		return nil, Result{
			Kind:         ResultUnknownCharacter,
			Message:      fmt.Sprintf("%s does not exist in this game.", name),
			ValidOptions: s.CharacterNames(),
		}
	}
	if claimed := s.HumanCharacter(); claimed != "" && claimed != name {
		return nil, Result{
			Kind:    ResultUnrecognized,
			Message: fmt.Sprintf("%s is already controlled by a human player.", claimed),
		}
	}
	c.Human = true
	s.appendEvent(fmt.Sprintf("A human player took control of %s.", name))
	return c, Result{Kind: ResultSuccess, Message: fmt.Sprintf("Playing as %s.", name)}
}

// ColocatedWith returns the other characters sharing the named
// character's location, derived on demand.
func (s *Session) ColocatedWith(name string) []string {
	p := s.Players[name]
	if p == nil {
		return nil
	}
	others := make([]string, 0)
	for _, c := range s.Characters {
		if c.Name == name {
			continue
		}
		if s.Players[c.Name].Location == p.Location {
			others = append(others, c.Name)
		}
	}
	return others
}

// recomputeDerived refreshes one character's co-located and
// visible-evidence sets from its current position.
func (s *Session) recomputeDerived(name string) {
	p := s.Players[name]
	p.Colocated = s.ColocatedWith(name)
	p.Evidence = s.Story.EvidenceNames(p.Location)
	if p.Evidence == nil {
		p.Evidence = make([]string, 0)
	}
}

// appendEvent records a line on the session event log. Best effort by
// design: nothing in game logic depends on the log.
func (s *Session) appendEvent(line string) {
	s.Events = append(s.Events, line)
}

// broadcast appends a line to every roster member's transcript and to
// the event log. Conversations are spectator-visible events.
func (s *Session) broadcast(line string) {
	for _, c := range s.Characters {
		p := s.Players[c.Name]
		p.Log = append(p.Log, line)
	}
	s.appendEvent(line)
}

// Redacted returns a copy safe to show any player: every backstory
// except the claimed character's is cleared.
func (s *Session) Redacted() *Session {
	cp := *s
	cp.Characters = make([]Character, len(s.Characters))
	copy(cp.Characters, s.Characters)
	for i := range cp.Characters {
		if !cp.Characters[i].Human {
			cp.Characters[i].Backstory = ""
		}
	}
	return &cp
}
