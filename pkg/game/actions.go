package game

import (
	"fmt"
	"strings"
)

// Move relocates the acting character. Moving is a free action: it
// never consumes a turn. On success every character's derived sets
// are recomputed, since one move changes who is co-located with whom
// across the whole roster.
func (s *Session) Move(actor, location string) Result {
	if s.Story.Location(location) == nil {
		return Result{
			Kind:         ResultInvalidLocation,
			Message:      fmt.Sprintf("%q is not a valid location. You can move to: %s.", location, strings.Join(s.Story.LocationNames(), ", ")),
			ValidOptions: s.Story.LocationNames(),
		}
	}

	p := s.Players[actor]
	p.Location = location
	for name := range s.Players {
		s.recomputeDerived(name)
	}

	line := fmt.Sprintf("%s moved to %s.", actor, location)
	p.Log = append(p.Log, line)
	s.appendEvent(line)

	return Result{Kind: ResultSuccess, Message: line}
}

// Inspect reveals one piece of evidence at the actor's current
// location. The position is read fresh, never cached from an earlier
// turn. A successful inspection is witnessed: the event line lands in
// every co-located character's transcript, and one turn is consumed.
func (s *Session) Inspect(actor, evidence string) Result {
	p := s.Players[actor]
	loc := s.Story.Location(p.Location)

	var description string
	var found bool
	if loc != nil {
		description, found = loc.Evidence[evidence]
	}
	if !found {
		valid := s.Story.EvidenceNames(p.Location)
		return Result{
			Kind:         ResultEvidenceNotFound,
			Message:      fmt.Sprintf("%q is not among the evidence here. Present: %s.", evidence, strings.Join(valid, ", ")),
			ValidOptions: valid,
		}
	}

	line := fmt.Sprintf("%s examined the %s at the %s.", actor, evidence, p.Location)
	p.Log = append(p.Log, line)
	for _, other := range s.ColocatedWith(actor) {
		op := s.Players[other]
		op.Log = append(op.Log, line)
	}
	s.appendEvent(line)
	s.Advance()

	return Result{
		Kind:         ResultSuccess,
		Message:      line,
		Evidence:     evidence,
		EvidenceInfo: description,
		TurnConsumed: true,
	}
}
