package game

import (
	"fmt"
	"strings"
)

// ConversationRounds is the fixed number of question/answer rounds in
// a conversation sub-dialog.
const ConversationRounds = 3

// ConversationPhase tracks whose kind of line comes next within the
// current round.
type ConversationPhase string

const (
	PhaseQuestion ConversationPhase = "question"
	PhaseAnswer   ConversationPhase = "answer"
)

// Conversation is the resumable state of an active sub-dialog between
// exactly two characters. It is persisted on the session so a dialog
// involving a human can span any number of front-end round-trips
// without losing round count or participant identity.
type Conversation struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	Round    int               `json:"round"` // 1-based
	Phase    ConversationPhase `json:"phase"`
	HasHuman bool              `json:"has_human,omitempty"`
}

// Speaker returns the character whose line is due next.
func (c *Conversation) Speaker() string {
	if c.Phase == PhaseQuestion {
		return c.From
	}
	return c.To
}

// StartConversation opens a sub-dialog between from and to. The target
// must exist in the roster; co-presence is not required, any two
// characters may converse. Starting never consumes a turn: the single
// turn attributed to the initiator is consumed when the dialog
// completes.
func (s *Session) StartConversation(from, to string) Result {
	if s.Character(to) == nil {
		return Result{
			Kind:         ResultUnknownCharacter,
			Message:      fmt.Sprintf("%s does not exist in this game. Valid characters: %s.", to, strings.Join(s.CharacterNames(), ", ")),
			ValidOptions: s.CharacterNames(),
		}
	}

	s.Conversation = &Conversation{
		From:     from,
		To:       to,
		Round:    1,
		Phase:    PhaseQuestion,
		HasHuman: s.Character(from).Human || s.Character(to).Human,
	}
	s.broadcast(fmt.Sprintf("%s struck up a conversation with %s.", from, to))

	return Result{
		Kind:            ResultSuccess,
		Message:         fmt.Sprintf("%s is talking to %s.", from, to),
		AwaitingSpeaker: from,
	}
}

// RecordLine appends the current speaker's line to the dialog and
// steps the round machine. Every line broadcasts to the full roster in
// emission order. When round 3's answer lands, a closing line
// broadcasts, the conversation is destroyed, and exactly one turn is
// consumed for the initiator.
func (s *Session) RecordLine(line string) Result {
	c := s.Conversation
	if c == nil {
		return Result{Kind: ResultUnrecognized, Message: "no conversation is active"}
	}

	speaker := c.Speaker()
	s.broadcast(fmt.Sprintf("%s: %s", speaker, line))

	if c.Phase == PhaseQuestion {
		c.Phase = PhaseAnswer
		return Result{Kind: ResultSuccess, AwaitingSpeaker: c.Speaker()}
	}

	if c.Round < ConversationRounds {
		c.Round++
		c.Phase = PhaseQuestion
		return Result{Kind: ResultSuccess, AwaitingSpeaker: c.Speaker()}
	}

	s.broadcast(fmt.Sprintf("%s and %s finished their conversation.", c.To, c.From))
	s.Conversation = nil
	s.Advance()
	return Result{
		Kind:         ResultSuccess,
		Message:      fmt.Sprintf("The conversation between %s and %s has ended.", c.From, c.To),
		TurnConsumed: true,
	}
}
