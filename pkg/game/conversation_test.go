package game

import (
	"fmt"
	"strings"
	"testing"
)

func TestStartConversation(t *testing.T) {
	s := newTestSession(t)

	res := s.StartConversation("Scarlett", "Mustard")
	if !res.OK() {
		t.Fatalf("Expected conversation to start, got %+v", res)
	}
	if res.TurnConsumed {
		t.Error("Starting a conversation must not consume a turn")
	}
	if res.AwaitingSpeaker != "Scarlett" {
		t.Errorf("The initiator asks first; got %q", res.AwaitingSpeaker)
	}

	c := s.Conversation
	if c == nil {
		t.Fatal("Expected an active conversation")
	}
	if c.From != "Scarlett" || c.To != "Mustard" || c.Round != 1 || c.Phase != PhaseQuestion {
		t.Errorf("Unexpected conversation state: %+v", c)
	}
	if c.HasHuman {
		t.Error("An all-agent dialog must not be marked as having a human")
	}

	// The opening line reaches every transcript, spectators included.
	opening := "Scarlett struck up a conversation with Mustard."
	for _, name := range []string{"Scarlett", "Mustard", "Plum"} {
		if !containsLine(s.Players[name].Log, opening) {
			t.Errorf("%s's transcript missing the opening line", name)
		}
	}
}

func TestStartConversation_MarksHumanParticipant(t *testing.T) {
	s := newTestSession(t)
	s.ClaimCharacter("Mustard")

	s.StartConversation("Scarlett", "Mustard")
	if !s.Conversation.HasHuman {
		t.Error("A dialog with a claimed participant must be marked as having a human")
	}
}

func TestStartConversation_UnknownTarget(t *testing.T) {
	s := newTestSession(t)

	res := s.StartConversation("Scarlett", "Butler")
	if res.Kind != ResultUnknownCharacter {
		t.Fatalf("Expected ResultUnknownCharacter, got %s", res.Kind)
	}
	if s.Conversation != nil {
		t.Error("A failed start must not leave a conversation active")
	}
	if len(res.ValidOptions) != 3 {
		t.Errorf("Expected the roster as valid options, got %v", res.ValidOptions)
	}
}

func TestConversation_FullDialog(t *testing.T) {
	s := newTestSession(t)
	s.StartConversation("Scarlett", "Mustard")

	// Three rounds of question and answer, alternating speakers.
	wantSpeakers := []string{"Scarlett", "Mustard", "Scarlett", "Mustard", "Scarlett", "Mustard"}
	for i, speaker := range wantSpeakers {
		if got := s.Conversation.Speaker(); got != speaker {
			t.Fatalf("Line %d: expected %s to speak, got %s", i, speaker, got)
		}
		res := s.RecordLine(fmt.Sprintf("line %d", i))
		if !res.OK() {
			t.Fatalf("Line %d: unexpected result %+v", i, res)
		}
		if i < len(wantSpeakers)-1 {
			if res.TurnConsumed {
				t.Errorf("Line %d: no turn is consumed mid-dialog", i)
			}
			if res.AwaitingSpeaker != wantSpeakers[i+1] {
				t.Errorf("Line %d: expected awaiting %s, got %q", i, wantSpeakers[i+1], res.AwaitingSpeaker)
			}
		} else {
			if !res.TurnConsumed {
				t.Error("The closing answer consumes exactly one turn for the initiator")
			}
		}
	}

	if s.Conversation != nil {
		t.Error("The conversation must be destroyed after round 3's answer")
	}
	if s.Turn != 1 {
		t.Errorf("Expected exactly one turn consumed, got %d", s.Turn)
	}
	if s.CurrentCharacter().Name != "Mustard" {
		t.Errorf("Expected Mustard's turn next, got %s", s.CurrentCharacter().Name)
	}

	// Opening line, six spoken lines, closing line: every roster
	// member gets all eight, in emission order.
	for _, name := range []string{"Scarlett", "Mustard", "Plum"} {
		log := s.Players[name].Log
		if len(log) != 8 {
			t.Fatalf("%s's transcript has %d lines, expected 8: %v", name, len(log), log)
		}
		if !strings.HasPrefix(log[1], "Scarlett: ") {
			t.Errorf("First spoken line should be Scarlett's, got %q", log[1])
		}
		if log[7] != "Mustard and Scarlett finished their conversation." {
			t.Errorf("Unexpected closing line: %q", log[7])
		}
	}
	if len(s.Events) != 8 {
		t.Errorf("Event log has %d lines, expected 8", len(s.Events))
	}
}

func TestConversation_ZeroActionInterleaving(t *testing.T) {
	s := newTestSession(t)
	s.StartConversation("Scarlett", "Mustard")
	s.RecordLine("Where were you at midnight?")

	// The dialog is suspended mid-round; round-trips that perform no
	// action must leave the position untouched.
	if s.Conversation.Round != 1 || s.Conversation.Phase != PhaseAnswer {
		t.Fatalf("Unexpected position: %+v", s.Conversation)
	}
	if s.Conversation.Speaker() != "Mustard" {
		t.Errorf("Expected Mustard to owe the answer, got %s", s.Conversation.Speaker())
	}

	res := s.RecordLine("In the garden, as I told the inspector.")
	if res.AwaitingSpeaker != "Scarlett" {
		t.Errorf("Round 2 opens with the initiator, got %q", res.AwaitingSpeaker)
	}
	if s.Conversation.Round != 2 {
		t.Errorf("Expected round 2, got %d", s.Conversation.Round)
	}
}

func TestRecordLine_NoConversation(t *testing.T) {
	s := newTestSession(t)

	res := s.RecordLine("hello?")
	if res.Kind != ResultUnrecognized {
		t.Errorf("Expected ResultUnrecognized with no active dialog, got %s", res.Kind)
	}
}
