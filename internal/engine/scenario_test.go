package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/jwebster45206/crime-scene/internal/director"
	"github.com/jwebster45206/crime-scene/pkg/game"
)

// Plays a short investigation end to end through the engine: a human
// detective moves, inspects the knife, questions a suspect, and closes
// the case with an accusation.
func TestInvestigationPlaythrough(t *testing.T) {
	te := newTestEngine(t, false)
	sess := te.createSession(t)
	ctx := context.Background()

	if _, res, err := te.engine.ClaimCharacter(ctx, sess.ID, "Scarlett"); err != nil || !res.OK() {
		t.Fatalf("Claim failed: %v %+v", err, res)
	}

	te.interpreter.InterpretFunc = func(ctx context.Context, instruction string, gc director.GameContext) (director.Command, error) {
		switch {
		case strings.Contains(instruction, "garden"):
			return director.Command{Kind: director.ActionMove, Target: "Garden"}, nil
		case strings.Contains(instruction, "library"):
			return director.Command{Kind: director.ActionMove, Target: "Library"}, nil
		case strings.Contains(instruction, "knife"):
			return director.Command{Kind: director.ActionInspect, Target: "knife"}, nil
		case strings.Contains(instruction, "Mustard"):
			return director.Command{Kind: director.ActionTalk, Target: "Mustard"}, nil
		default:
			return director.Command{Kind: director.ActionNone, Raw: instruction}, nil
		}
	}
	te.lines.NextLineFunc = func(ctx context.Context, req director.LineRequest) (string, error) {
		if strings.Contains(req.Instruction, "Decide your next action") {
			return "examine the knife", nil
		}
		return "I was in the conservatory all night.", nil
	}

	// Scout the garden, then return to the library. Both moves are
	// free, so the turn cursor stays put.
	for _, text := range []string{"check the garden", "back to the library"} {
		_, res, err := te.engine.HandleCommand(ctx, sess.ID, "Scarlett", text)
		if err != nil || !res.OK() {
			t.Fatalf("Move %q failed: %v %+v", text, err, res)
		}
	}
	cur, err := te.engine.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if cur.Turn != 0 {
		t.Fatalf("Moves must not consume turns, cursor at %d", cur.Turn)
	}

	// Inspecting the knife consumes the detective's turn.
	_, res, err := te.engine.HandleCommand(ctx, sess.ID, "Scarlett", "examine the knife")
	if err != nil || !res.OK() || !res.TurnConsumed {
		t.Fatalf("Inspection failed: %v %+v", err, res)
	}
	if res.EvidenceInfo != "A bloody knife." {
		t.Errorf("Unexpected evidence payload: %+v", res)
	}

	// The two agents take their turns, each inspecting the knife.
	for i := 0; i < 2; i++ {
		if _, res, err := te.engine.StepAgent(ctx, sess.ID); err != nil || !res.TurnConsumed {
			t.Fatalf("Agent step %d failed: %v %+v", i, err, res)
		}
	}
	cur, err = te.engine.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if cur.CurrentCharacter().Name != "Scarlett" {
		t.Fatalf("Expected the rotation back at the detective, got %s", cur.CurrentCharacter().Name)
	}

	// Back to the detective, who questions Mustard. The human asks,
	// the agent answers, three rounds.
	_, res, err = te.engine.HandleCommand(ctx, sess.ID, "Scarlett", "interrogate Mustard")
	if err != nil {
		t.Fatalf("HandleCommand failed: %v", err)
	}
	if res.Kind != game.ResultAwaitingLine {
		t.Fatalf("Expected the dialog to await the opening question, got %+v", res)
	}
	for round := 1; round <= 3; round++ {
		_, res, err = te.engine.ContinueConversation(ctx, sess.ID, "Where were you at midnight?")
		if err != nil {
			t.Fatalf("ContinueConversation failed: %v", err)
		}
	}
	if !res.OK() || !res.TurnConsumed {
		t.Fatalf("Expected the dialog to complete on the third round, got %+v", res)
	}

	// The full dialog reached every transcript, spectators included.
	cur, err = te.engine.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	found := 0
	for _, line := range cur.Players["Plum"].Log {
		if line == "Mustard: I was in the conservatory all night." {
			found++
		}
	}
	if found != 3 {
		t.Errorf("Expected the spectator to see all three answers, saw %d", found)
	}

	if err := te.engine.EndSession(ctx, sess.ID, map[string]string{
		"Scarlett": "Mustard killed him; the knife and the debt prove it.",
	}); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	flushed := te.storage.Flushed(sess.ID)
	if flushed == nil || !flushed.IsEnded {
		t.Fatal("Expected the ended session to be flushed")
	}
}
