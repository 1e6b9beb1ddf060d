package engine

import (
	"context"
	"fmt"

	"github.com/jwebster45206/crime-scene/internal/director"
	"github.com/jwebster45206/crime-scene/pkg/game"
)

// HandleCommand resolves one free-form instruction for the acting
// character and executes the resulting action. The returned session
// reflects all mutations; the result reports turn consumption and any
// recoverable failure.
func (e *Engine) HandleCommand(ctx context.Context, id, actor, text string) (*game.Session, game.Result, error) {
	lock := e.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, game.Result{}, err
	}

	if sess.Character(actor) == nil {
		return sess, game.Result{
			Kind:         game.ResultUnknownCharacter,
			Message:      fmt.Sprintf("%s does not exist in this game.", actor),
			ValidOptions: sess.CharacterNames(),
		}, nil
	}

	if sess.Conversation != nil {
		return sess, game.Result{
			Kind:            game.ResultAwaitingLine,
			Message:         "A conversation is in progress.",
			AwaitingSpeaker: sess.Conversation.Speaker(),
		}, nil
	}

	if sess.EnforceTurns && !sess.IsTurnOf(actor) {
		return sess, game.Result{
			Kind:    game.ResultOutOfTurn,
			Message: fmt.Sprintf("It is %s's turn, not %s's.", sess.CurrentCharacter().Name, actor),
		}, nil
	}

	cmd, err := e.interpreter.Interpret(ctx, text, e.gameContext(sess, actor))
	if err != nil {
		e.logger.Error("Command interpretation failed", "session", id, "actor", actor, "error", err)
		return sess, game.Result{
			Kind:    game.ResultGenerationFailure,
			Message: "The game manager could not process that instruction. Try again.",
		}, nil
	}

	res := e.dispatch(ctx, sess, actor, cmd)

	if err := e.storage.SaveSession(ctx, sess); err != nil {
		return nil, game.Result{}, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, res, nil
}

// dispatch executes one resolved command against the session.
func (e *Engine) dispatch(ctx context.Context, sess *game.Session, actor string, cmd director.Command) game.Result {
	switch cmd.Kind {
	case director.ActionMove:
		return sess.Move(actor, cmd.Target)

	case director.ActionInspect:
		return sess.Inspect(actor, cmd.Target)

	case director.ActionTalk:
		res := sess.StartConversation(actor, cmd.Target)
		if !res.OK() {
			return res
		}
		return e.driveConversation(ctx, sess)

	default:
		return game.Result{
			Kind:    game.ResultUnrecognized,
			Message: cmd.Raw,
		}
	}
}

// ContinueConversation supplies the next human line for a suspended
// dialog and drives any following agent lines.
func (e *Engine) ContinueConversation(ctx context.Context, id, line string) (*game.Session, game.Result, error) {
	lock := e.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, game.Result{}, err
	}

	if sess.Conversation == nil {
		return sess, game.Result{
			Kind:    game.ResultUnrecognized,
			Message: "No conversation is active.",
		}, nil
	}

	res := sess.RecordLine(line)
	if res.OK() && sess.Conversation != nil {
		res = e.driveConversation(ctx, sess)
	}

	if err := e.storage.SaveSession(ctx, sess); err != nil {
		return nil, game.Result{}, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, res, nil
}

// StepAgent plays one agent-controlled character's turn: the character
// decides a free-form action, and the engine runs it exactly as if a
// player had typed it.
func (e *Engine) StepAgent(ctx context.Context, id string) (*game.Session, game.Result, error) {
	lock := e.sessionLock(id)
	lock.Lock()

	sess, err := e.GetSession(ctx, id)
	if err != nil {
		lock.Unlock()
		return nil, game.Result{}, err
	}

	// A suspended dialog takes precedence over a free action. If the
	// due speaker is agent-controlled the dialog is re-driven here,
	// which is also the retry path after a generation failure.
	if sess.Conversation != nil {
		speaker := sess.Conversation.Speaker()
		if sess.Character(speaker).Human {
			lock.Unlock()
			return sess, game.Result{
				Kind:            game.ResultAwaitingLine,
				Message:         fmt.Sprintf("Waiting for %s's next line.", speaker),
				AwaitingSpeaker: speaker,
			}, nil
		}

		res := e.driveConversation(ctx, sess)
		if err := e.storage.SaveSession(ctx, sess); err != nil {
			lock.Unlock()
			return nil, game.Result{}, fmt.Errorf("failed to save session: %w", err)
		}
		lock.Unlock()
		return sess, res, nil
	}

	actor := sess.CurrentCharacter()
	if actor.Human {
		lock.Unlock()
		return sess, game.Result{
			Kind:    game.ResultUnrecognized,
			Message: fmt.Sprintf("It is %s's turn, and %s is human-controlled.", actor.Name, actor.Name),
		}, nil
	}

	instruction, err := e.lines.NextLine(ctx, director.LineRequest{
		Speaker:     actor.Name,
		Instruction: "Decide your next action in one short sentence: move somewhere, talk to another character, or inspect a piece of evidence here.",
		Context:     e.gameContext(sess, actor.Name),
	})
	lock.Unlock()
	if err != nil {
		e.logger.Error("Agent action generation failed", "session", id, "actor", actor.Name, "error", err)
		return sess, game.Result{
			Kind:    game.ResultGenerationFailure,
			Message: fmt.Sprintf("%s could not decide on an action.", actor.Name),
		}, nil
	}

	return e.HandleCommand(ctx, id, actor.Name, instruction)
}

// driveConversation advances the active dialog until it needs a human
// line or completes. Agent lines come from the line generator; a
// generation failure leaves the conversation suspended and resumable.
func (e *Engine) driveConversation(ctx context.Context, sess *game.Session) game.Result {
	for sess.Conversation != nil {
		c := sess.Conversation
		speaker := c.Speaker()

		if c.HasHuman && sess.Character(speaker).Human {
			return game.Result{
				Kind:            game.ResultAwaitingLine,
				Message:         fmt.Sprintf("Waiting for %s's next line.", speaker),
				AwaitingSpeaker: speaker,
			}
		}

		counterpart := c.To
		instruction := fmt.Sprintf("Ask %s a question.", c.To)
		if c.Phase == game.PhaseAnswer {
			counterpart = c.From
			instruction = fmt.Sprintf("Answer %s's last question.", c.From)
		}

		line, err := e.lines.NextLine(ctx, director.LineRequest{
			Speaker:     speaker,
			Counterpart: counterpart,
			Instruction: instruction,
			Context:     e.gameContext(sess, speaker),
		})
		if err != nil {
			e.logger.Error("Line generation failed", "session", sess.ID, "speaker", speaker, "error", err)
			return game.Result{
				Kind:            game.ResultGenerationFailure,
				Message:         fmt.Sprintf("%s is lost for words. The conversation can be resumed.", speaker),
				AwaitingSpeaker: speaker,
			}
		}

		res := sess.RecordLine(line)
		if sess.Conversation == nil {
			return res
		}
	}
	return game.Result{Kind: game.ResultSuccess}
}

// gameContext assembles the collaborator context for one character.
func (e *Engine) gameContext(sess *game.Session, actor string) director.GameContext {
	p := sess.Players[actor]
	c := sess.Character(actor)
	return director.GameContext{
		Actor:      actor,
		Backstory:  c.Backstory,
		Location:   p.Location,
		Colocated:  sess.ColocatedWith(actor),
		Evidence:   p.Evidence,
		Characters: sess.CharacterNames(),
		Locations:  sess.Story.LocationNames(),
		Narrative:  sess.Story.Narrative,
		Log:        p.Log,
	}
}
