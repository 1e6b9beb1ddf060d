package director

import (
	"context"
)

// ActionKind is the resolved intent of a free-form player instruction.
type ActionKind string

const (
	ActionMove    ActionKind = "move"
	ActionTalk    ActionKind = "talk"
	ActionInspect ActionKind = "inspect"

	// ActionNone marks an instruction the interpreter could not map to
	// a game action. The engine treats it as a non-turn-consuming no-op
	// and surfaces the raw text back to the actor.
	ActionNone ActionKind = "none"
)

// Command is one resolved player action.
type Command struct {
	Kind   ActionKind `json:"action"`
	Target string     `json:"target,omitempty"` // location, character, or evidence name
	Raw    string     `json:"-"`                // original instruction text
}

// GameContext is the session context handed to the collaborators:
// everything a game manager or character needs to act sensibly.
type GameContext struct {
	Actor      string
	Backstory  string
	Location   string
	Colocated  []string
	Evidence   []string
	Characters []string
	Locations  []string
	Narrative  string
	Log        []string
}

// Interpreter resolves a natural-language instruction to exactly one
// game action. Implementations are external collaborators from the
// core's point of view.
type Interpreter interface {
	Interpret(ctx context.Context, instruction string, gc GameContext) (Command, error)
}

// LineRequest asks for one line of agent-controlled speech.
type LineRequest struct {
	Speaker     string
	Counterpart string
	Instruction string // e.g. "ask Sato a question about the knife"
	Context     GameContext
}

// LineGenerator produces one line of dialog for an agent-controlled
// character. It is fallible and may be slow; callers bound it with the
// context and retry a small number of times.
type LineGenerator interface {
	NextLine(ctx context.Context, req LineRequest) (string, error)
}
