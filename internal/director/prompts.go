package director

import (
	"fmt"
	"strings"
)

// The game-manager prompt: read one instruction, pick exactly one
// action, answer with structured JSON so the engine never parses
// prose.
const gameManagerPrompt = `You are the game manager of a turn-based detective roleplay game.
Players give you free-form instructions. Resolve each instruction to exactly one action:
- "move" with the target location, when the player wants to go somewhere
- "talk" with the target character, when the player wants to question someone
- "inspect" with the target evidence, when the player wants to examine something
- "none" when the instruction matches no action

Respond with a single JSON object and nothing else, for example:
{"action":"move","target":"Garden"}
{"action":"none"}

Use exact names from the lists provided. Do not invent locations, characters or evidence.`

// characterPrompt frames an agent-controlled character for line
// generation. The backstory is that character's private information.
const characterPrompt = `You are playing %s in a turn-based detective roleplay game.
Stay in character. Answer with a single line of spoken dialog and nothing else.
Never reveal that you are an AI.

Your private backstory:
%s

The story so far:
%s`

func interpreterContext(gc GameContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Acting character: %s\n", gc.Actor)
	fmt.Fprintf(&b, "Current location: %s\n", gc.Location)
	fmt.Fprintf(&b, "Valid locations: %s\n", strings.Join(gc.Locations, ", "))
	fmt.Fprintf(&b, "Characters in the game: %s\n", strings.Join(gc.Characters, ", "))
	fmt.Fprintf(&b, "Characters at the same location: %s\n", strings.Join(gc.Colocated, ", "))
	fmt.Fprintf(&b, "Evidence visible here: %s\n", strings.Join(gc.Evidence, ", "))
	return b.String()
}

func lineContext(req LineRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your current location: %s\n", req.Context.Location)
	fmt.Fprintf(&b, "Evidence visible here: %s\n", strings.Join(req.Context.Evidence, ", "))
	fmt.Fprintf(&b, "Characters in the game: %s\n", strings.Join(req.Context.Characters, ", "))
	if len(req.Context.Log) > 0 {
		fmt.Fprintf(&b, "Your transcript so far:\n%s\n", strings.Join(req.Context.Log, "\n"))
	}
	fmt.Fprintf(&b, "\nInstruction: %s", req.Instruction)
	return b.String()
}
