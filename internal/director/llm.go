package director

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/crime-scene/internal/services"
	"github.com/jwebster45206/crime-scene/pkg/chat"
)

// maxGenerateAttempts bounds retries against the LLM before a failure
// is surfaced to the front end.
const maxGenerateAttempts = 3

// LLMDirector implements Interpreter and LineGenerator on top of an
// LLMService.
type LLMDirector struct {
	llm    services.LLMService
	logger *slog.Logger
}

var (
	_ Interpreter   = (*LLMDirector)(nil)
	_ LineGenerator = (*LLMDirector)(nil)
)

func NewLLMDirector(llm services.LLMService, logger *slog.Logger) *LLMDirector {
	return &LLMDirector{llm: llm, logger: logger}
}

// Interpret resolves one instruction to a Command. An unparseable
// model reply degrades to ActionNone rather than an error: the raw
// text goes back to the actor for a retry.
func (d *LLMDirector) Interpret(ctx context.Context, instruction string, gc GameContext) (Command, error) {
	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: gameManagerPrompt},
		{Role: chat.ChatRoleSystem, Content: interpreterContext(gc)},
		{Role: chat.ChatRoleUser, Content: fmt.Sprintf("%s's instruction: %s", gc.Actor, instruction)},
	}

	resp, err := d.generate(ctx, messages)
	if err != nil {
		return Command{}, err
	}

	cmd, ok := parseCommand(resp)
	if !ok {
		d.logger.Warn("Interpreter returned no parseable action", "reply", resp)
		return Command{Kind: ActionNone, Raw: instruction}, nil
	}
	cmd.Raw = instruction
	return cmd, nil
}

// NextLine produces one line of dialog for an agent-controlled character.
func (d *LLMDirector) NextLine(ctx context.Context, req LineRequest) (string, error) {
	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: fmt.Sprintf(characterPrompt, req.Speaker, req.Context.Backstory, req.Context.Narrative)},
		{Role: chat.ChatRoleUser, Content: lineContext(req)},
	}

	line, err := d.generate(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// generate calls the LLM with bounded retries.
func (d *LLMDirector) generate(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		resp, err := d.llm.GenerateResponse(ctx, messages)
		if err == nil {
			return resp.Message, nil
		}
		lastErr = err
		d.logger.Warn("LLM generation failed", "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", maxGenerateAttempts, lastErr)
}

// parseCommand extracts the single JSON object from a model reply.
// Models occasionally wrap the object in prose or code fences, so the
// parser scans for the outermost braces.
func parseCommand(reply string) (Command, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return Command{}, false
	}

	var cmd Command
	if err := json.Unmarshal([]byte(reply[start:end+1]), &cmd); err != nil {
		return Command{}, false
	}

	switch cmd.Kind {
	case ActionMove, ActionTalk, ActionInspect:
		if cmd.Target == "" {
			return Command{}, false
		}
	case ActionNone:
	default:
		return Command{}, false
	}
	return cmd, true
}
