package director

import (
	"context"
	"sync"
)

// MockInterpreter is a scriptable Interpreter for tests.
type MockInterpreter struct {
	InterpretFunc func(ctx context.Context, instruction string, gc GameContext) (Command, error)

	InterpretCalls []string

	mu sync.Mutex
}

var _ Interpreter = (*MockInterpreter)(nil)

func (m *MockInterpreter) Interpret(ctx context.Context, instruction string, gc GameContext) (Command, error) {
	m.mu.Lock()
	m.InterpretCalls = append(m.InterpretCalls, instruction)
	m.mu.Unlock()

	if m.InterpretFunc != nil {
		return m.InterpretFunc(ctx, instruction, gc)
	}
	return Command{Kind: ActionNone, Raw: instruction}, nil
}

// MockLineGenerator is a scriptable LineGenerator for tests.
type MockLineGenerator struct {
	NextLineFunc func(ctx context.Context, req LineRequest) (string, error)

	NextLineCalls []LineRequest

	mu sync.Mutex
}

var _ LineGenerator = (*MockLineGenerator)(nil)

func (m *MockLineGenerator) NextLine(ctx context.Context, req LineRequest) (string, error) {
	m.mu.Lock()
	m.NextLineCalls = append(m.NextLineCalls, req)
	m.mu.Unlock()

	if m.NextLineFunc != nil {
		return m.NextLineFunc(ctx, req)
	}
	return "…", nil
}
