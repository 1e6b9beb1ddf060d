package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/crime-scene/internal/director"
	"github.com/jwebster45206/crime-scene/internal/storage"
	"github.com/jwebster45206/crime-scene/pkg/game"
)

// ErrNotFound indicates an unknown session ID.
var ErrNotFound = errors.New("session not found")

// Engine coordinates sessions: it owns the registry semantics, routes
// free-form commands through the interpreter, drives agent-controlled
// dialog, and guarantees at most one in-flight operation per session.
type Engine struct {
	storage      storage.Storage
	interpreter  director.Interpreter
	lines        director.LineGenerator
	logger       *slog.Logger
	enforceTurns bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(st storage.Storage, interpreter director.Interpreter, lines director.LineGenerator, logger *slog.Logger, enforceTurns bool) *Engine {
	return &Engine{
		storage:      st,
		interpreter:  interpreter,
		lines:        lines,
		logger:       logger,
		enforceTurns: enforceTurns,
		locks:        make(map[string]*sync.Mutex),
	}
}

// sessionLock serializes operations per session ID. Sessions never
// share mutable state, so this is the only synchronization the game
// needs.
func (e *Engine) sessionLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

func (e *Engine) releaseLock(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.locks, id)
}

// CreateSession loads and validates a story, then builds a fresh
// session with every character at the starting location.
func (e *Engine) CreateSession(ctx context.Context, storyName string) (*game.Session, error) {
	st, err := e.storage.GetStory(ctx, storyName)
	if err != nil {
		return nil, err
	}

	sess := game.NewSession(st, e.enforceTurns)
	sess.AttachStory(st)

	if err := e.storage.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save new session: %w", err)
	}

	e.logger.Info("Session created", "id", sess.ID, "story", storyName, "characters", len(sess.Characters))
	return sess, nil
}

// GetSession loads a session and re-attaches its story.
func (e *Engine) GetSession(ctx context.Context, id string) (*game.Session, error) {
	sess, err := e.storage.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}

	st, err := e.storage.GetStory(ctx, sess.StoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to reload story %q: %w", sess.StoryName, err)
	}
	sess.AttachStory(st)
	return sess, nil
}

// ClaimCharacter marks one character as human-controlled and returns
// it, backstory included.
func (e *Engine) ClaimCharacter(ctx context.Context, id, name string) (*game.Character, game.Result, error) {
	lock := e.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.GetSession(ctx, id)
	if err != nil {
		return nil, game.Result{}, err
	}

	c, res := sess.ClaimCharacter(name)
	if !res.OK() {
		return nil, res, nil
	}

	if err := e.storage.SaveSession(ctx, sess); err != nil {
		return nil, game.Result{}, fmt.Errorf("failed to save session: %w", err)
	}
	return c, res, nil
}

// EndSession appends any closing accusations to the event log, flushes
// the session to durable storage and releases the live entry. Safe to
// call while a conversation is suspended.
func (e *Engine) EndSession(ctx context.Context, id string, accusations map[string]string) error {
	lock := e.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.GetSession(ctx, id)
	if err != nil {
		return err
	}

	for _, name := range sess.CharacterNames() {
		if accusation, ok := accusations[name]; ok && accusation != "" {
			sess.Events = append(sess.Events, fmt.Sprintf("%s's accusation: %s", name, accusation))
		}
	}
	sess.IsEnded = true

	// Flush is best-effort durability: a write failure is reported but
	// does not keep the session alive.
	if err := e.storage.FlushSession(ctx, sess); err != nil {
		e.logger.Error("Failed to flush session log", "id", id, "error", err)
	}

	if err := e.storage.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to release session: %w", err)
	}

	e.releaseLock(id)
	e.logger.Info("Session ended", "id", id, "events", len(sess.Events))
	return nil
}
