package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jwebster45206/crime-scene/pkg/game"
	"github.com/jwebster45206/crime-scene/pkg/story"
)

// MockStorage is an in-memory Storage implementation for testing.
type MockStorage struct {
	mu       sync.Mutex
	sessions map[string][]byte // serialized, matching the Redis round-trip
	stories  map[string]*story.Story
	flushed  map[string]*game.Session

	PingErr  error
	FlushErr error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[string][]byte),
		stories:  make(map[string]*story.Story),
		flushed:  make(map[string]*game.Session),
	}
}

// AddStory registers a story for GetStory/ListStories.
func (m *MockStorage) AddStory(st *story.Story) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stories[st.Name] = st
}

// Flushed returns the session flushed under id, or nil.
func (m *MockStorage) Flushed(id string) *game.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushed[id]
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, sess *game.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = data
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	var sess game.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) GetStory(ctx context.Context, name string) (*story.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stories[name]
	if !ok {
		return nil, fmt.Errorf("%w: story %q not found", story.ErrMalformedStory, name)
	}
	return st, nil
}

func (m *MockStorage) ListStories(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.stories))
	for name := range m.stories {
		names = append(names, name)
	}
	return names, nil
}

func (m *MockStorage) FlushSession(ctx context.Context, sess *game.Session) error {
	if m.FlushErr != nil {
		return m.FlushErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushed[sess.ID] = sess
	return nil
}
