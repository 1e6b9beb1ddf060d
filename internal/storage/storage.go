package storage

import (
	"context"

	"github.com/jwebster45206/crime-scene/pkg/game"
	"github.com/jwebster45206/crime-scene/pkg/story"
)

// Storage defines persistence for sessions and story artifacts.
type Storage interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error

	// Close closes the service connection
	Close() error

	// SaveSession saves a session under its ID
	SaveSession(ctx context.Context, sess *game.Session) error

	// LoadSession retrieves a session by ID.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, id string) (*game.Session, error)

	// DeleteSession removes a session by ID
	DeleteSession(ctx context.Context, id string) error

	// GetStory loads and validates the named story's artifacts
	GetStory(ctx context.Context, name string) (*story.Story, error)

	// ListStories returns the names of all available stories
	ListStories(ctx context.Context) ([]string, error)

	// FlushSession writes the serialized session and its event log to
	// durable storage for audit, at session end
	FlushSession(ctx context.Context, sess *game.Session) error
}
