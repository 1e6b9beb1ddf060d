package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/crime-scene/pkg/game"
	"github.com/jwebster45206/crime-scene/pkg/story"
)

const sessionTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for live
// sessions and the filesystem for static story artifacts and flushed
// session logs.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session operations (Redis-backed)

func sessionKey(id string) string {
	return "session:" + id
}

func (r *RedisStorage) SaveSession(ctx context.Context, sess *game.Session) error {
	sess.UpdatedAt = time.Now()

	data, err := json.Marshal(sess)
	if err != nil {
		r.logger.Error("Failed to marshal session", "id", sess.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	cmd := r.client.Set(ctx, sessionKey(sess.ID), string(data), sessionTTL)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save session", "id", sess.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id string) (*game.Session, error) {
	cmd := r.client.Get(ctx, sessionKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("Session not found", "id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load session", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess game.Session
	if err := json.Unmarshal([]byte(cmd.Val()), &sess); err != nil {
		r.logger.Error("Failed to unmarshal session", "id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id string) error {
	cmd := r.client.Del(ctx, sessionKey(id))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete session", "id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Story operations (filesystem-backed)

func (r *RedisStorage) GetStory(ctx context.Context, name string) (*story.Story, error) {
	dir := filepath.Join(r.dataDir, "stories", name)

	charData, err := os.ReadFile(filepath.Join(dir, "characters.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: story %q: characters.json missing", story.ErrMalformedStory, name)
		}
		return nil, fmt.Errorf("failed to read characters.json: %w", err)
	}
	characters, err := story.DecodeCharacters(charData)
	if err != nil {
		return nil, err
	}

	mapData, err := os.ReadFile(filepath.Join(dir, "map.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: story %q: map.json missing", story.ErrMalformedStory, name)
		}
		return nil, fmt.Errorf("failed to read map.json: %w", err)
	}
	locations, err := story.DecodeLocations(mapData)
	if err != nil {
		return nil, err
	}

	// Narrative text is optional flavor, not required for validity.
	narrative := ""
	if text, err := os.ReadFile(filepath.Join(dir, "story.txt")); err == nil {
		narrative = strings.TrimSpace(string(text))
	}

	st := &story.Story{
		Name:       name,
		Narrative:  narrative,
		Characters: characters,
		Locations:  locations,
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

func (r *RedisStorage) ListStories(ctx context.Context) ([]string, error) {
	storiesDir := filepath.Join(r.dataDir, "stories")
	entries, err := os.ReadDir(storiesDir)
	if err != nil {
		r.logger.Error("Failed to read stories directory", "dir", storiesDir, "error", err)
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// FlushSession writes the serialized session plus its accumulated
// event log to <dataDir>/logs/<id>.txt.
func (r *RedisStorage) FlushSession(ctx context.Context, sess *game.Session) error {
	logsDir := filepath.Join(r.dataDir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session for flush: %w", err)
	}

	var b strings.Builder
	b.Write(data)
	b.WriteString("\n\n")
	for _, line := range sess.Events {
		b.WriteString(line)
		b.WriteString("\n")
	}

	path := filepath.Join(logsDir, sess.ID+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write session log: %w", err)
	}

	r.logger.Info("Session flushed", "id", sess.ID, "path", path, "events", len(sess.Events))
	return nil
}
