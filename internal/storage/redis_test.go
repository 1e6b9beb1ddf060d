package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/jwebster45206/crime-scene/pkg/game"
	"github.com/jwebster45206/crime-scene/pkg/story"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis, string) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	dataDir := t.TempDir()
	st := NewRedisStorage(mr.Addr(), dataDir, logger)
	t.Cleanup(func() { _ = st.Close() })

	return st, mr, dataDir
}

func writeStoryFiles(t *testing.T, dataDir, name, characters, locations, narrative string) {
	t.Helper()
	dir := filepath.Join(dataDir, "stories", name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create story dir: %v", err)
	}
	if characters != "" {
		if err := os.WriteFile(filepath.Join(dir, "characters.json"), []byte(characters), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if locations != "" {
		if err := os.WriteFile(filepath.Join(dir, "map.json"), []byte(locations), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if narrative != "" {
		if err := os.WriteFile(filepath.Join(dir, "story.txt"), []byte(narrative), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRedisStorage_SessionLifecycle(t *testing.T) {
	st, _, _ := setupTestStorage(t)
	ctx := context.Background()

	if err := st.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	world := &story.Story{
		Name:       "manor",
		Characters: []story.Character{{Name: "Scarlett"}, {Name: "Mustard"}},
		Locations:  []story.Location{{Name: "Library", Evidence: map[string]string{"knife": "bloody"}}},
	}
	sess := game.NewSession(world, false)
	sess.Move("Scarlett", "Library")
	sess.Inspect("Scarlett", "knife")

	if err := st.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := st.LoadSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected loaded session, got nil")
	}
	if loaded.ID != sess.ID || loaded.Turn != 1 {
		t.Errorf("Session state lost in round trip: %+v", loaded)
	}
	if len(loaded.Players["Scarlett"].Log) == 0 {
		t.Error("Transcript lost in round trip")
	}

	if err := st.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	gone, err := st.LoadSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("LoadSession after delete failed: %v", err)
	}
	if gone != nil {
		t.Error("Expected nil after delete")
	}
}

func TestRedisStorage_LoadSession_Missing(t *testing.T) {
	st, _, _ := setupTestStorage(t)

	sess, err := st.LoadSession(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("Expected nil error for missing session, got %v", err)
	}
	if sess != nil {
		t.Error("Expected nil session for missing ID")
	}
}

func TestRedisStorage_GetStory(t *testing.T) {
	st, _, dataDir := setupTestStorage(t)

	writeStoryFiles(t, dataDir, "manor",
		`{"Scarlett": "saw something", "Mustard": ["owed money", "left early"]}`,
		`{"Library": {"knife": "A bloody knife."}, "Garden": {}}`,
		"Lord Blackwood was found dead.\n")

	world, err := st.GetStory(context.Background(), "manor")
	if err != nil {
		t.Fatalf("GetStory failed: %v", err)
	}
	if world.Name != "manor" {
		t.Errorf("Expected story name from directory, got %q", world.Name)
	}
	if world.StartingLocation() != "Library" {
		t.Errorf("Expected the Library as starting location, got %q", world.StartingLocation())
	}
	if world.Characters[1].Backstory != "owed money\nleft early" {
		t.Errorf("List backstory not joined: %q", world.Characters[1].Backstory)
	}
	if world.Narrative != "Lord Blackwood was found dead." {
		t.Errorf("Narrative not trimmed: %q", world.Narrative)
	}
}

func TestRedisStorage_GetStory_Malformed(t *testing.T) {
	st, _, dataDir := setupTestStorage(t)

	// Missing map.json.
	writeStoryFiles(t, dataDir, "partial", `{"Scarlett": "x"}`, "", "")

	_, err := st.GetStory(context.Background(), "partial")
	if !errors.Is(err, story.ErrMalformedStory) {
		t.Errorf("Expected ErrMalformedStory, got %v", err)
	}

	_, err = st.GetStory(context.Background(), "absent")
	if !errors.Is(err, story.ErrMalformedStory) {
		t.Errorf("Expected ErrMalformedStory for a missing story, got %v", err)
	}
}

func TestRedisStorage_ListStories(t *testing.T) {
	st, _, dataDir := setupTestStorage(t)

	writeStoryFiles(t, dataDir, "manor", `{"a":"x"}`, `{"L":{}}`, "")
	writeStoryFiles(t, dataDir, "harbor", `{"b":"y"}`, `{"P":{}}`, "")

	names, err := st.ListStories(context.Background())
	if err != nil {
		t.Fatalf("ListStories failed: %v", err)
	}
	if len(names) != 2 || names[0] != "harbor" || names[1] != "manor" {
		t.Errorf("Expected sorted story names, got %v", names)
	}
}

func TestRedisStorage_FlushSession(t *testing.T) {
	st, _, dataDir := setupTestStorage(t)

	world := &story.Story{
		Name:       "manor",
		Characters: []story.Character{{Name: "Scarlett"}},
		Locations:  []story.Location{{Name: "Library"}},
	}
	sess := game.NewSession(world, false)
	sess.Events = append(sess.Events, "Scarlett examined the knife at the Library.")

	if err := st.FlushSession(context.Background(), sess); err != nil {
		t.Fatalf("FlushSession failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "logs", sess.ID+".txt"))
	if err != nil {
		t.Fatalf("Expected flushed log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, sess.ID) {
		t.Error("Flushed log missing the session ID")
	}
	if !strings.Contains(content, "Scarlett examined the knife at the Library.") {
		t.Error("Flushed log missing the event line")
	}
}
