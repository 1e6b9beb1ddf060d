package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    120 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	stories, err := listStories(client, cfg.APIBaseURL)
	if err != nil || len(stories) == 0 {
		fmt.Fprintf(os.Stderr, "Failed to list stories: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Available Stories:")
	for i, name := range stories {
		fmt.Printf("  %d - %s\n", i+1, name)
	}
	fmt.Print("\nSelect a story by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(stories) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	sess, err := createSession(client, cfg.APIBaseURL, stories[choice-1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	// The console game always has exactly one human-controlled character.
	fmt.Println("\nCharacters:")
	for i, c := range sess.Characters {
		fmt.Printf("  %d - %s\n", i+1, c.Name)
	}
	fmt.Print("\nSelect your character by number: ")

	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(sess.Characters) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	claimed, err := claimCharacter(client, cfg.APIBaseURL, sess.ID, sess.Characters[choice-1].Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to claim character: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, sess, claimed),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
