package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/crime-scene/pkg/game"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listStories(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/stories")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var stories []string
	if err := decodeResponse(resp, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func createSession(client *http.Client, baseURL string, storyName string) (*game.Session, error) {
	body, err := json.Marshal(map[string]string{"story": storyName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var sess game.Session
	if err := decodeResponse(resp, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func claimCharacter(client *http.Client, baseURL, sessionID, name string) (*game.Character, error) {
	body, err := json.Marshal(map[string]string{"character": name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(fmt.Sprintf("%s/v1/sessions/%s/claim", baseURL, sessionID), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var c game.Character
	if err := decodeResponse(resp, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ActionResponse matches the API's action response structure
type ActionResponse struct {
	Result  game.Result   `json:"result"`
	Session *game.Session `json:"session,omitempty"`
}

func sendCommand(client *http.Client, baseURL, sessionID, actor, text string) (*ActionResponse, error) {
	body, err := json.Marshal(map[string]string{"actor": actor, "text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return postAction(client, fmt.Sprintf("%s/v1/sessions/%s/command", baseURL, sessionID), body)
}

func sendLine(client *http.Client, baseURL, sessionID, line string) (*ActionResponse, error) {
	body, err := json.Marshal(map[string]string{"line": line})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return postAction(client, fmt.Sprintf("%s/v1/sessions/%s/conversation", baseURL, sessionID), body)
}

func stepAgent(client *http.Client, baseURL, sessionID string) (*ActionResponse, error) {
	return postAction(client, fmt.Sprintf("%s/v1/sessions/%s/step", baseURL, sessionID), nil)
}

func endSession(client *http.Client, baseURL, sessionID string, accusation map[string]string) error {
	body, err := json.Marshal(map[string]interface{}{"accusations": accusation})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return nil
}

func postAction(client *http.Client, url string, body []byte) (*ActionResponse, error) {
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var action ActionResponse
	if err := decodeResponse(resp, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

func decodeResponse(resp *http.Response, v interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
