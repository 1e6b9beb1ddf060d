package services

import (
	"context"

	"github.com/jwebster45206/crime-scene/pkg/chat"
)

// LLMService defines the interface for interacting with a hosted LLM.
type LLMService interface {
	// InitModel initializes the LLM model on startup
	InitModel(ctx context.Context, modelName string) error

	// GenerateResponse generates a chat response using the LLM
	GenerateResponse(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}
