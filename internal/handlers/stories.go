package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/crime-scene/internal/storage"
)

// StoriesHandler lists the story scenarios available for new sessions.
type StoriesHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewStoriesHandler(st storage.Storage, logger *slog.Logger) *StoriesHandler {
	return &StoriesHandler{
		storage: st,
		logger:  logger,
	}
}

func (h *StoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for stories endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ErrorResponse{
			Error: "Method not allowed. Only GET is supported.",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	names, err := h.storage.ListStories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list stories", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		response := ErrorResponse{
			Error: "Failed to list stories",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(names); err != nil {
		h.logger.Error("Failed to encode stories response", "error", err)
	}
}
