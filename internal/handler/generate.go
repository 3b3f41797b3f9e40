package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/replytomic/replytomic/internal/auth"
	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/metrics"
	"github.com/replytomic/replytomic/internal/service"
)

// GenerateHandler exposes the reply generation endpoint.
//
// Route:
//   - POST /api/generate (authenticated)
type GenerateHandler struct {
	generation service.GenerationService
	logger     *slog.Logger
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generation service.GenerationService, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{
		generation: generation,
		logger:     logger,
	}
}

// RegisterRoutes registers generation routes on the provided mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/generate", requireUser(http.HandlerFunc(h.Generate)))
}

type generateRequest struct {
	Comment      string   `json:"comment"`
	Platform     string   `json:"platform"`
	OriginalPost string   `json:"originalPost"`
	Tones        []string `json:"tones"`
}

type generateUsage struct {
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	Tier      string `json:"tier"`
}

type generateResponse struct {
	Replies      []domain.Reply `json:"replies"`
	GenerationID string         `json:"generationId"`
	Usage        generateUsage  `json:"usage"`
}

// Generate handles POST /api/generate.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("GenerateHandler.Generate", "Authentication required"))
		return
	}

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.Comment == "" || req.Platform == "" {
		ErrorResponse(w, r, h.logger,
			domain.Invalid("GenerateHandler.Generate", "Comment and platform are required"))
		return
	}

	result, err := h.generation.Generate(r.Context(), user, service.GenerateParams{
		Platform:     req.Platform,
		Comment:      req.Comment,
		OriginalPost: req.OriginalPost,
		Tones:        req.Tones,
	})
	if err != nil {
		var quotaErr *domain.QuotaExceededError
		if errors.As(err, &quotaErr) {
			metrics.QuotaDenialsTotal.WithLabelValues(string(quotaErr.Tier)).Inc()
			writeJSON(w, http.StatusForbidden, map[string]any{
				"limitReached": true,
				"limit":        quotaErr.Limit,
				"tier":         string(quotaErr.Tier),
				"message":      fmt.Sprintf("You've used all %d replies for this month. Upgrade for unlimited replies.", quotaErr.Limit),
			})
			return
		}
		metrics.GenerationsTotal.WithLabelValues(req.Platform, "error").Inc()
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.GenerationsTotal.WithLabelValues(req.Platform, "success").Inc()
	metrics.RepliesGeneratedTotal.WithLabelValues(req.Platform).Add(float64(len(result.Replies)))

	writeJSON(w, http.StatusOK, generateResponse{
		Replies:      result.Replies,
		GenerationID: result.GenerationID,
		Usage: generateUsage{
			Remaining: result.Remaining,
			Limit:     result.Limit,
			Tier:      string(result.Tier),
		},
	})
}
