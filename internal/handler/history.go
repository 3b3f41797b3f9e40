package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/replytomic/replytomic/internal/auth"
	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/service"
)

// HistoryHandler exposes the generation history.
//
// Routes:
//   - GET  /api/history?limit=N (authenticated)
//   - POST /api/history         (authenticated) marks the chosen reply
type HistoryHandler struct {
	history service.HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history service.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		logger:  logger,
	}
}

// RegisterRoutes registers history routes on the provided mux.
func (h *HistoryHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/history", requireUser(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/history", requireUser(http.HandlerFunc(h.SelectReply)))
}

type historyEntry struct {
	ID              string         `json:"id"`
	Platform        string         `json:"platform"`
	Comment         string         `json:"comment"`
	OriginalPost    string         `json:"originalPost,omitempty"`
	Tones           []string       `json:"tones"`
	Replies         []domain.Reply `json:"replies"`
	SelectedReplyID string         `json:"selectedReplyId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// List handles GET /api/history.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("HistoryHandler.List", "Authentication required"))
		return
	}

	limit := service.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ErrorResponse(w, r, h.logger, domain.Invalid("HistoryHandler.List", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	generations, err := h.history.List(r.Context(), user.ID, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	entries := make([]historyEntry, 0, len(generations))
	for _, gen := range generations {
		entries = append(entries, historyEntry{
			ID:              gen.ID.String(),
			Platform:        gen.Platform,
			Comment:         gen.CommentText,
			OriginalPost:    gen.OriginalPost,
			Tones:           gen.TonesRequested,
			Replies:         gen.Replies,
			SelectedReplyID: gen.SelectedReplyID,
			CreatedAt:       gen.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

type selectReplyRequest struct {
	GenerationID string `json:"generationId"`
	ReplyID      string `json:"replyId"`
}

// SelectReply handles POST /api/history.
func (h *HistoryHandler) SelectReply(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		ErrorResponse(w, r, h.logger, domain.Unauthorized("HistoryHandler.SelectReply", "Authentication required"))
		return
	}

	var req selectReplyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.GenerationID == "" || req.ReplyID == "" {
		ErrorResponse(w, r, h.logger,
			domain.Invalid("HistoryHandler.SelectReply", "generationId and replyId are required"))
		return
	}

	generationID, err := uuid.Parse(req.GenerationID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("HistoryHandler.SelectReply", "generationId is not a valid id"))
		return
	}

	if err := h.history.MarkSelected(r.Context(), user.ID, generationID, req.ReplyID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
