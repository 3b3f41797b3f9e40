package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/repository"
)

// HistoryService owns the append-only generation history.
type HistoryService interface {
	// Save appends one generation and returns its assigned id.
	Save(ctx context.Context, gen *domain.Generation) (uuid.UUID, error)

	// List returns the user's most recent generations, newest first.
	List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Generation, error)

	// MarkSelected records which reply candidate the user chose.
	// Returns domain.ENOTFOUND when the generation does not exist or
	// belongs to another user.
	MarkSelected(ctx context.Context, userID, generationID uuid.UUID, replyID string) error
}

// DefaultHistoryLimit is the page size when the caller does not ask for one.
const DefaultHistoryLimit = 20

// MaxHistoryLimit caps a single history page.
const MaxHistoryLimit = 100

type historyService struct {
	queries *repository.Queries
	logger  *slog.Logger
}

// NewHistoryService creates a new HistoryService instance.
func NewHistoryService(queries *repository.Queries, logger *slog.Logger) HistoryService {
	return &historyService{
		queries: queries,
		logger:  logger,
	}
}

func (s *historyService) Save(ctx context.Context, gen *domain.Generation) (uuid.UUID, error) {
	const op = "HistoryService.Save"

	tones, err := json.Marshal(gen.TonesRequested)
	if err != nil {
		return uuid.Nil, domain.Internal(err, op, "Failed to encode generation")
	}
	replies, err := json.Marshal(gen.Replies)
	if err != nil {
		return uuid.Nil, domain.Internal(err, op, "Failed to encode generation")
	}

	id, err := s.queries.CreateGeneration(ctx, repository.CreateGenerationParams{
		UserID:         gen.UserID,
		Platform:       gen.Platform,
		CommentText:    gen.CommentText,
		OriginalPost:   domain.ToNullString(gen.OriginalPost),
		TonesRequested: pqtype.NullRawMessage{RawMessage: tones, Valid: true},
		Replies:        pqtype.NullRawMessage{RawMessage: replies, Valid: true},
	})
	if err != nil {
		return uuid.Nil, domain.Internal(err, op, "Failed to save generation")
	}
	return id, nil
}

func (s *historyService) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Generation, error) {
	const op = "HistoryService.List"

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := s.queries.ListGenerations(ctx, repository.ListGenerationsParams{
		UserID: userID,
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list generations")
	}

	out := make([]domain.Generation, 0, len(rows))
	for _, row := range rows {
		gen := domain.Generation{
			ID:              row.ID,
			UserID:          row.UserID,
			Platform:        row.Platform,
			CommentText:     row.CommentText,
			OriginalPost:    domain.NullStringValue(row.OriginalPost),
			SelectedReplyID: domain.NullStringValue(row.SelectedReplyID),
			CreatedAt:       row.CreatedAt,
		}
		if row.TonesRequested.Valid {
			if err := json.Unmarshal(row.TonesRequested.RawMessage, &gen.TonesRequested); err != nil {
				s.logger.Error("malformed tones in history row", "generation_id", row.ID, "error", err)
			}
		}
		if row.Replies.Valid {
			if err := json.Unmarshal(row.Replies.RawMessage, &gen.Replies); err != nil {
				s.logger.Error("malformed replies in history row", "generation_id", row.ID, "error", err)
			}
		}
		out = append(out, gen)
	}
	return out, nil
}

func (s *historyService) MarkSelected(ctx context.Context, userID, generationID uuid.UUID, replyID string) error {
	const op = "HistoryService.MarkSelected"

	affected, err := s.queries.SetSelectedReply(ctx, repository.SetSelectedReplyParams{
		ID:      generationID,
		UserID:  userID,
		ReplyID: replyID,
	})
	if err != nil {
		return domain.Internal(err, op, "Failed to record selection")
	}
	if affected == 0 {
		return domain.NotFound(op, "generation", generationID.String())
	}
	return nil
}
