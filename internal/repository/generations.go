package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const generationColumns = `id, user_id, platform, comment_text, original_post,
	tones_requested, replies, selected_reply_id, created_at`

// CreateGenerationParams contains one history entry to append.
type CreateGenerationParams struct {
	UserID         uuid.UUID
	Platform       string
	CommentText    string
	OriginalPost   sql.NullString
	TonesRequested pqtype.NullRawMessage
	Replies        pqtype.NullRawMessage
}

// CreateGeneration appends one generation to the history and returns its id.
func (q *Queries) CreateGeneration(ctx context.Context, arg CreateGenerationParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO generations (user_id, platform, comment_text, original_post, tones_requested, replies)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		arg.UserID, arg.Platform, arg.CommentText, arg.OriginalPost, arg.TonesRequested, arg.Replies,
	).Scan(&id)
	return id, err
}

// ListGenerationsParams selects a user's recent history.
type ListGenerationsParams struct {
	UserID uuid.UUID
	Limit  int32
}

// ListGenerations returns a user's history ordered by recency.
func (q *Queries) ListGenerations(ctx context.Context, arg ListGenerationsParams) ([]Generation, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+generationColumns+`
		FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		arg.UserID, arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Platform, &g.CommentText, &g.OriginalPost,
			&g.TonesRequested, &g.Replies, &g.SelectedReplyID, &g.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SetSelectedReplyParams records which candidate the user chose.
type SetSelectedReplyParams struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	ReplyID string
}

// SetSelectedReply marks the chosen reply on a generation the user owns.
// Returns the number of rows updated (0 when the generation does not exist
// or belongs to someone else).
func (q *Queries) SetSelectedReply(ctx context.Context, arg SetSelectedReplyParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE generations SET selected_reply_id = $3
		WHERE id = $1 AND user_id = $2`,
		arg.ID, arg.UserID, arg.ReplyID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
