package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replytomic/replytomic/internal/domain"
	"github.com/replytomic/replytomic/internal/service"
)

// =============================================================================
// Mock HistoryService Implementation
// =============================================================================

type mockHistoryService struct {
	SaveFunc         func(ctx context.Context, gen *domain.Generation) (uuid.UUID, error)
	ListFunc         func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Generation, error)
	MarkSelectedFunc func(ctx context.Context, userID, generationID uuid.UUID, replyID string) error
}

func (m *mockHistoryService) Save(ctx context.Context, gen *domain.Generation) (uuid.UUID, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, gen)
	}
	return uuid.Nil, errors.New("SaveFunc not implemented")
}

func (m *mockHistoryService) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Generation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, limit)
	}
	return nil, errors.New("ListFunc not implemented")
}

func (m *mockHistoryService) MarkSelected(ctx context.Context, userID, generationID uuid.UUID, replyID string) error {
	if m.MarkSelectedFunc != nil {
		return m.MarkSelectedFunc(ctx, userID, generationID, replyID)
	}
	return errors.New("MarkSelectedFunc not implemented")
}

// =============================================================================
// Tests
// =============================================================================

func TestHistoryList_DefaultLimit(t *testing.T) {
	var gotLimit int
	svc := &mockHistoryService{
		ListFunc: func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Generation, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	h := NewHistoryHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/history", "", freeUser()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.DefaultHistoryLimit, gotLimit)
}

func TestHistoryList_CustomLimit(t *testing.T) {
	var gotLimit int
	svc := &mockHistoryService{
		ListFunc: func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Generation, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	h := NewHistoryHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/history?limit=5", "", freeUser()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)
}

func TestHistoryList_RejectsBadLimit(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		t.Run(raw, func(t *testing.T) {
			h := NewHistoryHandler(&mockHistoryService{}, testLogger())

			rec := httptest.NewRecorder()
			h.List(rec, authedRequest(http.MethodGet, "/api/history?limit="+raw, "", freeUser()))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHistoryList_ProjectsGenerations(t *testing.T) {
	user := freeUser()
	genID := uuid.New()
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	svc := &mockHistoryService{
		ListFunc: func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Generation, error) {
			assert.Equal(t, user.ID, userID)
			return []domain.Generation{
				{
					ID:              genID,
					UserID:          user.ID,
					Platform:        "youtube",
					CommentText:     "great video",
					TonesRequested:  []string{"helpful"},
					Replies:         []domain.Reply{{ID: "reply-1-0", Tone: "helpful", Text: "thanks!", Length: 7, WithinLimit: true}},
					SelectedReplyID: "reply-1-0",
					CreatedAt:       created,
				},
			}, nil
		},
	}
	h := NewHistoryHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/history", "", user))

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	history, ok := body["history"].([]any)
	require.True(t, ok)
	require.Len(t, history, 1)

	entry := history[0].(map[string]any)
	assert.Equal(t, genID.String(), entry["id"])
	assert.Equal(t, "youtube", entry["platform"])
	assert.Equal(t, "great video", entry["comment"])
	assert.Equal(t, "reply-1-0", entry["selectedReplyId"])
}

func TestHistoryList_EmptyHistoryIsAnEmptyArray(t *testing.T) {
	svc := &mockHistoryService{
		ListFunc: func(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Generation, error) {
			return nil, nil
		},
	}
	h := NewHistoryHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/history", "", freeUser()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())
}

func TestSelectReply_Success(t *testing.T) {
	user := freeUser()
	genID := uuid.New()

	svc := &mockHistoryService{
		MarkSelectedFunc: func(ctx context.Context, userID, generationID uuid.UUID, replyID string) error {
			assert.Equal(t, user.ID, userID)
			assert.Equal(t, genID, generationID)
			assert.Equal(t, "reply-1-2", replyID)
			return nil
		},
	}
	h := NewHistoryHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.SelectReply(rec, authedRequest(http.MethodPost, "/api/history",
		`{"generationId":"`+genID.String()+`","replyId":"reply-1-2"}`, user))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestSelectReply_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing generationId", `{"replyId":"reply-1-0"}`},
		{"missing replyId", `{"generationId":"` + uuid.NewString() + `"}`},
		{"generationId not a uuid", `{"generationId":"nope","replyId":"reply-1-0"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistoryHandler(&mockHistoryService{}, testLogger())

			rec := httptest.NewRecorder()
			h.SelectReply(rec, authedRequest(http.MethodPost, "/api/history", tt.body, freeUser()))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSelectReply_UnknownGeneration(t *testing.T) {
	svc := &mockHistoryService{
		MarkSelectedFunc: func(ctx context.Context, userID, generationID uuid.UUID, replyID string) error {
			return domain.NotFound("HistoryService.MarkSelected", "generation", generationID.String())
		},
	}
	h := NewHistoryHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.SelectReply(rec, authedRequest(http.MethodPost, "/api/history",
		`{"generationId":"`+uuid.NewString()+`","replyId":"reply-1-0"}`, freeUser()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
