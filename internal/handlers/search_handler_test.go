package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity/identitytest"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchHistoryMock struct {
	RecordFunc      func(ctx context.Context, entry *models.SearchHistory) error
	DeleteEntryFunc func(ctx context.Context, userID, id string) error
	recorded        []models.SearchHistory
}

func (m *searchHistoryMock) Record(ctx context.Context, entry *models.SearchHistory) error {
	m.recorded = append(m.recorded, *entry)
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, entry)
	}
	return nil
}

func (m *searchHistoryMock) GetRecent(context.Context, string, int64) ([]models.SearchHistory, error) {
	return nil, nil
}

func (m *searchHistoryMock) DeleteEntry(ctx context.Context, userID, id string) error {
	return m.DeleteEntryFunc(ctx, userID, id)
}

func (m *searchHistoryMock) Clear(context.Context, string) (int64, error) { return 0, nil }

func TestSearchHandler_Search(t *testing.T) {
	t.Parallel()

	var filter repositories.RecipeFilter
	reader := &recipeReaderMock{
		ListFunc: func(_ context.Context, f repositories.RecipeFilter, page, limit int) ([]models.Recipe, int64, error) {
			filter = f
			return []models.Recipe{{ID: 1, UserID: "chef", Title: "Pad thai", Status: models.RecipeStatusApproved}}, 1, nil
		},
	}
	history := &searchHistoryMock{}
	provider := identitytest.New().AddUser("chef", "Chef", "chef@example.com")
	e := newTestServer(NewSearchHandler(reader, history, provider, discardLog).RegisterSearchRoutes)

	status, resp := doRequest(t, e, http.MethodGet, "/api/v1/search?q=%20thai%20", "visitor", nil)

	requireStatus(t, http.StatusOK, status, resp)
	assert.Equal(t, "thai", filter.Query)
	assert.Equal(t, models.RecipeStatusApproved, filter.Status)
	require.Len(t, history.recorded, 1)
	assert.Equal(t, "visitor", history.recorded[0].UserID)
	assert.Equal(t, "thai", history.recorded[0].Query)
	assert.EqualValues(t, 1, history.recorded[0].ResultCount)

	var views []RecipeView
	require.NoError(t, json.Unmarshal(resp.Data, &views))
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Author)
	assert.Equal(t, "Chef", views[0].Author.Name)
	require.NotNil(t, resp.Pagination)
	assert.EqualValues(t, 1, resp.Pagination.Total)
}

func TestSearchHandler_HistoryIsBestEffortAndFirstPageOnly(t *testing.T) {
	t.Parallel()

	reader := &recipeReaderMock{
		ListFunc: func(context.Context, repositories.RecipeFilter, int, int) ([]models.Recipe, int64, error) {
			return nil, 0, nil
		},
	}
	history := &searchHistoryMock{
		RecordFunc: func(context.Context, *models.SearchHistory) error { return errors.New("mongo down") },
	}
	e := newTestServer(NewSearchHandler(reader, history, identitytest.New(), discardLog).RegisterSearchRoutes)

	status, _ := doRequest(t, e, http.MethodGet, "/api/v1/search?q=soup", "visitor", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doRequest(t, e, http.MethodGet, "/api/v1/search?q=soup&page=2", "visitor", nil)
	assert.Equal(t, http.StatusOK, status)

	assert.Len(t, history.recorded, 1)
}

func TestSearchHandler_Errors(t *testing.T) {
	t.Parallel()

	history := &searchHistoryMock{
		DeleteEntryFunc: func(_ context.Context, userID, id string) error {
			return fmt.Errorf("search entry %s: %w", id, domain.ErrNotFound)
		},
	}
	e := newTestServer(NewSearchHandler(&recipeReaderMock{}, history, identitytest.New(), discardLog).RegisterSearchRoutes)

	status, resp := doRequest(t, e, http.MethodGet, "/api/v1/search?q=", "visitor", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "q", resp.Details[0].Field)

	status, _ = doRequest(t, e, http.MethodGet, "/api/v1/search?q=soup", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp = doRequest(t, e, http.MethodDelete, "/api/v1/search/history/abc", "visitor", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Resource not found", resp.Error)
}
