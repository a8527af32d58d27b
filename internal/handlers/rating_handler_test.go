package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity/identitytest"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ratingRepositoryMock keeps one rating per (recipe, user) like the unique index does.
type ratingRepositoryMock struct {
	ratings map[string]models.Rating
}

func ratingKey(recipeID uint, userID string) string { return fmt.Sprintf("%d/%s", recipeID, userID) }

func (m *ratingRepositoryMock) Upsert(_ context.Context, rating *models.Rating) error {
	m.ratings[ratingKey(rating.RecipeID, rating.UserID)] = *rating
	return nil
}

func (m *ratingRepositoryMock) GetSummary(_ context.Context, recipeID uint) (*models.RatingSummary, error) {
	var sum, count int
	for _, r := range m.ratings {
		if r.RecipeID == recipeID {
			sum += r.Value
			count++
		}
	}
	summary := &models.RatingSummary{RecipeID: recipeID, Count: int64(count)}
	if count > 0 {
		summary.Average = float64(sum) / float64(count)
	}
	return summary, nil
}

func (m *ratingRepositoryMock) GetUserRating(_ context.Context, recipeID uint, userID string) (*models.Rating, error) {
	r, ok := m.ratings[ratingKey(recipeID, userID)]
	if !ok {
		return nil, fmt.Errorf("rating of %s on %d: %w", userID, recipeID, domain.ErrNotFound)
	}
	return &r, nil
}

func ratingFixture(writer *notificationWriterMock) *echo.Echo {
	reader := &recipeReaderMock{GetByIDFunc: func(_ context.Context, id uint) (*models.Recipe, error) {
		return &models.Recipe{ID: id, UserID: "author", Title: "Ramen", Status: models.RecipeStatusApproved}, nil
	}}
	repo := &ratingRepositoryMock{ratings: make(map[string]models.Rating)}
	notifier := NewSocialNotifier(identitytest.New().AddUser("critic", "Cora", ""), writer, discardLog)
	return newTestServer(NewRatingHandler(repo, reader, notifier).RegisterRatingRoutes)
}

func TestRatingHandler_NotifiesOnNewOrChangedRating(t *testing.T) {
	t.Parallel()

	writer := &notificationWriterMock{}
	e := ratingFixture(writer)

	status, resp := doRequest(t, e, http.MethodPost, "/api/v1/recipes/9/ratings", "critic", models.RateRecipeRequest{Value: 4})
	requireStatus(t, http.StatusOK, status, resp)
	require.Len(t, writer.created, 1)
	assert.Equal(t, "author", writer.created[0].RecipientID)
	assert.Equal(t, models.NotificationRating, writer.created[0].Type)

	status, resp = doRequest(t, e, http.MethodPost, "/api/v1/recipes/9/ratings", "critic", models.RateRecipeRequest{Value: 4})
	requireStatus(t, http.StatusOK, status, resp)
	assert.Len(t, writer.created, 1, "same value again stays silent")

	status, resp = doRequest(t, e, http.MethodPost, "/api/v1/recipes/9/ratings", "critic", models.RateRecipeRequest{Value: 2})
	requireStatus(t, http.StatusOK, status, resp)
	require.Len(t, writer.created, 2)
	assert.Contains(t, writer.created[1].Message, "2/5")
}

func TestRatingHandler_Rejections(t *testing.T) {
	t.Parallel()

	writer := &notificationWriterMock{}
	e := ratingFixture(writer)

	status, _ := doRequest(t, e, http.MethodPost, "/api/v1/recipes/9/ratings", "author", models.RateRecipeRequest{Value: 5})
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp := doRequest(t, e, http.MethodPost, "/api/v1/recipes/9/ratings", "critic", models.RateRecipeRequest{Value: 6})
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "value", resp.Details[0].Field)

	assert.Empty(t, writer.created)
}
