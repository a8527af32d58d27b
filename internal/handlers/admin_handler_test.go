package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/recipe-hub/backend/internal/identity/identitytest"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/moderation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminServer(decider *moderationDeciderMock, provider *identitytest.Provider) *echo.Echo {
	h := NewAdminHandler(decider, provider, discardLog)
	return newTestServer(func(g *echo.Group) {
		h.RegisterAdminRoutes(g.Group("/admin/:userId"))
	})
}

func reviewedRecipe(id uint, status models.RecipeStatus, adminID, comment string) *models.Recipe {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Recipe{
		ID:            id,
		UserID:        "author",
		Title:         "Lentil soup",
		Status:        status,
		ReviewedBy:    &adminID,
		ReviewedAt:    &at,
		ReviewComment: &comment,
	}
}

func TestAdminHandler_Approve(t *testing.T) {
	t.Parallel()

	var gotAdmin, gotComment string
	var gotID uint
	decider := &moderationDeciderMock{
		ApproveFunc: func(_ context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error) {
			gotAdmin, gotID, gotComment = adminID, recipeID, comment
			return moderation.Outcome{
				Recipe:       reviewedRecipe(recipeID, models.RecipeStatusApproved, adminID, comment),
				Notification: moderation.Delivery{Recipients: 1},
			}, nil
		},
	}
	e := newAdminServer(decider, identitytest.New())

	status, resp := doRequest(t, e, http.MethodPost, "/api/v1/admin/admin-a/approve/12", "admin-a",
		models.ModerationDecisionRequest{Comment: "looks good"})

	requireStatus(t, http.StatusOK, status, resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Recipe approved", resp.Message)
	assert.Equal(t, "admin-a", gotAdmin)
	assert.Equal(t, uint(12), gotID)
	assert.Equal(t, "looks good", gotComment)

	var recipe models.Recipe
	require.NoError(t, json.Unmarshal(resp.Data, &recipe))
	assert.Equal(t, models.RecipeStatusApproved, recipe.Status)
	require.NotNil(t, recipe.ReviewedBy)
	assert.Equal(t, "admin-a", *recipe.ReviewedBy)
}

func TestAdminHandler_ApproveWithoutBody(t *testing.T) {
	t.Parallel()

	decider := &moderationDeciderMock{
		ApproveFunc: func(_ context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error) {
			assert.Empty(t, comment)
			return moderation.Outcome{Recipe: reviewedRecipe(recipeID, models.RecipeStatusApproved, adminID, "")}, nil
		},
	}
	e := newAdminServer(decider, identitytest.New())

	status, resp := doRequest(t, e, http.MethodPost, "/api/v1/admin/admin-a/approve/12", "admin-a", nil)
	requireStatus(t, http.StatusOK, status, resp)
}

func TestAdminHandler_NotificationFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	decider := &moderationDeciderMock{
		RejectDeletionFunc: func(_ context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error) {
			return moderation.Outcome{
				Recipe:       reviewedRecipe(recipeID, models.RecipeStatusApproved, adminID, comment),
				Notification: moderation.Delivery{Err: errors.New("insert failed")},
			}, nil
		},
	}
	e := newAdminServer(decider, identitytest.New())

	status, resp := doRequest(t, e, http.MethodPost, "/api/v1/admin/admin-a/reject-deletion/4", "admin-a",
		models.ModerationDecisionRequest{Comment: "keep it"})
	requireStatus(t, http.StatusOK, status, resp)
	assert.Equal(t, "Deletion request rejected, recipe restored", resp.Message)
}

func TestAdminHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		body    any
		decider *moderationDeciderMock
		status  int
		message string
	}{
		{
			name: "non-numeric recipe id",
			path: "/api/v1/admin/admin-a/approve/abc",
			decider: &moderationDeciderMock{ApproveFunc: func(context.Context, string, uint, string) (moderation.Outcome, error) {
				return moderation.Outcome{}, errors.New("must not be called")
			}},
			status:  http.StatusBadRequest,
			message: "recipeId: must be a positive integer",
		},
		{
			name: "reject without comment",
			path: "/api/v1/admin/admin-a/reject/5",
			body: models.ModerationDecisionRequest{},
			decider: &moderationDeciderMock{RejectFunc: func(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error) {
				return moderation.NewService(discardLog, nil, nil, nil).Reject(ctx, adminID, recipeID, comment)
			}},
			status:  http.StatusBadRequest,
			message: "comment: a comment is required when rejecting a recipe",
		},
		{
			name: "recipe not pending",
			path: "/api/v1/admin/admin-a/approve/5",
			body: models.ModerationDecisionRequest{},
			decider: &moderationDeciderMock{ApproveFunc: func(context.Context, string, uint, string) (moderation.Outcome, error) {
				return moderation.Outcome{}, moderation.ErrNotInExpectedState
			}},
			status:  http.StatusNotFound,
			message: "Recipe not found or not in the expected status",
		},
		{
			name: "comment too long",
			path: "/api/v1/admin/admin-a/approve-deletion/5",
			body: models.ModerationDecisionRequest{Comment: string(make([]byte, 1001))},
			decider: &moderationDeciderMock{ApproveDeletionFunc: func(context.Context, string, uint, string) (moderation.Outcome, error) {
				return moderation.Outcome{}, errors.New("must not be called")
			}},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newAdminServer(tt.decider, identitytest.New())

			status, resp := doRequest(t, e, http.MethodPost, tt.path, "admin-a", tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error)
			}
		})
	}
}

func TestAdminHandler_ListPending(t *testing.T) {
	t.Parallel()

	provider := identitytest.New().AddUser("author-1", "Alice", "alice@example.com")
	decider := &moderationDeciderMock{
		ListPendingFunc: func(_ context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error) {
			assert.Equal(t, "org-1", organizationID)
			assert.Equal(t, "admin-a", adminID)
			assert.Equal(t, 2, page)
			assert.Equal(t, 5, limit)
			return []models.Recipe{
				{ID: 1, UserID: "author-1", Title: "Soup", Status: models.RecipeStatusPending},
				{ID: 2, UserID: "ghost", Title: "Stew", Status: models.RecipeStatusPending},
			}, 7, nil
		},
	}
	e := newAdminServer(decider, provider)

	status, resp := doAdminRequest(t, e, http.MethodGet, "/api/v1/admin/admin-a/pending?page=2&limit=5", "admin-a", "org-1")
	requireStatus(t, http.StatusOK, status, resp)

	require.NotNil(t, resp.Pagination)
	assert.Equal(t, Pagination{Page: 2, Limit: 5, Total: 7, TotalPages: 2}, *resp.Pagination)

	var views []RecipeView
	require.NoError(t, json.Unmarshal(resp.Data, &views))
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Author)
	assert.Equal(t, "Alice", views[0].Author.Name)
	assert.Nil(t, views[1].Author, "unresolvable author renders as null")
}

func TestAdminHandler_ListRequiresOrganization(t *testing.T) {
	t.Parallel()

	decider := &moderationDeciderMock{
		ListDeletionRequestsFunc: func(context.Context, string, string, int, int) ([]models.Recipe, int64, error) {
			mustNotCall(t, "ListDeletionRequests")
			return nil, 0, nil
		},
	}
	e := newAdminServer(decider, identitytest.New())

	status, _ := doRequest(t, e, http.MethodGet, "/api/v1/admin/admin-a/deletion-requests", "admin-a", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func doAdminRequest(t *testing.T, e *echo.Echo, method, path, user, org string) (int, testResponse) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(testUserHeader, user)
	req.Header.Set(testOrgHeader, org)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}
