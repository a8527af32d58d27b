package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/middleware"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/moderation"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/anonto42/recipe-hub/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const (
	testUserHeader = "X-Test-User"
	testOrgHeader  = "X-Test-Org"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestServer returns an echo instance wired like production, with the
// caller identity taken from the X-Test-User header and the admin
// organization from X-Test-Org.
func newTestServer(register func(g *echo.Group)) *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(discardLog)

	g := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid := c.Request().Header.Get(testUserHeader); uid != "" {
				c.Set(middleware.UserIDKey, uid)
			}
			if org := c.Request().Header.Get(testOrgHeader); org != "" {
				c.Set(middleware.OrganizationIDKey, org)
			}
			return next(c)
		}
	})
	register(g)
	return e
}

type testResponse struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Error      string              `json:"error"`
	Message    string              `json:"message"`
	Details    []domain.FieldError `json:"details"`
	Pagination *Pagination         `json:"pagination"`
}

func doRequest(t *testing.T, e *echo.Echo, method, path, user string, body any) (int, testResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp testResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec.Code, resp
}

type moderationDeciderMock struct {
	ApproveFunc              func(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)
	RejectFunc               func(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)
	ApproveDeletionFunc      func(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)
	RejectDeletionFunc       func(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error)
	ListPendingFunc          func(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error)
	ListDeletionRequestsFunc func(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error)
}

func (m *moderationDeciderMock) Approve(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error) {
	return m.ApproveFunc(ctx, adminID, recipeID, comment)
}

func (m *moderationDeciderMock) Reject(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error) {
	return m.RejectFunc(ctx, adminID, recipeID, comment)
}

func (m *moderationDeciderMock) ApproveDeletion(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error) {
	return m.ApproveDeletionFunc(ctx, adminID, recipeID, comment)
}

func (m *moderationDeciderMock) RejectDeletion(ctx context.Context, adminID string, recipeID uint, comment string) (moderation.Outcome, error) {
	return m.RejectDeletionFunc(ctx, adminID, recipeID, comment)
}

func (m *moderationDeciderMock) ListPending(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error) {
	return m.ListPendingFunc(ctx, organizationID, adminID, page, limit)
}

func (m *moderationDeciderMock) ListDeletionRequests(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error) {
	return m.ListDeletionRequestsFunc(ctx, organizationID, adminID, page, limit)
}

type recipeModeratorMock struct {
	CreateFunc          func(ctx context.Context, authorID string, recipe *models.Recipe) (moderation.Outcome, error)
	EditFunc            func(ctx context.Context, editorID string, recipeID uint, content models.RecipeContent) (moderation.Outcome, error)
	RequestDeletionFunc func(ctx context.Context, requesterID string, recipeID uint) (moderation.Outcome, error)
}

func (m *recipeModeratorMock) Create(ctx context.Context, authorID string, recipe *models.Recipe) (moderation.Outcome, error) {
	return m.CreateFunc(ctx, authorID, recipe)
}

func (m *recipeModeratorMock) Edit(ctx context.Context, editorID string, recipeID uint, content models.RecipeContent) (moderation.Outcome, error) {
	return m.EditFunc(ctx, editorID, recipeID, content)
}

func (m *recipeModeratorMock) RequestDeletion(ctx context.Context, requesterID string, recipeID uint) (moderation.Outcome, error) {
	return m.RequestDeletionFunc(ctx, requesterID, recipeID)
}

type recipeReaderMock struct {
	GetByIDFunc func(ctx context.Context, id uint) (*models.Recipe, error)
	ListFunc    func(ctx context.Context, filter repositories.RecipeFilter, page, limit int) ([]models.Recipe, int64, error)
}

func (m *recipeReaderMock) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *recipeReaderMock) List(ctx context.Context, filter repositories.RecipeFilter, page, limit int) ([]models.Recipe, int64, error) {
	return m.ListFunc(ctx, filter, page, limit)
}

type notificationWriterMock struct {
	CreateBatchFunc func(ctx context.Context, notifications []models.Notification) error
	created         []models.Notification
}

func (m *notificationWriterMock) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if m.CreateBatchFunc != nil {
		if err := m.CreateBatchFunc(ctx, notifications); err != nil {
			return err
		}
	}
	m.created = append(m.created, notifications...)
	return nil
}

func mustNotCall(t *testing.T, name string) {
	t.Helper()
	t.Fatalf("%s must not be called", name)
}

func requireStatus(t *testing.T, want, got int, resp testResponse) {
	t.Helper()
	require.Equal(t, want, got, "error=%q details=%v", resp.Error, resp.Details)
}
