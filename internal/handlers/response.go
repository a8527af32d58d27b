package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/middleware"
	"github.com/anonto42/recipe-hub/backend/internal/moderation"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 50
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Error      string              `json:"error,omitempty"`
	Message    string              `json:"message,omitempty"`
	Details    []domain.FieldError `json:"details,omitempty"`
	Pagination *Pagination         `json:"pagination,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func newPagination(page, limit int, total int64) *Pagination {
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func respondPage(c echo.Context, data any, page, limit int, total int64) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: newPagination(page, limit, total)})
}

// parsePagination reads ?page and ?limit, falling back to page 1 and the default limit.
func parsePagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return page, limit
}

// idParam parses a positive integer path parameter.
func idParam(c echo.Context, name string) (uint, error) {
	return parseID(c.Param(name), name)
}

func parseID(raw, field string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, domain.NewValidationError(field, "must be a positive integer")
	}
	return uint(id), nil
}

func currentUserID(c echo.Context) (string, error) {
	uid := middleware.UserID(c)
	if uid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return uid, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("body", "invalid request body")
	}
	return c.Validate(req)
}

// NewHTTPErrorHandler converts handler errors into the JSON envelope.
// Domain errors map to 4xx codes; everything else is logged and reported as a generic 500.
func NewHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			log.ErrorContext(c.Request().Context(), "request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.Any("error", err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.ErrorContext(c.Request().Context(), "write error response", slog.Any("error", writeErr))
		}
	}
}

func errorResponse(err error) (int, Envelope) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, Envelope{Error: verr.Error(), Details: verr.Errors}
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return herr.Code, Envelope{Error: httpErrorMessage(herr)}
	}

	switch {
	case errors.Is(err, moderation.ErrNotInExpectedState):
		return http.StatusNotFound, Envelope{Error: "Recipe not found or not in the expected status"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, Envelope{Error: "Resource not found"}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, Envelope{Error: "Invalid request"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, Envelope{Error: "User not authenticated"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, Envelope{Error: "You are not allowed to perform this action"}
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, Envelope{Error: "Resource already exists"}
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, Envelope{Error: "Request conflicts with the current state"}
	default:
		return http.StatusInternalServerError, Envelope{Error: "Internal server error"}
	}
}

func httpErrorMessage(herr *echo.HTTPError) string {
	if herr.Code >= http.StatusInternalServerError {
		return "Internal server error"
	}
	if msg, ok := herr.Message.(string); ok {
		return msg
	}
	return http.StatusText(herr.Code)
}
