package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentView is a comment with its author's profile.
type CommentView struct {
	models.Comment
	Author *models.UserProfile `json:"author"`
}

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	recipes           recipeGetter
	identity          identity.Provider
	notifier          *SocialNotifier
	log               *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, recipes recipeGetter, provider identity.Provider, notifier *SocialNotifier, log *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		recipes:           recipes,
		identity:          provider,
		notifier:          notifier,
		log:               log,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/recipes/:id/comments", h.CreateComment)
	g.GET("/recipes/:id/comments", h.GetCommentsByRecipeID)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment to an approved recipe
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := approvedRecipe(c.Request().Context(), h.recipes, recipeID)
	if err != nil {
		return err
	}

	comment := &models.Comment{RecipeID: recipeID, UserID: userID, Content: req.Content}
	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return err
	}

	h.notifier.notify(c.Request().Context(), userID, recipe.UserID, models.NotificationComment,
		"New comment", fmt.Sprintf("commented on your recipe %q", recipe.Title), fmt.Sprint(comment.ID), models.RelatedComment)

	return respond(c, http.StatusCreated, comment, "Comment added")
}

// GetCommentsByRecipeID lists a recipe's comments, newest first
func (h *CommentHandler) GetCommentsByRecipeID(c echo.Context) error {
	recipeID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	page, limit := parsePagination(c)

	if _, err := approvedRecipe(c.Request().Context(), h.recipes, recipeID); err != nil {
		return err
	}

	comments, total, err := h.commentRepository.GetCommentsByRecipeID(c.Request().Context(), recipeID, page, limit)
	if err != nil {
		return err
	}

	ids := make([]string, len(comments))
	for i := range comments {
		ids[i] = comments[i].UserID
	}
	profiles := identity.ResolveProfiles(c.Request().Context(), h.identity, ids, h.log)

	views := make([]CommentView, len(comments))
	for i := range comments {
		views[i] = CommentView{Comment: comments[i], Author: profiles[comments[i].UserID]}
	}
	return respondPage(c, views, page, limit, total)
}

// UpdateComment updates an existing comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	commentID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(c.Request().Context(), comment); err != nil {
		return err
	}
	return respond(c, http.StatusOK, comment, "Comment updated")
}

// DeleteComment deletes a comment. The comment author and the recipe owner may delete it.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	commentID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(c.Request().Context(), commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		recipe, err := h.recipes.GetByID(c.Request().Context(), comment.RecipeID)
		if err != nil || recipe.UserID != userID {
			return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
		}
	}

	if err := h.commentRepository.DeleteComment(c.Request().Context(), commentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
