package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/moderation"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/anonto42/recipe-hub/backend/pkg/storage"
	"github.com/labstack/echo/v4"
)

type recipeModerator interface {
	Create(ctx context.Context, authorID string, recipe *models.Recipe) (moderation.Outcome, error)
	Edit(ctx context.Context, editorID string, recipeID uint, content models.RecipeContent) (moderation.Outcome, error)
	RequestDeletion(ctx context.Context, requesterID string, recipeID uint) (moderation.Outcome, error)
}

type recipeReader interface {
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	List(ctx context.Context, filter repositories.RecipeFilter, page, limit int) ([]models.Recipe, int64, error)
}

type mediaUploader interface {
	UploadFile(ctx context.Context, folder, fileName string, body io.Reader, allowed ...string) (string, string, error)
	DeleteFile(ctx context.Context, key string) error
	PublicURL(key string) string
	KeyFromURL(link string) string
}

// RecipeView is a recipe together with its author's profile. Author is null
// when the profile could not be resolved.
type RecipeView struct {
	models.Recipe
	Author *models.UserProfile `json:"author"`
}

// RecipeHandler handles recipe HTTP requests
type RecipeHandler struct {
	moderator      recipeModerator
	recipes        recipeReader
	identity       identity.Provider
	uploader       mediaUploader
	maxUploadBytes int64
	log            *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler. uploader may be nil when object storage is not configured.
func NewRecipeHandler(moderator recipeModerator, recipes recipeReader, provider identity.Provider, uploader mediaUploader, maxUploadBytes int64, log *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		moderator:      moderator,
		recipes:        recipes,
		identity:       provider,
		uploader:       uploader,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// RegisterRecipeRoutes registers recipe routes
func (h *RecipeHandler) RegisterRecipeRoutes(g *echo.Group) {
	g.GET("/recipes", h.ListRecipes)
	g.GET("/recipes/:id", h.GetRecipe)
	g.GET("/users/:userId/recipes", h.GetUserRecipes)
	g.POST("/recipes/:userId", h.CreateRecipe)
	g.PUT("/recipes/:id", h.UpdateRecipe)
	g.DELETE("/recipes/:id", h.DeleteRecipe)
	g.POST("/recipes/:id/image", h.UploadMedia)
}

// ListRecipes returns approved recipes, newest first
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	page, limit := parsePagination(c)
	filter := repositories.RecipeFilter{Status: models.RecipeStatusApproved}
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := parseID(raw, "category_id")
		if err != nil {
			return err
		}
		filter.CategoryID = id
	}

	recipes, total, err := h.recipes.List(c.Request().Context(), filter, page, limit)
	if err != nil {
		return err
	}
	return respondPage(c, h.withAuthors(c.Request().Context(), recipes), page, limit, total)
}

// GetRecipe returns one recipe. Unapproved recipes are only visible to their author.
func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	recipe, err := h.recipes.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if recipe.Status != models.RecipeStatusApproved && recipe.UserID != userID {
		return fmt.Errorf("recipe %d is not public: %w", id, domain.ErrNotFound)
	}

	return respond(c, http.StatusOK, h.withAuthors(c.Request().Context(), []models.Recipe{*recipe})[0], "")
}

// GetUserRecipes lists a user's recipes. The owner sees every status and may filter with ?status.
func (h *RecipeHandler) GetUserRecipes(c echo.Context) error {
	currentID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ownerID := c.Param("userId")
	page, limit := parsePagination(c)

	filter := repositories.RecipeFilter{UserID: ownerID, Status: models.RecipeStatusApproved}
	if ownerID == currentID {
		filter.Status = ""
		if raw := c.QueryParam("status"); raw != "" {
			status, err := models.ParseRecipeStatus(raw)
			if err != nil {
				return domain.NewValidationError("status", err.Error())
			}
			filter.Status = status
		}
	}

	recipes, total, err := h.recipes.List(c.Request().Context(), filter, page, limit)
	if err != nil {
		return err
	}
	return respondPage(c, h.withAuthors(c.Request().Context(), recipes), page, limit, total)
}

// CreateRecipe submits a new recipe for review. The path user must be the caller.
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if c.Param("userId") != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Cannot create recipes for another user")
	}

	var req models.CreateRecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	recipe := &models.Recipe{
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Description:   req.Description,
		EstimatedTime: req.EstimatedTime,
		Servings:      req.Servings,
		ImageURL:      req.ImageURL,
		MediaType:     req.MediaType,
		Ingredients:   models.ToIngredients(req.Ingredients),
		Instructions:  models.ToInstructions(req.Instructions),
	}
	if recipe.ImageURL != "" && recipe.MediaType == "" {
		recipe.MediaType = models.MediaTypeImage
	}

	outcome, err := h.moderator.Create(c.Request().Context(), userID, recipe)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, outcome.Recipe, "Recipe submitted for review")
}

// UpdateRecipe edits an owned recipe and sends it back to review.
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateRecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	content := models.RecipeContent{
		Title:         req.Title,
		Description:   req.Description,
		EstimatedTime: req.EstimatedTime,
		Servings:      req.Servings,
		ImageURL:      req.ImageURL,
		MediaType:     req.MediaType,
		CategoryID:    req.CategoryID,
		Ingredients:   models.ToIngredients(req.Ingredients),
		Instructions:  models.ToInstructions(req.Instructions),
	}

	outcome, err := h.moderator.Edit(c.Request().Context(), userID, id, content)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, outcome.Recipe, "Recipe updated and awaiting review")
}

// DeleteRecipe asks the admins to delete an owned recipe.
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	outcome, err := h.moderator.RequestDeletion(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, outcome.Recipe, "Deletion requested and awaiting admin approval")
}

// UploadMedia stores the multipart "file" field and sets it as the recipe's media.
// Changing media is an edit, so the recipe goes back to review.
func (h *RecipeHandler) UploadMedia(c echo.Context) error {
	if h.uploader == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Media uploads are not configured")
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	current, err := h.recipes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.UserID != userID {
		return fmt.Errorf("upload media for recipe %d: %w", id, domain.ErrForbidden)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("file", "is required")
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return domain.NewValidationError("file", fmt.Sprintf("must be at most %d bytes", h.maxUploadBytes))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	allowed := append(append([]string{}, storage.AllowImage...), storage.AllowVideo...)
	key, contentType, err := h.uploader.UploadFile(ctx, fmt.Sprintf("recipes/%d", id), fileHeader.Filename, src, allowed...)
	if err != nil {
		if errors.Is(err, storage.ErrContentType) {
			return domain.NewValidationError("file", "must be a JPEG, PNG, WebP or GIF image or an MP4 or WebM video")
		}
		return err
	}

	url := h.uploader.PublicURL(key)
	mediaType := models.MediaType(storage.MediaTypeOf(contentType))
	outcome, err := h.moderator.Edit(ctx, userID, id, models.RecipeContent{ImageURL: &url, MediaType: &mediaType})
	if err != nil {
		h.removeMedia(ctx, key)
		return err
	}

	if previous := h.uploader.KeyFromURL(current.ImageURL); previous != "" && previous != key {
		h.removeMedia(ctx, previous)
	}
	return respond(c, http.StatusOK, outcome.Recipe, "Media uploaded and recipe awaiting review")
}

// removeMedia deletes an object we no longer reference. Failures only leave an orphan behind.
func (h *RecipeHandler) removeMedia(ctx context.Context, key string) {
	if err := h.uploader.DeleteFile(ctx, key); err != nil {
		h.log.WarnContext(ctx, "delete media object", slog.String("key", key), slog.Any("error", err))
	}
}

func (h *RecipeHandler) withAuthors(ctx context.Context, recipes []models.Recipe) []RecipeView {
	return attachAuthors(ctx, h.identity, h.log, recipes)
}

// attachAuthors resolves every distinct author concurrently and pairs recipes with profiles.
func attachAuthors(ctx context.Context, provider identity.Provider, log *slog.Logger, recipes []models.Recipe) []RecipeView {
	ids := make([]string, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].UserID
	}
	profiles := identity.ResolveProfiles(ctx, provider, ids, log)

	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i] = RecipeView{Recipe: recipes[i], Author: profiles[recipes[i].UserID]}
	}
	return views
}
