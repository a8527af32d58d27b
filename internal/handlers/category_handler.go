package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles recipe categories
type CategoryHandler struct {
	categoryRepository repositories.CategoryRepository
	recipes            recipeReader
	identity           identity.Provider
	log                *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryRepo repositories.CategoryRepository, recipes recipeReader, provider identity.Provider, log *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categoryRepository: categoryRepo, recipes: recipes, identity: provider, log: log}
}

// RegisterCategoryRoutes registers the read-only category routes
func (h *CategoryHandler) RegisterCategoryRoutes(g *echo.Group) {
	g.GET("/categories", h.ListCategories)
	g.GET("/categories/:id/recipes", h.GetCategoryRecipes)
}

// RegisterCategoryAdminRoutes registers category management behind the given
// admin middleware
func (h *CategoryHandler) RegisterCategoryAdminRoutes(g *echo.Group, admin ...echo.MiddlewareFunc) {
	g.POST("/categories", h.CreateCategory, admin...)
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.categoryRepository.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, categories, "")
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req models.CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := h.categoryRepository.Create(c.Request().Context(), category); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, category, "Category created")
}

// GetCategoryRecipes lists approved recipes in a category
func (h *CategoryHandler) GetCategoryRecipes(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.categoryRepository.GetByID(c.Request().Context(), id); err != nil {
		return err
	}
	page, limit := parsePagination(c)

	recipes, total, err := h.recipes.List(c.Request().Context(),
		repositories.RecipeFilter{Status: models.RecipeStatusApproved, CategoryID: id}, page, limit)
	if err != nil {
		return err
	}
	return respondPage(c, attachAuthors(c.Request().Context(), h.identity, h.log, recipes), page, limit, total)
}
