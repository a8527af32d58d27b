package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CollectionHandler handles user recipe collections
type CollectionHandler struct {
	collectionRepository repositories.CollectionRepository
	recipes              recipeGetter
	identity             identity.Provider
	log                  *slog.Logger
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionRepo repositories.CollectionRepository, recipes recipeGetter, provider identity.Provider, log *slog.Logger) *CollectionHandler {
	return &CollectionHandler{collectionRepository: collectionRepo, recipes: recipes, identity: provider, log: log}
}

// RegisterCollectionRoutes registers collection routes
func (h *CollectionHandler) RegisterCollectionRoutes(g *echo.Group) {
	g.POST("/collections", h.CreateCollection)
	g.GET("/collections", h.GetMyCollections)
	g.GET("/users/:userId/collections", h.GetUserCollections)
	g.GET("/collections/:id", h.GetCollection)
	g.PUT("/collections/:id", h.UpdateCollection)
	g.DELETE("/collections/:id", h.DeleteCollection)
	g.GET("/collections/:id/recipes", h.GetCollectionRecipes)
	g.POST("/collections/:id/recipes/:recipeId", h.AddRecipe)
	g.DELETE("/collections/:id/recipes/:recipeId", h.RemoveRecipe)
}

func (h *CollectionHandler) CreateCollection(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req models.CreateCollectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	collection := &models.Collection{UserID: userID, Name: req.Name, Description: req.Description, IsPublic: req.IsPublic}
	if err := h.collectionRepository.Create(c.Request().Context(), collection); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, collection, "Collection created")
}

func (h *CollectionHandler) GetMyCollections(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	collections, err := h.collectionRepository.ListByUser(c.Request().Context(), userID, false)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, collections, "")
}

// GetUserCollections lists another user's public collections
func (h *CollectionHandler) GetUserCollections(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	owner := c.Param("userId")
	collections, err := h.collectionRepository.ListByUser(c.Request().Context(), owner, owner != userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, collections, "")
}

func (h *CollectionHandler) GetCollection(c echo.Context) error {
	collection, err := h.visibleCollection(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, collection, "")
}

func (h *CollectionHandler) UpdateCollection(c echo.Context) error {
	collection, err := h.ownedCollection(c)
	if err != nil {
		return err
	}
	var req models.UpdateCollectionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if req.Name != nil {
		collection.Name = *req.Name
	}
	if req.Description != nil {
		collection.Description = *req.Description
	}
	if req.IsPublic != nil {
		collection.IsPublic = *req.IsPublic
	}
	if err := h.collectionRepository.Update(c.Request().Context(), collection); err != nil {
		return err
	}
	return respond(c, http.StatusOK, collection, "Collection updated")
}

func (h *CollectionHandler) DeleteCollection(c echo.Context) error {
	collection, err := h.ownedCollection(c)
	if err != nil {
		return err
	}
	if err := h.collectionRepository.Delete(c.Request().Context(), collection.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CollectionHandler) GetCollectionRecipes(c echo.Context) error {
	collection, err := h.visibleCollection(c)
	if err != nil {
		return err
	}
	page, limit := parsePagination(c)

	recipes, total, err := h.collectionRepository.ListRecipes(c.Request().Context(), collection.ID, page, limit)
	if err != nil {
		return err
	}
	return respondPage(c, attachAuthors(c.Request().Context(), h.identity, h.log, recipes), page, limit, total)
}

// AddRecipe adds an approved recipe, or one of the caller's own, to an owned collection
func (h *CollectionHandler) AddRecipe(c echo.Context) error {
	collection, err := h.ownedCollection(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "recipeId")
	if err != nil {
		return err
	}

	recipe, err := h.recipes.GetByID(c.Request().Context(), recipeID)
	if err != nil {
		return err
	}
	if recipe.Status != models.RecipeStatusApproved && recipe.UserID != collection.UserID {
		return fmt.Errorf("recipe %d is not public: %w", recipeID, domain.ErrNotFound)
	}

	if err := h.collectionRepository.AddRecipe(c.Request().Context(), collection.ID, recipeID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"collection_id": collection.ID, "recipe_id": recipeID}, "Recipe added to collection")
}

func (h *CollectionHandler) RemoveRecipe(c echo.Context) error {
	collection, err := h.ownedCollection(c)
	if err != nil {
		return err
	}
	recipeID, err := idParam(c, "recipeId")
	if err != nil {
		return err
	}
	if err := h.collectionRepository.RemoveRecipe(c.Request().Context(), collection.ID, recipeID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CollectionHandler) load(ctx context.Context, c echo.Context) (*models.Collection, string, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, "", err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return nil, "", err
	}
	collection, err := h.collectionRepository.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return collection, userID, nil
}

// visibleCollection hides private collections of other users behind a not found.
func (h *CollectionHandler) visibleCollection(c echo.Context) (*models.Collection, error) {
	collection, userID, err := h.load(c.Request().Context(), c)
	if err != nil {
		return nil, err
	}
	if !collection.IsPublic && collection.UserID != userID {
		return nil, fmt.Errorf("collection %d is private: %w", collection.ID, domain.ErrNotFound)
	}
	return collection, nil
}

func (h *CollectionHandler) ownedCollection(c echo.Context) (*models.Collection, error) {
	collection, userID, err := h.load(c.Request().Context(), c)
	if err != nil {
		return nil, err
	}
	if collection.UserID != userID {
		return nil, echo.NewHTTPError(http.StatusForbidden, "You do not own this collection")
	}
	return collection, nil
}
