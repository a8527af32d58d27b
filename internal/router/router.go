package router

import (
	"log/slog"

	"github.com/anonto42/recipe-hub/backend/internal/handlers"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/middleware"
	"github.com/anonto42/recipe-hub/backend/internal/moderation"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/anonto42/recipe-hub/backend/pkg/config"
	"github.com/anonto42/recipe-hub/backend/pkg/storage"
	"github.com/labstack/echo/v4"
)

// Dependencies are the long-lived collaborators the routes are built from.
type Dependencies struct {
	Config   *config.Config
	DB       *config.DB
	Log      *slog.Logger
	Identity identity.Provider
	// Verifier checks bearer tokens on every protected route.
	Verifier middleware.TokenVerifier
	// Auth handles /auth routes; nil disables them.
	Auth *handlers.AuthHandler
	// Storage is nil when no bucket is configured.
	Storage *storage.S3
	// Mailer is nil when SMTP is not configured.
	Mailer moderation.Mailer
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	log := deps.Log
	pgdb := deps.DB.Postgres

	e.GET("/health", handlers.HealthCheck(deps.DB))

	// --- Initialize Repositories ---
	recipeRepo := repositories.NewPostgresRecipeRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	ratingRepo := repositories.NewPostgresRatingRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	favoriteRepo := repositories.NewPostgresFavoriteRepository(pgdb)
	collectionRepo := repositories.NewPostgresCollectionRepository(pgdb)
	categoryRepo := repositories.NewPostgresCategoryRepository(pgdb)
	searchHistoryRepo := repositories.NewMongoSearchHistoryRepository(deps.DB.MongoDB)

	// --- Moderation core ---
	notifier := moderation.NewNotifier(log, deps.Identity, notificationRepo, deps.Mailer)
	moderationService := moderation.NewService(log, deps.Identity, recipeRepo, notifier)
	social := handlers.NewSocialNotifier(deps.Identity, notificationRepo, log)

	// --- Unprotected routes for authentication ---
	if deps.Auth != nil {
		deps.Auth.RegisterAuthRoutes(e.Group("/api/v1/auth"))
	}

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(middleware.Authenticate(deps.Verifier))
	requireAdmin := middleware.RequireAdmin(deps.Identity, log)

	if deps.Auth != nil {
		deps.Auth.RegisterProfileRoutes(api)
	}

	newRecipeHandler(moderationService, recipeRepo, deps, log).RegisterRecipeRoutes(api)

	adminHandler := handlers.NewAdminHandler(moderationService, deps.Identity, log)
	adminHandler.RegisterAdminRoutes(api.Group("/admin/:userId", requireAdmin))

	handlers.NewLikeHandler(likeRepo, recipeRepo, social).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentRepo, recipeRepo, deps.Identity, social, log).RegisterCommentRoutes(api)
	handlers.NewRatingHandler(ratingRepo, recipeRepo, social).RegisterRatingRoutes(api)
	handlers.NewFollowHandler(followRepo, deps.Identity, social, log).RegisterFollowRoutes(api)
	handlers.NewFavoriteHandler(favoriteRepo, recipeRepo, deps.Identity, log).RegisterFavoriteRoutes(api)
	handlers.NewCollectionHandler(collectionRepo, recipeRepo, deps.Identity, log).RegisterCollectionRoutes(api)

	categoryHandler := handlers.NewCategoryHandler(categoryRepo, recipeRepo, deps.Identity, log)
	categoryHandler.RegisterCategoryRoutes(api)
	categoryHandler.RegisterCategoryAdminRoutes(api, requireAdmin)

	handlers.NewNotificationHandler(notificationRepo, deps.Identity, log).RegisterNotificationRoutes(api)
	handlers.NewSearchHandler(recipeRepo, searchHistoryRepo, deps.Identity, log).RegisterSearchRoutes(api)

	log.Info("routes configured", slog.Int("count", len(e.Routes())))
}

// newRecipeHandler keeps a nil *storage.S3 out of the uploader interface.
func newRecipeHandler(svc *moderation.Service, recipes *repositories.PostgresRecipeRepository, deps Dependencies, log *slog.Logger) *handlers.RecipeHandler {
	if deps.Storage == nil {
		return handlers.NewRecipeHandler(svc, recipes, deps.Identity, nil, 0, log)
	}
	return handlers.NewRecipeHandler(svc, recipes, deps.Identity, deps.Storage, deps.Config.Storage.MaxUploadBytes, log)
}
