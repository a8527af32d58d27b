package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"github.com/anonto42/recipe-hub/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	identity         identity.Provider
	notifier         *SocialNotifier
	log              *slog.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, provider identity.Provider, notifier *SocialNotifier, log *slog.Logger) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		identity:         provider,
		notifier:         notifier,
		log:              log,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:userId/follow", h.FollowUser)
	g.DELETE("/users/:userId/follow", h.UnfollowUser)
	g.GET("/users/:userId/followers", h.GetFollowers)
	g.GET("/users/:userId/following", h.GetFollowing)
	g.GET("/users/:userId/follow-stats", h.GetFollowStats)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentID, err := currentUserID(c)
	if err != nil {
		return err
	}
	targetID := c.Param("userId")
	if targetID == currentID {
		return domain.NewValidationError("userId", "cannot follow yourself")
	}

	if _, err := h.identity.GetUser(c.Request().Context(), targetID); err != nil {
		return err
	}

	follow := &models.Follow{FollowerID: currentID, FollowingID: targetID}
	if err := h.followRepository.CreateFollow(c.Request().Context(), follow); err != nil {
		return err
	}

	h.notifier.notify(c.Request().Context(), currentID, targetID, models.NotificationFollow,
		"New follower", "started following you", currentID, models.RelatedUser)

	return respond(c, http.StatusCreated, follow, "Followed user")
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.followRepository.DeleteFollow(c.Request().Context(), currentID, c.Param("userId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetFollowers lists the profiles following a user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	return h.listProfiles(c, h.followRepository.GetFollowerIDs)
}

// GetFollowing lists the profiles a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	return h.listProfiles(c, h.followRepository.GetFollowingIDs)
}

// GetFollowStats returns follower and following counts and whether the caller follows the user
func (h *FollowHandler) GetFollowStats(c echo.Context) error {
	currentID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	userID := c.Param("userId")

	followers, err := h.followRepository.GetFollowersCount(ctx, userID)
	if err != nil {
		return err
	}
	following, err := h.followRepository.GetFollowingCount(ctx, userID)
	if err != nil {
		return err
	}
	isFollowing := false
	if userID != currentID {
		if isFollowing, err = h.followRepository.IsFollowing(ctx, currentID, userID); err != nil {
			return err
		}
	}

	return respond(c, http.StatusOK, echo.Map{
		"user_id":         userID,
		"followers_count": followers,
		"following_count": following,
		"is_following":    isFollowing,
	}, "")
}

type idPageFunc func(ctx context.Context, userID string, page, limit int) ([]string, int64, error)

func (h *FollowHandler) listProfiles(c echo.Context, fn idPageFunc) error {
	page, limit := parsePagination(c)
	ids, total, err := fn(c.Request().Context(), c.Param("userId"), page, limit)
	if err != nil {
		return err
	}

	profiles := identity.ResolveProfiles(c.Request().Context(), h.identity, ids, h.log)
	users := make([]*models.UserProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			users = append(users, p)
			continue
		}
		users = append(users, &models.UserProfile{ID: id})
	}
	return respondPage(c, users, page, limit, total)
}
