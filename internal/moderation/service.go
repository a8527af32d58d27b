package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
)

// ErrNotInExpectedState is returned when a recipe is missing or not in the
// source status of the requested transition. The two cases are not told apart.
var ErrNotInExpectedState = fmt.Errorf("recipe not found or not in the expected status: %w", domain.ErrNotFound)

// ErrDeletionAlreadyRequested is returned for a second deletion request.
var ErrDeletionAlreadyRequested = domain.NewValidationError("status", "recipe deletion has already been requested")

type recipeStore interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	UpdateContent(ctx context.Context, id uint, content models.RecipeContent) (*models.Recipe, error)
	Transition(ctx context.Context, id uint, from []models.RecipeStatus, to models.RecipeStatus, review *models.Review) (*models.Recipe, error)
	DeleteCascade(ctx context.Context, id uint, from models.RecipeStatus) (*models.Recipe, error)
	ListByStatus(ctx context.Context, status models.RecipeStatus, authorIDs []string, page, limit int) ([]models.Recipe, int64, error)
}

// Outcome is the result of a moderation operation: the recipe after the
// transition and what happened to the notification side effect.
type Outcome struct {
	Recipe       *models.Recipe
	Notification Delivery
}

// Service owns every write to a recipe's status and review fields.
type Service struct {
	identity identity.Provider
	recipes  recipeStore
	notifier *Notifier
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a moderation Service.
func NewService(log *slog.Logger, provider identity.Provider, recipes recipeStore, notifier *Notifier) *Service {
	return &Service{
		identity: provider,
		recipes:  recipes,
		notifier: notifier,
		log:      log.With("component", "moderation"),
		now:      time.Now,
	}
}

// Create stores a new recipe owned by authorID in pending status and notifies the admins.
func (s *Service) Create(ctx context.Context, authorID string, recipe *models.Recipe) (Outcome, error) {
	if strings.TrimSpace(authorID) == "" {
		return Outcome{}, domain.NewValidationError("userId", "author is required")
	}
	t, err := Next("", EventSubmit)
	if err != nil {
		return Outcome{}, err
	}

	recipe.ID = 0
	recipe.UserID = authorID
	recipe.Status = t.To
	recipe.ReviewedBy, recipe.ReviewedAt, recipe.ReviewComment = nil, nil, nil

	if err := s.recipes.Create(ctx, recipe); err != nil {
		return Outcome{}, fmt.Errorf("create recipe: %w", err)
	}
	s.log.InfoContext(ctx, "recipe submitted", slog.Uint64("recipe_id", uint64(recipe.ID)), slog.String("author_id", authorID))

	return Outcome{Recipe: recipe, Notification: s.notifier.FanOut(ctx, FanOutCreated, recipe)}, nil
}

// Edit applies an author edit. Any edit sends the recipe back to pending and clears the review.
func (s *Service) Edit(ctx context.Context, editorID string, recipeID uint, content models.RecipeContent) (Outcome, error) {
	current, err := s.ownedRecipe(ctx, editorID, recipeID)
	if err != nil {
		return Outcome{}, err
	}
	if _, err := Next(current.Status, EventEdit); err != nil {
		return Outcome{}, err
	}

	updated, err := s.recipes.UpdateContent(ctx, recipeID, content)
	if err != nil {
		return Outcome{}, fmt.Errorf("update recipe %d: %w", recipeID, err)
	}
	s.log.InfoContext(ctx, "recipe edited", slog.Uint64("recipe_id", uint64(recipeID)), slog.String("previous_status", string(current.Status)))

	return Outcome{Recipe: updated, Notification: s.notifier.FanOut(ctx, FanOutUpdated, updated)}, nil
}

// RequestDeletion moves an owned recipe to delete_pending and notifies the admins.
func (s *Service) RequestDeletion(ctx context.Context, requesterID string, recipeID uint) (Outcome, error) {
	current, err := s.ownedRecipe(ctx, requesterID, recipeID)
	if err != nil {
		return Outcome{}, err
	}
	if current.Status == models.RecipeStatusDeletePending {
		return Outcome{}, ErrDeletionAlreadyRequested
	}
	t, err := Next(current.Status, EventRequestDeletion)
	if err != nil {
		return Outcome{}, err
	}

	updated, err := s.recipes.Transition(ctx, recipeID, t.From, t.To, nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Outcome{}, s.deletionRequestLost(ctx, recipeID)
		}
		return Outcome{}, fmt.Errorf("request deletion of %d: %w", recipeID, err)
	}
	s.log.InfoContext(ctx, "recipe deletion requested", slog.Uint64("recipe_id", uint64(recipeID)))

	return Outcome{Recipe: updated, Notification: s.notifier.FanOut(ctx, FanOutDeleted, updated)}, nil
}

// Approve publishes a pending recipe. The comment is optional.
func (s *Service) Approve(ctx context.Context, adminID string, recipeID uint, comment string) (Outcome, error) {
	return s.decide(ctx, EventApprove, DecisionApproved, adminID, recipeID, comment)
}

// Reject refuses a pending recipe. A non-blank comment is required.
func (s *Service) Reject(ctx context.Context, adminID string, recipeID uint, comment string) (Outcome, error) {
	if strings.TrimSpace(comment) == "" {
		return Outcome{}, domain.NewValidationError("comment", "a comment is required when rejecting a recipe")
	}
	return s.decide(ctx, EventReject, DecisionRejected, adminID, recipeID, comment)
}

// RejectDeletion keeps a recipe whose deletion was requested and restores it to approved.
func (s *Service) RejectDeletion(ctx context.Context, adminID string, recipeID uint, comment string) (Outcome, error) {
	return s.decide(ctx, EventRejectDeletion, DecisionDeletionRejected, adminID, recipeID, comment)
}

// ApproveDeletion permanently removes a delete_pending recipe and its dependent rows.
// The returned Outcome carries the removed recipe.
func (s *Service) ApproveDeletion(ctx context.Context, adminID string, recipeID uint, comment string) (Outcome, error) {
	t, err := TransitionFor(EventApproveDeletion)
	if err != nil {
		return Outcome{}, err
	}
	if _, err := s.moderatedRecipe(ctx, adminID, recipeID); err != nil {
		return Outcome{}, err
	}

	removed, err := s.recipes.DeleteCascade(ctx, recipeID, t.From[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Outcome{}, ErrNotInExpectedState
		}
		return Outcome{}, fmt.Errorf("delete recipe %d: %w", recipeID, err)
	}
	s.log.InfoContext(ctx, "recipe deleted", slog.Uint64("recipe_id", uint64(recipeID)), slog.String("admin_id", adminID))

	return Outcome{
		Recipe:       removed,
		Notification: s.notifier.NotifyDecision(ctx, DecisionDeletionApproved, adminID, removed, comment),
	}, nil
}

// ListPending returns the recipes awaiting a first decision that adminID may
// moderate in organizationID.
func (s *Service) ListPending(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error) {
	return s.listModerated(ctx, models.RecipeStatusPending, organizationID, adminID, page, limit)
}

// ListDeletionRequests returns the recipes whose authors asked for deletion
// that adminID may moderate in organizationID.
func (s *Service) ListDeletionRequests(ctx context.Context, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error) {
	return s.listModerated(ctx, models.RecipeStatusDeletePending, organizationID, adminID, page, limit)
}

// listModerated lists recipes by authors whose primary organization is
// organizationID. The admin's own recipes are left out.
func (s *Service) listModerated(ctx context.Context, status models.RecipeStatus, organizationID, adminID string, page, limit int) ([]models.Recipe, int64, error) {
	authors, err := identity.PrimaryMembers(ctx, s.identity, organizationID)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s recipes of %s: %w", status, organizationID, err)
	}
	authors = slices.DeleteFunc(authors, func(id string) bool { return id == adminID })
	if len(authors) == 0 {
		return []models.Recipe{}, 0, nil
	}
	return s.recipes.ListByStatus(ctx, status, authors, page, limit)
}

func (s *Service) decide(ctx context.Context, ev Event, decision Decision, adminID string, recipeID uint, comment string) (Outcome, error) {
	t, err := TransitionFor(ev)
	if err != nil {
		return Outcome{}, err
	}

	if _, err := s.moderatedRecipe(ctx, adminID, recipeID); err != nil {
		return Outcome{}, err
	}

	review := &models.Review{ReviewerID: adminID, Comment: strings.TrimSpace(comment), At: s.now().UTC()}
	updated, err := s.recipes.Transition(ctx, recipeID, t.From, t.To, review)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Outcome{}, ErrNotInExpectedState
		}
		return Outcome{}, fmt.Errorf("%s recipe %d: %w", ev, recipeID, err)
	}
	s.log.InfoContext(ctx, "moderation decision",
		slog.Uint64("recipe_id", uint64(recipeID)),
		slog.String("event", string(ev)),
		slog.String("admin_id", adminID))

	return Outcome{
		Recipe:       updated,
		Notification: s.notifier.NotifyDecision(ctx, decision, adminID, updated, comment),
	}, nil
}

func (s *Service) ownedRecipe(ctx context.Context, userID string, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != userID {
		return nil, fmt.Errorf("recipe %d belongs to another user: %w", recipeID, domain.ErrForbidden)
	}
	return recipe, nil
}

// moderatedRecipe loads recipeID and checks that adminID is an admin of the
// author's primary organization other than the author. The author of a
// recipe never changes, so the check holds for the conditional update that
// follows.
func (s *Service) moderatedRecipe(ctx context.Context, adminID string, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotInExpectedState
		}
		return nil, fmt.Errorf("load recipe %d: %w", recipeID, err)
	}
	if recipe.UserID == adminID {
		return nil, fmt.Errorf("admin %s cannot moderate own recipe %d: %w", adminID, recipeID, domain.ErrForbidden)
	}

	admins, err := ResolveAdmins(ctx, s.identity, recipe.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve admins of recipe %d: %w", recipeID, err)
	}
	if !slices.Contains(admins, adminID) {
		return nil, fmt.Errorf("admin %s is outside the organization of recipe %d: %w", adminID, recipeID, domain.ErrForbidden)
	}
	return recipe, nil
}

// deletionRequestLost explains a deletion request whose conditional update
// matched no row.
func (s *Service) deletionRequestLost(ctx context.Context, recipeID uint) error {
	latest, err := s.recipes.GetByID(ctx, recipeID)
	switch {
	case err == nil && latest.Status == models.RecipeStatusDeletePending:
		return ErrDeletionAlreadyRequested
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return ErrNotInExpectedState
	default:
		return fmt.Errorf("reload recipe %d: %w", recipeID, err)
	}
}
