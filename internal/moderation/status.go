package moderation

import (
	"fmt"
	"slices"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
)

// Event is something that moves a recipe through the moderation lifecycle.
type Event string

const (
	EventSubmit          Event = "submit"
	EventApprove         Event = "approve"
	EventReject          Event = "reject"
	EventEdit            Event = "edit"
	EventRequestDeletion Event = "request_deletion"
	EventApproveDeletion Event = "approve_deletion"
	EventRejectDeletion  Event = "reject_deletion"
)

// Transition is one row of the moderation table. From lists the statuses the
// event is accepted in; an empty From means the recipe does not exist yet.
// Removes marks transitions that delete the recipe instead of moving it to To.
type Transition struct {
	From    []models.RecipeStatus
	To      models.RecipeStatus
	Removes bool
}

var transitions = map[Event]Transition{
	EventSubmit: {
		To: models.RecipeStatusPending,
	},
	EventApprove: {
		From: []models.RecipeStatus{models.RecipeStatusPending},
		To:   models.RecipeStatusApproved,
	},
	EventReject: {
		From: []models.RecipeStatus{models.RecipeStatusPending},
		To:   models.RecipeStatusRejected,
	},
	EventEdit: {
		From: models.RecipeStatuses,
		To:   models.RecipeStatusPending,
	},
	EventRequestDeletion: {
		From: []models.RecipeStatus{models.RecipeStatusPending, models.RecipeStatusApproved, models.RecipeStatusRejected},
		To:   models.RecipeStatusDeletePending,
	},
	EventApproveDeletion: {
		From:    []models.RecipeStatus{models.RecipeStatusDeletePending},
		Removes: true,
	},
	EventRejectDeletion: {
		From: []models.RecipeStatus{models.RecipeStatusDeletePending},
		To:   models.RecipeStatusApproved,
	},
}

// TransitionFor returns the table row of ev.
func TransitionFor(ev Event) (Transition, error) {
	t, ok := transitions[ev]
	if !ok {
		return Transition{}, fmt.Errorf("unknown event %q: %w", ev, domain.ErrInvalidTransition)
	}
	return t, nil
}

// Next validates that ev is allowed from status from and returns the row that applies.
// Pass an empty from for recipes that do not exist yet.
func Next(from models.RecipeStatus, ev Event) (Transition, error) {
	t, err := TransitionFor(ev)
	if err != nil {
		return Transition{}, err
	}
	if len(t.From) == 0 {
		if from != "" {
			return Transition{}, fmt.Errorf("%s from %s: %w", ev, from, domain.ErrInvalidTransition)
		}
		return t, nil
	}
	if !slices.Contains(t.From, from) {
		return Transition{}, fmt.Errorf("%s from %s: %w", ev, from, domain.ErrInvalidTransition)
	}
	return t, nil
}
