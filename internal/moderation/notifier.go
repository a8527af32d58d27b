package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
)

// FanOutKind is the author action that admins are told about.
type FanOutKind string

const (
	FanOutCreated FanOutKind = "created"
	FanOutUpdated FanOutKind = "updated"
	FanOutDeleted FanOutKind = "deleted"
)

// Decision is an admin verdict reported back to the recipe author.
type Decision string

const (
	DecisionApproved         Decision = "approved"
	DecisionRejected         Decision = "rejected"
	DecisionDeletionApproved Decision = "deletion_approved"
	DecisionDeletionRejected Decision = "deletion_rejected"
)

// FallbackAdminName is used when the admin's profile cannot be resolved.
const FallbackAdminName = "An administrator"

// Delivery reports the outcome of a notification side effect. A non-nil Err
// never means the primary operation failed.
type Delivery struct {
	Recipients int
	Err        error
}

// Failed reports whether the side effect could not be completed.
func (d Delivery) Failed() bool { return d.Err != nil }

// Mailer sends a single e-mail.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type notificationWriter interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

// Notifier turns moderation events into notification rows.
type Notifier struct {
	identity      identity.Provider
	notifications notificationWriter
	mailer        Mailer
	log           *slog.Logger
}

// NewNotifier creates a Notifier. mailer may be nil to disable decision e-mails.
func NewNotifier(log *slog.Logger, provider identity.Provider, notifications notificationWriter, mailer Mailer) *Notifier {
	return &Notifier{
		identity:      provider,
		notifications: notifications,
		mailer:        mailer,
		log:           log.With("component", "moderation.notifier"),
	}
}

// FanOut notifies every admin of the author's organization about kind.
// An empty admin set inserts nothing and is not an error.
func (n *Notifier) FanOut(ctx context.Context, kind FanOutKind, recipe *models.Recipe) Delivery {
	admins, err := ResolveAdmins(ctx, n.identity, recipe.UserID)
	if err != nil {
		n.log.ErrorContext(ctx, "resolve admins",
			slog.Uint64("recipe_id", uint64(recipe.ID)),
			slog.String("author_id", recipe.UserID),
			slog.Any("error", err))
		return Delivery{Err: fmt.Errorf("resolve admins: %w", err)}
	}
	if len(admins) == 0 {
		n.log.DebugContext(ctx, "no admins to notify", slog.Uint64("recipe_id", uint64(recipe.ID)))
		return Delivery{}
	}

	notifType, title, message := fanOutContent(kind, recipe.Title)
	sender := recipe.UserID
	rows := make([]models.Notification, 0, len(admins))
	for _, adminID := range admins {
		rows = append(rows, models.Notification{
			RecipientID: adminID,
			SenderID:    &sender,
			Type:        notifType,
			Title:       title,
			Message:     message,
			RelatedID:   strconv.FormatUint(uint64(recipe.ID), 10),
			RelatedType: models.RelatedRecipe,
			Read:        models.ReadFlagFalse,
		})
	}

	if err := n.notifications.CreateBatch(ctx, rows); err != nil {
		n.log.ErrorContext(ctx, "insert admin notifications",
			slog.Uint64("recipe_id", uint64(recipe.ID)),
			slog.Int("recipients", len(rows)),
			slog.Any("error", err))
		return Delivery{Err: fmt.Errorf("insert notifications: %w", err)}
	}
	return Delivery{Recipients: len(rows)}
}

// NotifyDecision tells the recipe author about an admin decision. Nothing is
// recorded when the admin is the author.
func (n *Notifier) NotifyDecision(ctx context.Context, decision Decision, adminID string, recipe *models.Recipe, comment string) Delivery {
	if adminID == recipe.UserID {
		return Delivery{}
	}

	adminName := FallbackAdminName
	if profile, err := n.identity.GetUser(ctx, adminID); err != nil {
		n.log.WarnContext(ctx, "resolve admin name", slog.String("admin_id", adminID), slog.Any("error", err))
	} else if profile.Name != "" {
		adminName = profile.Name
	}

	notifType, title, message := decisionContent(decision, adminName, recipe.Title, comment)
	sender := adminID
	row := models.Notification{
		RecipientID: recipe.UserID,
		SenderID:    &sender,
		Type:        notifType,
		Title:       title,
		Message:     message,
		RelatedID:   strconv.FormatUint(uint64(recipe.ID), 10),
		RelatedType: models.RelatedRecipe,
		Read:        models.ReadFlagFalse,
	}

	if err := n.notifications.CreateBatch(ctx, []models.Notification{row}); err != nil {
		n.log.ErrorContext(ctx, "insert decision notification",
			slog.Uint64("recipe_id", uint64(recipe.ID)),
			slog.String("decision", string(decision)),
			slog.Any("error", err))
		return Delivery{Err: fmt.Errorf("insert notification: %w", err)}
	}

	n.mailDecision(ctx, recipe.UserID, title, message)
	return Delivery{Recipients: 1}
}

func (n *Notifier) mailDecision(ctx context.Context, authorID, subject, message string) {
	if n.mailer == nil {
		return
	}
	author, err := n.identity.GetUser(ctx, authorID)
	if err != nil || author.Email == "" {
		return
	}
	if err := n.mailer.Send(author.Email, subject, "<p>"+message+"</p>"); err != nil {
		n.log.WarnContext(ctx, "send decision mail", slog.String("author_id", authorID), slog.Any("error", err))
	}
}

func fanOutContent(kind FanOutKind, recipeTitle string) (models.NotificationType, string, string) {
	switch kind {
	case FanOutUpdated:
		return models.NotificationRecipeUpdatePending, "Recipe update pending review",
			fmt.Sprintf("Recipe \"%s\" was edited and needs to be reviewed again.", recipeTitle)
	case FanOutDeleted:
		return models.NotificationRecipeDeletePending, "Recipe deletion requested",
			fmt.Sprintf("The author of \"%s\" asked for it to be deleted.", recipeTitle)
	default:
		return models.NotificationRecipeApproval, "New recipe awaiting approval",
			fmt.Sprintf("Recipe \"%s\" was submitted and needs your approval.", recipeTitle)
	}
}

func decisionContent(decision Decision, adminName, recipeTitle, comment string) (models.NotificationType, string, string) {
	var (
		notifType models.NotificationType
		title     string
		message   string
	)
	switch decision {
	case DecisionRejected:
		notifType, title = models.NotificationRecipeRejected, "Recipe rejected"
		message = fmt.Sprintf("%s rejected your recipe \"%s\".", adminName, recipeTitle)
	case DecisionDeletionApproved:
		notifType, title = models.NotificationRecipeDeleted, "Recipe deleted"
		message = fmt.Sprintf("%s approved the deletion of your recipe \"%s\".", adminName, recipeTitle)
	case DecisionDeletionRejected:
		notifType, title = models.NotificationRecipeApproved, "Recipe deletion declined"
		message = fmt.Sprintf("%s declined the deletion of your recipe \"%s\". It has been restored.", adminName, recipeTitle)
	default:
		notifType, title = models.NotificationRecipeApproved, "Recipe approved"
		message = fmt.Sprintf("%s approved your recipe \"%s\".", adminName, recipeTitle)
	}
	if c := strings.TrimSpace(comment); c != "" {
		message += fmt.Sprintf(" Comment: \"%s\"", c)
	}
	return notifType, title, message
}
