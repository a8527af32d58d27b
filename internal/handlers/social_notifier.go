package handlers

import (
	"context"
	"log/slog"

	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
)

type notificationWriter interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

// SocialNotifier records like/comment/rating/follow notifications. Failures are
// logged and never fail the request.
type SocialNotifier struct {
	identity      identity.Provider
	notifications notificationWriter
	log           *slog.Logger
}

func NewSocialNotifier(provider identity.Provider, notifications notificationWriter, log *slog.Logger) *SocialNotifier {
	return &SocialNotifier{identity: provider, notifications: notifications, log: log}
}

// notify tells recipientID that actorID did something. Self-actions are skipped.
func (n *SocialNotifier) notify(ctx context.Context, actorID, recipientID string, typ models.NotificationType, title, action, relatedID, relatedType string) {
	if n == nil || actorID == recipientID || recipientID == "" {
		return
	}

	name := "Someone"
	if profile, err := n.identity.GetUser(ctx, actorID); err == nil && profile.Name != "" {
		name = profile.Name
	}

	sender := actorID
	err := n.notifications.CreateBatch(ctx, []models.Notification{{
		RecipientID: recipientID,
		SenderID:    &sender,
		Type:        typ,
		Title:       title,
		Message:     name + " " + action,
		RelatedID:   relatedID,
		RelatedType: relatedType,
		Read:        models.ReadFlagFalse,
	}})
	if err != nil {
		n.log.WarnContext(ctx, "social notification not stored",
			slog.String("type", string(typ)),
			slog.String("recipient_id", recipientID),
			slog.Any("error", err))
	}
}
