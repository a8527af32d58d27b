package models

import "time"

// NotificationType tags what produced a notification.
type NotificationType string

const (
	NotificationRecipeApproval      NotificationType = "recipe_approval"
	NotificationRecipeApproved      NotificationType = "recipe_approved"
	NotificationRecipeRejected      NotificationType = "recipe_rejected"
	NotificationRecipeUpdatePending NotificationType = "recipe_update_pending"
	NotificationRecipeDeletePending NotificationType = "recipe_delete_pending"
	NotificationRecipeDeleted       NotificationType = "recipe_deleted"
	NotificationFollow              NotificationType = "follow"
	NotificationLike                NotificationType = "like"
	NotificationComment             NotificationType = "comment"
	NotificationRating              NotificationType = "rating"
)

// ReadFlag is the read marker of a notification, persisted as "true"/"false".
type ReadFlag string

const (
	ReadFlagTrue  ReadFlag = "true"
	ReadFlagFalse ReadFlag = "false"
)

// Related entity kinds a notification can point at.
const (
	RelatedRecipe  = "recipe"
	RelatedComment = "comment"
	RelatedUser    = "user"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID string           `json:"recipient_id" gorm:"size:128;not null;index"`
	SenderID    *string          `json:"sender_id" gorm:"size:128"`
	Type        NotificationType `json:"type" gorm:"size:40;index"`
	Title       string           `json:"title" gorm:"size:200"`
	Message     string           `json:"message" gorm:"type:text"`
	RelatedID   string           `json:"related_id" gorm:"size:64"`
	RelatedType string           `json:"related_type" gorm:"size:20"`
	Read        ReadFlag         `json:"read" gorm:"column:is_read;size:5;not null;default:'false';index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}
