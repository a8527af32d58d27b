package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error)
	GetGrouped(ctx context.Context, recipientID string) (today, yesterday, thisWeek, older []models.Notification, err error)
	GetUnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, recipientID string, notificationID uint) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, recipientID string, notificationID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// CreateBatch inserts all rows in one statement. An empty batch is a no-op.
func (r *postgresNotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	for i := range notifications {
		if notifications[i].Read == "" {
			notifications[i].Read = models.ReadFlagFalse
		}
	}
	if err := r.db.WithContext(ctx).Create(&notifications).Error; err != nil {
		return translate(err, "insert %d notifications", len(notifications))
	}
	return nil
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count notifications")
	}

	err := db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, translate(err, "list notifications")
	}
	return notifications, total, nil
}

func (r *postgresNotificationRepository) GetGrouped(ctx context.Context, recipientID string) (today, yesterday, thisWeek, older []models.Notification, retErr error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	db := r.db.WithContext(ctx)

	if err := db.Where("recipient_id = ? AND created_at >= ?", recipientID, todayStart).
		Order("created_at DESC").Find(&today).Error; err != nil {
		return nil, nil, nil, nil, translate(err, "notifications of today")
	}

	if err := db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, yesterdayStart, todayStart).
		Order("created_at DESC").Find(&yesterday).Error; err != nil {
		return nil, nil, nil, nil, translate(err, "notifications of yesterday")
	}

	// Earlier this week, excluding today and yesterday.
	if err := db.Where("recipient_id = ? AND created_at >= ? AND created_at < ?", recipientID, weekStart, yesterdayStart).
		Order("created_at DESC").Find(&thisWeek).Error; err != nil {
		return nil, nil, nil, nil, translate(err, "notifications of this week")
	}

	if err := db.Where("recipient_id = ? AND created_at < ?", recipientID, weekStart).
		Order("created_at DESC").Limit(50).Find(&older).Error; err != nil {
		return nil, nil, nil, nil, translate(err, "older notifications")
	}

	return today, yesterday, thisWeek, older, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, models.ReadFlagFalse).
		Count(&count).Error
	return count, translate(err, "count unread notifications")
}

// MarkAsRead flips the read flag of one of the recipient's notifications.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, recipientID string, notificationID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", models.ReadFlagTrue)
	if res.Error != nil {
		return translate(res.Error, "mark notification %d read", notificationID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", notificationID, domain.ErrNotFound)
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, models.ReadFlagFalse).
		Update("is_read", models.ReadFlagTrue).Error
	return translate(err, "mark all notifications read")
}

func (r *postgresNotificationRepository) Delete(ctx context.Context, recipientID string, notificationID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return translate(res.Error, "delete notification %d", notificationID)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", notificationID, domain.ErrNotFound)
	}
	return nil
}
