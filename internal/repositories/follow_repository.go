package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	GetFollowerIDs(ctx context.Context, userID string, page, limit int) ([]string, int64, error)
	GetFollowingIDs(ctx context.Context, userID string, page, limit int) ([]string, int64, error)
	GetFollowersCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translate(r.db.WithContext(ctx).Create(follow).Error, "insert follow")
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID string) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return translate(res.Error, "delete follow")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("follow relationship not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		return false, translate(err, "check follow")
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowerIDs(ctx context.Context, userID string, page, limit int) ([]string, int64, error) {
	return r.pluckPage(ctx, "following_id = ?", "follower_id", userID, page, limit)
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID string, page, limit int) ([]string, int64, error) {
	return r.pluckPage(ctx, "follower_id = ?", "following_id", userID, page, limit)
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, translate(err, "count followers")
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, translate(err, "count following")
}

func (r *PostgresFollowRepository) pluckPage(ctx context.Context, where, column, userID string, page, limit int) ([]string, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Follow{}).Where(where, userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count follows")
	}

	var ids []string
	err := q.Order("created_at DESC").Offset(offset(page, limit)).Limit(limit).Pluck(column, &ids).Error
	if err != nil {
		return nil, 0, translate(err, "list follows")
	}
	return ids, total, nil
}
