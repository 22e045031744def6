package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/matcha-app/matcha-core/internal/db"
)

// TagRepository reads per-user tag sets.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(database *gorm.DB) *TagRepository {
	return &TagRepository{db: database}
}

// ForUser returns one user's tag set, sorted for stable output.
func (r *TagRepository) ForUser(ctx context.Context, userID uint64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&db.UserTag{}).
		Where("user_id = ?", userID).
		Order("tag ASC").
		Pluck("tag", &names).Error
	return names, err
}

// ForUsers batch-loads tag sets for many users in one query. Users without
// tags are absent from the map.
func (r *TagRepository) ForUsers(ctx context.Context, userIDs []uint64) (map[uint64][]string, error) {
	result := make(map[uint64][]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []db.UserTag
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id ASC, tag ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.UserID] = append(result[row.UserID], row.Tag)
	}
	return result, nil
}
