package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/matcha-app/matcha-core/internal/db"
)

// ImageRepository manages the opaque image identifiers attached to profiles.
// Blob storage, format and size limits are the image collaborator's problem;
// only the identifiers live here.
type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(database *gorm.DB) *ImageRepository {
	return &ImageRepository{db: database}
}

// IdentifiersFor returns the image identifiers of one user in upload order.
func (r *ImageRepository) IdentifiersFor(ctx context.Context, userID uint64) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.UserImage{}).
		Where("user_id = ?", userID).
		Order("id ASC").
		Pluck("uuid", &ids).Error
	return ids, err
}

// IdentifiersForUsers batch-loads image identifiers for many users.
func (r *ImageRepository) IdentifiersForUsers(ctx context.Context, userIDs []uint64) (map[uint64][]string, error) {
	result := make(map[uint64][]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []db.UserImage
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("user_id ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.UserID] = append(result[row.UserID], row.UUID)
	}
	return result, nil
}

// Add registers a freshly stored image blob and returns its new identifier.
func (r *ImageRepository) Add(ctx context.Context, userID uint64) (string, error) {
	img := db.UserImage{
		UserID: userID,
		UUID:   uuid.NewString(),
	}
	if err := r.db.WithContext(ctx).Create(&img).Error; err != nil {
		return "", err
	}
	return img.UUID, nil
}
