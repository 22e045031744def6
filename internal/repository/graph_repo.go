package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matcha-app/matcha-core/internal/db"
	apperr "github.com/matcha-app/matcha-core/internal/errors"
	"github.com/matcha-app/matcha-core/internal/utils/pagination"
)

// GraphRepository provides data access for the social graph: views, likes,
// blocks and the derived connections. All multi-row mutations run in a
// single transaction so a connection can never be observed out of sync
// with its like pair.
type GraphRepository struct {
	db *gorm.DB
}

// NewGraphRepository creates a new repository bound to the given DB connection.
func NewGraphRepository(database *gorm.DB) *GraphRepository {
	return &GraphRepository{db: database}
}

// orderPair normalizes an unordered user pair for connection rows.
func orderPair(a, b uint64) (uint64, uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// RecordView inserts the view edge viewer -> viewed iff it does not already
// exist. Idempotent: a repeat view is a no-op, not an error.
func (r *GraphRepository) RecordView(ctx context.Context, viewerID, viewedID uint64) error {
	view := db.View{ViewerID: viewerID, ViewedID: viewedID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&view).Error
}

// HasViewed reports whether the view edge viewer -> viewed exists.
func (r *GraphRepository) HasViewed(ctx context.Context, viewerID, viewedID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.View{}).
		Where("viewer_id = ? AND viewed_id = ?", viewerID, viewedID).
		Count(&count).Error
	return count > 0, err
}

// CreateLike inserts the like edge liker -> liked and, when the reciprocal
// edge already exists, the derived connection for the pair.
//
// Behavior:
//   - Fails with ErrAlreadyLiked if the ordered pair already has a like.
//   - Insert + reciprocal check + connection insert run in one transaction;
//     partial state is never observable.
//   - Returns whether the like completed a mutual pair (a match).
//
// Self-reference and completeness preconditions are the service's job.
func (r *GraphRepository) CreateLike(ctx context.Context, likerID, likedID uint64) (bool, error) {
	matched := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&db.Like{}).
			Where("liker_id = ? AND liked_id = ?", likerID, likedID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.ErrAlreadyLiked
		}

		if err := tx.Create(&db.Like{LikerID: likerID, LikedID: likedID}).Error; err != nil {
			return err
		}

		if err := tx.Model(&db.Like{}).
			Where("liker_id = ? AND liked_id = ?", likedID, likerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}

		a, b := orderPair(likerID, likedID)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&db.Connection{UserAID: a, UserBID: b}).Error; err != nil {
			return err
		}
		matched = true
		return nil
	})
	return matched, err
}

// RemoveLike deletes the like edge liker -> liked (no-op if absent) and,
// in the same transaction, any connection for the pair.
func (r *GraphRepository) RemoveLike(ctx context.Context, likerID, likedID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("liker_id = ? AND liked_id = ?", likerID, likedID).
			Delete(&db.Like{}).Error; err != nil {
			return err
		}

		a, b := orderPair(likerID, likedID)
		return tx.
			Where("user_a_id = ? AND user_b_id = ?", a, b).
			Delete(&db.Connection{}).Error
	})
}

// HasLiked reports whether the like edge liker -> liked exists.
func (r *GraphRepository) HasLiked(ctx context.Context, likerID, likedID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Count(&count).Error
	return count > 0, err
}

// CreateBlock inserts the block edge blocker -> blocked. Idempotent.
// Like and connection rows are left untouched: ranking, search and chat
// each exclude blocked pairs on read.
func (r *GraphRepository) CreateBlock(ctx context.Context, blockerID, blockedID uint64) error {
	block := db.Block{BlockerID: blockerID, BlockedID: blockedID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&block).Error
}

// IsBlocked reports whether a block exists in either direction between the pair.
func (r *GraphRepository) IsBlocked(ctx context.Context, userA, userB uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

// IsConnected reports whether the derived connection row exists for the pair.
// This is the sole chat-authorization precondition.
func (r *GraphRepository) IsConnected(ctx context.Context, userA, userB uint64) (bool, error) {
	a, b := orderPair(userA, userB)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Connection{}).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// Likers returns the like edges pointing at the given user.
//
// Behavior:
//   - Excludes likers with a block in either direction against the user.
//   - Ordered by created_at DESC, liker_id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *GraphRepository) Likers(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.liked_id = ?", userID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM blocks b
				WHERE (b.blocker_id = ? AND b.blocked_id = l.liker_id)
				   OR (b.blocker_id = l.liker_id AND b.blocked_id = ?)
			)`, userID, userID)

	return r.pageLikers(query, paginationToken, limit)
}

// NewLikers returns like edges pointing at the given user that have not
// been liked back yet (no mutual pair).
func (r *GraphRepository) NewLikers(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.liked_id = ?", userID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l2
				WHERE l2.liker_id = l.liked_id AND l2.liked_id = l.liker_id
			)`).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM blocks b
				WHERE (b.blocker_id = ? AND b.blocked_id = l.liker_id)
				   OR (b.blocker_id = l.liker_id AND b.blocked_id = ?)
			)`, userID, userID)

	return r.pageLikers(query, paginationToken, limit)
}

// pageLikers applies the shared ordering + cursor window and builds the
// next-page token when more rows remain.
func (r *GraphRepository) pageLikers(query *gorm.DB, paginationToken *string, limit int) ([]db.Like, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, apperr.Validationf("invalid pagination token")
	}

	query = query.
		Order("l.created_at DESC, l.liker_id DESC").
		Limit(limit + 1)

	if cursor.LikerID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(l.created_at < ? OR (l.created_at = ? AND l.liker_id < ?))",
			ts, ts, cursor.LikerID,
		)
	}

	var likes []db.Like
	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LikerID:     last.LikerID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountLikers returns how many users currently like the given user,
// excluding blocked pairs. Used behind the Redis counter cache.
func (r *GraphRepository) CountLikers(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.liked_id = ?", userID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM blocks b
				WHERE (b.blocker_id = ? AND b.blocked_id = l.liker_id)
				   OR (b.blocker_id = l.liker_id AND b.blocked_id = ?)
			)`, userID, userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
