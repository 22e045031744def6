package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/matcha-app/matcha-core/internal/db"
	apperr "github.com/matcha-app/matcha-core/internal/errors"
)

// UserRepository provides profile reads and the candidate eligibility query
// shared by browse and search.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetByID loads one user, ErrNotFound when absent.
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("user %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CandidateQuery tunes the eligibility query per caller. Range bounds apply
// only when both ends of a pair are set; single-ended ranges are ignored
// upstream.
type CandidateQuery struct {
	// ExcludeLiked removes profiles the viewer already liked (browse feed
	// behavior; search keeps them).
	ExcludeLiked bool

	AgeMin  *int
	AgeMax  *int
	FameMin *int
	FameMax *int
}

// Candidate is one eligible profile row with its computed tag overlap
// against the viewer. Credential and contact columns are never selected.
type Candidate struct {
	ID             uint64
	Username       string
	Firstname      string
	Surname        string
	Age            int
	Gender         db.Gender
	Biography      string
	Latitude       float64
	Longitude      float64
	Fame           int
	LastConnection time.Time
	TagOverlap     int
}

// Candidates returns every profile passing the eligibility filter for the
// viewer, ordered by tag overlap DESC then fame DESC.
//
// Eligibility:
//   - not the viewer itself
//   - completed profiles only
//   - no block in either direction between viewer and candidate
//   - gender compatibility resolved from the viewer's sexual preference
//   - optionally, no existing like viewer -> candidate
//
// tag_overlap is computed in SQL as the number of the candidate's tags that
// appear in viewerTags; an empty viewer tag set yields overlap 0 for all rows.
func (r *UserRepository) Candidates(
	ctx context.Context,
	viewer *db.User,
	viewerTags []string,
	q CandidateQuery,
) ([]Candidate, error) {
	query := r.db.WithContext(ctx).
		Table("users u").
		Select(`u.id, u.username, u.firstname, u.surname, u.age, u.gender, u.biography,
			u.latitude, u.longitude, u.fame, u.last_connection,
			(SELECT COUNT(*) FROM user_tags t WHERE t.user_id = u.id AND t.tag IN ?) AS tag_overlap`,
			emptyAsNull(viewerTags)).
		Where("u.id <> ?", viewer.ID).
		Where("u.completed = ?", true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM blocks b
				WHERE (b.blocker_id = ? AND b.blocked_id = u.id)
				   OR (b.blocker_id = u.id AND b.blocked_id = ?)
			)`, viewer.ID, viewer.ID)

	switch viewer.SexualPreference {
	case db.PrefOpposite:
		query = query.Where("u.gender <> ?", viewer.Gender)
	case db.PrefSame:
		query = query.Where("u.gender = ?", viewer.Gender)
	case db.PrefBoth:
		// no gender restriction
	}

	if q.ExcludeLiked {
		query = query.Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l
				WHERE l.liker_id = ? AND l.liked_id = u.id
			)`, viewer.ID)
	}

	if q.AgeMin != nil && q.AgeMax != nil {
		query = query.Where("u.age BETWEEN ? AND ?", *q.AgeMin, *q.AgeMax)
	}
	if q.FameMin != nil && q.FameMax != nil {
		query = query.Where("u.fame BETWEEN ? AND ?", *q.FameMin, *q.FameMax)
	}

	var rows []Candidate
	if err := query.
		Order("tag_overlap DESC, u.fame DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RefreshCompleted recomputes the derived completeness flag for one user:
// biography, a location fix and at least one image must all be present.
// Invoked by the profile-update collaborator after field or image changes.
func (r *UserRepository) RefreshCompleted(ctx context.Context, userID uint64) (bool, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	var images int64
	if err := r.db.WithContext(ctx).
		Model(&db.UserImage{}).
		Where("user_id = ?", userID).
		Count(&images).Error; err != nil {
		return false, err
	}

	completed := user.Biography != "" &&
		(user.Latitude != 0 || user.Longitude != 0) &&
		images > 0

	if completed == user.Completed {
		return completed, nil
	}

	err = r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", userID).
		Update("completed", completed).Error
	return completed, err
}

// emptyAsNull keeps gorm from producing an invalid IN () clause; a nil
// slice renders as IN (NULL), which matches nothing.
func emptyAsNull(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}
