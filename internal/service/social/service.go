package social

import (
	"context"
	"time"

	"github.com/matcha-app/matcha-core/internal/app"
	"github.com/matcha-app/matcha-core/internal/cache"
	"github.com/matcha-app/matcha-core/internal/db"
	apperr "github.com/matcha-app/matcha-core/internal/errors"
	"github.com/matcha-app/matcha-core/internal/notify"
	"github.com/matcha-app/matcha-core/internal/repository"
)

// defaultLikerPageSize bounds one page of "liked you" results.
const defaultLikerPageSize = 5

// Service owns the social-graph operations: view, like, unlike, block and
// the "liked you" listings. It enforces the actor-side preconditions
// (self-reference, profile completeness) and leaves edge/connection
// consistency to the repository transactions.
type Service struct {
	appCtx    *app.AppContext
	graphRepo *repository.GraphRepository
	userRepo  *repository.UserRepository
	tagRepo   *repository.TagRepository
	imageRepo *repository.ImageRepository
}

// NewService creates the social service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		graphRepo: repository.NewGraphRepository(appCtx.DB),
		userRepo:  repository.NewUserRepository(appCtx.DB),
		tagRepo:   repository.NewTagRepository(appCtx.DB),
		imageRepo: repository.NewImageRepository(appCtx.DB),
	}
}

// Profile is the public view of a user returned by View. Credential and
// contact fields are never included.
type Profile struct {
	ID               uint64
	Username         string
	Firstname        string
	Surname          string
	Age              int
	Gender           db.Gender
	SexualPreference db.Preference
	Biography        string
	Latitude         float64
	Longitude        float64
	Fame             int
	LastConnection   time.Time
	Tags             []string
	ImageIDs         []string
}

// Liker is one entry of a "liked you" listing.
type Liker struct {
	UserID  uint64
	LikedAt time.Time
}

// Like records actor -> target and reports whether it completed a mutual
// pair (a match).
//
// Behavior:
//   - Fails with ErrSelfReference when actor == target.
//   - Fails with ErrProfileIncomplete when the actor's profile is not completed.
//   - Fails with ErrNotFound when the target does not exist.
//   - Fails with ErrAlreadyLiked on a duplicate like.
//   - On success bumps the target's cached like counter and emits a like
//     event; a match additionally emits match events to both users.
func (s *Service) Like(ctx context.Context, actorID, targetID uint64) (bool, error) {
	s.appCtx.Logger.Debug("Like called", "actor", actorID, "target", targetID)

	if actorID == targetID {
		return false, apperr.ErrSelfReference
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	if !actor.Completed {
		return false, apperr.ErrProfileIncomplete
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	matched, err := s.graphRepo.CreateLike(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}

	// counter cache, best effort
	key := s.appCtx.RedisCache.KeyForLikeCount(targetID)
	_, _ = s.appCtx.RedisCache.Incr(ctx, key)
	_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.LikeCountTTL).Err()

	s.dispatch(ctx, notify.Event{Type: notify.EventLike, ActorID: actorID, RecipientID: targetID})
	if matched {
		s.dispatch(ctx, notify.Event{Type: notify.EventMatch, ActorID: actorID, RecipientID: targetID})
		s.dispatch(ctx, notify.Event{Type: notify.EventMatch, ActorID: targetID, RecipientID: actorID})
	}

	return matched, nil
}

// Unlike removes actor -> target; the repository drops any connection for
// the pair in the same transaction. Removing an absent like is a no-op.
func (s *Service) Unlike(ctx context.Context, actorID, targetID uint64) error {
	s.appCtx.Logger.Debug("Unlike called", "actor", actorID, "target", targetID)

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.Completed {
		return apperr.ErrProfileIncomplete
	}

	hadLike, err := s.graphRepo.HasLiked(ctx, actorID, targetID)
	if err != nil {
		return err
	}

	if err := s.graphRepo.RemoveLike(ctx, actorID, targetID); err != nil {
		return err
	}

	if hadLike {
		key := s.appCtx.RedisCache.KeyForLikeCount(targetID)
		_, _ = s.appCtx.RedisCache.Decr(ctx, key)
		_ = s.appCtx.RedisCache.Client.Expire(ctx, key, cache.LikeCountTTL).Err()
	}

	return nil
}

// Block records actor -> target. Idempotent. Prior likes and connections are
// left in place; browse, search and chat all exclude blocked pairs on read.
func (s *Service) Block(ctx context.Context, actorID, targetID uint64) error {
	s.appCtx.Logger.Debug("Block called", "actor", actorID, "target", targetID)

	if actorID == targetID {
		return apperr.ErrSelfReference
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	return s.graphRepo.CreateBlock(ctx, actorID, targetID)
}

// View returns the target's public profile and records the view edge.
//
// Behavior:
//   - Fails with ErrSelfReference / ErrProfileIncomplete / ErrNotFound.
//   - The view edge is recorded once per distinct (viewer, target) pair;
//     repeat views still return the profile.
//   - The first view of a pair emits a view event to the target.
func (s *Service) View(ctx context.Context, actorID, targetID uint64) (*Profile, error) {
	s.appCtx.Logger.Debug("View called", "actor", actorID, "target", targetID)

	if actorID == targetID {
		return nil, apperr.ErrSelfReference
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.Completed {
		return nil, apperr.ErrProfileIncomplete
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	seen, err := s.graphRepo.HasViewed(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.graphRepo.RecordView(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	if !seen {
		s.dispatch(ctx, notify.Event{Type: notify.EventView, ActorID: actorID, RecipientID: targetID})
	}

	targetTags, err := s.tagRepo.ForUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	imageIDs, err := s.imageRepo.IdentifiersFor(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		ID:               target.ID,
		Username:         target.Username,
		Firstname:        target.Firstname,
		Surname:          target.Surname,
		Age:              target.Age,
		Gender:           target.Gender,
		SexualPreference: target.SexualPreference,
		Biography:        target.Biography,
		Latitude:         target.Latitude,
		Longitude:        target.Longitude,
		Fame:             target.Fame,
		LastConnection:   target.LastConnection,
		Tags:             targetTags,
		ImageIDs:         imageIDs,
	}, nil
}

// Likers lists users who like the given user, newest first, with cursor
// pagination. Blocked pairs are excluded.
func (s *Service) Likers(ctx context.Context, userID uint64, paginationToken *string, limit int) ([]Liker, *string, error) {
	s.appCtx.Logger.Debug("Likers called", "user", userID)

	if limit <= 0 {
		limit = defaultLikerPageSize
	}
	likes, nextToken, err := s.graphRepo.Likers(ctx, userID, paginationToken, limit)
	if err != nil {
		return nil, nil, err
	}
	return toLikers(likes), nextToken, nil
}

// NewLikers lists users who like the given user without a like back yet.
func (s *Service) NewLikers(ctx context.Context, userID uint64, paginationToken *string, limit int) ([]Liker, *string, error) {
	s.appCtx.Logger.Debug("NewLikers called", "user", userID)

	if limit <= 0 {
		limit = defaultLikerPageSize
	}
	likes, nextToken, err := s.graphRepo.NewLikers(ctx, userID, paginationToken, limit)
	if err != nil {
		return nil, nil, err
	}
	return toLikers(likes), nextToken, nil
}

// LikerCount returns how many users like the given user.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID), refreshing the TTL.
//  2. On cache miss falls back to the DB count and repopulates the cache.
func (s *Service) LikerCount(ctx context.Context, userID uint64) (int64, error) {
	s.appCtx.Logger.Debug("LikerCount called", "user", userID)

	if cached, ok, err := s.appCtx.RedisCache.GetLikeCount(ctx, userID); err == nil && ok {
		return cached, nil
	}

	count, err := s.graphRepo.CountLikers(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.SetLikeCount(ctx, userID, count)

	return count, nil
}

// dispatch hands an event to the notifier. Delivery failures are logged and
// never surface to the originating operation.
func (s *Service) dispatch(ctx context.Context, ev notify.Event) {
	if s.appCtx.Notifier == nil {
		return
	}
	if err := s.appCtx.Notifier.Dispatch(ctx, ev); err != nil {
		s.appCtx.Logger.Warn("notification dispatch failed",
			"type", ev.Type, "recipient", ev.RecipientID, "err", err)
	}
}

func toLikers(likes []db.Like) []Liker {
	out := make([]Liker, 0, len(likes))
	for _, l := range likes {
		out = append(out, Liker{UserID: l.LikerID, LikedAt: l.CreatedAt})
	}
	return out
}
