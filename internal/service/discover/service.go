package discover

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/matcha-app/matcha-core/internal/app"
	"github.com/matcha-app/matcha-core/internal/db"
	apperr "github.com/matcha-app/matcha-core/internal/errors"
	"github.com/matcha-app/matcha-core/internal/geo"
	"github.com/matcha-app/matcha-core/internal/repository"
	"github.com/matcha-app/matcha-core/internal/tags"
)

// browseSampleSize caps the browse page. Larger eligible pools are sampled
// down to this size before presentation.
const browseSampleSize = 10

// Service implements the discovery surfaces: the ranked browse feed and the
// filtered search.
type Service struct {
	appCtx    *app.AppContext
	userRepo  *repository.UserRepository
	tagRepo   *repository.TagRepository
	imageRepo *repository.ImageRepository
}

// NewService creates the discover service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		tagRepo:   repository.NewTagRepository(appCtx.DB),
		imageRepo: repository.NewImageRepository(appCtx.DB),
	}
}

// Candidate is one presentable profile in a browse or search result.
// CommonTags counts shared tags with the viewer; DistanceKm is nil for
// search results without a location filter.
type Candidate struct {
	UserID         uint64
	Username       string
	Firstname      string
	Surname        string
	Age            int
	Gender         db.Gender
	Biography      string
	Fame           int
	LastConnection time.Time
	CommonTags     int
	DistanceKm     *float64
	ImageIDs       []string
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// SearchFilters are the caller-supplied search constraints. A range pair
// applies only when both bounds are present; Tags demands an exact set
// match; Location only adds the DistanceKm enrichment.
type SearchFilters struct {
	AgeMin   *int
	AgeMax   *int
	FameMin  *int
	FameMax  *int
	Location *Coordinates
	Tags     []string
}

// Browse returns the viewer's discovery feed.
//
// Behavior:
//   - Fails with ErrProfileIncomplete when the viewer is not completed.
//   - The eligible pool excludes self, incomplete profiles, already-liked
//     profiles, blocked pairs (either direction) and gender-incompatible
//     profiles; it is built ordered by tag overlap DESC, fame DESC.
//   - Pools larger than 10 are uniformly sampled down to 10 and the sample
//     is re-ordered nearest-first. Smaller pools keep the rank order.
//   - Every entry carries distance from the viewer and image identifiers.
func (s *Service) Browse(ctx context.Context, viewerID uint64) ([]Candidate, error) {
	s.appCtx.Logger.Debug("Browse called", "viewer", viewerID)

	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !viewer.Completed {
		return nil, apperr.ErrProfileIncomplete
	}

	viewerTags, err := s.tagRepo.ForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.userRepo.Candidates(ctx, viewer, viewerTags, repository.CandidateQuery{
		ExcludeLiked: true,
	})
	if err != nil {
		return nil, err
	}

	sampled := len(rows) > browseSampleSize
	if sampled {
		idx := rand.Perm(len(rows))[:browseSampleSize]
		picked := make([]repository.Candidate, 0, browseSampleSize)
		for _, i := range idx {
			picked = append(picked, rows[i])
		}
		rows = picked
	}

	result := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		d := geo.Distance(viewer.Latitude, viewer.Longitude, row.Latitude, row.Longitude)
		result = append(result, Candidate{
			UserID:         row.ID,
			Username:       row.Username,
			Firstname:      row.Firstname,
			Surname:        row.Surname,
			Age:            row.Age,
			Gender:         row.Gender,
			Biography:      row.Biography,
			Fame:           row.Fame,
			LastConnection: row.LastConnection,
			CommonTags:     row.TagOverlap,
			DistanceKm:     &d,
		})
	}

	// sampled pages trade rank fidelity for diversity and present nearest-first
	if sampled {
		sort.SliceStable(result, func(i, j int) bool {
			return *result[i].DistanceKm < *result[j].DistanceKm
		})
	}

	if err := s.attachImages(ctx, result); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Debug("Browse result", "viewer", viewerID, "candidates", len(result), "sampled", sampled)

	return result, nil
}

// Search returns profiles matching the caller's constraints.
//
// Behavior:
//   - Fails with ErrProfileIncomplete when the viewer is not completed.
//   - Same eligibility filter as Browse minus the already-liked exclusion:
//     search is a lookup tool and does not hide previously liked profiles.
//   - Age/fame ranges apply only with both bounds present; min > max fails
//     with ErrValidation, as do tags outside the vocabulary.
//   - A tags filter keeps only exact set matches (not subset/overlap).
//   - CommonTags is always computed against the viewer's tags; DistanceKm
//     is measured from the supplied location and omitted without one.
func (s *Service) Search(ctx context.Context, viewerID uint64, filters SearchFilters) ([]Candidate, error) {
	s.appCtx.Logger.Debug("Search called", "viewer", viewerID)

	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !viewer.Completed {
		return nil, apperr.ErrProfileIncomplete
	}

	query, err := buildCandidateQuery(filters)
	if err != nil {
		return nil, err
	}

	viewerTags, err := s.tagRepo.ForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.userRepo.Candidates(ctx, viewer, viewerTags, query)
	if err != nil {
		return nil, err
	}

	if len(filters.Tags) > 0 {
		rows, err = s.filterExactTags(ctx, rows, filters.Tags)
		if err != nil {
			return nil, err
		}
	}

	result := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		c := Candidate{
			UserID:         row.ID,
			Username:       row.Username,
			Firstname:      row.Firstname,
			Surname:        row.Surname,
			Age:            row.Age,
			Gender:         row.Gender,
			Biography:      row.Biography,
			Fame:           row.Fame,
			LastConnection: row.LastConnection,
			CommonTags:     row.TagOverlap,
		}
		if filters.Location != nil {
			d := geo.Distance(filters.Location.Latitude, filters.Location.Longitude,
				row.Latitude, row.Longitude)
			c.DistanceKm = &d
		}
		result = append(result, c)
	}

	if err := s.attachImages(ctx, result); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Debug("Search result", "viewer", viewerID, "matches", len(result))

	return result, nil
}

// buildCandidateQuery validates the filters and maps them onto the
// repository query. Half-open range pairs are dropped.
func buildCandidateQuery(filters SearchFilters) (repository.CandidateQuery, error) {
	q := repository.CandidateQuery{ExcludeLiked: false}

	if filters.AgeMin != nil && filters.AgeMax != nil {
		if *filters.AgeMin > *filters.AgeMax {
			return q, apperr.Validationf("age_min %d exceeds age_max %d", *filters.AgeMin, *filters.AgeMax)
		}
		q.AgeMin, q.AgeMax = filters.AgeMin, filters.AgeMax
	}
	if filters.FameMin != nil && filters.FameMax != nil {
		if *filters.FameMin > *filters.FameMax {
			return q, apperr.Validationf("fame_min %d exceeds fame_max %d", *filters.FameMin, *filters.FameMax)
		}
		q.FameMin, q.FameMax = filters.FameMin, filters.FameMax
	}

	for _, t := range filters.Tags {
		if !tags.IsValid(t) {
			return q, apperr.Validationf("unknown tag %q", t)
		}
	}

	return q, nil
}

// filterExactTags keeps candidates whose tag set equals the wanted set.
func (s *Service) filterExactTags(ctx context.Context, rows []repository.Candidate, wanted []string) ([]repository.Candidate, error) {
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	tagSets, err := s.tagRepo.ForUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	kept := rows[:0]
	for _, row := range rows {
		if tags.Equal(tagSets[row.ID], wanted) {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// attachImages batch-loads image identifiers for the result set.
func (s *Service) attachImages(ctx context.Context, result []Candidate) error {
	if len(result) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(result))
	for _, c := range result {
		ids = append(ids, c.UserID)
	}
	images, err := s.imageRepo.IdentifiersForUsers(ctx, ids)
	if err != nil {
		return err
	}
	for i := range result {
		result[i].ImageIDs = images[result[i].UserID]
	}
	return nil
}
