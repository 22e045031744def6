package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/matcha-app/matcha-core/internal/db"
	apperr "github.com/matcha-app/matcha-core/internal/errors"
	"github.com/matcha-app/matcha-core/internal/repository"
)

func createUser(t *testing.T, gdb *gorm.DB, id uint64, gender db.Gender, pref db.Preference, completed bool) db.User {
	t.Helper()
	user := db.User{
		ID:               id,
		Username:         fmt.Sprintf("user%d", id),
		Email:            fmt.Sprintf("user%d@test.com", id),
		PasswordHash:     "x",
		Gender:           gender,
		SexualPreference: pref,
		Biography:        "hello",
		Latitude:         45.0,
		Longitude:        -12.0,
		Completed:        completed,
	}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}

func addTags(t *testing.T, gdb *gorm.DB, userID uint64, tagNames ...string) {
	t.Helper()
	for _, name := range tagNames {
		require.NoError(t, gdb.Create(&db.UserTag{UserID: userID, Tag: name}).Error)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewUserRepository(dbase)

	_, err := repo.GetByID(ctx, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCandidates_EligibilityAndOrdering(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	userRepo := repository.NewUserRepository(dbase)
	graphRepo := repository.NewGraphRepository(dbase)

	viewer := createUser(t, dbase, 1, db.GenderFemale, db.PrefOpposite, true)
	addTags(t, dbase, 1, "Foodie", "Bookworm", "Night owl")

	// compatible, 2 shared tags, low fame
	createUser(t, dbase, 2, db.GenderMale, db.PrefBoth, true)
	addTags(t, dbase, 2, "Foodie", "Bookworm")
	// compatible, 2 shared tags, high fame -> ranks first
	high := createUser(t, dbase, 3, db.GenderMale, db.PrefBoth, true)
	high.Fame = 900
	require.NoError(t, dbase.Save(&high).Error)
	addTags(t, dbase, 3, "Foodie", "Night owl")
	// compatible, no shared tags
	createUser(t, dbase, 4, db.GenderMale, db.PrefBoth, true)
	// same gender -> excluded for opposite preference
	createUser(t, dbase, 5, db.GenderFemale, db.PrefBoth, true)
	// incomplete -> excluded
	createUser(t, dbase, 6, db.GenderMale, db.PrefBoth, false)
	// blocked (candidate blocked the viewer) -> excluded
	createUser(t, dbase, 7, db.GenderMale, db.PrefBoth, true)
	require.NoError(t, graphRepo.CreateBlock(ctx, 7, 1))
	// already liked -> excluded when ExcludeLiked
	createUser(t, dbase, 8, db.GenderMale, db.PrefBoth, true)
	_, err := graphRepo.CreateLike(ctx, 1, 8)
	require.NoError(t, err)

	rows, err := userRepo.Candidates(ctx, &viewer, []string{"Foodie", "Bookworm", "Night owl"},
		repository.CandidateQuery{ExcludeLiked: true})
	require.NoError(t, err)

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.Equal(t, []uint64{3, 2, 4}, ids)
	assert.Equal(t, 2, rows[0].TagOverlap)
	assert.Equal(t, 2, rows[1].TagOverlap)
	assert.Equal(t, 0, rows[2].TagOverlap)

	// search keeps previously liked profiles
	rows, err = userRepo.Candidates(ctx, &viewer, nil, repository.CandidateQuery{})
	require.NoError(t, err)
	ids = ids[:0]
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.Contains(t, ids, uint64(8))
}

func TestCandidates_RangesNeedBothBounds(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	userRepo := repository.NewUserRepository(dbase)

	viewer := createUser(t, dbase, 1, db.GenderFemale, db.PrefBoth, true)

	young := createUser(t, dbase, 2, db.GenderMale, db.PrefBoth, true)
	young.Age = 20
	require.NoError(t, dbase.Save(&young).Error)
	old := createUser(t, dbase, 3, db.GenderMale, db.PrefBoth, true)
	old.Age = 40
	require.NoError(t, dbase.Save(&old).Error)

	min, max := 18, 25
	rows, err := userRepo.Candidates(ctx, &viewer, nil, repository.CandidateQuery{
		AgeMin: &min, AgeMax: &max,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(2), rows[0].ID)
}

func TestRefreshCompleted(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	userRepo := repository.NewUserRepository(dbase)
	imageRepo := repository.NewImageRepository(dbase)

	user := createUser(t, dbase, 1, db.GenderFemale, db.PrefBoth, false)

	// biography and location are set, but no image yet
	completed, err := userRepo.RefreshCompleted(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, completed)

	_, err = imageRepo.Add(ctx, user.ID)
	require.NoError(t, err)

	completed, err = userRepo.RefreshCompleted(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, completed)

	fresh, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Completed)
}
