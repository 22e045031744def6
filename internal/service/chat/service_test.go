package chat_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/matcha-app/matcha-core/internal/app"
	"github.com/matcha-app/matcha-core/internal/cache"
	"github.com/matcha-app/matcha-core/internal/config"
	"github.com/matcha-app/matcha-core/internal/db"
	apperr "github.com/matcha-app/matcha-core/internal/errors"
	"github.com/matcha-app/matcha-core/internal/notify"
	"github.com/matcha-app/matcha-core/internal/repository"
	"github.com/matcha-app/matcha-core/internal/service/chat"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Dispatch(_ context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

func setupService(t *testing.T) (*chat.Service, *gorm.DB, *recorder) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(db.Models()...))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := &recorder{}

	appCtx := app.New(dbase, redisCache, logger, rec)
	return chat.NewService(appCtx), dbase, rec
}

func seedUser(t *testing.T, gdb *gorm.DB, id uint64) {
	t.Helper()
	user := db.User{
		ID:           id,
		Username:     fmt.Sprintf("user%d", id),
		Email:        fmt.Sprintf("user%d@test.com", id),
		PasswordHash: "x",
		Biography:    "hi",
		Latitude:     45,
		Longitude:    -12,
		Completed:    true,
	}
	require.NoError(t, gdb.Create(&user).Error)
}

// connect creates the mutual likes that derive a connection for the pair.
func connect(t *testing.T, gdb *gorm.DB, a, b uint64) {
	t.Helper()
	graphRepo := repository.NewGraphRepository(gdb)
	ctx := context.Background()

	matched, err := graphRepo.CreateLike(ctx, a, b)
	require.NoError(t, err)
	require.False(t, matched)

	matched, err = graphRepo.CreateLike(ctx, b, a)
	require.NoError(t, err)
	require.True(t, matched)
}

func TestSend_RequiresConnection(t *testing.T) {
	svc, gdb, _ := setupService(t)
	ctx := context.Background()
	seedUser(t, gdb, 1)
	seedUser(t, gdb, 2)

	// a one-way like is not enough
	graphRepo := repository.NewGraphRepository(gdb)
	_, err := graphRepo.CreateLike(ctx, 1, 2)
	require.NoError(t, err)

	_, err = svc.Send(ctx, 1, 2, "hey")
	assert.ErrorIs(t, err, apperr.ErrNotConnected)

	_, err = svc.List(ctx, 1, 2)
	assert.ErrorIs(t, err, apperr.ErrNotConnected)
}

func TestSend_EmptyBody(t *testing.T) {
	svc, gdb, _ := setupService(t)
	ctx := context.Background()
	seedUser(t, gdb, 1)
	seedUser(t, gdb, 2)
	connect(t, gdb, 1, 2)

	_, err := svc.Send(ctx, 1, 2, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSendAndList(t *testing.T) {
	svc, gdb, rec := setupService(t)
	ctx := context.Background()
	seedUser(t, gdb, 1)
	seedUser(t, gdb, 2)
	connect(t, gdb, 1, 2)

	first, err := svc.Send(ctx, 1, 2, "hello")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.SenderID)
	assert.Equal(t, "hello", first.Body)

	_, err = svc.Send(ctx, 2, 1, "hi back")
	require.NoError(t, err)

	// both participants see the same ascending transcript
	for _, requester := range []uint64{1, 2} {
		messages, err := svc.List(ctx, requester, 3-requester)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "hello", messages[0].Body)
		assert.Equal(t, "hi back", messages[1].Body)
		assert.False(t, messages[1].SentAt.Before(messages[0].SentAt))
	}

	var messageEvents []notify.Event
	for _, ev := range rec.all() {
		if ev.Type == notify.EventMessage {
			messageEvents = append(messageEvents, ev)
		}
	}
	require.Len(t, messageEvents, 2)
	assert.Equal(t, uint64(2), messageEvents[0].RecipientID)
	assert.Equal(t, uint64(1), messageEvents[1].RecipientID)
}

func TestSend_BlockedAfterConnect(t *testing.T) {
	svc, gdb, _ := setupService(t)
	ctx := context.Background()
	seedUser(t, gdb, 1)
	seedUser(t, gdb, 2)
	connect(t, gdb, 1, 2)

	_, err := svc.Send(ctx, 1, 2, "hello")
	require.NoError(t, err)

	graphRepo := repository.NewGraphRepository(gdb)
	require.NoError(t, graphRepo.CreateBlock(ctx, 2, 1))

	// the block gates both directions even though the connection row remains
	_, err = svc.Send(ctx, 1, 2, "still there?")
	assert.ErrorIs(t, err, apperr.ErrBlocked)
	_, err = svc.Send(ctx, 2, 1, "go away")
	assert.ErrorIs(t, err, apperr.ErrBlocked)
	_, err = svc.List(ctx, 1, 2)
	assert.ErrorIs(t, err, apperr.ErrBlocked)
}
