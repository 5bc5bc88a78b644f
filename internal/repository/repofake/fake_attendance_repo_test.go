package repofake_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/repository"
	"github.com/kelaslive/kelaslive-backend/internal/repository/repofake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRepo_ConcurrentFirstContactCreatesOnce(t *testing.T) {
	repo := repofake.New().Attendance()
	ctx := context.Background()
	sessionID, userID := uuid.New(), uuid.New()
	now := time.Now()

	var created, updated atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, isNew, err := repo.Upsert(ctx, sessionID, userID,
				func() model.Attendance { return model.Attendance{JoinedAt: now, LastSeenAt: now} },
				func(a *model.Attendance) { a.DurationSec++ },
			)
			assert.NoError(t, err)
			if isNew {
				created.Add(1)
			} else {
				updated.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	got, err := repo.Get(ctx, sessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(updated.Load()), got.DurationSec)
}

func TestAttendanceRepo_GetMissing(t *testing.T) {
	_, err := repofake.New().Attendance().Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClassRepo_DuplicateCode(t *testing.T) {
	db := repofake.New()
	ctx := context.Background()

	require.NoError(t, db.Classes().Create(ctx, &model.Class{Title: "A", Code: "ABC123", TeacherID: uuid.New()}))
	err := db.Classes().Create(ctx, &model.Class{Title: "B", Code: "ABC123", TeacherID: uuid.New()})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
