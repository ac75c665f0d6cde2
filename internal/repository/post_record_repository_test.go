package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/autopost/internal/models"
)

func record(t *testing.T, lr PostRecordRepository, productID, platform string, success bool) {
	t.Helper()
	_, err := lr.Create(context.Background(), &models.PostRecord{
		ProductID: productID,
		WorkerID:  "worker-a",
		Platform:  platform,
		Success:   success,
	})
	require.NoError(t, err)
}

func TestSuccessCountsArePlatformScoped(t *testing.T) {
	db := newTestDB(t)
	lr := NewPostRecordRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record(t, lr, "p1", models.PlatformCafe, true)
	}
	for i := 0; i < 2; i++ {
		record(t, lr, "p1", models.PlatformBlog, true)
	}
	record(t, lr, "p2", models.PlatformCafe, true)

	cafe, err := lr.SuccessCounts(ctx, models.PlatformCafe)
	require.NoError(t, err)
	assert.Equal(t, 3, cafe["p1"])
	assert.Equal(t, 1, cafe["p2"])

	blog, err := lr.SuccessCounts(ctx, models.PlatformBlog)
	require.NoError(t, err)
	assert.Equal(t, 2, blog["p1"])
	assert.NotContains(t, blog, "p2")
}

func TestFailedAttemptsDoNotCount(t *testing.T) {
	db := newTestDB(t)
	lr := NewPostRecordRepository(db)

	record(t, lr, "p1", models.PlatformCafe, false)
	record(t, lr, "p1", models.PlatformCafe, false)

	counts, err := lr.SuccessCounts(context.Background(), models.PlatformCafe)
	require.NoError(t, err)
	assert.NotContains(t, counts, "p1")
}

func TestCreateAssignsIDAndNullsEmptyWorker(t *testing.T) {
	db := newTestDB(t)
	lr := NewPostRecordRepository(db)
	ctx := context.Background()

	rec := &models.PostRecord{ProductID: "p1", Platform: models.PlatformBlog, Success: true}
	id, err := lr.Create(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.ID)

	recs, err := lr.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].WorkerID)
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	db := newTestDB(t)
	lr := NewPostRecordRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, pid := range []string{"p1", "p2", "p3"} {
		_, err := lr.Create(ctx, &models.PostRecord{
			ProductID: pid,
			Platform:  models.PlatformCafe,
			Success:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recs, err := lr.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "p3", recs[0].ProductID)
	assert.Equal(t, "p2", recs[1].ProductID)
}

func TestCountSuccessSince(t *testing.T) {
	db := newTestDB(t)
	lr := NewPostRecordRepository(db)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	_, err := lr.Create(ctx, &models.PostRecord{ProductID: "p1", Platform: models.PlatformCafe, Success: true, CreatedAt: old})
	require.NoError(t, err)
	record(t, lr, "p1", models.PlatformCafe, true)

	n, err := lr.CountSuccessSince(ctx, models.PlatformCafe, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
