package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/school-dashboard/internal/model"
	"github.com/nhle/school-dashboard/tests/testutil"
)

func TestUpsertAndGetRoundTrip(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	created := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	items := []model.Notification{
		{
			ID:           "n1",
			Title:        "Midterm scheduled",
			Message:      "Room 204, Thursday",
			Type:         model.TypeNewTest,
			Recipients:   []string{"u1", "u2"},
			Sender:       model.Sender{ID: "t-3", Name: "Mr. Okafor"},
			IsReadBy:     []string{"u1"},
			RelatedID:    "test-9",
			RelatedModel: model.RelatedTest,
			Important:    true,
			CreatedAt:    created,
			UpdatedAt:    created,
		},
	}

	require.NoError(t, c.UpsertNotifications(ctx, items))

	got, err := c.GetNotifications(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	n := got[0]
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, model.TypeNewTest, n.Type)
	assert.Equal(t, "Mr. Okafor", n.Sender.Name)
	assert.Equal(t, []string{"u1", "u2"}, n.Recipients)
	assert.True(t, n.ReadBy("u1"))
	assert.Equal(t, model.RelatedTest, n.RelatedModel)
	assert.True(t, n.Important)
	assert.True(t, n.CreatedAt.Equal(created))
}

func TestGetNotificationsNewestFirst(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, c.UpsertNotifications(ctx, []model.Notification{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(time.Hour)},
		{ID: "mid", CreatedAt: base.Add(time.Minute)},
	}))

	got, err := c.GetNotifications(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
}

func TestUpsertReplacesExisting(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.UpsertNotifications(ctx, []model.Notification{
		{ID: "n1", Title: "before"},
	}))
	require.NoError(t, c.UpsertNotifications(ctx, []model.Notification{
		{ID: "n1", Title: "after", IsReadBy: []string{"u1"}},
	}))

	got, err := c.GetNotifications(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "after", got[0].Title)
	assert.True(t, got[0].ReadBy("u1"))
}

func TestUpsertAssignsIDWhenMissing(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.UpsertNotifications(ctx, []model.Notification{
		{Title: "no id"},
	}))

	got, err := c.GetNotifications(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
}

func TestPrune(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, c.UpsertNotifications(ctx, []model.Notification{
		{ID: "stale", CreatedAt: base},
		{ID: "fresh", CreatedAt: base.Add(48 * time.Hour)},
	}))

	require.NoError(t, c.Prune(ctx, base.Add(time.Hour)))

	got, err := c.GetNotifications(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}
