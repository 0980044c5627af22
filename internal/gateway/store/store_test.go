package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/forge-io/agentforge/internal/model"
)

func newTestReader(t *testing.T) (EventReader, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Event{}))

	return NewEventReader(db), db
}

func seedEvents(t *testing.T, db *gorm.DB) {
	t.Helper()

	events := []*model.Event{
		{Name: "Forge Summit", SourceURL: "https://lu.ma/a", Platform: "luma", StorageTier: "premium", Score: 92},
		{Name: "Builders Meetup", SourceURL: "https://meetup.com/b", Platform: "meetup", StorageTier: "standard", Score: 71},
		{Name: "Thin Listing", SourceURL: "https://example.com/c", Platform: "generic", StorageTier: "basic", Score: 40},
	}
	for i, event := range events {
		// 拉开创建时间，保证 created_at DESC 排序可预期
		event.CreatedAt = time.Now().Add(time.Duration(i) * time.Second).UnixMilli()
		require.NoError(t, db.Create(event).Error)
	}
}

func TestReaderGet(t *testing.T) {
	reader, db := newTestReader(t)
	seedEvents(t, db)

	event, err := reader.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Forge Summit", event.Name)

	_, err = reader.Get(context.Background(), 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReaderList(t *testing.T) {
	reader, db := newTestReader(t)
	seedEvents(t, db)

	count, items, err := reader.List(context.Background(), nil, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Len(t, items, 3)

	count, items, err = reader.List(context.Background(), &EventFilter{Platform: "luma"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, items, 1)
	assert.Equal(t, "Forge Summit", items[0].Name)

	count, items, err = reader.List(context.Background(), &EventFilter{MinScore: 70}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, items, 2)

	count, items, err = reader.List(context.Background(), &EventFilter{StorageTier: "basic"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, items, 1)
	assert.Equal(t, "Thin Listing", items[0].Name)
}

func TestReaderListPagination(t *testing.T) {
	reader, db := newTestReader(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&model.Event{
			Name:      fmt.Sprintf("Event %d", i),
			SourceURL: fmt.Sprintf("https://lu.ma/%d", i),
			Score:     50,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second).UnixMilli(),
		}).Error)
	}

	count, items, err := reader.List(context.Background(), nil, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.Len(t, items, 2)
}

func TestReaderRecent(t *testing.T) {
	reader, db := newTestReader(t)
	seedEvents(t, db)

	items, err := reader.Recent(context.Background(), 60, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// 最新的在前
	assert.Equal(t, "Builders Meetup", items[0].Name)
	assert.Equal(t, "Forge Summit", items[1].Name)

	items, err = reader.Recent(context.Background(), 60, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = reader.Recent(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}
