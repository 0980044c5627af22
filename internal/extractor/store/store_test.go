package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/forge-io/agentforge/internal/model"
)

func newTestFactory(t *testing.T) Factory {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	factory := NewFactory(db)
	require.NoError(t, factory.AutoMigrate())
	return factory
}

func sampleEvent(sourceURL string, score int) *model.Event {
	start := time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)
	return &model.Event{
		Name:        "Web3 Summit",
		Description: "Annual gathering",
		StartTime:   &start,
		Location:    "Berlin",
		Organizer:   "Forge Labs",
		Speakers:    model.StringList{"Alice", "Bob"},
		SourceURL:   sourceURL,
		Platform:    "luma",
		StorageTier: "premium",
		Score:       score,
	}
}

func TestEventCreateAndGet(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	event := sampleEvent("https://lu.ma/a", 90)
	require.NoError(t, factory.Events().Create(ctx, event))
	require.NotZero(t, event.ID)

	got, err := factory.Events().Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Web3 Summit", got.Name)
	assert.Equal(t, model.StringList{"Alice", "Bob"}, got.Speakers)
	require.NotNil(t, got.StartTime)
	assert.Equal(t, 2026, got.StartTime.Year())
}

func TestEventGetBySourceURL(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	require.NoError(t, factory.Events().Create(ctx, sampleEvent("https://lu.ma/b", 70)))

	got, err := factory.Events().GetBySourceURL(ctx, "https://lu.ma/b")
	require.NoError(t, err)
	assert.Equal(t, 70, got.Score)

	_, err = factory.Events().GetBySourceURL(ctx, "https://lu.ma/missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEventUpsertKeepsHigherScore(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	first := sampleEvent("https://lu.ma/c", 80)
	require.NoError(t, factory.Events().Upsert(ctx, first))

	// 更低分的重复提取不覆盖
	worse := sampleEvent("https://lu.ma/c", 50)
	worse.Name = "Degraded"
	require.NoError(t, factory.Events().Upsert(ctx, worse))

	got, err := factory.Events().GetBySourceURL(ctx, "https://lu.ma/c")
	require.NoError(t, err)
	assert.Equal(t, "Web3 Summit", got.Name)
	assert.Equal(t, 80, got.Score)

	// 更高分的重复提取覆盖同一行
	better := sampleEvent("https://lu.ma/c", 95)
	better.Name = "Improved"
	require.NoError(t, factory.Events().Upsert(ctx, better))

	got, err = factory.Events().GetBySourceURL(ctx, "https://lu.ma/c")
	require.NoError(t, err)
	assert.Equal(t, "Improved", got.Name)
	assert.Equal(t, first.ID, got.ID)
}

func TestEventUpsertRecoversFromInsertConflict(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	first := sampleEvent("https://lu.ma/taken", 85)
	require.NoError(t, factory.Events().Create(ctx, first))
	require.NotZero(t, first.ID)

	// 并发竞争导致插入撞键时，Upsert 重读后重试而不是直接报错
	loser := sampleEvent("https://lu.ma/other", 90)
	loser.ID = first.ID
	require.NoError(t, factory.Events().Upsert(ctx, loser))
	assert.NotEqual(t, first.ID, loser.ID)

	got, err := factory.Events().GetBySourceURL(ctx, "https://lu.ma/other")
	require.NoError(t, err)
	assert.Equal(t, 90, got.Score)

	kept, err := factory.Events().GetBySourceURL(ctx, "https://lu.ma/taken")
	require.NoError(t, err)
	assert.Equal(t, 85, kept.Score)
}

func TestEventListWithFilters(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	a := sampleEvent("https://lu.ma/d", 90)
	b := sampleEvent("https://eventbrite.com/e", 40)
	b.Platform = "eventbrite"
	b.StorageTier = "basic"
	require.NoError(t, factory.Events().Create(ctx, a))
	require.NoError(t, factory.Events().Create(ctx, b))

	count, items, err := factory.Events().List(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Len(t, items, 2)

	count, items, err = factory.Events().List(ctx, &EventFilter{Platform: "luma"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, items, 1)
	assert.Equal(t, "luma", items[0].Platform)

	count, _, err = factory.Events().List(ctx, &EventFilter{MinScore: 60}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, _, err = factory.Events().List(ctx, &EventFilter{StorageTier: "basic"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestExtractionCreateGetList(t *testing.T) {
	factory := newTestFactory(t)
	ctx := context.Background()

	ext := &model.Extraction{
		ID:          "01J8ZXYA9GQXH3V5W2K4N6P7R8",
		URL:         "https://lu.ma/x",
		FinalURL:    "https://lu.ma/x",
		Platform:    "luma",
		ContentTier: "static",
		StorageTier: "standard",
		Score:       65,
		Status:      model.ExtractionStatusSuccess,
		DurationMs:  1200,
	}
	require.NoError(t, factory.Extractions().Create(ctx, ext))

	got, err := factory.Extractions().Get(ctx, ext.ID)
	require.NoError(t, err)
	assert.Equal(t, "static", got.ContentTier)
	assert.Equal(t, 65, got.Score)

	_, err = factory.Extractions().Get(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	count, items, err := factory.Extractions().List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Len(t, items, 1)
}
