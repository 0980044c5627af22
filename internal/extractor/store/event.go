package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/forge-io/agentforge/internal/model"
)

type events struct {
	db *gorm.DB
}

func newEvents(db *gorm.DB) *events {
	return &events{db}
}

// Create creates a new event.
func (e *events) Create(ctx context.Context, event *model.Event) error {
	return e.db.WithContext(ctx).Create(event).Error
}

// Update updates an existing event.
func (e *events) Update(ctx context.Context, event *model.Event) error {
	return e.db.WithContext(ctx).Save(event).Error
}

// Get retrieves an event by ID.
func (e *events) Get(ctx context.Context, id uint64) (*model.Event, error) {
	var event model.Event
	if err := e.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetBySourceURL retrieves an event by its source URL.
func (e *events) GetBySourceURL(ctx context.Context, sourceURL string) (*model.Event, error) {
	var event model.Event
	if err := e.db.WithContext(ctx).Where("source_url = ?", sourceURL).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// Upsert creates the event, or updates the existing row for the same
// source URL when the new extraction scored at least as high.
func (e *events) Upsert(ctx context.Context, event *model.Event) error {
	for attempt := 0; ; attempt++ {
		existing, err := e.GetBySourceURL(ctx, event.SourceURL)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			createErr := e.Create(ctx, event)
			if createErr != nil && attempt == 0 {
				// 并发提取同一 source_url 时落败方撞唯一索引，重读后改走更新路径
				event.ID = 0
				continue
			}
			return createErr
		}

		if event.Score < existing.Score {
			// 旧版本更完整，保留旧数据
			event.ID = existing.ID
			event.Score = existing.Score
			return nil
		}

		event.ID = existing.ID
		event.CreatedAt = existing.CreatedAt
		return e.Update(ctx, event)
	}
}

// List lists events with optional filters and pagination.
func (e *events) List(ctx context.Context, filter *EventFilter, offset, limit int) (int64, []*model.Event, error) {
	query := e.db.WithContext(ctx).Model(&model.Event{})

	if filter != nil {
		if filter.Platform != "" {
			query = query.Where("platform = ?", filter.Platform)
		}
		if filter.StorageTier != "" {
			query = query.Where("storage_tier = ?", filter.StorageTier)
		}
		if filter.MinScore > 0 {
			query = query.Where("score >= ?", filter.MinScore)
		}
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, nil, err
	}

	var items []*model.Event
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return count, items, nil
}
