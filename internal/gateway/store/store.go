// Package store provides the gateway's read-side access to stored events.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/forge-io/agentforge/internal/model"
)

// EventFilter 事件查询过滤条件。
type EventFilter struct {
	Platform    string
	StorageTier string
	MinScore    int
}

// EventReader 只读事件访问接口。网关不写入事件，写入由提取服务负责。
type EventReader interface {
	// Get retrieves an event by ID.
	Get(ctx context.Context, id uint64) (*model.Event, error)

	// List lists events with optional filters and pagination.
	List(ctx context.Context, filter *EventFilter, offset, limit int) (int64, []*model.Event, error)

	// Recent returns the most recently stored events at or above minScore.
	Recent(ctx context.Context, minScore, limit int) ([]*model.Event, error)
}

type eventReader struct {
	db *gorm.DB
}

// NewEventReader creates an EventReader on the given database.
func NewEventReader(db *gorm.DB) EventReader {
	return &eventReader{db}
}

func (r *eventReader) Get(ctx context.Context, id uint64) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventReader) List(ctx context.Context, filter *EventFilter, offset, limit int) (int64, []*model.Event, error) {
	query := r.db.WithContext(ctx).Model(&model.Event{})

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

func (r *eventReader) Recent(ctx context.Context, minScore, limit int) ([]*model.Event, error) {
	var items []*model.Event
	query := r.db.WithContext(ctx).Model(&model.Event{})
	if minScore > 0 {
		query = query.Where("score >= ?", minScore)
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
