package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/forge-io/agentforge/internal/model"
)

type extractions struct {
	db *gorm.DB
}

func newExtractions(db *gorm.DB) *extractions {
	return &extractions{db}
}

// Create creates an extraction record.
func (e *extractions) Create(ctx context.Context, extraction *model.Extraction) error {
	return e.db.WithContext(ctx).Create(extraction).Error
}

// Get retrieves an extraction record by job ID.
func (e *extractions) Get(ctx context.Context, id string) (*model.Extraction, error) {
	var extraction model.Extraction
	if err := e.db.WithContext(ctx).Where("id = ?", id).First(&extraction).Error; err != nil {
		return nil, err
	}
	return &extraction, nil
}

// List lists extraction records with pagination, newest first.
func (e *extractions) List(ctx context.Context, offset, limit int) (int64, []*model.Extraction, error) {
	var count int64
	if err := e.db.WithContext(ctx).Model(&model.Extraction{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}

	var items []*model.Extraction
	if err := e.db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return count, items, nil
}
