// Package store provides the extractor service storage layer.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/forge-io/agentforge/internal/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Events() EventStore
	Extractions() ExtractionStore
	AutoMigrate() error
	Close() error
}

// EventStore defines the event storage interface.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	Get(ctx context.Context, id uint64) (*model.Event, error)
	GetBySourceURL(ctx context.Context, sourceURL string) (*model.Event, error)
	// Upsert creates the event or updates the existing row with the same
	// source URL, keeping the higher-scoring version.
	Upsert(ctx context.Context, event *model.Event) error
	List(ctx context.Context, filter *EventFilter, offset, limit int) (int64, []*model.Event, error)
}

// EventFilter narrows event listings.
type EventFilter struct {
	Platform    string
	StorageTier string
	MinScore    int
}

// ExtractionStore defines the extraction record storage interface.
type ExtractionStore interface {
	Create(ctx context.Context, extraction *model.Extraction) error
	Get(ctx context.Context, id string) (*model.Extraction, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Extraction, error)
}

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// NewFactory creates a storage factory backed by the given gorm DB.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Events returns the event store.
func (ds *datastore) Events() EventStore {
	return newEvents(ds.db)
}

// Extractions returns the extraction record store.
func (ds *datastore) Extractions() ExtractionStore {
	return newExtractions(ds.db)
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.Event{},
		&model.Extraction{},
	)
}

// Close closes the factory and underlying connections.
func (ds *datastore) Close() error {
	return nil
}
