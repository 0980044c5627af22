package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Snapshot is a raw HTML archive of a premium-tier extraction.
type Snapshot struct {
	JobID     string    `bson:"job_id"`
	URL       string    `bson:"url"`
	FinalURL  string    `bson:"final_url"`
	Platform  string    `bson:"platform"`
	HTML      string    `bson:"html"`
	FetchedAt time.Time `bson:"fetched_at"`
}

// SnapshotStore archives raw page snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	Get(ctx context.Context, jobID string) (*Snapshot, error)
}

// snapshotCollection MongoDB 中的快照集合名。
const snapshotCollection = "snapshots"

type snapshots struct {
	coll *mongo.Collection
}

// NewSnapshotStore creates a snapshot store on the given database.
func NewSnapshotStore(db *mongo.Database) SnapshotStore {
	return &snapshots{coll: db.Collection(snapshotCollection)}
}

// Save archives a snapshot, replacing any previous one for the same job.
func (s *snapshots) Save(ctx context.Context, snapshot *Snapshot) error {
	filter := bson.M{"job_id": snapshot.JobID}
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, filter, snapshot, opts)
	return err
}

// Get retrieves a snapshot by job ID.
func (s *snapshots) Get(ctx context.Context, jobID string) (*Snapshot, error) {
	var snapshot Snapshot
	if err := s.coll.FindOne(ctx, bson.M{"job_id": jobID}).Decode(&snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
