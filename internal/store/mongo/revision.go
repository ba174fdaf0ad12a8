package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type revisionDocument struct {
	ID          string    `bson:"_id"`
	ProjectID   string    `bson:"project_id"`
	EventType   string    `bson:"event_type"`
	Fingerprint string    `bson:"fingerprint"`
	Config      bson.Raw  `bson:"config"`
	SavedAt     time.Time `bson:"saved_at"`
}

func (d *revisionDocument) revision() (*domain.ConfigRevision, error) {
	cfg, err := decodeConfig(d.Config)
	if err != nil {
		return nil, err
	}
	return &domain.ConfigRevision{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		EventType:   d.EventType,
		Fingerprint: d.Fingerprint,
		Config:      cfg,
		SavedAt:     d.SavedAt,
	}, nil
}

type RevisionRepository struct {
	collection *mongo.Collection
}

func NewRevisionRepository(db *mongo.Database) *RevisionRepository {
	return &RevisionRepository{
		collection: db.Collection(collectionRevisions),
	}
}

func (r *RevisionRepository) Create(ctx context.Context, revision *domain.ConfigRevision) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if revision.ID == "" {
		revision.ID = uuid.NewString()
	}
	if revision.SavedAt.IsZero() {
		revision.SavedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, revision)
	if err != nil {
		return fmt.Errorf("failed to create config revision: %w", err)
	}

	return nil
}

func (r *RevisionRepository) Latest(ctx context.Context, projectID string) (*domain.ConfigRevision, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "saved_at", Value: -1}})

	var doc revisionDocument
	err := r.collection.FindOne(ctx, bson.M{"project_id": projectID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRevisionNotFound
		}
		return nil, fmt.Errorf("failed to get latest config revision: %w", err)
	}

	return doc.revision()
}

func (r *RevisionRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]domain.ConfigRevision, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"project_id": projectID}
	opts := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get config revisions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []revisionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode config revisions: %w", err)
	}

	revisions := make([]domain.ConfigRevision, 0, len(docs))
	for i := range docs {
		rev, err := docs[i].revision()
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, *rev)
	}

	return revisions, nil
}

func (r *RevisionRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
		return fmt.Errorf("failed to delete config revisions: %w", err)
	}

	return nil
}
