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

// projectDocument reads a project back with its config left raw so the
// JSON tree can be rebuilt without driver types.
type projectDocument struct {
	ID        string               `bson:"_id"`
	UserID    string               `bson:"user_id"`
	Slug      string               `bson:"slug"`
	Name      string               `bson:"name"`
	Config    bson.Raw             `bson:"config"`
	Status    domain.ProjectStatus `bson:"status"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func (d *projectDocument) project() (*domain.Project, error) {
	cfg, err := decodeConfig(d.Config)
	if err != nil {
		return nil, err
	}
	return &domain.Project{
		ID:        d.ID,
		UserID:    d.UserID,
		Slug:      d.Slug,
		Name:      d.Name,
		Config:    cfg,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type ProjectRepository struct {
	collection *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{
		collection: db.Collection(collectionProjects),
	}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt

	_, err := r.collection.InsertOne(ctx, project)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ProjectRepository) findOne(ctx context.Context, filter bson.M) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc projectDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return doc.project()
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []projectDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(docs))
	for i := range docs {
		p, err := docs[i].project()
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}

	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}

	return r.findAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *ProjectRepository) UpdateConfig(ctx context.Context, id string, cfg domain.Configuration) (*domain.Project, error) {
	return r.findAndUpdate(ctx, id, bson.M{
		"$set": bson.M{
			"config":     cfg,
			"updated_at": time.Now(),
		},
	})
}

func (r *ProjectRepository) findAndUpdate(ctx context.Context, id string, update bson.M) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc projectDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return doc.project()
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}

	return nil
}
