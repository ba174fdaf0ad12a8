package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/shopbuilder/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collectionProjects    = "projects"
	collectionRevisions   = "config_revisions"
	collectionImportTasks = "import_tasks"
)

type Storage struct {
	client   *mongo.Client
	database *mongo.Database
	config   Config
}

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

func New(cfg Config) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(cfg.Database)

	return &Storage{
		client:   client,
		database: database,
		config:   cfg,
	}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Storage) Database() *mongo.Database {
	return s.database
}

func (s *Storage) Projects() *ProjectRepository {
	return NewProjectRepository(s.database)
}

func (s *Storage) Revisions() *RevisionRepository {
	return NewRevisionRepository(s.database)
}

func (s *Storage) ImportTasks() *ImportTaskRepository {
	return NewImportTaskRepository(s.database)
}

func (s *Storage) CreateIndexes(ctx context.Context) error {
	// create indexes for projects collection
	projectsIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
		},
	}
	if _, err := s.database.Collection(collectionProjects).Indexes().CreateMany(ctx, projectsIndexes); err != nil {
		return fmt.Errorf("failed to create projects indexes: %w", err)
	}

	// create indexes for config_revisions collection
	revisionsIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "saved_at", Value: -1}},
		},
	}
	if _, err := s.database.Collection(collectionRevisions).Indexes().CreateMany(ctx, revisionsIndexes); err != nil {
		return fmt.Errorf("failed to create config_revisions indexes: %w", err)
	}

	// create indexes for import_tasks collection
	tasksIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "project_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
	}
	if _, err := s.database.Collection(collectionImportTasks).Indexes().CreateMany(ctx, tasksIndexes); err != nil {
		return fmt.Errorf("failed to create import_tasks indexes: %w", err)
	}

	return nil
}

// decodeConfig turns a stored config document into the plain JSON tree.
// Going through relaxed extended JSON keeps nested values as maps and slices.
func decodeConfig(raw bson.Raw) (domain.Configuration, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config document: %w", err)
	}
	return domain.ParseConfiguration(data)
}
