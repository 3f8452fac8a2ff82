package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

const (
	reportsCollection = "inventory_reports"
	usersCollection   = "users"
)

// MongoDBRepository owns the client connection and hands out collection-backed stores.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{client: client, dbName: dbName}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// SaveInventoryReport inserts one daily report.
func (r *MongoDBRepository) SaveInventoryReport(ctx context.Context, report models.InventoryReport) error {
	if _, err := r.collection(reportsCollection).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert inventory report: %w", err)
	}
	return nil
}

// LatestInventoryReport returns the most recently created report.
func (r *MongoDBRepository) LatestInventoryReport(ctx context.Context) (models.InventoryReport, error) {
	var report models.InventoryReport
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := r.collection(reportsCollection).FindOne(ctx, bson.D{}, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.InventoryReport{}, models.ErrReportNotFound
	}
	if err != nil {
		return models.InventoryReport{}, fmt.Errorf("failed to load latest inventory report: %w", err)
	}
	return report, nil
}

// Users returns the credential store backed by the users collection.
func (r *MongoDBRepository) Users() *UserRepository {
	return &UserRepository{coll: r.collection(usersCollection), now: time.Now}
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// UserRepository stores operator credentials, one document per username.
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// EnsureIndexes creates the unique username index.
func (u *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := u.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}
	return nil
}

// GetUser loads a user by exact username.
func (u *UserRepository) GetUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := u.coll.FindOne(ctx, usernameFilter(username)).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user %s: %w", username, err)
	}
	return user, nil
}

// CreateUser inserts a user, failing with models.ErrUserExists on a taken username.
func (u *UserRepository) CreateUser(ctx context.Context, user models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = u.now().UTC()
	}
	_, err := u.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", models.ErrUserExists, user.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user %s: %w", user.Username, err)
	}
	return nil
}

func usernameFilter(username string) bson.D {
	return bson.D{{Key: "username", Value: username}}
}
