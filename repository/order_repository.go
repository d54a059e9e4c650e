package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkout-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository persists completed checkout orders keyed by session ID.
type OrderRepository interface {
	// CreateOrder inserts the order if no order exists for its session ID.
	// Returns false with a nil error when a record is already present.
	CreateOrder(ctx context.Context, order *models.Order) (bool, error)
	GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
}

type mongoOrderRepo struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepo{collection: db.Collection("orders")}
}

// CreateOrder relies on the unique index on session_id: a duplicate key
// error from InsertOne means another delivery of the same confirmation
// (or the racing pull path) already won, which is not a failure. This
// keeps check-then-write atomic without application-level locking.
func (r *mongoOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (bool, error) {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert order: %w", err)
	}
	return true, nil
}

func (r *mongoOrderRepo) GetOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// EnsureIndexes creates the unique session_id index the idempotent
// insert depends on. Called once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create orders indexes: %w", err)
	}
	return nil
}
