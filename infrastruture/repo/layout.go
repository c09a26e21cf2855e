package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LayoutRepo stores one document per grid layout.
type LayoutRepo struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewLayoutRepo creates a LayoutRepo over the given database and collection.
func NewLayoutRepo(client *mongo.Client, dbName, collectionName string) *LayoutRepo {
	return &LayoutRepo{
		collection: client.Database(dbName).Collection(collectionName),
		timeout:    2 * time.Second,
	}
}

// Save replaces the stored layout, inserting it if absent. A stored layout with
// a newer revision is left untouched.
func (l *LayoutRepo) Save(layout *domain.Layout) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	filter := bson.M{"_id": layout.ID, "revision": bson.M{"$lte": layout.Revision}}
	opts := options.Replace().SetUpsert(true)
	_, err := l.collection.ReplaceOne(ctx, filter, layout, opts)
	if err != nil {
		// An upsert that misses the revision filter collides with the newer document.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("saving layout %s: %w", layout.ID, err)
	}
	return nil
}

// ByID retrieves a layout by its ID.
func (l *LayoutRepo) ByID(id uuid.UUID) (*domain.Layout, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	var layout domain.Layout
	if err := l.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&layout); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, i.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("loading layout %s: %w", id, err)
	}
	return &layout, nil
}

// Delete removes the layout.
func (l *LayoutRepo) Delete(id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("deleting layout %s: %w", id, err)
	}
	return nil
}
