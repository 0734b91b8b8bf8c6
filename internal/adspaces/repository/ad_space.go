package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	adspaceserrors "adhub/internal/adspaces/errors"
	"adhub/pkg/config"
	mongotx "adhub/pkg/db/mongo"
	"adhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Ad_spaces"
)

type AdSpaceRepository interface {
	FindByID(ctx context.Context, id string) (*model.AdSpace, error)
	FindAvailable(ctx context.Context, filter model.AdSpaceFilter, limit int, offset int64) ([]*model.AdSpace, error)
	CountAvailable(ctx context.Context, filter model.AdSpaceFilter) (int64, error)
	Create(ctx context.Context, adSpace *model.AdSpace) error
	Update(ctx context.Context, adSpace *model.AdSpace) error
	Count(ctx context.Context) (int64, error)
}

type mongoAdSpaceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAdSpaceRepository(cfg *config.Config) AdSpaceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAdSpaceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAdSpaceRepository) FindByID(ctx context.Context, id string) (*model.AdSpace, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", adspaceserrors.ErrInvalidID, id)
	}

	var adSpace model.AdSpace
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&adSpace)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, adspaceserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ad space: %w", err)
	}

	return &adSpace, nil
}

func (r *mongoAdSpaceRepository) FindAvailable(ctx context.Context, filter model.AdSpaceFilter, limit int, offset int64) ([]*model.AdSpace, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, availableFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ad spaces: %w", err)
	}
	defer cursor.Close(ctx)

	adSpaces := []*model.AdSpace{}
	if err = cursor.All(ctx, &adSpaces); err != nil {
		return nil, fmt.Errorf("failed to decode ad spaces: %w", err)
	}

	return adSpaces, nil
}

func (r *mongoAdSpaceRepository) CountAvailable(ctx context.Context, filter model.AdSpaceFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, availableFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count ad spaces: %w", err)
	}
	return count, nil
}

// availableFilter matches AVAILABLE ad spaces; city matches whole-value, case-insensitively.
func availableFilter(filter model.AdSpaceFilter) bson.M {
	query := bson.M{"status": model.AdSpaceAvailable}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.City != "" {
		query["city"] = primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(filter.City) + "$",
			Options: "i",
		}
	}
	return query
}

func (r *mongoAdSpaceRepository) Create(ctx context.Context, adSpace *model.AdSpace) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	adSpace.CreatedAt = now
	adSpace.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, adSpace)
	if err != nil {
		return fmt.Errorf("failed to create ad space: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		adSpace.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAdSpaceRepository) Update(ctx context.Context, adSpace *model.AdSpace) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(adSpace.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", adspaceserrors.ErrInvalidID, adSpace.ID)
	}

	adSpace.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":          adSpace.Name,
			"type":          adSpace.Type,
			"city":          adSpace.City,
			"address":       adSpace.Address,
			"price_per_day": adSpace.PricePerDay,
			"status":        adSpace.Status,
			"updated_at":    adSpace.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update ad space: %w", err)
	}
	if result.MatchedCount == 0 {
		return adspaceserrors.ErrNotFound
	}
	return nil
}

func (r *mongoAdSpaceRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count ad spaces: %w", err)
	}
	return count, nil
}
