package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "adhub/internal/bookings/errors"
	"adhub/pkg/config"
	mongotx "adhub/pkg/db/mongo"
	pgtx "adhub/pkg/db/postgres"
	"adhub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	LockCollectionName = "Booking_locks"
)

// BookingLockRepository serializes booking transactions that touch the same ad
// space. Lock must run inside ExecuteTransaction; it is released on commit or abort.
type BookingLockRepository interface {
	Lock(ctx context.Context, adSpaceID string) error
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewMongoBookingLockRepository(cfg *config.Config) BookingLockRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: database.Collection(LockCollectionName),
	}
}

// Lock bumps the ad space's lock document. A concurrent transaction doing the
// same gets a write conflict and is retried by the driver after this one commits.
func (r *mongoBookingLockRepository) Lock(ctx context.Context, adSpaceID string) error {
	if !mongotx.InTransaction(ctx) {
		return bookingserrors.ErrLockOutsideTransaction
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": adSpaceID},
		bson.M{
			"$inc": bson.M{"seq": 1},
			"$set": bson.M{"locked_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to lock ad space %s: %w", adSpaceID, err)
	}
	return nil
}

type postgresBookingLockRepository struct {
	db *gorm.DB
}

func NewPostgresBookingLockRepository(cfg *config.Config) BookingLockRepository {
	return &postgresBookingLockRepository{db: cfg.Client.Postgres}
}

// Lock takes a row lock on the ad space until the transaction ends.
func (r *postgresBookingLockRepository) Lock(ctx context.Context, adSpaceID string) error {
	if !pgtx.InTransaction(ctx) {
		return bookingserrors.ErrLockOutsideTransaction
	}

	var row model.AdSpace
	err := pgtx.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&row, "id = ?", adSpaceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrLockTargetNotFound, adSpaceID)
		}
		return fmt.Errorf("failed to lock ad space %s: %w", adSpaceID, err)
	}
	return nil
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	if cfg.StoreDriver == config.StorePostgres {
		return NewPostgresBookingLockRepository(cfg)
	}
	return NewMongoBookingLockRepository(cfg)
}
