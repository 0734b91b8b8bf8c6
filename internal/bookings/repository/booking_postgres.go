package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "adhub/internal/bookings/errors"
	"adhub/pkg/config"
	"adhub/pkg/db"
	pgtx "adhub/pkg/db/postgres"
	"adhub/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type postgresBookingRepository struct {
	cfg       *config.Config
	db        *gorm.DB
	txManager db.TransactionManager
}

func NewPostgresBookingRepository(cfg *config.Config) BookingRepository {
	return &postgresBookingRepository{
		cfg:       cfg,
		db:        cfg.Client.Postgres,
		txManager: pgtx.NewTransactionManager(cfg.Client.Postgres),
	}
}

func (r *postgresBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	if err := pgtx.Conn(ctx, r.db).First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *postgresBookingRepository) byStatus(q *gorm.DB, status *model.BookingStatus) *gorm.DB {
	q = q.Model(&model.Booking{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	return q
}

func (r *postgresBookingRepository) FindByStatus(ctx context.Context, status *model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	bookings := []*model.Booking{}
	err := r.byStatus(pgtx.Conn(ctx, r.db), status).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(int(offset)).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return bookings, nil
}

func (r *postgresBookingRepository) CountByStatus(ctx context.Context, status *model.BookingStatus) (int64, error) {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var count int64
	if err := r.byStatus(pgtx.Conn(ctx, r.db), status).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *postgresBookingRepository) FindOverlapping(ctx context.Context, adSpaceID string, status model.BookingStatus, start, end model.Date) ([]*model.Booking, error) {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	bookings := []*model.Booking{}
	err := pgtx.Conn(ctx, r.db).
		Where("ad_space_id = ? AND status = ?", adSpaceID, status).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return bookings, nil
}

func (r *postgresBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	booking.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if err := pgtx.Conn(ctx, r.db).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *postgresBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(booking.ID); err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
	}

	result := pgtx.Conn(ctx, r.db).Model(&model.Booking{}).
		Where("id = ?", booking.ID).
		Update("status", booking.Status)
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *postgresBookingRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// NewBookingRepository picks the implementation for the configured store.
func NewBookingRepository(cfg *config.Config) BookingRepository {
	if cfg.StoreDriver == config.StorePostgres {
		return NewPostgresBookingRepository(cfg)
	}
	return NewMongoBookingRepository(cfg)
}
