package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	adspaceserrors "adhub/internal/adspaces/errors"
	"adhub/pkg/config"
	pgtx "adhub/pkg/db/postgres"
	"adhub/pkg/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type postgresAdSpaceRepository struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewPostgresAdSpaceRepository(cfg *config.Config) AdSpaceRepository {
	return &postgresAdSpaceRepository{
		cfg: cfg,
		db:  cfg.Client.Postgres,
	}
}

func (r *postgresAdSpaceRepository) FindByID(ctx context.Context, id string) (*model.AdSpace, error) {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", adspaceserrors.ErrInvalidID, id)
	}

	var adSpace model.AdSpace
	if err := pgtx.Conn(ctx, r.db).First(&adSpace, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, adspaceserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ad space: %w", err)
	}
	return &adSpace, nil
}

func (r *postgresAdSpaceRepository) FindAvailable(ctx context.Context, filter model.AdSpaceFilter, limit int, offset int64) ([]*model.AdSpace, error) {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	adSpaces := []*model.AdSpace{}
	err := r.available(pgtx.Conn(ctx, r.db), filter).
		Order("name ASC").Order("id ASC").
		Limit(limit).Offset(int(offset)).
		Find(&adSpaces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find ad spaces: %w", err)
	}
	return adSpaces, nil
}

func (r *postgresAdSpaceRepository) CountAvailable(ctx context.Context, filter model.AdSpaceFilter) (int64, error) {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var count int64
	if err := r.available(pgtx.Conn(ctx, r.db), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ad spaces: %w", err)
	}
	return count, nil
}

func (r *postgresAdSpaceRepository) available(q *gorm.DB, filter model.AdSpaceFilter) *gorm.DB {
	q = q.Model(&model.AdSpace{}).Where("status = ?", model.AdSpaceAvailable)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(filter.City))
	}
	return q
}

func (r *postgresAdSpaceRepository) Create(ctx context.Context, adSpace *model.AdSpace) error {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if adSpace.ID == "" {
		adSpace.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	adSpace.CreatedAt = now
	adSpace.UpdatedAt = now

	if err := pgtx.Conn(ctx, r.db).Create(adSpace).Error; err != nil {
		return fmt.Errorf("failed to create ad space: %w", err)
	}
	return nil
}

func (r *postgresAdSpaceRepository) Update(ctx context.Context, adSpace *model.AdSpace) error {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(adSpace.ID); err != nil {
		return fmt.Errorf("%w: %s", adspaceserrors.ErrInvalidID, adSpace.ID)
	}

	adSpace.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	result := pgtx.Conn(ctx, r.db).Model(&model.AdSpace{}).
		Where("id = ?", adSpace.ID).
		Updates(map[string]any{
			"name":          adSpace.Name,
			"type":          adSpace.Type,
			"city":          adSpace.City,
			"address":       adSpace.Address,
			"price_per_day": adSpace.PricePerDay,
			"status":        adSpace.Status,
			"updated_at":    adSpace.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update ad space: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return adspaceserrors.ErrNotFound
	}
	return nil
}

func (r *postgresAdSpaceRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := pgtx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var count int64
	if err := pgtx.Conn(ctx, r.db).Model(&model.AdSpace{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ad spaces: %w", err)
	}
	return count, nil
}

// NewAdSpaceRepository picks the implementation for the configured store.
func NewAdSpaceRepository(cfg *config.Config) AdSpaceRepository {
	if cfg.StoreDriver == config.StorePostgres {
		return NewPostgresAdSpaceRepository(cfg)
	}
	return NewMongoAdSpaceRepository(cfg)
}
