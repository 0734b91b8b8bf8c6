package service

import (
	"context"
	"errors"
	"sync"

	adspaceserrors "adhub/internal/adspaces/errors"
	"adhub/internal/adspaces/repository"
	"adhub/internal/adspaces/validator"
	"adhub/pkg/config"
	apperrors "adhub/pkg/errors"
	"adhub/pkg/model"
	"adhub/pkg/sanitizer"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("adhub/adspaces")

type AdSpaceService interface {
	GetByID(ctx context.Context, id string) (*model.AdSpace, error)
	ListAvailable(ctx context.Context, filter model.AdSpaceFilter, limit int, offset int64) ([]*model.AdSpace, int64, error)
	Create(ctx context.Context, adSpace *model.AdSpace) error
	Count(ctx context.Context) (int64, error)
}

type adSpaceService struct {
	repo      repository.AdSpaceRepository
	validator *validator.AdSpaceValidator
	cfg       *config.Config
}

func NewAdSpaceService(
	repo repository.AdSpaceRepository,
	validator *validator.AdSpaceValidator,
	cfg *config.Config,
) AdSpaceService {
	return &adSpaceService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *adSpaceService) GetByID(ctx context.Context, id string) (*model.AdSpace, error) {
	ctx, span := tracer.Start(ctx, "adspaces.GetByID", trace.WithAttributes(attribute.String("ad_space.id", id)))
	defer span.End()

	if id == "" {
		return nil, apperrors.InvalidInput("Ad space ID cannot be empty")
	}

	adSpace, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, adspaceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ad space", id)
		}
		if errors.Is(err, adspaceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid ad space ID format")
		}
		s.cfg.Log.Error("Failed to get ad space by ID",
			"id", id,
			"error", err,
		)
		span.RecordError(err)
		return nil, apperrors.Internal("Failed to retrieve ad space", err)
	}

	return adSpace, nil
}

func (s *adSpaceService) ListAvailable(ctx context.Context, filter model.AdSpaceFilter, limit int, offset int64) ([]*model.AdSpace, int64, error) {
	filter.City = sanitizer.NormalizeCity(filter.City)
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, apperrors.InvalidInput("Invalid ad space type: " + string(filter.Type))
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	ctx, span := tracer.Start(ctx, "adspaces.ListAvailable", trace.WithAttributes(
		attribute.String("filter.type", string(filter.Type)),
		attribute.String("filter.city", filter.City),
		attribute.Int("limit", limit),
		attribute.Int64("offset", offset),
	))
	defer span.End()

	var count int64
	var adSpaces []*model.AdSpace
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountAvailable(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count available ad spaces", "error", err)
			errCount = apperrors.Internal("Failed to count ad spaces", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		adSpaces, err = s.repo.FindAvailable(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list available ad spaces",
				"type", filter.Type,
				"city", filter.City,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve ad spaces", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		span.RecordError(errCount)
		return nil, 0, errCount
	}
	if errFind != nil {
		span.RecordError(errFind)
		return nil, 0, errFind
	}

	span.SetAttributes(attribute.Int64("result.total", count))
	return adSpaces, count, nil
}

// Create adds inventory. Only the migration job seeds through it; the HTTP API
// exposes no write path for ad spaces.
func (s *adSpaceService) Create(ctx context.Context, adSpace *model.AdSpace) error {
	adSpace.Name = sanitizer.NormalizeName(adSpace.Name)
	adSpace.City = sanitizer.NormalizeCity(adSpace.City)
	adSpace.Address = sanitizer.TrimAndNormalize(adSpace.Address)
	if adSpace.Status == "" {
		adSpace.Status = model.AdSpaceAvailable
	}

	if err := s.validator.Validate(adSpace); err != nil {
		s.cfg.Log.Warn("Ad space validation failed",
			"name", adSpace.Name,
			"error", err,
		)
		return apperrors.Validation("Ad space validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, adSpace); err != nil {
		s.cfg.Log.Error("Failed to create ad space",
			"name", adSpace.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create ad space", err)
	}

	s.cfg.Log.Info("Ad space created successfully",
		"id", adSpace.ID,
		"name", adSpace.Name,
		"type", adSpace.Type,
		"city", adSpace.City,
	)
	return nil
}

func (s *adSpaceService) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperrors.Internal("Failed to count ad spaces", err)
	}
	return count, nil
}
