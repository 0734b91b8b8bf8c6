package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	adspaceserrors "adhub/internal/adspaces/errors"
	adspacesrepo "adhub/internal/adspaces/repository"
	bookingserrors "adhub/internal/bookings/errors"
	"adhub/internal/bookings/events"
	"adhub/internal/bookings/repository"
	"adhub/internal/bookings/validator"
	"adhub/pkg/config"
	apperrors "adhub/pkg/errors"
	"adhub/pkg/metrics"
	"adhub/pkg/model"
	"adhub/pkg/sanitizer"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("adhub/bookings")

const (
	opCreate  = "create"
	opApprove = "approve"
	opReject  = "reject"
)

type BookingService interface {
	// Create books [start, end] on an ad space. today is the current date in the
	// business timezone; the start date must come after it.
	Create(ctx context.Context, req *model.CreateBookingRequest, today model.Date) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, status *model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	Approve(ctx context.Context, id string) (*model.Booking, error)
	Reject(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo        repository.BookingRepository
	lockRepo    repository.BookingLockRepository
	adSpaceRepo adspacesrepo.AdSpaceRepository
	validator   *validator.BookingValidator
	publisher   events.Publisher
	metrics     *metrics.Metrics
	cfg         *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	adSpaceRepo adspacesrepo.AdSpaceRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	metrics *metrics.Metrics,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:        repo,
		lockRepo:    lockRepo,
		adSpaceRepo: adSpaceRepo,
		validator:   validator,
		publisher:   publisher,
		metrics:     metrics,
		cfg:         cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.CreateBookingRequest, today model.Date) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.Create", trace.WithAttributes(
		attribute.String("ad_space.id", req.AdSpaceID),
		attribute.String("booking.start_date", req.StartDate.String()),
		attribute.String("booking.end_date", req.EndDate.String()),
	))
	defer span.End()
	start := time.Now()

	s.sanitize(req)
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed",
			"ad_space_id", req.AdSpaceID,
			"error", err,
		)
		appErr := apperrors.InvalidInput("Booking request validation failed")
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			appErr = appErr.WithDetails(verrs.Fields())
		}
		s.observe(span, opCreate, start, appErr)
		return nil, appErr
	}

	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// rebuilt on every attempt; the store may retry this function
		booking = nil

		adSpace, err := s.lockAdSpace(txCtx, req.AdSpaceID)
		if err != nil {
			return err
		}

		if err := s.checkDates(req.StartDate, req.EndDate, today); err != nil {
			return err
		}

		if adSpace.Status != model.AdSpaceAvailable {
			return apperrors.Validation(fmt.Sprintf("ad space not available, current status: %s", adSpace.Status), nil)
		}

		if err := s.checkNoApprovedOverlap(txCtx, adSpace.ID, req.StartDate, req.EndDate); err != nil {
			return err
		}

		days := model.InclusiveDays(req.StartDate, req.EndDate)
		candidate := &model.Booking{
			AdSpaceID:       adSpace.ID,
			AdSpaceName:     adSpace.Name,
			AdvertiserName:  req.AdvertiserName,
			AdvertiserEmail: req.AdvertiserEmail,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			Status:          model.BookingPending,
			TotalCost:       adSpace.PricePerDay.Times(days),
		}
		if err := s.repo.Create(txCtx, candidate); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		booking = candidate
		return nil
	})
	if err != nil {
		s.logFailure(opCreate, err, "ad_space_id", req.AdSpaceID, "start_date", req.StartDate, "end_date", req.EndDate)
		s.observe(span, opCreate, start, err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"ad_space_id", booking.AdSpaceID,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
		"total_cost", booking.TotalCost.String(),
	)
	span.SetAttributes(attribute.String("booking.id", booking.ID))
	s.observe(span, opCreate, start, nil)
	s.publish(ctx, events.BookingCreated, booking)
	return booking, nil
}

// checkDates applies the calendar rules in order: future start, end after start,
// minimum span.
func (s *bookingService) checkDates(startDate, endDate, today model.Date) error {
	if !startDate.After(today) {
		return apperrors.Validation("start date must be in the future", nil)
	}
	if !endDate.After(startDate) {
		return apperrors.Validation("end date must be after start date", nil)
	}
	if model.InclusiveDays(startDate, endDate) < s.minBookingDays() {
		return apperrors.Validation(fmt.Sprintf("minimum booking duration is %d days", s.minBookingDays()), nil)
	}
	return nil
}

func (s *bookingService) minBookingDays() int {
	if s.cfg.MinBookingDays > 0 {
		return s.cfg.MinBookingDays
	}
	return config.DefaultMinBookingDays
}

// lockAdSpace takes the ad space lock and returns the ad space as read under
// it. The first read maps a missing id before the store is asked to lock it.
func (s *bookingService) lockAdSpace(txCtx context.Context, adSpaceID string) (*model.AdSpace, error) {
	if _, err := s.findAdSpace(txCtx, adSpaceID); err != nil {
		return nil, err
	}
	if err := s.lockRepo.Lock(txCtx, adSpaceID); err != nil {
		return nil, apperrors.Internal("Failed to lock ad space", err)
	}
	return s.findAdSpace(txCtx, adSpaceID)
}

func (s *bookingService) findAdSpace(txCtx context.Context, adSpaceID string) (*model.AdSpace, error) {
	adSpace, err := s.adSpaceRepo.FindByID(txCtx, adSpaceID)
	if err != nil {
		if errors.Is(err, adspaceserrors.ErrNotFound) || errors.Is(err, adspaceserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Ad space", adSpaceID)
		}
		return nil, apperrors.Internal("Failed to retrieve ad space", err)
	}
	return adSpace, nil
}

// checkNoApprovedOverlap must run after lockAdSpace in the same transaction.
func (s *bookingService) checkNoApprovedOverlap(txCtx context.Context, adSpaceID string, startDate, endDate model.Date) error {
	overlapping, err := s.repo.FindOverlapping(txCtx, adSpaceID, model.BookingApproved, startDate, endDate)
	if err != nil {
		return apperrors.Internal("Failed to check overlapping bookings", err)
	}
	if len(overlapping) > 0 {
		return apperrors.Validation("overlapping approved booking exists", map[string]any{
			"conflicting_booking_id": overlapping[0].ID,
		})
	}
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.GetByID", trace.WithAttributes(attribute.String("booking.id", id)))
	defer span.End()

	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		appErr := mapFindError(err, id)
		if appErr.Code == apperrors.CodeInternal {
			s.cfg.Log.Error("Failed to get booking by ID", "id", id, "error", err)
			span.RecordError(err)
		}
		return nil, appErr
	}

	return booking, nil
}

func mapFindError(err error, id string) *apperrors.AppError {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

func (s *bookingService) List(ctx context.Context, status *model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	if status != nil && !status.Valid() {
		return nil, 0, apperrors.InvalidInput("Invalid booking status: " + string(*status))
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	statusAttr := ""
	if status != nil {
		statusAttr = string(*status)
	}
	ctx, span := tracer.Start(ctx, "bookings.List", trace.WithAttributes(
		attribute.String("filter.status", statusAttr),
		attribute.Int("limit", limit),
		attribute.Int64("offset", offset),
	))
	defer span.End()

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByStatus(ctx, status)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "status", statusAttr, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByStatus(ctx, status, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"status", statusAttr,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
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

	return bookings, count, nil
}

// Approve marks a PENDING booking APPROVED and its ad space BOOKED. Other
// PENDING bookings of the ad space are left as they are.
func (s *bookingService) Approve(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, opApprove, id, model.BookingApproved, events.BookingApproved)
}

// Reject marks a PENDING booking REJECTED. The ad space is not touched.
func (s *bookingService) Reject(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, opReject, id, model.BookingRejected, events.BookingRejected)
}

func (s *bookingService) transition(ctx context.Context, op, id string, target model.BookingStatus, eventType events.EventType) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings."+op, trace.WithAttributes(attribute.String("booking.id", id)))
	defer span.End()
	start := time.Now()

	if id == "" {
		err := apperrors.InvalidInput("Booking ID cannot be empty")
		s.observe(span, op, start, err)
		return nil, err
	}

	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		booking = nil

		current, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return mapFindError(err, id)
		}

		if !current.Status.CanTransitionTo(target) {
			verb := "approved"
			if target == model.BookingRejected {
				verb = "rejected"
			}
			return apperrors.Validation(fmt.Sprintf("only PENDING bookings can be %s, current status: %s", verb, current.Status), nil)
		}

		if target == model.BookingApproved {
			adSpace, err := s.lockAdSpace(txCtx, current.AdSpaceID)
			if err != nil {
				return err
			}
			if err := s.checkNoApprovedOverlap(txCtx, adSpace.ID, current.StartDate, current.EndDate); err != nil {
				return err
			}
			adSpace.Status = model.AdSpaceBooked
			if err := s.adSpaceRepo.Update(txCtx, adSpace); err != nil {
				return apperrors.Internal("Failed to update ad space", err)
			}
		}

		current.Status = target
		if err := s.repo.Update(txCtx, current); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		booking = current
		return nil
	})
	if err != nil {
		s.logFailure(op, err, "id", id)
		s.observe(span, op, start, err)
		return nil, err
	}

	s.cfg.Log.Info("Booking status changed",
		"id", booking.ID,
		"ad_space_id", booking.AdSpaceID,
		"status", booking.Status,
	)
	s.observe(span, op, start, nil)
	s.publish(ctx, eventType, booking)
	return booking, nil
}

func (s *bookingService) sanitize(req *model.CreateBookingRequest) {
	req.AdSpaceID = sanitizer.TrimAndNormalize(req.AdSpaceID)
	req.AdvertiserName = sanitizer.NormalizeName(req.AdvertiserName)
	req.AdvertiserEmail = sanitizer.NormalizeEmail(req.AdvertiserEmail)
}

// publish runs after commit. The booking is already durable, so a broker
// failure is logged and counted but not returned.
func (s *bookingService) publish(ctx context.Context, eventType events.EventType, booking *model.Booking) {
	if err := s.publisher.Publish(ctx, eventType, booking); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

// logFailure logs client-caused rejections at Warn and everything else at Error.
func (s *bookingService) logFailure(op string, err error, attrs ...any) {
	attrs = append(attrs, "operation", op, "error", err)
	if isClientError(err) {
		s.cfg.Log.Warn("Booking operation rejected", attrs...)
		return
	}
	s.cfg.Log.Error("Booking operation failed", attrs...)
}

func (s *bookingService) observe(span trace.Span, op string, start time.Time, err error) {
	if err != nil && !isClientError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.metrics == nil {
		return
	}
	s.metrics.BookingOperations.WithLabelValues(op, metrics.Outcome(err, isClientError)).Inc()
	s.metrics.BookingDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func isClientError(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.StatusCode() < 500
}
