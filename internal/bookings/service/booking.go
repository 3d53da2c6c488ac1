package service

import (
	bookingserrors "agendo/internal/bookings/errors"
	"agendo/internal/bookings/events"
	"agendo/internal/bookings/repository"
	"agendo/internal/bookings/validator"
	"agendo/pkg/config"
	mongotx "agendo/pkg/db/mongo"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/metrics"
	"agendo/pkg/model"
	"agendo/pkg/sanitizer"
	"agendo/pkg/tenant"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ServiceCatalog supplies duration and price for a bookable service.
type ServiceCatalog interface {
	GetActiveService(ctx context.Context, scope tenant.Scope, id string) (*model.Service, error)
}

type BookingService interface {
	Create(ctx context.Context, tenantID string, req *model.BookingRequest) (*model.Booking, error)
	Update(ctx context.Context, tenantID string, bookingID string, changes *model.BookingChanges) (*model.Booking, error)
	UpdateStatus(ctx context.Context, tenantID string, bookingID string, status model.BookingStatus) (*model.Booking, error)
	GetByID(ctx context.Context, tenantID string, bookingID string) (*model.Booking, error)
	Search(ctx context.Context, tenantID string, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	catalog   ServiceCatalog
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	catalog ServiceCatalog,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		catalog:   catalog,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, tenantID string, req *model.BookingRequest) (*model.Booking, error) {
	scope, err := tenant.NewScope(tenantID)
	if err != nil {
		return nil, apperrors.TenantRequired(err)
	}

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "tenant_id", scope.TenantID(), "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	svc, err := s.catalog.GetActiveService(ctx, scope, req.ServiceID)
	if err != nil {
		s.reject(err)
		return nil, err
	}

	booking := &model.Booking{
		CustomerID:     req.CustomerID,
		ServiceID:      svc.ID,
		ProfessionalID: req.ProfessionalID,
		UserID:         req.UserID,
		Status:         model.StatusPending,
		Notes:          sanitizer.NormalizeNotes(req.Notes),
	}
	applyService(booking, svc, req.StartTime)

	if err := s.validate(booking); err != nil {
		return nil, err
	}

	resource := booking.Resource()
	err = s.commit(ctx, scope, resource, func(txCtx context.Context) error {
		if err := s.checkConflicts(txCtx, scope, booking, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, scope, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.reject(err)
		s.cfg.Log.Warn("Failed to create booking",
			"tenant_id", scope.TenantID(),
			"resource", resource.String(),
			"start_time", booking.StartTime,
			"error", err,
		)
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publisher.Publish(ctx, events.BookingEvent{
		Type:     events.EventCreated,
		TenantID: scope.TenantID(),
		Booking:  booking,
	})
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"tenant_id", booking.TenantID,
		"resource", resource.String(),
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, tenantID string, bookingID string, changes *model.BookingChanges) (*model.Booking, error) {
	scope, err := tenant.NewScope(tenantID)
	if err != nil {
		return nil, apperrors.TenantRequired(err)
	}
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateChanges(changes); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", bookingID, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.find(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}
	if existing.Status.Terminal() {
		return nil, apperrors.InvalidTransition(string(existing.Status), "rescheduled", bookingserrors.ErrInvalidTransition)
	}

	serviceID := existing.ServiceID
	if changes.ServiceID != nil {
		serviceID = *changes.ServiceID
	}
	svc, err := s.catalog.GetActiveService(ctx, scope, serviceID)
	if err != nil {
		s.reject(err)
		return nil, err
	}

	resource := mergeBookingChanges(existing, changes, svc).Resource()

	var updated *model.Booking
	err = s.commit(ctx, scope, resource, func(txCtx context.Context) error {
		// Re-read inside the unit of work so the merge starts from committed state.
		current, err := s.find(txCtx, scope, bookingID)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return apperrors.InvalidTransition(string(current.Status), "rescheduled", bookingserrors.ErrInvalidTransition)
		}

		// svc was resolved from the pre-read; a service changed since then
		// must not be silently reverted.
		if changes.ServiceID == nil && current.ServiceID != existing.ServiceID {
			return apperrors.ConcurrentWriteConflict("Booking was modified concurrently, please retry", bookingserrors.ErrModifiedConcurrently)
		}
		merged := mergeBookingChanges(current, changes, svc)
		if merged.Resource() != resource {
			return apperrors.ConcurrentWriteConflict("Booking was modified concurrently, please retry", bookingserrors.ErrModifiedConcurrently)
		}
		if err := s.validate(merged); err != nil {
			return err
		}
		if err := s.checkConflicts(txCtx, scope, merged, merged.ID); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, scope, merged); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", bookingID)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		updated = merged
		return nil
	})
	if err != nil {
		s.reject(err)
		s.cfg.Log.Warn("Failed to update booking", "id", bookingID, "tenant_id", scope.TenantID(), "error", err)
		return nil, err
	}

	eventType := events.EventUpdated
	if changes.Reschedules() {
		eventType = events.EventRescheduled
		metrics.IncBookingRescheduled()
	}
	s.publisher.Publish(ctx, events.BookingEvent{
		Type:     eventType,
		TenantID: scope.TenantID(),
		Booking:  updated,
	})
	s.cfg.Log.Info("Booking updated successfully",
		"id", updated.ID,
		"tenant_id", updated.TenantID,
		"resource", resource.String(),
		"start_time", updated.StartTime,
		"end_time", updated.EndTime,
	)
	return updated, nil
}

// UpdateStatus moves a booking through its lifecycle. It never checks for
// conflicts: no allowed transition grows the set of occupied intervals, and
// a cancellation must always succeed.
func (s *bookingService) UpdateStatus(ctx context.Context, tenantID string, bookingID string, status model.BookingStatus) (*model.Booking, error) {
	scope, err := tenant.NewScope(tenantID)
	if err != nil {
		return nil, apperrors.TenantRequired(err)
	}
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateStatus(&model.BookingStatusChange{Status: status}); err != nil {
		return nil, apperrors.Validation("Invalid status", map[string]any{"error": err.Error()})
	}

	existing, err := s.find(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}
	from := existing.Status
	if !from.CanTransitionTo(status) {
		return nil, apperrors.InvalidTransition(string(from), string(status), bookingserrors.ErrInvalidTransition)
	}

	if err := s.repo.UpdateStatus(ctx, scope, bookingID, from, status); err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrInvalidTransition):
			return nil, apperrors.InvalidTransition(string(from), string(status), err)
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		s.cfg.Log.Error("Failed to update booking status", "id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	existing.Status = status
	existing.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	metrics.IncStatusTransition(string(from), string(status))
	s.publisher.Publish(ctx, events.BookingEvent{
		Type:           events.EventStatusChanged,
		TenantID:       scope.TenantID(),
		Booking:        existing,
		PreviousStatus: from,
	})
	s.cfg.Log.Info("Booking status changed",
		"id", bookingID,
		"tenant_id", scope.TenantID(),
		"from", from,
		"to", status,
	)
	return existing, nil
}

func (s *bookingService) GetByID(ctx context.Context, tenantID string, bookingID string) (*model.Booking, error) {
	scope, err := tenant.NewScope(tenantID)
	if err != nil {
		return nil, apperrors.TenantRequired(err)
	}
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	return s.find(ctx, scope, bookingID)
}

func (s *bookingService) Search(ctx context.Context, tenantID string, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	scope, err := tenant.NewScope(tenantID)
	if err != nil {
		return nil, 0, apperrors.TenantRequired(err)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status filter: %s", filter.Status))
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, 0, apperrors.InvalidInput("'to' must be after 'from'")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, scope, filter)
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Search(ctx, scope, filter, limit, offset)
	}()

	wg.Wait()

	if errCount != nil {
		s.cfg.Log.Error("Failed to count bookings", "tenant_id", scope.TenantID(), "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count bookings", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to search bookings",
			"tenant_id", scope.TenantID(),
			"limit", limit,
			"offset", offset,
			"error", errFind,
		)
		return nil, 0, apperrors.Internal("Failed to search bookings", errFind)
	}

	s.cfg.Log.Debug("Booking search completed",
		"tenant_id", scope.TenantID(),
		"count", len(bookings),
		"total_count", count,
	)
	return bookings, count, nil
}

// --- Helpers ---

// commit runs fn as one unit of work while holding the advisory lock on
// resource. Bookings without a resource skip the lock.
//
// The unit of work has to finish before the lock can expire: its context
// ends lockMargin ahead of the lock expiry, and its first write renews the
// lock under the acquisition's owner token.
func (s *bookingService) commit(ctx context.Context, scope tenant.Scope, resource model.Resource, fn mongotx.TransactionFunc) error {
	if resource.IsZero() {
		return s.execute(ctx, fn)
	}

	ttl := s.cfg.BookingLockTTL
	lock, err := s.lockRepo.Acquire(ctx, scope, resource, ttl)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			metrics.IncLockAcquisition(metrics.LockContended)
			return apperrors.ConcurrentWriteConflict("This resource is being booked by another request, please retry", err)
		}
		metrics.IncLockAcquisition(metrics.LockFailed)
		return apperrors.Internal("Failed to acquire booking lock", err)
	}
	metrics.IncLockAcquisition(metrics.LockAcquired)
	defer func() {
		if releaseErr := s.lockRepo.Release(context.WithoutCancel(ctx), scope, lock); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	txCtx, cancel := context.WithDeadline(ctx, lock.ExpiresAt.Add(-lockMargin(ttl)))
	defer cancel()

	err = s.execute(txCtx, func(sessCtx context.Context) error {
		if err := s.lockRepo.Renew(sessCtx, scope, lock, ttl); err != nil {
			return err
		}
		return fn(sessCtx)
	})
	if err != nil && ctx.Err() == nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) {
		err = apperrors.ConcurrentWriteConflict("Booking lock expired before the write committed, please retry", bookingserrors.ErrLockLost)
	}
	if apperrors.HasCode(err, apperrors.CodeConcurrentWriteConflict) && errors.Is(err, bookingserrors.ErrLockLost) {
		metrics.IncLockAcquisition(metrics.LockLost)
		s.cfg.Log.Warn("Booking lock lost before commit", "lock_id", lock.ID, "tenant_id", scope.TenantID())
	}
	return err
}

func (s *bookingService) execute(ctx context.Context, fn mongotx.TransactionFunc) error {
	start := time.Now()
	err := s.repo.ExecuteTransaction(ctx, fn)
	metrics.ObserveTransaction(time.Since(start).Seconds(), err)
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, bookingserrors.ErrLockLost):
		return apperrors.ConcurrentWriteConflict("Booking lock was taken over before the write committed, please retry", err)
	case errors.Is(err, mongotx.ErrTransactionConflict):
		return apperrors.ConcurrentWriteConflict("Booking write lost a race with another request, please retry", err)
	}
	return apperrors.Internal("Failed to commit booking", err)
}

// lockMargin is the slack kept between the end of a unit of work and the
// expiry of the lock guarding it.
func lockMargin(ttl time.Duration) time.Duration {
	return ttl / 5
}

func (s *bookingService) checkConflicts(ctx context.Context, scope tenant.Scope, booking *model.Booking, excludeID string) error {
	resource := booking.Resource()
	if resource.IsZero() {
		return nil
	}

	existing, err := s.repo.FindOverlapping(ctx, scope, resource, booking.StartTime, booking.EndTime, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	conflict := FindConflict(resource, booking.StartTime, booking.EndTime, excludeID, existing)
	if conflict == nil {
		return nil
	}
	return apperrors.SchedulingConflict(
		fmt.Sprintf("Booking time overlaps with existing booking (%s - %s)",
			conflict.StartTime.Format(time.RFC3339),
			conflict.EndTime.Format(time.RFC3339),
		),
		map[string]any{
			"conflicting_booking_id": conflict.ID,
			"resource":               resource.String(),
			"start_time":             conflict.StartTime,
			"end_time":               conflict.EndTime,
		},
		bookingserrors.ErrTimeConflict,
	)
}

func (s *bookingService) find(ctx context.Context, scope tenant.Scope, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) reject(err error) {
	for _, code := range []string{
		apperrors.CodeSchedulingConflict,
		apperrors.CodeConcurrentWriteConflict,
		apperrors.CodeServiceNotFound,
	} {
		if apperrors.HasCode(err, code) {
			metrics.IncBookingRejected(code)
			return
		}
	}
}

// applyService derives end time and price. Instants are stored in UTC at
// millisecond precision, which is what Mongo keeps.
func applyService(b *model.Booking, svc *model.Service, start time.Time) {
	b.ServiceID = svc.ID
	b.StartTime = start.UTC().Truncate(time.Millisecond)
	b.EndTime = b.StartTime.Add(svc.Duration())
	b.Price = svc.Price
}

func mergeBookingChanges(existing *model.Booking, changes *model.BookingChanges, svc *model.Service) *model.Booking {
	merged := *existing

	if changes.CustomerID != nil {
		merged.CustomerID = *changes.CustomerID
	}
	if changes.ProfessionalID != nil {
		merged.ProfessionalID = *changes.ProfessionalID
	}
	if changes.UserID != nil {
		merged.UserID = *changes.UserID
	}
	if changes.Notes != nil {
		merged.Notes = sanitizer.NormalizeNotes(*changes.Notes)
	}

	start := existing.StartTime
	if changes.StartTime != nil {
		start = *changes.StartTime
	}
	applyService(&merged, svc, start)

	return &merged
}
