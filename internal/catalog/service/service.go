package service

import (
	catalogerrors "agendo/internal/catalog/errors"
	"agendo/internal/catalog/repository"
	"agendo/internal/catalog/validator"
	"agendo/pkg/config"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/model"
	"agendo/pkg/sanitizer"
	"agendo/pkg/tenant"
	"context"
	"errors"
	"sync"
)

type CatalogService interface {
	Create(ctx context.Context, scope tenant.Scope, svc *model.Service) error
	GetByID(ctx context.Context, scope tenant.Scope, id string) (*model.Service, error)
	GetAll(ctx context.Context, scope tenant.Scope, limit int, offset int64) ([]*model.Service, int64, error)
	Update(ctx context.Context, scope tenant.Scope, id string, updates *model.ServiceUpdate) (*model.Service, error)
	// GetActiveService resolves a bookable service. Missing and inactive
	// services are both reported as SERVICE_NOT_FOUND.
	GetActiveService(ctx context.Context, scope tenant.Scope, id string) (*model.Service, error)
}

type catalogService struct {
	repo      repository.ServiceRepository
	validator *validator.ServiceValidator
	cfg       *config.Config
}

func NewCatalogService(
	repo repository.ServiceRepository,
	validator *validator.ServiceValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *catalogService) Create(ctx context.Context, scope tenant.Scope, svc *model.Service) error {
	if err := scope.Check(); err != nil {
		return apperrors.TenantRequired(err)
	}

	svc.ID = ""
	svc.Name = sanitizer.TrimAndNormalize(svc.Name)
	if err := s.validator.Validate(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed", "tenant_id", scope.TenantID(), "error", err)
		return apperrors.Validation("Service validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, scope, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", "tenant_id", scope.TenantID(), "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully",
		"id", svc.ID,
		"tenant_id", svc.TenantID,
		"duration_min", svc.DurationMin,
		"price", svc.Price,
	)
	return nil
}

func (s *catalogService) GetByID(ctx context.Context, scope tenant.Scope, id string) (*model.Service, error) {
	if err := scope.Check(); err != nil {
		return nil, apperrors.TenantRequired(err)
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to get service by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}
	return svc, nil
}

func (s *catalogService) GetAll(ctx context.Context, scope tenant.Scope, limit int, offset int64) ([]*model.Service, int64, error) {
	if err := scope.Check(); err != nil {
		return nil, 0, apperrors.TenantRequired(err)
	}

	var count int64
	var services []*model.Service
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, scope)
	}()

	go func() {
		defer wg.Done()
		services, errFind = s.repo.FindAll(ctx, scope, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		s.cfg.Log.Error("Failed to count services", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count services", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to list services", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve services", errFind)
	}
	return services, count, nil
}

// Update never touches bookings: their price is a snapshot taken at booking
// time.
func (s *catalogService) Update(ctx context.Context, scope tenant.Scope, id string, updates *model.ServiceUpdate) (*model.Service, error) {
	existing, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = sanitizer.TrimAndNormalize(updates.Name)
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}
	if err := s.validator.Validate(&merged); err != nil {
		return nil, apperrors.Validation("Service validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, scope, id, &merged); err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		s.cfg.Log.Error("Failed to update service", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update service", err)
	}

	s.cfg.Log.Info("Service updated successfully", "id", id, "tenant_id", scope.TenantID())
	return &merged, nil
}

func (s *catalogService) GetActiveService(ctx context.Context, scope tenant.Scope, id string) (*model.Service, error) {
	if err := scope.Check(); err != nil {
		return nil, apperrors.TenantRequired(err)
	}

	svc, err := s.repo.FindByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.ServiceNotFound(id, err)
		}
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}
	if !svc.Active {
		return nil, apperrors.ServiceNotFound(id, catalogerrors.ErrNotFound)
	}
	return svc, nil
}
