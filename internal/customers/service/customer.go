package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	customererrors "roomly/internal/customers/errors"
	"roomly/internal/customers/repository"
	"roomly/internal/customers/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"

	"golang.org/x/crypto/bcrypt"
)

type CustomerService interface {
	Create(ctx context.Context, payload *model.NewCustomer) (*model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Customer, int64, error)
	Update(ctx context.Context, id string, updates *model.CustomerUpdate) (*model.Customer, error)
	Delete(ctx context.Context, id string) error
}

type customerService struct {
	repo      repository.CustomerRepository
	validator *validator.CustomerValidator
	cfg       *config.Config
}

func NewCustomerService(
	repo repository.CustomerRepository,
	customerValidator *validator.CustomerValidator,
	cfg *config.Config,
) CustomerService {
	return &customerService{
		repo:      repo,
		validator: customerValidator,
		cfg:       cfg,
	}
}

func (s *customerService) Create(ctx context.Context, payload *model.NewCustomer) (*model.Customer, error) {
	payload.Name = sanitizer.NormalizeName(payload.Name)
	payload.Email = sanitizer.NormalizeEmail(payload.Email)

	if err := s.validator.ValidateNew(payload); err != nil {
		s.cfg.Log.Warn("Customer validation failed", "error", err)
		return nil, apperrors.Validation("Customer validation failed", map[string]any{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		s.cfg.Log.Error("Failed to hash password", "error", err)
		return nil, apperrors.Internal("Failed to process password", err)
	}

	customer := &model.Customer{
		Name:         payload.Name,
		Email:        payload.Email,
		Age:          payload.Age,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, customererrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict(fmt.Sprintf("Email %s is already registered", customer.Email))
		}
		s.cfg.Log.Error("Failed to create customer", "email", customer.Email, "error", err)
		return nil, apperrors.Internal("Failed to create customer", err)
	}

	s.cfg.Log.Info("Customer created successfully", "id", customer.ID)
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "retrieve")
	}

	return customer, nil
}

func (s *customerService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Customer, int64, error) {
	var count int64
	var customers []*model.Customer
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count customers", "error", errCount)
			errCount = apperrors.Internal("Failed to count customers", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		customers, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list customers", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve customers", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return customers, count, nil
}

func (s *customerService) Update(ctx context.Context, id string, updates *model.CustomerUpdate) (*model.Customer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "load")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Customer update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Email != "" {
		merged.Email = sanitizer.NormalizeEmail(updates.Email)
	}
	if updates.Age != nil {
		merged.Age = *updates.Age
	}
	if updates.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(updates.Password), bcrypt.DefaultCost)
		if err != nil {
			s.cfg.Log.Error("Failed to hash password", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to process password", err)
		}
		merged.PasswordHash = string(hash)
	}

	if err := s.validator.Validate(&merged); err != nil {
		return nil, apperrors.Validation("Customer validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		if errors.Is(err, customererrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict(fmt.Sprintf("Email %s is already registered", merged.Email))
		}
		s.cfg.Log.Error("Failed to update customer", "id", id, "error", err)
		return nil, s.mapRepoError(err, id, "update")
	}

	merged.ID = id
	s.cfg.Log.Info("Customer updated successfully", "id", id)
	return &merged, nil
}

func (s *customerService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Customer ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "delete")
	}

	s.cfg.Log.Info("Customer deleted successfully", "id", id)
	return nil
}

func (s *customerService) mapRepoError(err error, id, action string) error {
	if errors.Is(err, customererrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Customer", id)
	}
	if errors.Is(err, customererrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid customer ID format")
	}
	return apperrors.Internal(fmt.Sprintf("Failed to %s customer", action), err)
}
