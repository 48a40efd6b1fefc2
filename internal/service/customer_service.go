package service

import (
	"context"
	"errors"
	"fmt"

	"frameguru/internal/models"
	"frameguru/internal/store"
	"frameguru/internal/util"

	"go.uber.org/zap"
)

// ErrDuplicateEmail is returned when a customer email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// CustomerService manages customer accounts and contact preferences.
type CustomerService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCustomerService creates a customer service.
func NewCustomerService(st *store.Store) *CustomerService {
	return &CustomerService{
		store:  st,
		logger: util.GetLogger(),
	}
}

// CreateCustomer registers a new customer. Email must be unique.
func (s *CustomerService) CreateCustomer(ctx context.Context, c *models.Customer) error {
	ctx, span := util.StartSpan(ctx, "CustomerService.CreateCustomer")
	defer span.End()

	existing, err := s.store.GetCustomerByEmail(ctx, c.Email)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if existing != nil {
		return ErrDuplicateEmail
	}

	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return err
	}

	s.logger.Info("Customer created",
		zap.Int64("customer_id", c.ID),
		zap.String("email", c.Email))
	return nil
}

// GetCustomer returns a customer by ID.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.store.GetCustomerByID(ctx, id)
}

// UpdateCustomer updates a customer's profile and notification preferences.
// A changed email must not collide with another account.
func (s *CustomerService) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	ctx, span := util.StartSpan(ctx, "CustomerService.UpdateCustomer")
	defer span.End()

	existing, err := s.store.GetCustomerByEmail(ctx, c.Email)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if existing != nil && existing.ID != c.ID {
		return ErrDuplicateEmail
	}

	return s.store.UpdateCustomer(ctx, c)
}
