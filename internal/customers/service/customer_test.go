package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	customererrors "roomly/internal/customers/errors"
	"roomly/internal/customers/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

type fakeCustomerRepository struct {
	customers map[string]*model.Customer
	nextID    int
}

func newFakeCustomerRepository() *fakeCustomerRepository {
	return &fakeCustomerRepository{customers: make(map[string]*model.Customer)}
}

func (f *fakeCustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	for _, c := range f.customers {
		if c.Email == customer.Email {
			return fmt.Errorf("%w: %s", customererrors.ErrDuplicateEmail, customer.Email)
		}
	}
	f.nextID++
	customer.ID = fmt.Sprintf("64%022d", f.nextID)
	customer.CreatedAt = time.Now().UTC()
	stored := *customer
	f.customers[customer.ID] = &stored
	return nil
}

func (f *fakeCustomerRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, customererrors.ErrNotFound
	}
	found := *customer
	return &found, nil
}

func (f *fakeCustomerRepository) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	for _, c := range f.customers {
		if c.Email == email {
			found := *c
			return &found, nil
		}
	}
	return nil, customererrors.ErrNotFound
}

func (f *fakeCustomerRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Customer, error) {
	var out []*model.Customer
	for _, c := range f.customers {
		found := *c
		out = append(out, &found)
	}
	return out, nil
}

func (f *fakeCustomerRepository) Update(ctx context.Context, id string, customer *model.Customer) error {
	if _, ok := f.customers[id]; !ok {
		return customererrors.ErrNotFound
	}
	for otherID, c := range f.customers {
		if otherID != id && c.Email == customer.Email {
			return fmt.Errorf("%w: %s", customererrors.ErrDuplicateEmail, customer.Email)
		}
	}
	stored := *customer
	stored.ID = id
	f.customers[id] = &stored
	return nil
}

func (f *fakeCustomerRepository) Delete(ctx context.Context, id string) error {
	if _, ok := f.customers[id]; !ok {
		return customererrors.ErrNotFound
	}
	delete(f.customers, id)
	return nil
}

func (f *fakeCustomerRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(f.customers)), nil
}

func newTestCustomerService(t *testing.T) (CustomerService, *fakeCustomerRepository) {
	t.Helper()

	log := logger.New(logger.Config{Output: io.Discard})
	cfg := &config.Config{Log: log}
	repo := newFakeCustomerRepository()
	svc := NewCustomerService(repo, validator.NewCustomerValidator(log), cfg)
	return svc, repo
}

func validPayload() *model.NewCustomer {
	return &model.NewCustomer{
		Name:     "Jamie Rivera",
		Email:    "jamie@example.com",
		Age:      34,
		Password: "correct horse battery",
	}
}

func TestCreateCustomer(t *testing.T) {
	svc, _ := newTestCustomerService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, validPayload())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if customer.ID == "" {
		t.Error("created customer has no ID")
	}
	if customer.PasswordHash == "" || customer.PasswordHash == "correct horse battery" {
		t.Error("password was not hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Errorf("stored hash does not verify the password: %v", err)
	}
}

func TestCreateCustomerNormalizesEmail(t *testing.T) {
	svc, _ := newTestCustomerService(t)
	ctx := context.Background()

	payload := validPayload()
	payload.Email = "  Jamie@Example.COM "
	customer, err := svc.Create(ctx, payload)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if customer.Email != "jamie@example.com" {
		t.Errorf("email = %q, want lowercase trimmed", customer.Email)
	}
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	svc, _ := newTestCustomerService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validPayload()); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	payload := validPayload()
	payload.Name = "Other Guest"
	_, err := svc.Create(ctx, payload)
	if err == nil {
		t.Fatal("duplicate email accepted")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("got %v, want conflict", err)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := newTestCustomerService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.NewCustomer)
	}{
		{"bad email", func(p *model.NewCustomer) { p.Email = "not-an-email" }},
		{"underage", func(p *model.NewCustomer) { p.Age = 17 }},
		{"short password", func(p *model.NewCustomer) { p.Password = "short" }},
		{"short name", func(p *model.NewCustomer) { p.Name = "J" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			_, err := svc.Create(ctx, payload)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeValidation {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestUpdateCustomerPasswordRehashed(t *testing.T) {
	svc, _ := newTestCustomerService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, validPayload())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	originalHash := customer.PasswordHash

	updated, err := svc.Update(ctx, customer.ID, &model.CustomerUpdate{Password: "a brand new secret"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.PasswordHash == originalHash {
		t.Error("password hash unchanged after password update")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("a brand new secret")); err != nil {
		t.Errorf("new hash does not verify the new password: %v", err)
	}
}

func TestUpdateCustomerKeepsHashWhenPasswordOmitted(t *testing.T) {
	svc, _ := newTestCustomerService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, validPayload())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.Update(ctx, customer.ID, &model.CustomerUpdate{Name: "Jamie R."})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.PasswordHash != customer.PasswordHash {
		t.Error("password hash changed by a patch that did not touch the password")
	}
	if updated.Name != "Jamie R." {
		t.Errorf("name = %q, want %q", updated.Name, "Jamie R.")
	}
}

func TestDeleteCustomerNotFound(t *testing.T) {
	svc, _ := newTestCustomerService(t)

	err := svc.Delete(context.Background(), "640000000000000000000099")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("got %v, want not found", err)
	}
}
