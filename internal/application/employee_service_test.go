package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

type employeeStoreStub struct {
	createFn     func(ctx context.Context, employee persistence.Employee) error
	getFn        func(ctx context.Context, id string) (persistence.Employee, error)
	getByEmailFn func(ctx context.Context, email string) (persistence.Employee, error)
	listFn       func(ctx context.Context) ([]persistence.Employee, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (s *employeeStoreStub) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, employee)
}

func (s *employeeStoreStub) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	if s.getFn == nil {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return s.getFn(ctx, id)
}

func (s *employeeStoreStub) GetEmployeeByEmail(ctx context.Context, email string) (persistence.Employee, error) {
	if s.getByEmailFn == nil {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return s.getByEmailFn(ctx, email)
}

func (s *employeeStoreStub) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s *employeeStoreStub) DeleteEmployee(ctx context.Context, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, id)
}

func TestEmployeeService_CreateEmployee(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.September, 1, 8, 0, 0, 0, time.UTC)
	var created persistence.Employee
	store := &employeeStoreStub{createFn: func(_ context.Context, employee persistence.Employee) error {
		created = employee
		return nil
	}}

	service := NewEmployeeService(store, sequenceIDs("emp-1"), fixedClock(now))

	employee, err := service.CreateEmployee(context.Background(), CreateEmployeeParams{
		Input: EmployeeInput{Name: "  Dana Silva  ", Email: " dana@example.com "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if employee.ID != "emp-1" || employee.Name != "Dana Silva" || employee.Email != "dana@example.com" {
		t.Fatalf("unexpected employee %+v", employee)
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("created_at not taken from the clock: %+v", created)
	}
}

func TestEmployeeService_CreateEmployeeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input EmployeeInput
		field string
	}{
		{name: "missing name", input: EmployeeInput{Email: "dana@example.com"}, field: "name"},
		{name: "missing email", input: EmployeeInput{Name: "Dana Silva"}, field: "email"},
		{name: "malformed email", input: EmployeeInput{Name: "Dana Silva", Email: "not-an-address"}, field: "email"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := NewEmployeeService(&employeeStoreStub{}, nil, nil)

			_, err := service.CreateEmployee(context.Background(), CreateEmployeeParams{Input: tt.input})

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tt.field]; !ok {
				t.Fatalf("missing field error for %q: %v", tt.field, vErr.FieldErrors)
			}
		})
	}
}

func TestEmployeeService_CreateEmployeeDuplicateEmail(t *testing.T) {
	t.Parallel()

	store := &employeeStoreStub{createFn: func(_ context.Context, _ persistence.Employee) error {
		return persistence.ErrDuplicate
	}}
	service := NewEmployeeService(store, sequenceIDs("emp-1"), nil)

	_, err := service.CreateEmployee(context.Background(), CreateEmployeeParams{
		Input: EmployeeInput{Name: "Dana Silva", Email: "dana@example.com"},
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestEmployeeService_GetEmployeeNotFound(t *testing.T) {
	t.Parallel()

	service := NewEmployeeService(&employeeStoreStub{}, nil, nil)

	if _, err := service.GetEmployee(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.GetEmployeeByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
