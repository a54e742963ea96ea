package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// EmployeeStore captures the persistence operations needed by the employee service.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, employee persistence.Employee) error
	GetEmployee(ctx context.Context, id string) (persistence.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (persistence.Employee, error)
	ListEmployees(ctx context.Context) ([]persistence.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// EmployeeService orchestrates validation and persistence for the employee
// directory.
type EmployeeService struct {
	employees   EmployeeStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEmployeeService wires dependencies for the employee service.
func NewEmployeeService(employees EmployeeStore, idGenerator func() string, now func() time.Time) *EmployeeService {
	return NewEmployeeServiceWithLogger(employees, idGenerator, now, nil)
}

// NewEmployeeServiceWithLogger constructs an employee service with a specified logger.
func NewEmployeeServiceWithLogger(employees EmployeeStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EmployeeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EmployeeService{employees: employees, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *EmployeeService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EmployeeService", operation, attrs...)
}

// CreateEmployee validates input and registers a new directory entry.
func (s *EmployeeService) CreateEmployee(ctx context.Context, params CreateEmployeeParams) (employee Employee, err error) {
	if s == nil {
		err = fmt.Errorf("EmployeeService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateEmployee")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create employee", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("employee_id", employee.ID).InfoContext(ctx, "employee created")
	}()

	normalized := normalizeEmployeeInput(params.Input)
	vErr := validateEmployeeInput(normalized)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	record := persistence.Employee{
		ID:        s.idGenerator(),
		Name:      normalized.Name,
		Email:     normalized.Email,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if s.employees == nil {
		employee = toEmployee(record)
		return
	}

	if err = s.employees.CreateEmployee(ctx, record); err != nil {
		err = mapDirectoryError(err)
		return
	}

	employee = toEmployee(record)
	return
}

// GetEmployee returns a single directory entry by ID.
func (s *EmployeeService) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	if s.employees == nil {
		return Employee{}, fmt.Errorf("employee store not configured")
	}

	stored, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return Employee{}, mapDirectoryError(err)
	}
	return toEmployee(stored), nil
}

// GetEmployeeByEmail returns a single directory entry by email address.
func (s *EmployeeService) GetEmployeeByEmail(ctx context.Context, email string) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	if s.employees == nil {
		return Employee{}, fmt.Errorf("employee store not configured")
	}

	stored, err := s.employees.GetEmployeeByEmail(ctx, email)
	if err != nil {
		return Employee{}, mapDirectoryError(err)
	}
	return toEmployee(stored), nil
}

// ListEmployees returns the directory ordered by name.
func (s *EmployeeService) ListEmployees(ctx context.Context) (employees []Employee, err error) {
	if s == nil {
		err = fmt.Errorf("EmployeeService is nil")
		return
	}
	if s.employees == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListEmployees")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list employees", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(employees)).InfoContext(ctx, "employees listed")
	}()

	var stored []persistence.Employee
	stored, err = s.employees.ListEmployees(ctx)
	if err != nil {
		err = mapDirectoryError(err)
		return
	}

	employees = make([]Employee, len(stored))
	for i, record := range stored {
		employees[i] = toEmployee(record)
	}
	return
}

// DeleteEmployee removes a directory entry.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, employeeID string) error {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	if s.employees == nil {
		return fmt.Errorf("employee store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEmployee", "employee_id", employeeID)

	if err := s.employees.DeleteEmployee(ctx, employeeID); err != nil {
		err = mapDirectoryError(err)
		logger.ErrorContext(ctx, "failed to delete employee", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "employee deleted")
	return nil
}

func normalizeEmployeeInput(input EmployeeInput) EmployeeInput {
	return EmployeeInput{
		Name:  strings.TrimSpace(input.Name),
		Email: strings.TrimSpace(input.Email),
	}
}

func validateEmployeeInput(input EmployeeInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "must be a valid email address")
	}

	return vErr
}
