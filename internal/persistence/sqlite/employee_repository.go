package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// EmployeeRepository implements persistence.EmployeeRepository using SQLite.
type EmployeeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEmployeeRepository creates a new SQLite employee repository.
func NewEmployeeRepository(pool *ConnectionPool) *EmployeeRepository {
	return &EmployeeRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateEmployee inserts a new employee into the database.
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID == "" || strings.TrimSpace(employee.Email) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO employees (id, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		employee.ID,
		employee.Name,
		employee.Email,
		formatTime(employee.CreatedAt),
		formatTime(employee.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (r *EmployeeRepository) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	if id == "" {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return r.getEmployee(ctx, "id = ?", id)
}

// GetEmployeeByEmail retrieves an employee by email address. Lookup is
// case-insensitive to match how addresses are entered in forms.
func (r *EmployeeRepository) GetEmployeeByEmail(ctx context.Context, email string) (persistence.Employee, error) {
	if strings.TrimSpace(email) == "" {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return r.getEmployee(ctx, "email = ? COLLATE NOCASE", strings.TrimSpace(email))
}

func (r *EmployeeRepository) getEmployee(ctx context.Context, condition string, arg any) (persistence.Employee, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM employees
		WHERE ` + condition

	var employee persistence.Employee
	var createdAtStr, updatedAtStr string

	err := r.helper.QueryRow(ctx, query, arg).Scan(
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Employee{}, persistence.ErrNotFound
		}
		return persistence.Employee{}, r.mapper.MapError(err)
	}

	if employee.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Employee{}, err
	}
	if employee.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Employee{}, err
	}
	return employee, nil
}

// ListEmployees returns all employees ordered by name then ID.
func (r *EmployeeRepository) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM employees
		ORDER BY name ASC, id ASC
	`
	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var employees []persistence.Employee
	for rows.Next() {
		var employee persistence.Employee
		var createdAtStr, updatedAtStr string

		if err := rows.Scan(&employee.ID, &employee.Name, &employee.Email, &createdAtStr, &updatedAtStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if employee.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, err
		}
		if employee.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return employees, nil
}

// DeleteEmployee removes an employee by ID.
func (r *EmployeeRepository) DeleteEmployee(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
