package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const departmentColumns = "name, phone, office_no, college_name, hod_lecturer_id, version, created_at, updated_at"

// DepartmentRepository handles persistence for departments and their
// lecturer membership.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository instantiates a department repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments ordered by name, memberships included.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments ORDER BY name", departmentColumns)
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	for i := range departments {
		if err := r.loadMembers(ctx, &departments[i]); err != nil {
			return nil, err
		}
	}
	return departments, nil
}

// FindByName loads a department with its lecturer membership.
func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*models.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM departments WHERE name = $1", departmentColumns)
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, name); err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, &dept); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) loadMembers(ctx context.Context, dept *models.Department) error {
	if err := r.db.SelectContext(ctx, &dept.LecturerIDs, `SELECT lecturer_id FROM department_lecturers WHERE department_name = $1 ORDER BY lecturer_id`, dept.Name); err != nil {
		return fmt.Errorf("load department members: %w", err)
	}
	return nil
}

// Create inserts a department and its membership rows in one transaction.
func (r *DepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	now := time.Now().UTC()
	dept.Version = 1
	dept.CreatedAt = now
	dept.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin department tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO departments (name, phone, office_no, college_name, hod_lecturer_id, version, created_at, updated_at)
		VALUES (:name, :phone, :office_no, :college_name, :hod_lecturer_id, :version, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, dept); err != nil {
		return fmt.Errorf("create department: %w", err)
	}

	for _, lecturerID := range dept.LecturerIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO department_lecturers (department_name, lecturer_id) VALUES ($1, $2)`, dept.Name, lecturerID); err != nil {
			return fmt.Errorf("add department member: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit department tx: %w", err)
	}
	return nil
}

// Update rewrites a department and its membership under a version gate.
func (r *DepartmentRepository) Update(ctx context.Context, dept *models.Department) error {
	dept.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin department update tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE departments SET phone = :phone, office_no = :office_no, college_name = :college_name, hod_lecturer_id = :hod_lecturer_id, version = version + 1, updated_at = :updated_at
		WHERE name = :name AND version = :version`
	res, err := tx.NamedExecContext(ctx, query, dept)
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM departments WHERE name = $1", dept.Name)
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM department_lecturers WHERE department_name = $1`, dept.Name); err != nil {
		return fmt.Errorf("clear department members: %w", err)
	}
	for _, lecturerID := range dept.LecturerIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO department_lecturers (department_name, lecturer_id) VALUES ($1, $2)`, dept.Name, lecturerID); err != nil {
			return fmt.Errorf("add department member: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit department update tx: %w", err)
	}
	dept.Version++
	return nil
}

// Delete removes a department with its membership, courses and weak student
// references in one transaction.
func (r *DepartmentRepository) Delete(ctx context.Context, name string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin department delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE departments SET version = version WHERE name = $1 AND version = $2`, name, version)
	if err != nil {
		return fmt.Errorf("check department version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check department version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM departments WHERE name = $1", name)
		return err
	}

	if err = cascadeDepartment(ctx, tx, name); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit department delete tx: %w", err)
	}
	return nil
}

func cascadeDepartment(ctx context.Context, tx *sqlx.Tx, name string) error {
	steps := []struct {
		desc  string
		query string
	}{
		{"null student minors", `UPDATE student_records SET minor_department = NULL WHERE minor_department = $1`},
		{"null student majors", `UPDATE student_records SET major_department = NULL WHERE major_department = $1`},
		{"null course sessions", `UPDATE sessions SET course_code = NULL WHERE course_code IN (SELECT code FROM courses WHERE department_name = $1)`},
		{"delete courses", `DELETE FROM courses WHERE department_name = $1`},
		{"remove membership", `DELETE FROM department_lecturers WHERE department_name = $1`},
		{"delete department", `DELETE FROM departments WHERE name = $1`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, name); err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
	}
	return nil
}
