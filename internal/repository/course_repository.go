package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const courseColumns = "code, name, department_name, description, version, created_at, updated_at"

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository instantiates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses of a department, or every course when the
// department filter is empty.
func (r *CourseRepository) List(ctx context.Context, departmentName string) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses", courseColumns)
	var args []interface{}
	if departmentName != "" {
		query += " WHERE department_name = $1"
		args = append(args, departmentName)
	}
	query += " ORDER BY code"

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByCode loads a course by code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE code = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// ExistsByName checks the course-name uniqueness constraint.
func (r *CourseRepository) ExistsByName(ctx context.Context, name, excludeCode string) (bool, error) {
	base := "SELECT 1 FROM courses WHERE name = $1"
	args := []interface{}{name}
	if excludeCode != "" {
		base += " AND code <> $2"
		args = append(args, excludeCode)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course name uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.Version = 1
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `INSERT INTO courses (code, name, department_name, description, version, created_at, updated_at)
		VALUES (:code, :name, :department_name, :description, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update applies a versioned write to a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()

	const query = `UPDATE courses SET name = :name, department_name = :department_name, description = :description, version = version + 1, updated_at = :updated_at
		WHERE code = :code AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if rows == 0 {
		return staleWrite(ctx, r.db, "SELECT 1 FROM courses WHERE code = $1", course.Code)
	}
	course.Version++
	return nil
}

// Delete removes a course, nulling session references in one transaction.
func (r *CourseRepository) Delete(ctx context.Context, code string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE courses SET version = version WHERE code = $1 AND version = $2`, code, version)
	if err != nil {
		return fmt.Errorf("check course version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check course version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM courses WHERE code = $1", code)
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE sessions SET course_code = NULL WHERE course_code = $1`, code); err != nil {
		return fmt.Errorf("null session courses: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM courses WHERE code = $1`, code); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit course delete tx: %w", err)
	}
	return nil
}
