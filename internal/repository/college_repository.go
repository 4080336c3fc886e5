package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const collegeColumns = "name, dean, office_no, version, created_at, updated_at"

// CollegeRepository handles persistence for colleges.
type CollegeRepository struct {
	db *sqlx.DB
}

// NewCollegeRepository instantiates a college repository.
func NewCollegeRepository(db *sqlx.DB) *CollegeRepository {
	return &CollegeRepository{db: db}
}

// List returns all colleges ordered by name.
func (r *CollegeRepository) List(ctx context.Context) ([]models.College, error) {
	query := fmt.Sprintf("SELECT %s FROM colleges ORDER BY name", collegeColumns)
	var colleges []models.College
	if err := r.db.SelectContext(ctx, &colleges, query); err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	return colleges, nil
}

// FindByName loads a college by name.
func (r *CollegeRepository) FindByName(ctx context.Context, name string) (*models.College, error) {
	query := fmt.Sprintf("SELECT %s FROM colleges WHERE name = $1", collegeColumns)
	var college models.College
	if err := r.db.GetContext(ctx, &college, query, name); err != nil {
		return nil, err
	}
	return &college, nil
}

// ExistsByDean checks the dean uniqueness constraint.
func (r *CollegeRepository) ExistsByDean(ctx context.Context, dean, excludeName string) (bool, error) {
	base := "SELECT 1 FROM colleges WHERE dean = $1"
	args := []interface{}{dean}
	if excludeName != "" {
		base += " AND name <> $2"
		args = append(args, excludeName)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check dean uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts a new college.
func (r *CollegeRepository) Create(ctx context.Context, college *models.College) error {
	now := time.Now().UTC()
	college.Version = 1
	college.CreatedAt = now
	college.UpdatedAt = now

	const query = `INSERT INTO colleges (name, dean, office_no, version, created_at, updated_at)
		VALUES (:name, :dean, :office_no, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, college); err != nil {
		return fmt.Errorf("create college: %w", err)
	}
	return nil
}

// Update applies a versioned write to a college.
func (r *CollegeRepository) Update(ctx context.Context, college *models.College) error {
	college.UpdatedAt = time.Now().UTC()

	const query = `UPDATE colleges SET dean = :dean, office_no = :office_no, version = version + 1, updated_at = :updated_at
		WHERE name = :name AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, college)
	if err != nil {
		return fmt.Errorf("update college: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update college: %w", err)
	}
	if rows == 0 {
		return staleWrite(ctx, r.db, "SELECT 1 FROM colleges WHERE name = $1", college.Name)
	}
	college.Version++
	return nil
}

// Delete removes a college and cascades its departments, courses and
// sessions' weak references in one transaction.
func (r *CollegeRepository) Delete(ctx context.Context, name string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin college delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE colleges SET version = version WHERE name = $1 AND version = $2`, name, version)
	if err != nil {
		return fmt.Errorf("check college version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check college version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM colleges WHERE name = $1", name)
		return err
	}

	var departments []string
	if err = tx.SelectContext(ctx, &departments, `SELECT name FROM departments WHERE college_name = $1`, name); err != nil {
		return fmt.Errorf("load departments for cascade: %w", err)
	}
	for _, dept := range departments {
		if err = cascadeDepartment(ctx, tx, dept); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM colleges WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete college: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit college delete tx: %w", err)
	}
	return nil
}
