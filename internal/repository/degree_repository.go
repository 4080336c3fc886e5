package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const degreeColumns = "id, discipline, degree_type, year, version, created_at, updated_at"

// DegreeRepository handles persistence for historical degrees.
type DegreeRepository struct {
	db *sqlx.DB
}

// NewDegreeRepository instantiates a degree repository.
func NewDegreeRepository(db *sqlx.DB) *DegreeRepository {
	return &DegreeRepository{db: db}
}

// List returns all degrees ordered by year descending.
func (r *DegreeRepository) List(ctx context.Context) ([]models.Degree, error) {
	query := fmt.Sprintf("SELECT %s FROM degrees ORDER BY year DESC, id", degreeColumns)
	var degrees []models.Degree
	if err := r.db.SelectContext(ctx, &degrees, query); err != nil {
		return nil, fmt.Errorf("list degrees: %w", err)
	}
	return degrees, nil
}

// FindByID loads a degree by identifier.
func (r *DegreeRepository) FindByID(ctx context.Context, id string) (*models.Degree, error) {
	query := fmt.Sprintf("SELECT %s FROM degrees WHERE id = $1", degreeColumns)
	var degree models.Degree
	if err := r.db.GetContext(ctx, &degree, query, id); err != nil {
		return nil, err
	}
	return &degree, nil
}

// Create inserts a new degree.
func (r *DegreeRepository) Create(ctx context.Context, degree *models.Degree) error {
	if degree.ID == "" {
		degree.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	degree.Version = 1
	degree.CreatedAt = now
	degree.UpdatedAt = now

	const query = `INSERT INTO degrees (id, discipline, degree_type, year, version, created_at, updated_at)
		VALUES (:id, :discipline, :degree_type, :year, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, degree); err != nil {
		return fmt.Errorf("create degree: %w", err)
	}
	return nil
}

// Update applies a versioned write to a degree.
func (r *DegreeRepository) Update(ctx context.Context, degree *models.Degree) error {
	degree.UpdatedAt = time.Now().UTC()

	const query = `UPDATE degrees SET discipline = :discipline, degree_type = :degree_type, year = :year, version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, degree)
	if err != nil {
		return fmt.Errorf("update degree: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update degree: %w", err)
	}
	if rows == 0 {
		return staleWrite(ctx, r.db, "SELECT 1 FROM degrees WHERE id = $1", degree.ID)
	}
	degree.Version++
	return nil
}

// Delete removes a degree and its graduate links in one transaction.
func (r *DegreeRepository) Delete(ctx context.Context, id string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin degree delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE degrees SET version = version WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("check degree version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check degree version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM degrees WHERE id = $1", id)
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM graduate_degrees WHERE degree_id = $1`, id); err != nil {
		return fmt.Errorf("unlink graduate degrees: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM degrees WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete degree: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit degree delete tx: %w", err)
	}
	return nil
}
