package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const grantColumns = "grant_no, title, agency, investigator_id, version, created_at, updated_at"
const supportColumns = "id, grant_no, start_date, end_date, time_percent, version, created_at, updated_at"

// GrantRepository handles persistence for grants and their support windows.
type GrantRepository struct {
	db *sqlx.DB
}

// NewGrantRepository instantiates a grant repository.
func NewGrantRepository(db *sqlx.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// List returns all grants of an investigator, or every grant when the filter
// is empty.
func (r *GrantRepository) List(ctx context.Context, investigatorID string) ([]models.Grant, error) {
	query := fmt.Sprintf("SELECT %s FROM grants", grantColumns)
	var args []interface{}
	if investigatorID != "" {
		query += " WHERE investigator_id = $1"
		args = append(args, investigatorID)
	}
	query += " ORDER BY grant_no"

	var grants []models.Grant
	if err := r.db.SelectContext(ctx, &grants, query, args...); err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// FindByNo loads a grant by number.
func (r *GrantRepository) FindByNo(ctx context.Context, grantNo int) (*models.Grant, error) {
	query := fmt.Sprintf("SELECT %s FROM grants WHERE grant_no = $1", grantColumns)
	var grant models.Grant
	if err := r.db.GetContext(ctx, &grant, query, grantNo); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Create inserts a new grant.
func (r *GrantRepository) Create(ctx context.Context, grant *models.Grant) error {
	now := time.Now().UTC()
	grant.Version = 1
	grant.CreatedAt = now
	grant.UpdatedAt = now

	const query = `INSERT INTO grants (grant_no, title, agency, investigator_id, version, created_at, updated_at)
		VALUES (:grant_no, :title, :agency, :investigator_id, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grant); err != nil {
		return fmt.Errorf("create grant: %w", err)
	}
	return nil
}

// Delete removes a grant with its support window in one transaction.
func (r *GrantRepository) Delete(ctx context.Context, grantNo int, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grant delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE grants SET version = version WHERE grant_no = $1 AND version = $2`, grantNo, version)
	if err != nil {
		return fmt.Errorf("check grant version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check grant version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM grants WHERE grant_no = $1", grantNo)
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM supports WHERE grant_no = $1`, grantNo); err != nil {
		return fmt.Errorf("delete grant support: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM grants WHERE grant_no = $1`, grantNo); err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit grant delete tx: %w", err)
	}
	return nil
}

// FindSupport loads the support window of a grant.
func (r *GrantRepository) FindSupport(ctx context.Context, grantNo int) (*models.Support, error) {
	query := fmt.Sprintf("SELECT %s FROM supports WHERE grant_no = $1", supportColumns)
	var support models.Support
	if err := r.db.GetContext(ctx, &support, query, grantNo); err != nil {
		return nil, err
	}
	return &support, nil
}

// CreateSupport inserts the 1:1 support window of a grant.
func (r *GrantRepository) CreateSupport(ctx context.Context, support *models.Support) error {
	if support.ID == "" {
		support.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	support.Version = 1
	support.CreatedAt = now
	support.UpdatedAt = now

	const query = `INSERT INTO supports (id, grant_no, start_date, end_date, time_percent, version, created_at, updated_at)
		VALUES (:id, :grant_no, :start_date, :end_date, :time_percent, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, support); err != nil {
		return fmt.Errorf("create support: %w", err)
	}
	return nil
}

// UpdateSupport applies a versioned write to a support window.
func (r *GrantRepository) UpdateSupport(ctx context.Context, support *models.Support) error {
	support.UpdatedAt = time.Now().UTC()

	const query = `UPDATE supports SET start_date = :start_date, end_date = :end_date, time_percent = :time_percent, version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, support)
	if err != nil {
		return fmt.Errorf("update support: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update support: %w", err)
	}
	if rows == 0 {
		return staleWrite(ctx, r.db, "SELECT 1 FROM supports WHERE id = $1", support.ID)
	}
	support.Version++
	return nil
}
