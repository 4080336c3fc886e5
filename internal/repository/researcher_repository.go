package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const researcherColumns = "id, person_reg_no, version, created_at, updated_at"

// ResearcherRepository handles persistence for researcher records.
type ResearcherRepository struct {
	db *sqlx.DB
}

// NewResearcherRepository instantiates a researcher repository.
func NewResearcherRepository(db *sqlx.DB) *ResearcherRepository {
	return &ResearcherRepository{db: db}
}

// FindByID loads a researcher by identifier.
func (r *ResearcherRepository) FindByID(ctx context.Context, id string) (*models.Researcher, error) {
	query := fmt.Sprintf("SELECT %s FROM researchers WHERE id = $1", researcherColumns)
	var researcher models.Researcher
	if err := r.db.GetContext(ctx, &researcher, query, id); err != nil {
		return nil, err
	}
	return &researcher, nil
}

// FindByPerson loads the researcher record owned by a person.
func (r *ResearcherRepository) FindByPerson(ctx context.Context, regNo string) (*models.Researcher, error) {
	query := fmt.Sprintf("SELECT %s FROM researchers WHERE person_reg_no = $1", researcherColumns)
	var researcher models.Researcher
	if err := r.db.GetContext(ctx, &researcher, query, regNo); err != nil {
		return nil, err
	}
	return &researcher, nil
}

// Create inserts a new researcher record.
func (r *ResearcherRepository) Create(ctx context.Context, researcher *models.Researcher) error {
	if researcher.ID == "" {
		researcher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	researcher.Version = 1
	researcher.CreatedAt = now
	researcher.UpdatedAt = now

	const query = `INSERT INTO researchers (id, person_reg_no, version, created_at, updated_at)
		VALUES (:id, :person_reg_no, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, researcher); err != nil {
		return fmt.Errorf("create researcher: %w", err)
	}
	return nil
}

// Delete removes a researcher, nulling session teacher references in the same
// transaction.
func (r *ResearcherRepository) Delete(ctx context.Context, id string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin researcher delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE researchers SET version = version WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("check researcher version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check researcher version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM researchers WHERE id = $1", id)
		return err
	}

	if err = cascadeResearcher(ctx, tx, id); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit researcher delete tx: %w", err)
	}
	return nil
}
