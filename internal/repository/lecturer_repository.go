package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const lecturerColumns = "id, person_reg_no, rank, salary, office_address, office_phone, version, created_at, updated_at"

// LecturerRepository handles persistence for the teaching role record.
type LecturerRepository struct {
	db *sqlx.DB
}

// NewLecturerRepository instantiates a lecturer repository.
func NewLecturerRepository(db *sqlx.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

// FindByID loads a lecturer by identifier.
func (r *LecturerRepository) FindByID(ctx context.Context, id string) (*models.Lecturer, error) {
	query := fmt.Sprintf("SELECT %s FROM lecturers WHERE id = $1", lecturerColumns)
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, id); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// FindByPerson loads the lecturer record owned by a person.
func (r *LecturerRepository) FindByPerson(ctx context.Context, regNo string) (*models.Lecturer, error) {
	query := fmt.Sprintf("SELECT %s FROM lecturers WHERE person_reg_no = $1", lecturerColumns)
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, regNo); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// Create inserts a new lecturer record.
func (r *LecturerRepository) Create(ctx context.Context, lecturer *models.Lecturer) error {
	if lecturer.ID == "" {
		lecturer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lecturer.Version = 1
	lecturer.CreatedAt = now
	lecturer.UpdatedAt = now

	const query = `INSERT INTO lecturers (id, person_reg_no, rank, salary, office_address, office_phone, version, created_at, updated_at)
		VALUES (:id, :person_reg_no, :rank, :salary, :office_address, :office_phone, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lecturer); err != nil {
		return fmt.Errorf("create lecturer: %w", err)
	}
	return nil
}

// Update applies a versioned write to a lecturer record.
func (r *LecturerRepository) Update(ctx context.Context, lecturer *models.Lecturer) error {
	lecturer.UpdatedAt = time.Now().UTC()

	const query = `UPDATE lecturers SET rank = :rank, salary = :salary, office_address = :office_address, office_phone = :office_phone, version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, lecturer)
	if err != nil {
		return fmt.Errorf("update lecturer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lecturer: %w", err)
	}
	if rows == 0 {
		return staleWrite(ctx, r.db, "SELECT 1 FROM lecturers WHERE id = $1", lecturer.ID)
	}
	lecturer.Version++
	return nil
}

// Delete removes a lecturer record, nulling weak references and removing
// memberships in the same transaction. Grants owned by the lecturer cascade.
func (r *LecturerRepository) Delete(ctx context.Context, id string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lecturer delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Version gate before the cascade touches anything.
	res, err := tx.ExecContext(ctx, `UPDATE lecturers SET version = version WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("check lecturer version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check lecturer version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM lecturers WHERE id = $1", id)
		return err
	}

	if err = cascadeLecturer(ctx, tx, id); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit lecturer delete tx: %w", err)
	}
	return nil
}
