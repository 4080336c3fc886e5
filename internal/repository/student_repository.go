package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const studentColumns = "id, person_reg_no, level, minor_department, major_department, version, created_at, updated_at"
const graduateColumns = "id, student_id, advisor_id, version, created_at, updated_at"

// StudentRepository handles persistence for student records and their
// graduate refinement.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository instantiates a student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID loads a student record by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM student_records WHERE id = $1", studentColumns)
	var rec models.StudentRecord
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByPerson loads the student record owned by a person.
func (r *StudentRepository) FindByPerson(ctx context.Context, regNo string) (*models.StudentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM student_records WHERE person_reg_no = $1", studentColumns)
	var rec models.StudentRecord
	if err := r.db.GetContext(ctx, &rec, query, regNo); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, rec *models.StudentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.Version = 1
	rec.CreatedAt = now
	rec.UpdatedAt = now

	const query = `INSERT INTO student_records (id, person_reg_no, level, minor_department, major_department, version, created_at, updated_at)
		VALUES (:id, :person_reg_no, :level, :minor_department, :major_department, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create student record: %w", err)
	}
	return nil
}

// Update applies a versioned write to a student record.
func (r *StudentRepository) Update(ctx context.Context, rec *models.StudentRecord) error {
	rec.UpdatedAt = time.Now().UTC()

	const query = `UPDATE student_records SET level = :level, minor_department = :minor_department, major_department = :major_department, version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return fmt.Errorf("update student record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student record: %w", err)
	}
	if rows == 0 {
		return staleWrite(ctx, r.db, "SELECT 1 FROM student_records WHERE id = $1", rec.ID)
	}
	rec.Version++
	return nil
}

// Delete removes a student record and its graduate refinement in one
// transaction.
func (r *StudentRepository) Delete(ctx context.Context, id string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin student delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE student_records SET version = version WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("check student version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check student version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM student_records WHERE id = $1", id)
		return err
	}

	if err = cascadeStudent(ctx, tx, id); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit student delete tx: %w", err)
	}
	return nil
}

// FindGraduateByStudent loads the graduate refinement of a student record,
// including committee seats and referenced degrees.
func (r *StudentRepository) FindGraduateByStudent(ctx context.Context, studentID string) (*models.Graduate, error) {
	query := fmt.Sprintf("SELECT %s FROM graduates WHERE student_id = $1", graduateColumns)
	var grad models.Graduate
	if err := r.db.GetContext(ctx, &grad, query, studentID); err != nil {
		return nil, err
	}
	if err := r.loadGraduateLinks(ctx, &grad); err != nil {
		return nil, err
	}
	return &grad, nil
}

func (r *StudentRepository) loadGraduateLinks(ctx context.Context, grad *models.Graduate) error {
	if err := r.db.SelectContext(ctx, &grad.Committee, `SELECT lecturer_id FROM graduate_committee WHERE graduate_id = $1 ORDER BY lecturer_id`, grad.ID); err != nil {
		return fmt.Errorf("load graduate committee: %w", err)
	}
	if err := r.db.SelectContext(ctx, &grad.DegreeIDs, `SELECT degree_id FROM graduate_degrees WHERE graduate_id = $1 ORDER BY degree_id`, grad.ID); err != nil {
		return fmt.Errorf("load graduate degrees: %w", err)
	}
	return nil
}

// CreateGraduate inserts the graduate refinement plus its committee and
// degree links in one transaction.
func (r *StudentRepository) CreateGraduate(ctx context.Context, grad *models.Graduate) error {
	if grad.ID == "" {
		grad.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	grad.Version = 1
	grad.CreatedAt = now
	grad.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin graduate tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO graduates (id, student_id, advisor_id, version, created_at, updated_at)
		VALUES (:id, :student_id, :advisor_id, :version, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, grad); err != nil {
		return fmt.Errorf("create graduate: %w", err)
	}

	for _, lecturerID := range grad.Committee {
		if _, err = tx.ExecContext(ctx, `INSERT INTO graduate_committee (graduate_id, lecturer_id) VALUES ($1, $2)`, grad.ID, lecturerID); err != nil {
			return fmt.Errorf("add committee seat: %w", err)
		}
	}
	for _, degreeID := range grad.DegreeIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO graduate_degrees (graduate_id, degree_id) VALUES ($1, $2)`, grad.ID, degreeID); err != nil {
			return fmt.Errorf("link degree: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit graduate tx: %w", err)
	}
	return nil
}

// UpdateGraduate rewrites the advisor, committee and degree links under a
// version gate.
func (r *StudentRepository) UpdateGraduate(ctx context.Context, grad *models.Graduate) error {
	grad.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin graduate update tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE graduates SET advisor_id = :advisor_id, version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
	res, err := tx.NamedExecContext(ctx, query, grad)
	if err != nil {
		return fmt.Errorf("update graduate: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update graduate: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM graduates WHERE id = $1", grad.ID)
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM graduate_committee WHERE graduate_id = $1`, grad.ID); err != nil {
		return fmt.Errorf("clear committee: %w", err)
	}
	for _, lecturerID := range grad.Committee {
		if _, err = tx.ExecContext(ctx, `INSERT INTO graduate_committee (graduate_id, lecturer_id) VALUES ($1, $2)`, grad.ID, lecturerID); err != nil {
			return fmt.Errorf("add committee seat: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM graduate_degrees WHERE graduate_id = $1`, grad.ID); err != nil {
		return fmt.Errorf("clear degree links: %w", err)
	}
	for _, degreeID := range grad.DegreeIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO graduate_degrees (graduate_id, degree_id) VALUES ($1, $2)`, grad.ID, degreeID); err != nil {
			return fmt.Errorf("link degree: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit graduate update tx: %w", err)
	}
	grad.Version++
	return nil
}
