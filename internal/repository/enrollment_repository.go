package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

// EnrollmentRepository handles registrations on the current roster and
// the transcript entries produced when sessions are archived.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository instantiates an enrollment repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Register enrols a student into a session.
func (r *EnrollmentRepository) Register(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.RegisteredAt.IsZero() {
		reg.RegisteredAt = time.Now().UTC()
	}

	const query = `INSERT INTO session_registrations (id, student_id, session_id, registered_at)
		VALUES (:id, :student_id, :session_id, :registered_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("register student: %w", err)
	}
	return nil
}

// Unregister drops a student from a session.
func (r *EnrollmentRepository) Unregister(ctx context.Context, studentID, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_registrations WHERE student_id = $1 AND session_id = $2`, studentID, sessionID)
	if err != nil {
		return fmt.Errorf("unregister student: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unregister student: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IsRegistered reports whether the student already holds a registration for
// the session.
func (r *EnrollmentRepository) IsRegistered(ctx context.Context, studentID, sessionID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM session_registrations WHERE student_id = $1 AND session_id = $2`, studentID, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return true, nil
}

// ListBySession returns all registrations for one session.
func (r *EnrollmentRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Registration, error) {
	const query = `SELECT id, student_id, session_id, registered_at FROM session_registrations WHERE session_id = $1 ORDER BY registered_at`
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, sessionID); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// ListByStudent returns all registrations held by one student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Registration, error) {
	const query = `SELECT id, student_id, session_id, registered_at FROM session_registrations WHERE student_id = $1 ORDER BY registered_at`
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, studentID); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// Transcript returns the student's completed offerings joined with course and
// period details, ordered chronologically.
func (r *EnrollmentRepository) Transcript(ctx context.Context, studentID string) ([]models.TranscriptRow, error) {
	const query = `SELECT t.id, t.student_id, t.session_id, t.grade, t.recorded_at,
			s.course_code, c.name AS course_name, s.year, s.quarter
		FROM transcript_entries t
		JOIN sessions s ON s.id = t.session_id
		LEFT JOIN courses c ON c.code = s.course_code
		WHERE t.student_id = $1
		ORDER BY s.year, s.quarter, t.recorded_at`
	var rows []models.TranscriptRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	return rows, nil
}
