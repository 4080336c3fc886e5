package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const sessionColumns = "id, section_no, course_code, teacher_id, year, quarter, version, created_at, updated_at"

// SessionRepository handles persistence for course offerings, the current
// roster and the historical archive.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository instantiates a session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns sessions matching the provided filters.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	base := "FROM sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CourseCode != "" {
		conditions = append(conditions, fmt.Sprintf("course_code = $%d", len(args)+1))
		args = append(args, filter.CourseCode)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Year != 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Quarter != "" {
		conditions = append(conditions, fmt.Sprintf("quarter = $%d", len(args)+1))
		args = append(args, filter.Quarter)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"year":       true,
		"quarter":    true,
		"section_no": true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "year"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", sessionColumns, base, sortBy, order, size, offset)

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return sessions, total, nil
}

// FindByID loads a session by identifier.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.Version = 1
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `INSERT INTO sessions (id, section_no, course_code, teacher_id, year, quarter, version, created_at, updated_at)
		VALUES (:id, :section_no, :course_code, :teacher_id, :year, :quarter, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update applies a versioned write to a session.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()

	const query = `UPDATE sessions SET section_no = :section_no, course_code = :course_code, teacher_id = :teacher_id, year = :year, quarter = :quarter, version = version + 1, updated_at = :updated_at
		WHERE id = :id AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if rows == 0 {
		return staleWrite(ctx, r.db, "SELECT 1 FROM sessions WHERE id = $1", session.ID)
	}
	session.Version++
	return nil
}

// OnRoster reports whether the session sits on the current roster.
func (r *SessionRepository) OnRoster(ctx context.Context, sessionID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM current_sessions WHERE session_id = $1`, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roster: %w", err)
	}
	return true, nil
}

// IsArchived reports whether the session already has a historical snapshot.
func (r *SessionRepository) IsArchived(ctx context.Context, sessionID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM session_archives WHERE session_id = $1`, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check archive: %w", err)
	}
	return true, nil
}

// PromoteToRoster places the session on the current roster.
func (r *SessionRepository) PromoteToRoster(ctx context.Context, entry *models.RosterEntry) error {
	if entry.PromotedAt.IsZero() {
		entry.PromotedAt = time.Now().UTC()
	}
	const query = `INSERT INTO current_sessions (session_id, promoted_at) VALUES (:session_id, :promoted_at) ON CONFLICT (session_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("promote to roster: %w", err)
	}
	return nil
}

// Archive writes the historical snapshot in one transaction: the archive row
// with its grade, removal from the current roster, and conversion of every
// registration into a transcript entry.
func (r *SessionRepository) Archive(ctx context.Context, archive *models.SessionArchive) error {
	if archive.ArchivedAt.IsZero() {
		archive.ArchivedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO session_archives (session_id, grade, archived_at) VALUES (:session_id, :grade, :archived_at)`
	if _, err = tx.NamedExecContext(ctx, insert, archive); err != nil {
		return fmt.Errorf("insert archive: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM current_sessions WHERE session_id = $1`, archive.SessionID); err != nil {
		return fmt.Errorf("remove from roster: %w", err)
	}

	const transcript = `INSERT INTO transcript_entries (id, student_id, session_id, grade, recorded_at)
		SELECT gen_random_uuid(), student_id, session_id, $2, $3 FROM session_registrations WHERE session_id = $1`
	if _, err = tx.ExecContext(ctx, transcript, archive.SessionID, archive.Grade, archive.ArchivedAt); err != nil {
		return fmt.Errorf("record transcript entries: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM session_registrations WHERE session_id = $1`, archive.SessionID); err != nil {
		return fmt.Errorf("clear registrations: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// Delete removes a session and all its derived rows in one transaction.
func (r *SessionRepository) Delete(ctx context.Context, id string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE sessions SET version = version WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("check session version: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check session version: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM sessions WHERE id = $1", id)
		return err
	}

	for _, query := range []string{
		`DELETE FROM current_sessions WHERE session_id = $1`,
		`DELETE FROM session_archives WHERE session_id = $1`,
		`DELETE FROM session_registrations WHERE session_id = $1`,
		`DELETE FROM transcript_entries WHERE session_id = $1`,
		`DELETE FROM sessions WHERE id = $1`,
	} {
		if _, err = tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("session delete cascade: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit session delete tx: %w", err)
	}
	return nil
}
