package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSessionRepositoryListFiltersByYearAndQuarter(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	course := "CSC401"
	rows := sqlmock.NewRows([]string{"id", "section_no", "course_code", "teacher_id", "year", "quarter", "version", "created_at", "updated_at"}).
		AddRow("sess-1", 1, &course, nil, 2026, models.QuarterThird, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("year = $1 AND quarter = $2 ORDER BY year DESC LIMIT 20 OFFSET 0")).
		WithArgs(2026, models.QuarterThird).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions")).
		WithArgs(2026, models.QuarterThird).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{Year: 2026, Quarter: models.QuarterThird})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, sessions, 1)
	require.Equal(t, "CSC401", *sessions[0].CourseCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateStaleVersionConflicts(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sessions WHERE id = $1")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	session := &models.Session{ID: "sess-1", Year: 2026, Quarter: models.QuarterFirst, Version: 1}
	err := repo.Update(context.Background(), session)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryPromoteToRosterIsIdempotent(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO current_sessions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	entry := &models.RosterEntry{SessionID: "sess-1"}
	require.NoError(t, repo.PromoteToRoster(context.Background(), entry))
	require.False(t, entry.PromotedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryArchiveConvertsRegistrations(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_archives")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM current_sessions WHERE session_id = $1")).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transcript_entries")).
		WithArgs("sess-1", models.GradeVeryGood, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM session_registrations WHERE session_id = $1")).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	archive := &models.SessionArchive{SessionID: "sess-1", Grade: models.GradeVeryGood}
	require.NoError(t, repo.Archive(context.Background(), archive))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET version = version WHERE id = $1 AND version = $2")).
		WithArgs("sess-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, query := range []string{
		"DELETE FROM current_sessions WHERE session_id = $1",
		"DELETE FROM session_archives WHERE session_id = $1",
		"DELETE FROM session_registrations WHERE session_id = $1",
		"DELETE FROM transcript_entries WHERE session_id = $1",
		"DELETE FROM sessions WHERE id = $1",
	} {
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("sess-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "sess-1", 2))
	require.NoError(t, mock.ExpectationsWereMet())
}
