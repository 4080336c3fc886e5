package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryRegisterAssignsID(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_registrations")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reg := &models.Registration{StudentID: "stu-1", SessionID: "sess-1"}
	require.NoError(t, repo.Register(context.Background(), reg))
	require.NotEmpty(t, reg.ID)
	require.False(t, reg.RegisteredAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryIsRegistered(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM session_registrations WHERE student_id = $1 AND session_id = $2")).
		WithArgs("stu-1", "sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM session_registrations WHERE student_id = $1 AND session_id = $2")).
		WithArgs("stu-1", "sess-2").
		WillReturnError(sql.ErrNoRows)

	registered, err := repo.IsRegistered(context.Background(), "stu-1", "sess-1")
	require.NoError(t, err)
	require.True(t, registered)

	registered, err = repo.IsRegistered(context.Background(), "stu-1", "sess-2")
	require.NoError(t, err)
	require.False(t, registered)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUnregisterMissingRow(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM session_registrations WHERE student_id = $1 AND session_id = $2")).
		WithArgs("stu-1", "sess-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Unregister(context.Background(), "stu-1", "sess-9")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryTranscriptJoinsOfferingDetails(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	course := "CSC401"
	name := "Compiler Construction"
	rows := sqlmock.NewRows([]string{"id", "student_id", "session_id", "grade", "recorded_at", "course_code", "course_name", "year", "quarter"}).
		AddRow("tr-1", "stu-1", "sess-1", models.GradeDistinction, time.Now(), &course, &name, 2025, models.QuarterFourth)
	mock.ExpectQuery("FROM transcript_entries t").
		WithArgs("stu-1").
		WillReturnRows(rows)

	transcript, err := repo.Transcript(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, transcript, 1)
	require.Equal(t, models.GradeDistinction, transcript[0].Grade)
	require.Equal(t, "Compiler Construction", *transcript[0].CourseName)
	require.Equal(t, 2025, transcript[0].Year)
	require.NoError(t, mock.ExpectationsWereMet())
}
