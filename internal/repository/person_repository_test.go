package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

func newPersonRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPersonRepositoryFindByRegNo(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	rows := sqlmock.NewRows([]string{"reg_no", "first_name", "middle_name", "last_name", "birthday", "category", "sex", "apt_no", "lane_no", "street", "city", "state", "zipcode", "version", "created_at", "updated_at"}).
		AddRow("P-1001", "Ada", "", "Obi", time.Date(1999, 4, 12, 0, 0, 0, 0, time.UTC), models.CategoryStudent, models.SexFemale, 2, 7, "College Rd", "Zaria", "Kaduna", "810001", 3, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT reg_no, first_name, middle_name, last_name, birthday, category, sex, apt_no, lane_no, street, city, state, zipcode, version, created_at, updated_at FROM persons WHERE reg_no = $1")).
		WithArgs("P-1001").
		WillReturnRows(rows)

	person, err := repo.FindByRegNo(context.Background(), "P-1001")
	require.NoError(t, err)
	require.Equal(t, models.CategoryStudent, person.Category)
	require.Equal(t, 3, person.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryUpdateBumpsVersion(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE persons SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	person := &models.Person{RegNo: "P-1001", Category: models.CategoryStudent, Version: 3}
	require.NoError(t, repo.Update(context.Background(), person))
	require.Equal(t, 4, person.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryUpdateStaleVersionConflicts(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE persons SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM persons WHERE reg_no = $1")).
		WithArgs("P-1001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	person := &models.Person{RegNo: "P-1001", Category: models.CategoryStudent, Version: 2}
	err := repo.Update(context.Background(), person)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Equal(t, 2, person.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE persons SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM persons WHERE reg_no = $1")).
		WithArgs("P-gone").
		WillReturnError(sql.ErrNoRows)

	person := &models.Person{RegNo: "P-gone", Version: 1}
	err := repo.Update(context.Background(), person)
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryRoleFlags(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	level := string(models.LevelGraduate)
	rows := sqlmock.NewRows([]string{"has_lecturer", "has_student", "has_graduate", "has_researcher", "student_level"}).
		AddRow(false, true, true, false, level)
	mock.ExpectQuery("SELECT").
		WithArgs("P-1001").
		WillReturnRows(rows)

	flags, err := repo.RoleFlags(context.Background(), "P-1001")
	require.NoError(t, err)
	require.True(t, flags.HasStudent)
	require.True(t, flags.HasGraduate)
	require.False(t, flags.HasLecturer)
	require.True(t, flags.Any())
	require.NotNil(t, flags.StudentLevel)
	require.Equal(t, models.LevelGraduate, *flags.StudentLevel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryDeleteCascadesStudent(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM lecturers WHERE person_reg_no = $1")).
		WithArgs("P-1001").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM researchers WHERE person_reg_no = $1")).
		WithArgs("P-1001").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM student_records WHERE person_reg_no = $1")).
		WithArgs("P-1001").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("stu-9"))

	for _, query := range []string{
		"DELETE FROM graduate_committee WHERE graduate_id IN",
		"DELETE FROM graduate_degrees WHERE graduate_id IN",
		"DELETE FROM graduates WHERE student_id = $1",
		"DELETE FROM session_registrations WHERE student_id = $1",
		"DELETE FROM transcript_entries WHERE student_id = $1",
		"DELETE FROM student_records WHERE id = $1",
	} {
		mock.ExpectExec(regexp.QuoteMeta(query)).
			WithArgs("stu-9").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM persons WHERE reg_no = $1 AND version = $2")).
		WithArgs("P-1001", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "P-1001", 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryDeleteStaleVersionRollsBack(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM lecturers WHERE person_reg_no = $1")).
		WithArgs("P-1001").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM researchers WHERE person_reg_no = $1")).
		WithArgs("P-1001").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM student_records WHERE person_reg_no = $1")).
		WithArgs("P-1001").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM persons WHERE reg_no = $1 AND version = $2")).
		WithArgs("P-1001", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM persons WHERE reg_no = $1")).
		WithArgs("P-1001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "P-1001", 1)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}
