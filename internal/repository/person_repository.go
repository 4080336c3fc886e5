package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iagbolahan/college-registry-api/internal/models"
)

const personColumns = "reg_no, first_name, middle_name, last_name, birthday, category, sex, apt_no, lane_no, street, city, state, zipcode, version, created_at, updated_at"

// PersonRepository handles persistence for the base person entity.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository instantiates a person repository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// List returns persons matching the provided filters.
func (r *PersonRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int, error) {
	base := "FROM persons WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR reg_no ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"reg_no":     true,
		"last_name":  true,
		"birthday":   true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", personColumns, base, sortBy, order, size, offset)

	var persons []models.Person
	if err := r.db.SelectContext(ctx, &persons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list persons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count persons: %w", err)
	}

	return persons, total, nil
}

// FindByRegNo loads a person by registration number.
func (r *PersonRepository) FindByRegNo(ctx context.Context, regNo string) (*models.Person, error) {
	query := fmt.Sprintf("SELECT %s FROM persons WHERE reg_no = $1", personColumns)
	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, regNo); err != nil {
		return nil, err
	}
	return &person, nil
}

// Create inserts a new person at version 1.
func (r *PersonRepository) Create(ctx context.Context, person *models.Person) error {
	now := time.Now().UTC()
	person.Version = 1
	person.CreatedAt = now
	person.UpdatedAt = now

	const query = `INSERT INTO persons (reg_no, first_name, middle_name, last_name, birthday, category, sex, apt_no, lane_no, street, city, state, zipcode, version, created_at, updated_at)
		VALUES (:reg_no, :first_name, :middle_name, :last_name, :birthday, :category, :sex, :apt_no, :lane_no, :street, :city, :state, :zipcode, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, person); err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

// Update applies a versioned write. A stale version yields a conflict so the
// losing concurrent writer re-reads and retries; the winner's version is
// bumped atomically.
func (r *PersonRepository) Update(ctx context.Context, person *models.Person) error {
	person.UpdatedAt = time.Now().UTC()

	const query = `UPDATE persons SET first_name = :first_name, middle_name = :middle_name, last_name = :last_name, birthday = :birthday, category = :category, sex = :sex, apt_no = :apt_no, lane_no = :lane_no, street = :street, city = :city, state = :state, zipcode = :zipcode, version = version + 1, updated_at = :updated_at
		WHERE reg_no = :reg_no AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, person)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if rows == 0 {
		return staleWrite(ctx, r.db, "SELECT 1 FROM persons WHERE reg_no = $1", person.RegNo)
	}
	person.Version++
	return nil
}

// RoleFlags reports which role records exist for the person, with the student
// level when a student record is present.
func (r *PersonRepository) RoleFlags(ctx context.Context, regNo string) (models.RoleFlags, error) {
	const query = `SELECT
		EXISTS (SELECT 1 FROM lecturers l WHERE l.person_reg_no = $1) AS has_lecturer,
		EXISTS (SELECT 1 FROM student_records s WHERE s.person_reg_no = $1) AS has_student,
		EXISTS (SELECT 1 FROM graduates g JOIN student_records s ON s.id = g.student_id WHERE s.person_reg_no = $1) AS has_graduate,
		EXISTS (SELECT 1 FROM researchers re WHERE re.person_reg_no = $1) AS has_researcher,
		(SELECT s.level FROM student_records s WHERE s.person_reg_no = $1) AS student_level`
	var flags models.RoleFlags
	if err := r.db.GetContext(ctx, &flags, query, regNo); err != nil {
		return models.RoleFlags{}, fmt.Errorf("load role flags: %w", err)
	}
	return flags, nil
}

// Delete removes a person and cascades all owned role records in one
// transaction. Weak references held by other entities (advisor, HOD, session
// teacher) are nulled; memberships and committee seats are removed. Partial
// cascade completion is never observable.
func (r *PersonRepository) Delete(ctx context.Context, regNo string, version int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin person delete tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lecturerID string
	switch err = tx.GetContext(ctx, &lecturerID, `SELECT id FROM lecturers WHERE person_reg_no = $1`, regNo); err {
	case nil:
		if err = cascadeLecturer(ctx, tx, lecturerID); err != nil {
			return err
		}
	case sql.ErrNoRows:
		err = nil
	default:
		return fmt.Errorf("load lecturer for cascade: %w", err)
	}

	var researcherID string
	switch err = tx.GetContext(ctx, &researcherID, `SELECT id FROM researchers WHERE person_reg_no = $1`, regNo); err {
	case nil:
		if err = cascadeResearcher(ctx, tx, researcherID); err != nil {
			return err
		}
	case sql.ErrNoRows:
		err = nil
	default:
		return fmt.Errorf("load researcher for cascade: %w", err)
	}

	var studentID string
	switch err = tx.GetContext(ctx, &studentID, `SELECT id FROM student_records WHERE person_reg_no = $1`, regNo); err {
	case nil:
		if err = cascadeStudent(ctx, tx, studentID); err != nil {
			return err
		}
	case sql.ErrNoRows:
		err = nil
	default:
		return fmt.Errorf("load student for cascade: %w", err)
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx, `DELETE FROM persons WHERE reg_no = $1 AND version = $2`, regNo, version)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	var rows int64
	rows, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if rows == 0 {
		err = staleWrite(ctx, tx, "SELECT 1 FROM persons WHERE reg_no = $1", regNo)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit person delete tx: %w", err)
	}
	return nil
}

func cascadeLecturer(ctx context.Context, tx *sqlx.Tx, lecturerID string) error {
	steps := []struct {
		desc  string
		query string
	}{
		{"null graduate advisors", `UPDATE graduates SET advisor_id = NULL WHERE advisor_id = $1`},
		{"remove committee seats", `DELETE FROM graduate_committee WHERE lecturer_id = $1`},
		{"null department heads", `UPDATE departments SET hod_lecturer_id = NULL WHERE hod_lecturer_id = $1`},
		{"remove department memberships", `DELETE FROM department_lecturers WHERE lecturer_id = $1`},
		{"delete grant supports", `DELETE FROM supports WHERE grant_no IN (SELECT grant_no FROM grants WHERE investigator_id = $1)`},
		{"delete grants", `DELETE FROM grants WHERE investigator_id = $1`},
		{"delete lecturer", `DELETE FROM lecturers WHERE id = $1`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, lecturerID); err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
	}
	return nil
}

func cascadeResearcher(ctx context.Context, tx *sqlx.Tx, researcherID string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET teacher_id = NULL WHERE teacher_id = $1`, researcherID); err != nil {
		return fmt.Errorf("null session teachers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM researchers WHERE id = $1`, researcherID); err != nil {
		return fmt.Errorf("delete researcher: %w", err)
	}
	return nil
}

func cascadeStudent(ctx context.Context, tx *sqlx.Tx, studentID string) error {
	steps := []struct {
		desc  string
		query string
	}{
		{"remove graduate committee", `DELETE FROM graduate_committee WHERE graduate_id IN (SELECT id FROM graduates WHERE student_id = $1)`},
		{"remove graduate degrees", `DELETE FROM graduate_degrees WHERE graduate_id IN (SELECT id FROM graduates WHERE student_id = $1)`},
		{"delete graduate", `DELETE FROM graduates WHERE student_id = $1`},
		{"remove registrations", `DELETE FROM session_registrations WHERE student_id = $1`},
		{"remove transcript entries", `DELETE FROM transcript_entries WHERE student_id = $1`},
		{"delete student record", `DELETE FROM student_records WHERE id = $1`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, studentID); err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
	}
	return nil
}
