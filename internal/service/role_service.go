package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/internal/rules"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

type personReader interface {
	FindByRegNo(ctx context.Context, regNo string) (*models.Person, error)
	RoleFlags(ctx context.Context, regNo string) (models.RoleFlags, error)
}

type lecturerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
	FindByPerson(ctx context.Context, regNo string) (*models.Lecturer, error)
	Create(ctx context.Context, lecturer *models.Lecturer) error
	Update(ctx context.Context, lecturer *models.Lecturer) error
	Delete(ctx context.Context, id string, version int) error
}

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentRecord, error)
	FindByPerson(ctx context.Context, regNo string) (*models.StudentRecord, error)
	Create(ctx context.Context, rec *models.StudentRecord) error
	Update(ctx context.Context, rec *models.StudentRecord) error
	Delete(ctx context.Context, id string, version int) error
	FindGraduateByStudent(ctx context.Context, studentID string) (*models.Graduate, error)
	CreateGraduate(ctx context.Context, grad *models.Graduate) error
	UpdateGraduate(ctx context.Context, grad *models.Graduate) error
}

type researcherRepository interface {
	FindByID(ctx context.Context, id string) (*models.Researcher, error)
	FindByPerson(ctx context.Context, regNo string) (*models.Researcher, error)
	Create(ctx context.Context, researcher *models.Researcher) error
	Delete(ctx context.Context, id string, version int) error
}

type departmentReader interface {
	FindByName(ctx context.Context, name string) (*models.Department, error)
}

type degreeReader interface {
	FindByID(ctx context.Context, id string) (*models.Degree, error)
}

// AssignLecturerRequest describes the lecturer role creation payload.
type AssignLecturerRequest struct {
	Rank          string `json:"rank" validate:"required"`
	Salary        int    `json:"salary" validate:"min=0"`
	OfficeAddress string `json:"office_address"`
	OfficePhone   string `json:"office_phone"`
}

// UpdateLecturerRequest describes the lecturer role update payload.
type UpdateLecturerRequest struct {
	Rank          string `json:"rank" validate:"required"`
	Salary        int    `json:"salary" validate:"min=0"`
	OfficeAddress string `json:"office_address"`
	OfficePhone   string `json:"office_phone"`
	Version       int    `json:"version" validate:"required,min=1"`
}

// AssignStudentRequest describes the student role creation payload.
type AssignStudentRequest struct {
	Level     string  `json:"level" validate:"required"`
	MinorDept *string `json:"minor_department"`
	MajorDept *string `json:"major_department"`
}

// UpdateStudentRequest describes the student role update payload.
type UpdateStudentRequest struct {
	Level     string  `json:"level" validate:"required"`
	MinorDept *string `json:"minor_department"`
	MajorDept *string `json:"major_department"`
	Version   int     `json:"version" validate:"required,min=1"`
}

// AssignGraduateRequest describes the graduate refinement payload.
type AssignGraduateRequest struct {
	AdvisorID *string  `json:"advisor_id"`
	Committee []string `json:"committee"`
	DegreeIDs []string `json:"degree_ids"`
}

// UpdateGraduateRequest describes the graduate update payload.
type UpdateGraduateRequest struct {
	AdvisorID *string  `json:"advisor_id"`
	Committee []string `json:"committee"`
	DegreeIDs []string `json:"degree_ids"`
	Version   int      `json:"version" validate:"required,min=1"`
}

// RoleService orchestrates role record lifecycles. Every assignment is gated
// by the category compatibility rules against a fresh person snapshot.
type RoleService struct {
	persons     personReader
	lecturers   lecturerRepository
	students    studentRepository
	researchers researcherRepository
	departments departmentReader
	degrees     degreeReader
	calendar    rules.Calendar
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRoleService constructs RoleService.
func NewRoleService(persons personReader, lecturers lecturerRepository, students studentRepository, researchers researcherRepository, departments departmentReader, degrees degreeReader, calendar rules.Calendar, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{
		persons:     persons,
		lecturers:   lecturers,
		students:    students,
		researchers: researchers,
		departments: departments,
		degrees:     degrees,
		calendar:    calendar,
		validator:   validate,
		logger:      logger,
	}
}

func (s *RoleService) snapshot(ctx context.Context, regNo string) (rules.PersonSnapshot, error) {
	person, err := s.persons.FindByRegNo(ctx, regNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return rules.PersonSnapshot{}, apperrors.Clone(apperrors.ErrReferential, "person not found")
		}
		return rules.PersonSnapshot{}, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load person")
	}
	flags, err := s.persons.RoleFlags(ctx, regNo)
	if err != nil {
		return rules.PersonSnapshot{}, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load role flags")
	}
	snap := rules.PersonSnapshot{
		RegNo:       person.RegNo,
		Category:    person.Category,
		HasLecturer: flags.HasLecturer,
		HasStudent:  flags.HasStudent,
		HasGraduate: flags.HasGraduate,
	}
	if flags.StudentLevel != nil {
		snap.StudentLevel = *flags.StudentLevel
	}
	return snap, nil
}

// AssignLecturer creates the lecturer role record for a person.
func (s *RoleService) AssignLecturer(ctx context.Context, regNo string, req AssignLecturerRequest) (*models.Lecturer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid lecturer payload")
	}
	rank := models.Rank(req.Rank)
	if !rank.Valid() {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "lecturer", "rank", "known_rank", "unknown lecturer rank")
	}
	snap, err := s.snapshot(ctx, regNo)
	if err != nil {
		return nil, err
	}
	if snap.HasLecturer {
		return nil, apperrors.Clone(apperrors.ErrConflict, "person already holds a lecturer record")
	}
	if rerr := rules.ValidateRoleAssignment(snap, models.RoleLecturer, s.calendar); rerr != nil {
		return nil, rerr
	}

	lecturer := &models.Lecturer{
		PersonRegNo:   regNo,
		Rank:          rank,
		Salary:        req.Salary,
		OfficeAddress: req.OfficeAddress,
		OfficePhone:   req.OfficePhone,
	}
	if err := s.lecturers.Create(ctx, lecturer); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create lecturer")
	}
	s.logger.Info("lecturer assigned", zap.String("reg_no", regNo), zap.String("lecturer_id", lecturer.ID))
	return lecturer, nil
}

// UpdateLecturer rewrites a lecturer's mutable fields.
func (s *RoleService) UpdateLecturer(ctx context.Context, id string, req UpdateLecturerRequest) (*models.Lecturer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid lecturer payload")
	}
	rank := models.Rank(req.Rank)
	if !rank.Valid() {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "lecturer", "rank", "known_rank", "unknown lecturer rank")
	}
	lecturer, err := s.lecturers.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "lecturer not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load lecturer")
	}

	lecturer.Rank = rank
	lecturer.Salary = req.Salary
	lecturer.OfficeAddress = req.OfficeAddress
	lecturer.OfficePhone = req.OfficePhone
	lecturer.Version = req.Version

	if err := s.lecturers.Update(ctx, lecturer); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "lecturer not found")
		}
		return nil, apperrors.FromError(err)
	}
	return lecturer, nil
}

// RemoveLecturer deletes the lecturer record with its dependent cascade.
func (s *RoleService) RemoveLecturer(ctx context.Context, id string, version int) error {
	if err := s.lecturers.Delete(ctx, id, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "lecturer not found")
		}
		return apperrors.FromError(err)
	}
	return nil
}

func (s *RoleService) checkDepartments(ctx context.Context, names ...*string) error {
	for _, name := range names {
		if name == nil || *name == "" {
			continue
		}
		if _, err := s.departments.FindByName(ctx, *name); err != nil {
			if err == sql.ErrNoRows {
				return apperrors.Clone(apperrors.ErrReferential, fmt.Sprintf("department %q not found", *name))
			}
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load department")
		}
	}
	return nil
}

// AssignStudent creates the student role record for a person.
func (s *RoleService) AssignStudent(ctx context.Context, regNo string, req AssignStudentRequest) (*models.StudentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid student payload")
	}
	level := models.Level(req.Level)
	if !level.Valid() {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "student", "level", "known_level", "unknown student level")
	}
	snap, err := s.snapshot(ctx, regNo)
	if err != nil {
		return nil, err
	}
	if snap.HasStudent {
		return nil, apperrors.Clone(apperrors.ErrConflict, "person already holds a student record")
	}
	if rerr := rules.ValidateRoleAssignment(snap, models.RoleStudent, s.calendar); rerr != nil {
		return nil, rerr
	}

	rec := &models.StudentRecord{
		PersonRegNo: regNo,
		Level:       level,
		MinorDept:   req.MinorDept,
		MajorDept:   req.MajorDept,
	}
	if rerr := rules.ValidateStudentRecord(*rec); rerr != nil {
		return nil, rerr
	}
	if err := s.checkDepartments(ctx, req.MinorDept, req.MajorDept); err != nil {
		return nil, err
	}
	if err := s.students.Create(ctx, rec); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create student record")
	}
	s.logger.Info("student assigned", zap.String("reg_no", regNo), zap.String("student_id", rec.ID))
	return rec, nil
}

// UpdateStudent rewrites a student record. Leaving the terminal level is
// rejected while a graduate record refines the student.
func (s *RoleService) UpdateStudent(ctx context.Context, id string, req UpdateStudentRequest) (*models.StudentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid student payload")
	}
	level := models.Level(req.Level)
	if !level.Valid() {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "student", "level", "known_level", "unknown student level")
	}
	rec, err := s.students.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student record not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load student record")
	}
	if level != s.calendar.TerminalLevel() {
		if _, err := s.students.FindGraduateByStudent(ctx, id); err == nil {
			return nil, apperrors.Clone(apperrors.ErrMissingPrereqRole, "student backs a graduate record and must stay at the terminal level")
		} else if err != sql.ErrNoRows {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load graduate record")
		}
	}

	rec.Level = level
	rec.MinorDept = req.MinorDept
	rec.MajorDept = req.MajorDept
	rec.Version = req.Version

	if rerr := rules.ValidateStudentRecord(*rec); rerr != nil {
		return nil, rerr
	}
	if err := s.checkDepartments(ctx, req.MinorDept, req.MajorDept); err != nil {
		return nil, err
	}
	if err := s.students.Update(ctx, rec); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student record not found")
		}
		return nil, apperrors.FromError(err)
	}
	return rec, nil
}

// RemoveStudent deletes the student record with its dependent cascade.
func (s *RoleService) RemoveStudent(ctx context.Context, id string, version int) error {
	if err := s.students.Delete(ctx, id, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "student record not found")
		}
		return apperrors.FromError(err)
	}
	return nil
}

func (s *RoleService) checkGraduateLinks(ctx context.Context, advisorID *string, committee, degreeIDs []string) error {
	if advisorID != nil && *advisorID != "" {
		if _, err := s.lecturers.FindByID(ctx, *advisorID); err != nil {
			if err == sql.ErrNoRows {
				return apperrors.Clone(apperrors.ErrReferential, "advisor lecturer not found")
			}
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load advisor")
		}
	}
	for _, lecturerID := range committee {
		if _, err := s.lecturers.FindByID(ctx, lecturerID); err != nil {
			if err == sql.ErrNoRows {
				return apperrors.Clone(apperrors.ErrReferential, fmt.Sprintf("committee lecturer %q not found", lecturerID))
			}
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load committee lecturer")
		}
	}
	for _, degreeID := range degreeIDs {
		if _, err := s.degrees.FindByID(ctx, degreeID); err != nil {
			if err == sql.ErrNoRows {
				return apperrors.Clone(apperrors.ErrReferential, fmt.Sprintf("degree %q not found", degreeID))
			}
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load degree")
		}
	}
	return nil
}

// AssignGraduate refines a terminal-level student with a graduate record.
func (s *RoleService) AssignGraduate(ctx context.Context, regNo string, req AssignGraduateRequest) (*models.Graduate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid graduate payload")
	}
	snap, err := s.snapshot(ctx, regNo)
	if err != nil {
		return nil, err
	}
	if snap.HasGraduate {
		return nil, apperrors.Clone(apperrors.ErrConflict, "person already holds a graduate record")
	}
	if rerr := rules.ValidateRoleAssignment(snap, models.RoleGraduate, s.calendar); rerr != nil {
		return nil, rerr
	}
	rec, err := s.students.FindByPerson(ctx, regNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrMissingPrereqRole, "a student record is required before graduate standing")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load student record")
	}
	if err := s.checkGraduateLinks(ctx, req.AdvisorID, req.Committee, req.DegreeIDs); err != nil {
		return nil, err
	}

	grad := &models.Graduate{
		StudentID: rec.ID,
		AdvisorID: req.AdvisorID,
		Committee: req.Committee,
		DegreeIDs: req.DegreeIDs,
	}
	if err := s.students.CreateGraduate(ctx, grad); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create graduate record")
	}
	s.logger.Info("graduate assigned", zap.String("reg_no", regNo), zap.String("graduate_id", grad.ID))
	return grad, nil
}

// UpdateGraduate rewrites the graduate's advisor, committee and degree links.
func (s *RoleService) UpdateGraduate(ctx context.Context, regNo string, req UpdateGraduateRequest) (*models.Graduate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid graduate payload")
	}
	rec, err := s.students.FindByPerson(ctx, regNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student record not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load student record")
	}
	grad, err := s.students.FindGraduateByStudent(ctx, rec.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "graduate record not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load graduate record")
	}
	if err := s.checkGraduateLinks(ctx, req.AdvisorID, req.Committee, req.DegreeIDs); err != nil {
		return nil, err
	}

	grad.AdvisorID = req.AdvisorID
	grad.Committee = req.Committee
	grad.DegreeIDs = req.DegreeIDs
	grad.Version = req.Version

	if err := s.students.UpdateGraduate(ctx, grad); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "graduate record not found")
		}
		return nil, apperrors.FromError(err)
	}
	return grad, nil
}

// AssignResearcher creates the researcher role record for a person.
func (s *RoleService) AssignResearcher(ctx context.Context, regNo string) (*models.Researcher, error) {
	snap, err := s.snapshot(ctx, regNo)
	if err != nil {
		return nil, err
	}
	if _, err := s.researchers.FindByPerson(ctx, regNo); err == nil {
		return nil, apperrors.Clone(apperrors.ErrConflict, "person already holds a researcher record")
	} else if err != sql.ErrNoRows {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load researcher record")
	}
	if rerr := rules.ValidateRoleAssignment(snap, models.RoleResearcher, s.calendar); rerr != nil {
		return nil, rerr
	}

	researcher := &models.Researcher{PersonRegNo: regNo}
	if err := s.researchers.Create(ctx, researcher); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create researcher")
	}
	s.logger.Info("researcher assigned", zap.String("reg_no", regNo), zap.String("researcher_id", researcher.ID))
	return researcher, nil
}

// RemoveResearcher deletes the researcher record, releasing taught sessions.
func (s *RoleService) RemoveResearcher(ctx context.Context, id string, version int) error {
	if err := s.researchers.Delete(ctx, id, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "researcher not found")
		}
		return apperrors.FromError(err)
	}
	return nil
}
