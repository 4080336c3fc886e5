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

type collegeRepository interface {
	List(ctx context.Context) ([]models.College, error)
	FindByName(ctx context.Context, name string) (*models.College, error)
	ExistsByDean(ctx context.Context, dean, excludeName string) (bool, error)
	Create(ctx context.Context, college *models.College) error
	Update(ctx context.Context, college *models.College) error
	Delete(ctx context.Context, name string, version int) error
}

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByName(ctx context.Context, name string) (*models.Department, error)
	Create(ctx context.Context, dept *models.Department) error
	Update(ctx context.Context, dept *models.Department) error
	Delete(ctx context.Context, name string, version int) error
}

type courseRepository interface {
	List(ctx context.Context, departmentName string) ([]models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	ExistsByName(ctx context.Context, name, excludeCode string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, code string, version int) error
}

// CreateCollegeRequest describes the college creation payload.
type CreateCollegeRequest struct {
	Name     string `json:"name" validate:"required"`
	Dean     string `json:"dean" validate:"required"`
	OfficeNo int    `json:"office_no" validate:"min=0"`
}

// UpdateCollegeRequest describes the college update payload.
type UpdateCollegeRequest struct {
	Dean     string `json:"dean" validate:"required"`
	OfficeNo int    `json:"office_no" validate:"min=0"`
	Version  int    `json:"version" validate:"required,min=1"`
}

// CreateDepartmentRequest describes the department creation payload.
type CreateDepartmentRequest struct {
	Name          string   `json:"name" validate:"required"`
	Phone         string   `json:"phone"`
	OfficeNo      int      `json:"office_no" validate:"min=0"`
	CollegeName   string   `json:"college_name" validate:"required"`
	HODLecturerID *string  `json:"hod_lecturer_id"`
	LecturerIDs   []string `json:"lecturer_ids"`
}

// UpdateDepartmentRequest describes the department update payload.
type UpdateDepartmentRequest struct {
	Phone         string   `json:"phone"`
	OfficeNo      int      `json:"office_no" validate:"min=0"`
	CollegeName   string   `json:"college_name" validate:"required"`
	HODLecturerID *string  `json:"hod_lecturer_id"`
	LecturerIDs   []string `json:"lecturer_ids"`
	Version       int      `json:"version" validate:"required,min=1"`
}

// CreateCourseRequest describes the course creation payload.
type CreateCourseRequest struct {
	Code           string `json:"code" validate:"required"`
	Name           string `json:"name" validate:"required"`
	DepartmentName string `json:"department_name" validate:"required"`
	Description    string `json:"description"`
}

// UpdateCourseRequest describes the course update payload.
type UpdateCourseRequest struct {
	Name           string `json:"name" validate:"required"`
	DepartmentName string `json:"department_name" validate:"required"`
	Description    string `json:"description"`
	Version        int    `json:"version" validate:"required,min=1"`
}

// OrgService orchestrates the college, department and course hierarchy.
type OrgService struct {
	colleges    collegeRepository
	departments departmentRepository
	courses     courseRepository
	lecturers   lecturerRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewOrgService constructs OrgService.
func NewOrgService(colleges collegeRepository, departments departmentRepository, courses courseRepository, lecturers lecturerRepository, validate *validator.Validate, logger *zap.Logger) *OrgService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrgService{
		colleges:    colleges,
		departments: departments,
		courses:     courses,
		lecturers:   lecturers,
		validator:   validate,
		logger:      logger,
	}
}

// ListColleges returns all colleges.
func (s *OrgService) ListColleges(ctx context.Context) ([]models.College, error) {
	colleges, err := s.colleges.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list colleges")
	}
	return colleges, nil
}

// GetCollege loads a college by name.
func (s *OrgService) GetCollege(ctx context.Context, name string) (*models.College, error) {
	college, err := s.colleges.FindByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "college not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load college")
	}
	return college, nil
}

// CreateCollege registers a college. The dean name is unique across colleges.
func (s *OrgService) CreateCollege(ctx context.Context, req CreateCollegeRequest) (*models.College, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid college payload")
	}
	if _, err := s.colleges.FindByName(ctx, req.Name); err == nil {
		return nil, apperrors.Clone(apperrors.ErrConflict, "college name already in use")
	} else if err != sql.ErrNoRows {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check college name")
	}
	taken, err := s.colleges.ExistsByDean(ctx, req.Dean, "")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check dean")
	}
	if taken {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "college", "dean", "unique_dean", "dean already heads another college")
	}

	college := &models.College{Name: req.Name, Dean: req.Dean, OfficeNo: req.OfficeNo}
	if err := s.colleges.Create(ctx, college); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create college")
	}
	s.logger.Info("college created", zap.String("name", college.Name))
	return college, nil
}

// UpdateCollege rewrites a college's mutable fields.
func (s *OrgService) UpdateCollege(ctx context.Context, name string, req UpdateCollegeRequest) (*models.College, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid college payload")
	}
	college, err := s.colleges.FindByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "college not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load college")
	}
	taken, err := s.colleges.ExistsByDean(ctx, req.Dean, name)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check dean")
	}
	if taken {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "college", "dean", "unique_dean", "dean already heads another college")
	}

	college.Dean = req.Dean
	college.OfficeNo = req.OfficeNo
	college.Version = req.Version

	if err := s.colleges.Update(ctx, college); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "college not found")
		}
		return nil, apperrors.FromError(err)
	}
	return college, nil
}

// DeleteCollege removes a college cascading into its departments and courses.
func (s *OrgService) DeleteCollege(ctx context.Context, name string, version int) error {
	if err := s.colleges.Delete(ctx, name, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "college not found")
		}
		return apperrors.FromError(err)
	}
	s.logger.Info("college deleted", zap.String("name", name))
	return nil
}

// ListDepartments returns all departments.
func (s *OrgService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// GetDepartment loads a department with its lecturer membership.
func (s *OrgService) GetDepartment(ctx context.Context, name string) (*models.Department, error) {
	dept, err := s.departments.FindByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "department not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load department")
	}
	return dept, nil
}

func (s *OrgService) checkDepartmentLinks(ctx context.Context, dept *models.Department) error {
	if _, err := s.colleges.FindByName(ctx, dept.CollegeName); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrReferential, fmt.Sprintf("college %q not found", dept.CollegeName))
		}
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load college")
	}
	for _, lecturerID := range dept.LecturerIDs {
		if _, err := s.lecturers.FindByID(ctx, lecturerID); err != nil {
			if err == sql.ErrNoRows {
				return apperrors.Clone(apperrors.ErrReferential, fmt.Sprintf("lecturer %q not found", lecturerID))
			}
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load lecturer")
		}
	}
	if rerr := rules.ValidateDepartment(*dept); rerr != nil {
		return rerr
	}
	return nil
}

// CreateDepartment registers a department under a college. The head of
// department must be drawn from the membership set.
func (s *OrgService) CreateDepartment(ctx context.Context, req CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid department payload")
	}
	if _, err := s.departments.FindByName(ctx, req.Name); err == nil {
		return nil, apperrors.Clone(apperrors.ErrConflict, "department name already in use")
	} else if err != sql.ErrNoRows {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check department name")
	}

	dept := &models.Department{
		Name:          req.Name,
		Phone:         req.Phone,
		OfficeNo:      req.OfficeNo,
		CollegeName:   req.CollegeName,
		HODLecturerID: req.HODLecturerID,
		LecturerIDs:   req.LecturerIDs,
	}
	if err := s.checkDepartmentLinks(ctx, dept); err != nil {
		return nil, err
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create department")
	}
	s.logger.Info("department created", zap.String("name", dept.Name), zap.String("college", dept.CollegeName))
	return dept, nil
}

// UpdateDepartment rewrites a department and its membership set.
func (s *OrgService) UpdateDepartment(ctx context.Context, name string, req UpdateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid department payload")
	}
	dept, err := s.departments.FindByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "department not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load department")
	}

	dept.Phone = req.Phone
	dept.OfficeNo = req.OfficeNo
	dept.CollegeName = req.CollegeName
	dept.HODLecturerID = req.HODLecturerID
	dept.LecturerIDs = req.LecturerIDs
	dept.Version = req.Version

	if err := s.checkDepartmentLinks(ctx, dept); err != nil {
		return nil, err
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "department not found")
		}
		return nil, apperrors.FromError(err)
	}
	return dept, nil
}

// DeleteDepartment removes a department, releasing student majors and minors
// and cascading its courses.
func (s *OrgService) DeleteDepartment(ctx context.Context, name string, version int) error {
	if err := s.departments.Delete(ctx, name, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "department not found")
		}
		return apperrors.FromError(err)
	}
	s.logger.Info("department deleted", zap.String("name", name))
	return nil
}

// ListCourses returns courses, optionally scoped to one department.
func (s *OrgService) ListCourses(ctx context.Context, departmentName string) ([]models.Course, error) {
	courses, err := s.courses.List(ctx, departmentName)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// GetCourse loads a course by code.
func (s *OrgService) GetCourse(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.courses.FindByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "course not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// CreateCourse registers a course under a department. Course names are unique
// across the catalogue.
func (s *OrgService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.courses.FindByCode(ctx, req.Code); err == nil {
		return nil, apperrors.Clone(apperrors.ErrConflict, "course code already in use")
	} else if err != sql.ErrNoRows {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check course code")
	}
	taken, err := s.courses.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check course name")
	}
	if taken {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "course", "name", "unique_name", "course name already in use")
	}
	if _, err := s.departments.FindByName(ctx, req.DepartmentName); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrReferential, fmt.Sprintf("department %q not found", req.DepartmentName))
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load department")
	}

	course := &models.Course{Code: req.Code, Name: req.Name, DepartmentName: req.DepartmentName, Description: req.Description}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("code", course.Code), zap.String("department", course.DepartmentName))
	return course, nil
}

// UpdateCourse rewrites a course's mutable fields.
func (s *OrgService) UpdateCourse(ctx context.Context, code string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.courses.FindByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "course not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load course")
	}
	taken, err := s.courses.ExistsByName(ctx, req.Name, code)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check course name")
	}
	if taken {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "course", "name", "unique_name", "course name already in use")
	}
	if _, err := s.departments.FindByName(ctx, req.DepartmentName); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrReferential, fmt.Sprintf("department %q not found", req.DepartmentName))
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load department")
	}

	course.Name = req.Name
	course.DepartmentName = req.DepartmentName
	course.Description = req.Description
	course.Version = req.Version

	if err := s.courses.Update(ctx, course); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "course not found")
		}
		return nil, apperrors.FromError(err)
	}
	return course, nil
}

// DeleteCourse removes a course, releasing its sessions.
func (s *OrgService) DeleteCourse(ctx context.Context, code string, version int) error {
	if err := s.courses.Delete(ctx, code, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "course not found")
		}
		return apperrors.FromError(err)
	}
	s.logger.Info("course deleted", zap.String("code", code))
	return nil
}
