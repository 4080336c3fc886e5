package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

type personRepository interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int, error)
	FindByRegNo(ctx context.Context, regNo string) (*models.Person, error)
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
	RoleFlags(ctx context.Context, regNo string) (models.RoleFlags, error)
	Delete(ctx context.Context, regNo string, version int) error
}

// CreatePersonRequest describes the person creation payload.
type CreatePersonRequest struct {
	RegNo      string    `json:"reg_no" validate:"required"`
	FirstName  string    `json:"first_name" validate:"required"`
	MiddleName string    `json:"middle_name"`
	LastName   string    `json:"last_name" validate:"required"`
	Birthday   time.Time `json:"birthday" validate:"required"`
	Category   string    `json:"category" validate:"required"`
	Sex        string    `json:"sex" validate:"required,oneof=M F P"`
	AptNo      int       `json:"apt_no" validate:"min=0"`
	LaneNo     int       `json:"lane_no" validate:"min=0"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	Zipcode    string    `json:"zipcode" validate:"omitempty,numeric,len=6"`
}

// UpdatePersonRequest describes the person update payload. Version carries the
// version the caller read; a stale value is rejected with a conflict.
type UpdatePersonRequest struct {
	FirstName  string    `json:"first_name" validate:"required"`
	MiddleName string    `json:"middle_name"`
	LastName   string    `json:"last_name" validate:"required"`
	Birthday   time.Time `json:"birthday" validate:"required"`
	Category   string    `json:"category" validate:"required"`
	Sex        string    `json:"sex" validate:"required,oneof=M F P"`
	AptNo      int       `json:"apt_no" validate:"min=0"`
	LaneNo     int       `json:"lane_no" validate:"min=0"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	Zipcode    string    `json:"zipcode" validate:"omitempty,numeric,len=6"`
	Version    int       `json:"version" validate:"required,min=1"`
}

// PersonService orchestrates person lifecycle workflows.
type PersonService struct {
	repo      personRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPersonService constructs PersonService.
func NewPersonService(repo personRepository, validate *validator.Validate, logger *zap.Logger) *PersonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonService{repo: repo, validator: validate, logger: logger}
}

// List returns persons with pagination metadata.
func (s *PersonService) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, *models.Pagination, error) {
	persons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list persons")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return persons, pagination, nil
}

// Get loads a person together with their role flags.
func (s *PersonService) Get(ctx context.Context, regNo string) (*models.Person, models.RoleFlags, error) {
	person, err := s.repo.FindByRegNo(ctx, regNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.RoleFlags{}, apperrors.Clone(apperrors.ErrNotFound, "person not found")
		}
		return nil, models.RoleFlags{}, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load person")
	}
	flags, err := s.repo.RoleFlags(ctx, regNo)
	if err != nil {
		return nil, models.RoleFlags{}, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load role flags")
	}
	return person, flags, nil
}

// Create registers a new person.
func (s *PersonService) Create(ctx context.Context, req CreatePersonRequest) (*models.Person, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid person payload")
	}
	category := models.Category(req.Category)
	if !category.Valid() {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "person", "category", "known_category", "unknown person category")
	}
	if _, err := s.repo.FindByRegNo(ctx, req.RegNo); err == nil {
		return nil, apperrors.Clone(apperrors.ErrConflict, "registration number already in use")
	} else if err != sql.ErrNoRows {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check registration number")
	}

	person := &models.Person{
		RegNo:      req.RegNo,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		Birthday:   req.Birthday,
		Category:   category,
		Sex:        models.Sex(req.Sex),
		AptNo:      req.AptNo,
		LaneNo:     req.LaneNo,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		Zipcode:    req.Zipcode,
	}
	if err := s.repo.Create(ctx, person); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create person")
	}
	s.logger.Info("person created", zap.String("reg_no", person.RegNo), zap.String("category", string(person.Category)))
	return person, nil
}

// Update rewrites a person's mutable fields. The category is frozen while any
// role record references the person so existing role records never end up
// attached to an incompatible category.
func (s *PersonService) Update(ctx context.Context, regNo string, req UpdatePersonRequest) (*models.Person, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid person payload")
	}
	category := models.Category(req.Category)
	if !category.Valid() {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "person", "category", "known_category", "unknown person category")
	}
	person, err := s.repo.FindByRegNo(ctx, regNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "person not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load person")
	}
	if person.Category != category {
		flags, err := s.repo.RoleFlags(ctx, regNo)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load role flags")
		}
		if flags.Any() {
			return nil, apperrors.Clone(apperrors.ErrCategoryImmutable, "remove the person's role records before changing category")
		}
	}

	person.FirstName = req.FirstName
	person.MiddleName = req.MiddleName
	person.LastName = req.LastName
	person.Birthday = req.Birthday
	person.Category = category
	person.Sex = models.Sex(req.Sex)
	person.AptNo = req.AptNo
	person.LaneNo = req.LaneNo
	person.Street = req.Street
	person.City = req.City
	person.State = req.State
	person.Zipcode = req.Zipcode
	person.Version = req.Version

	if err := s.repo.Update(ctx, person); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "person not found")
		}
		return nil, apperrors.FromError(err)
	}
	return person, nil
}

// Delete removes a person and all owned role records.
func (s *PersonService) Delete(ctx context.Context, regNo string, version int) error {
	if err := s.repo.Delete(ctx, regNo, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "person not found")
		}
		return apperrors.FromError(err)
	}
	s.logger.Info("person deleted", zap.String("reg_no", regNo))
	return nil
}
