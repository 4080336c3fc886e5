package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/internal/rules"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

type degreeRepository interface {
	List(ctx context.Context) ([]models.Degree, error)
	FindByID(ctx context.Context, id string) (*models.Degree, error)
	Create(ctx context.Context, degree *models.Degree) error
	Update(ctx context.Context, degree *models.Degree) error
	Delete(ctx context.Context, id string, version int) error
}

// CreateDegreeRequest describes the degree creation payload.
type CreateDegreeRequest struct {
	Discipline string `json:"discipline" validate:"required"`
	Type       string `json:"degree_type" validate:"required"`
	Year       int    `json:"year" validate:"required"`
}

// UpdateDegreeRequest describes the degree update payload.
type UpdateDegreeRequest struct {
	Discipline string `json:"discipline" validate:"required"`
	Type       string `json:"degree_type" validate:"required"`
	Year       int    `json:"year" validate:"required"`
	Version    int    `json:"version" validate:"required,min=1"`
}

// DegreeService orchestrates historical credential records. Degree years must
// lie strictly in the past relative to the reference clock.
type DegreeService struct {
	repo      degreeRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDegreeService constructs DegreeService.
func NewDegreeService(repo degreeRepository, validate *validator.Validate, logger *zap.Logger) *DegreeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DegreeService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns all degrees.
func (s *DegreeService) List(ctx context.Context) ([]models.Degree, error) {
	degrees, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list degrees")
	}
	return degrees, nil
}

// Get loads a degree by identifier.
func (s *DegreeService) Get(ctx context.Context, id string) (*models.Degree, error) {
	degree, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "degree not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load degree")
	}
	return degree, nil
}

func (s *DegreeService) buildDegree(req CreateDegreeRequest) (*models.Degree, error) {
	discipline := models.Discipline(req.Discipline)
	if !discipline.Valid() {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "degree", "discipline", "known_discipline", "unknown discipline")
	}
	degreeType := models.DegreeType(req.Type)
	if !degreeType.Valid() {
		return nil, apperrors.OnField(apperrors.ErrFieldConstraint, "degree", "degree_type", "known_degree_type", "unknown degree type")
	}
	degree := &models.Degree{Discipline: discipline, Type: degreeType, Year: req.Year}
	if rerr := rules.ValidateDegree(*degree, rules.ClockFromTime(s.now().UTC())); rerr != nil {
		return nil, rerr
	}
	return degree, nil
}

// Create registers a degree.
func (s *DegreeService) Create(ctx context.Context, req CreateDegreeRequest) (*models.Degree, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid degree payload")
	}
	degree, err := s.buildDegree(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, degree); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create degree")
	}
	return degree, nil
}

// Update rewrites a degree's mutable fields.
func (s *DegreeService) Update(ctx context.Context, id string, req UpdateDegreeRequest) (*models.Degree, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid degree payload")
	}
	candidate, err := s.buildDegree(CreateDegreeRequest{Discipline: req.Discipline, Type: req.Type, Year: req.Year})
	if err != nil {
		return nil, err
	}
	degree, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "degree not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load degree")
	}

	degree.Discipline = candidate.Discipline
	degree.Type = candidate.Type
	degree.Year = candidate.Year
	degree.Version = req.Version

	if err := s.repo.Update(ctx, degree); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "degree not found")
		}
		return nil, apperrors.FromError(err)
	}
	return degree, nil
}

// Delete removes a degree and its graduate links.
func (s *DegreeService) Delete(ctx context.Context, id string, version int) error {
	if err := s.repo.Delete(ctx, id, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "degree not found")
		}
		return apperrors.FromError(err)
	}
	return nil
}
