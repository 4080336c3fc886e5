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

type grantRepository interface {
	List(ctx context.Context, investigatorID string) ([]models.Grant, error)
	FindByNo(ctx context.Context, grantNo int) (*models.Grant, error)
	Create(ctx context.Context, grant *models.Grant) error
	Delete(ctx context.Context, grantNo int, version int) error
	FindSupport(ctx context.Context, grantNo int) (*models.Support, error)
	CreateSupport(ctx context.Context, support *models.Support) error
	UpdateSupport(ctx context.Context, support *models.Support) error
}

type lecturerReader interface {
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
}

// CreateGrantRequest describes the grant creation payload.
type CreateGrantRequest struct {
	GrantNo        int    `json:"grant_no" validate:"required,min=1"`
	Title          string `json:"title" validate:"required"`
	Agency         string `json:"agency" validate:"required"`
	InvestigatorID string `json:"investigator_id" validate:"required"`
}

// SupportRequest describes the funding window payload attached to a grant.
type SupportRequest struct {
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	TimePercent int       `json:"time_percent"`
	Version     int       `json:"version"`
}

// GrantService orchestrates research grants and their funding windows.
type GrantService struct {
	repo      grantRepository
	lecturers lecturerReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGrantService constructs GrantService.
func NewGrantService(repo grantRepository, lecturers lecturerReader, validate *validator.Validate, logger *zap.Logger) *GrantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrantService{repo: repo, lecturers: lecturers, validator: validate, logger: logger}
}

// List returns grants, optionally scoped to one investigator.
func (s *GrantService) List(ctx context.Context, investigatorID string) ([]models.Grant, error) {
	grants, err := s.repo.List(ctx, investigatorID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list grants")
	}
	return grants, nil
}

// Get loads a grant together with its funding window when present.
func (s *GrantService) Get(ctx context.Context, grantNo int) (*models.Grant, *models.Support, error) {
	grant, err := s.repo.FindByNo(ctx, grantNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, apperrors.Clone(apperrors.ErrNotFound, "grant not found")
		}
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load grant")
	}
	support, err := s.repo.FindSupport(ctx, grantNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return grant, nil, nil
		}
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load support")
	}
	return grant, support, nil
}

// Create registers a grant owned by an investigator lecturer.
func (s *GrantService) Create(ctx context.Context, req CreateGrantRequest) (*models.Grant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid grant payload")
	}
	if _, err := s.repo.FindByNo(ctx, req.GrantNo); err == nil {
		return nil, apperrors.Clone(apperrors.ErrConflict, "grant number already in use")
	} else if err != sql.ErrNoRows {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to check grant number")
	}
	if _, err := s.lecturers.FindByID(ctx, req.InvestigatorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrReferential, "investigator lecturer not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load investigator")
	}

	grant := &models.Grant{GrantNo: req.GrantNo, Title: req.Title, Agency: req.Agency, InvestigatorID: req.InvestigatorID}
	if err := s.repo.Create(ctx, grant); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create grant")
	}
	s.logger.Info("grant created", zap.Int("grant_no", grant.GrantNo), zap.String("investigator", grant.InvestigatorID))
	return grant, nil
}

// Delete removes a grant and its funding window.
func (s *GrantService) Delete(ctx context.Context, grantNo, version int) error {
	if err := s.repo.Delete(ctx, grantNo, version); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.Clone(apperrors.ErrNotFound, "grant not found")
		}
		return apperrors.FromError(err)
	}
	return nil
}

// SetSupport attaches or rewrites the funding window of a grant. The window
// must be ordered and the time percentage within bounds.
func (s *GrantService) SetSupport(ctx context.Context, grantNo int, req SupportRequest) (*models.Support, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid support payload")
	}
	if _, err := s.repo.FindByNo(ctx, grantNo); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "grant not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load grant")
	}

	candidate := models.Support{GrantNo: grantNo, StartDate: req.StartDate, EndDate: req.EndDate, TimePercent: req.TimePercent}
	if rerr := rules.ValidateSupport(candidate); rerr != nil {
		return nil, rerr
	}

	support, err := s.repo.FindSupport(ctx, grantNo)
	switch err {
	case nil:
		support.StartDate = req.StartDate
		support.EndDate = req.EndDate
		support.TimePercent = req.TimePercent
		support.Version = req.Version
		if err := s.repo.UpdateSupport(ctx, support); err != nil {
			if err == sql.ErrNoRows {
				return nil, apperrors.Clone(apperrors.ErrNotFound, "support not found")
			}
			return nil, apperrors.FromError(err)
		}
		return support, nil
	case sql.ErrNoRows:
		if err := s.repo.CreateSupport(ctx, &candidate); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create support")
		}
		return &candidate, nil
	default:
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load support")
	}
}
