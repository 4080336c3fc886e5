package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

type mockGrantRepo struct {
	grants   map[int]models.Grant
	supports map[int]models.Support
}

func (m *mockGrantRepo) List(ctx context.Context, investigatorID string) ([]models.Grant, error) {
	var out []models.Grant
	for _, g := range m.grants {
		if investigatorID == "" || g.InvestigatorID == investigatorID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockGrantRepo) FindByNo(ctx context.Context, grantNo int) (*models.Grant, error) {
	if g, ok := m.grants[grantNo]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGrantRepo) Create(ctx context.Context, grant *models.Grant) error {
	if m.grants == nil {
		m.grants = make(map[int]models.Grant)
	}
	grant.Version = 1
	m.grants[grant.GrantNo] = *grant
	return nil
}

func (m *mockGrantRepo) Delete(ctx context.Context, grantNo int, version int) error {
	if _, ok := m.grants[grantNo]; !ok {
		return sql.ErrNoRows
	}
	delete(m.grants, grantNo)
	delete(m.supports, grantNo)
	return nil
}

func (m *mockGrantRepo) FindSupport(ctx context.Context, grantNo int) (*models.Support, error) {
	if s, ok := m.supports[grantNo]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGrantRepo) CreateSupport(ctx context.Context, support *models.Support) error {
	if m.supports == nil {
		m.supports = make(map[int]models.Support)
	}
	support.Version = 1
	m.supports[support.GrantNo] = *support
	return nil
}

func (m *mockGrantRepo) UpdateSupport(ctx context.Context, support *models.Support) error {
	if _, ok := m.supports[support.GrantNo]; !ok {
		return sql.ErrNoRows
	}
	m.supports[support.GrantNo] = *support
	return nil
}

func newTestGrantService(repo *mockGrantRepo, lecturers *mockLecturerRepo) *GrantService {
	if repo == nil {
		repo = &mockGrantRepo{}
	}
	if lecturers == nil {
		lecturers = &mockLecturerRepo{lecturers: map[string]models.Lecturer{"lec-1": {ID: "lec-1"}}}
	}
	return NewGrantService(repo, lecturers, nil, nil)
}

func TestCreateGrantRequiresInvestigatorLecturer(t *testing.T) {
	svc := newTestGrantService(nil, &mockLecturerRepo{})

	_, err := svc.Create(context.Background(), CreateGrantRequest{GrantNo: 7, Title: "Soil Study", Agency: "NSF", InvestigatorID: "lec-gone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrReferential)
}

func TestCreateGrantRejectsDuplicateNumber(t *testing.T) {
	repo := &mockGrantRepo{grants: map[int]models.Grant{7: {GrantNo: 7, Version: 1}}}
	svc := newTestGrantService(repo, nil)

	_, err := svc.Create(context.Background(), CreateGrantRequest{GrantNo: 7, Title: "Soil Study", Agency: "NSF", InvestigatorID: "lec-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSetSupportRejectsInvertedWindow(t *testing.T) {
	repo := &mockGrantRepo{grants: map[int]models.Grant{7: {GrantNo: 7, Version: 1}}}
	svc := newTestGrantService(repo, nil)

	_, err := svc.SetSupport(context.Background(), 7, SupportRequest{
		StartDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TimePercent: 50,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}

func TestSetSupportRejectsPercentOutOfRange(t *testing.T) {
	repo := &mockGrantRepo{grants: map[int]models.Grant{7: {GrantNo: 7, Version: 1}}}
	svc := newTestGrantService(repo, nil)

	_, err := svc.SetSupport(context.Background(), 7, SupportRequest{
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		TimePercent: 150,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}

func TestSetSupportCreatesThenUpdates(t *testing.T) {
	repo := &mockGrantRepo{grants: map[int]models.Grant{7: {GrantNo: 7, Version: 1}}}
	svc := newTestGrantService(repo, nil)

	window := SupportRequest{
		StartDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		TimePercent: 40,
	}
	support, err := svc.SetSupport(context.Background(), 7, window)
	require.NoError(t, err)
	assert.Equal(t, 40, support.TimePercent)

	window.TimePercent = 60
	window.Version = 1
	support, err = svc.SetSupport(context.Background(), 7, window)
	require.NoError(t, err)
	assert.Equal(t, 60, support.TimePercent)
}
