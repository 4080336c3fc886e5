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

type mockDegreeRepo struct {
	degrees map[string]models.Degree
}

func (m *mockDegreeRepo) List(ctx context.Context) ([]models.Degree, error) {
	var out []models.Degree
	for _, d := range m.degrees {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDegreeRepo) FindByID(ctx context.Context, id string) (*models.Degree, error) {
	if d, ok := m.degrees[id]; ok {
		return &d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDegreeRepo) Create(ctx context.Context, degree *models.Degree) error {
	if m.degrees == nil {
		m.degrees = make(map[string]models.Degree)
	}
	if degree.ID == "" {
		degree.ID = "new-degree"
	}
	degree.Version = 1
	m.degrees[degree.ID] = *degree
	return nil
}

func (m *mockDegreeRepo) Update(ctx context.Context, degree *models.Degree) error {
	if _, ok := m.degrees[degree.ID]; !ok {
		return sql.ErrNoRows
	}
	m.degrees[degree.ID] = *degree
	return nil
}

func (m *mockDegreeRepo) Delete(ctx context.Context, id string, version int) error {
	if _, ok := m.degrees[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.degrees, id)
	return nil
}

func newTestDegreeService(repo *mockDegreeRepo) *DegreeService {
	if repo == nil {
		repo = &mockDegreeRepo{}
	}
	svc := NewDegreeService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateDegreeRejectsCurrentYear(t *testing.T) {
	svc := newTestDegreeService(nil)

	_, err := svc.Create(context.Background(), CreateDegreeRequest{Discipline: "SCIENCE", Type: "MASTER", Year: 2026})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}

func TestCreateDegreeRejectsAncientYear(t *testing.T) {
	svc := newTestDegreeService(nil)

	_, err := svc.Create(context.Background(), CreateDegreeRequest{Discipline: "SCIENCE", Type: "MASTER", Year: 1899})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}

func TestCreateDegreeAcceptsPastYear(t *testing.T) {
	repo := &mockDegreeRepo{}
	svc := newTestDegreeService(repo)

	degree, err := svc.Create(context.Background(), CreateDegreeRequest{Discipline: "ENGINEERING", Type: "DOCTORATE", Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, models.DegreeDoctorate, degree.Type)
	assert.Equal(t, 2025, degree.Year)
}

func TestCreateDegreeRejectsUnknownDiscipline(t *testing.T) {
	svc := newTestDegreeService(nil)

	_, err := svc.Create(context.Background(), CreateDegreeRequest{Discipline: "ALCHEMY", Type: "MASTER", Year: 2020})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}
