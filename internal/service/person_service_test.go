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

type mockPersonRepo struct {
	persons  map[string]models.Person
	flags    map[string]models.RoleFlags
	updated  *models.Person
	conflict bool
	deleted  []string
}

func (m *mockPersonRepo) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int, error) {
	var out []models.Person
	for _, p := range m.persons {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockPersonRepo) FindByRegNo(ctx context.Context, regNo string) (*models.Person, error) {
	if p, ok := m.persons[regNo]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPersonRepo) Create(ctx context.Context, person *models.Person) error {
	if m.persons == nil {
		m.persons = make(map[string]models.Person)
	}
	person.Version = 1
	m.persons[person.RegNo] = *person
	return nil
}

func (m *mockPersonRepo) Update(ctx context.Context, person *models.Person) error {
	if m.conflict {
		return apperrors.ErrConflict
	}
	if _, ok := m.persons[person.RegNo]; !ok {
		return sql.ErrNoRows
	}
	person.Version++
	m.persons[person.RegNo] = *person
	m.updated = person
	return nil
}

func (m *mockPersonRepo) RoleFlags(ctx context.Context, regNo string) (models.RoleFlags, error) {
	return m.flags[regNo], nil
}

func (m *mockPersonRepo) Delete(ctx context.Context, regNo string, version int) error {
	if _, ok := m.persons[regNo]; !ok {
		return sql.ErrNoRows
	}
	delete(m.persons, regNo)
	m.deleted = append(m.deleted, regNo)
	return nil
}

func basePerson() models.Person {
	return models.Person{
		RegNo:     "P-100",
		FirstName: "Ngozi",
		LastName:  "Eze",
		Birthday:  time.Date(2000, 5, 20, 0, 0, 0, 0, time.UTC),
		Category:  models.CategoryStudent,
		Sex:       models.SexFemale,
		Version:   1,
	}
}

func updateReqFrom(p models.Person) UpdatePersonRequest {
	return UpdatePersonRequest{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Birthday:  p.Birthday,
		Category:  string(p.Category),
		Sex:       string(p.Sex),
		Version:   p.Version,
	}
}

func TestCreatePersonRejectsUnknownCategory(t *testing.T) {
	svc := NewPersonService(&mockPersonRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreatePersonRequest{
		RegNo:     "P-1",
		FirstName: "Ada",
		LastName:  "Obi",
		Birthday:  time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
		Category:  "STAFF",
		Sex:       "F",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldConstraint)
}

func TestCreatePersonRejectsDuplicateRegNo(t *testing.T) {
	repo := &mockPersonRepo{persons: map[string]models.Person{"P-100": basePerson()}}
	svc := NewPersonService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreatePersonRequest{
		RegNo:     "P-100",
		FirstName: "Ada",
		LastName:  "Obi",
		Birthday:  time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
		Category:  "STUDENT",
		Sex:       "F",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUpdatePersonFreezesCategoryWhileRolesExist(t *testing.T) {
	repo := &mockPersonRepo{
		persons: map[string]models.Person{"P-100": basePerson()},
		flags:   map[string]models.RoleFlags{"P-100": {HasStudent: true}},
	}
	svc := NewPersonService(repo, nil, nil)

	req := updateReqFrom(basePerson())
	req.Category = string(models.CategoryTeaching)
	_, err := svc.Update(context.Background(), "P-100", req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCategoryImmutable)
}

func TestUpdatePersonAllowsCategoryChangeWithoutRoles(t *testing.T) {
	repo := &mockPersonRepo{
		persons: map[string]models.Person{"P-100": basePerson()},
		flags:   map[string]models.RoleFlags{"P-100": {}},
	}
	svc := NewPersonService(repo, nil, nil)

	req := updateReqFrom(basePerson())
	req.Category = string(models.CategoryTeaching)
	person, err := svc.Update(context.Background(), "P-100", req)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTeaching, person.Category)
}

func TestUpdatePersonSurfacesVersionConflict(t *testing.T) {
	repo := &mockPersonRepo{
		persons:  map[string]models.Person{"P-100": basePerson()},
		flags:    map[string]models.RoleFlags{"P-100": {}},
		conflict: true,
	}
	svc := NewPersonService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "P-100", updateReqFrom(basePerson()))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeletePersonMissing(t *testing.T) {
	svc := NewPersonService(&mockPersonRepo{}, nil, nil)

	err := svc.Delete(context.Background(), "P-gone", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
