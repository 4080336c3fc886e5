package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

func TestValidateRoleAssignmentLecturer(t *testing.T) {
	cal := DefaultCalendar()

	err := ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryTeaching}, models.RoleLecturer, cal)
	assert.Nil(t, err)

	err = ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryStudent}, models.RoleLecturer, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrIncompatibleRole.Code, err.Code)
	assert.Equal(t, "category", err.Field)
}

func TestValidateRoleAssignmentStudent(t *testing.T) {
	cal := DefaultCalendar()

	assert.Nil(t, ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryStudent}, models.RoleStudent, cal))
	assert.Nil(t, ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryGraduate}, models.RoleStudent, cal))

	err := ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryTeaching}, models.RoleStudent, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrIncompatibleRole.Code, err.Code)
}

func TestValidateRoleAssignmentGraduate(t *testing.T) {
	cal := DefaultCalendar()

	snap := PersonSnapshot{
		Category:     models.CategoryStudent,
		HasStudent:   true,
		StudentLevel: models.LevelGraduate,
	}
	assert.Nil(t, ValidateRoleAssignment(snap, models.RoleGraduate, cal))

	// Non-terminal level cannot advance to graduate standing.
	snap.StudentLevel = models.LevelFreshman
	err := ValidateRoleAssignment(snap, models.RoleGraduate, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrMissingPrereqRole.Code, err.Code)

	// Missing student record altogether.
	err = ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryGraduate}, models.RoleGraduate, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrMissingPrereqRole.Code, err.Code)

	err = ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryTeaching, HasStudent: true, StudentLevel: models.LevelGraduate}, models.RoleGraduate, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrIncompatibleRole.Code, err.Code)
}

func TestValidateRoleAssignmentResearcher(t *testing.T) {
	cal := DefaultCalendar()

	assert.Nil(t, ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryTeaching, HasLecturer: true}, models.RoleResearcher, cal))
	assert.Nil(t, ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryGraduate, HasStudent: true, HasGraduate: true}, models.RoleResearcher, cal))

	// A student at non-terminal level has no graduate record and cannot
	// become a researcher.
	err := ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryStudent, HasStudent: true}, models.RoleResearcher, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrMissingPrereqRole.Code, err.Code)
}

func TestValidateRoleAssignmentUnknownKind(t *testing.T) {
	err := ValidateRoleAssignment(PersonSnapshot{Category: models.CategoryTeaching}, models.RoleKind("DEAN"), DefaultCalendar())
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrFieldConstraint.Code, err.Code)
}
