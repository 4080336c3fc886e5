package rules

import (
	"fmt"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

// PersonSnapshot is the read-only view of a person and their existing role
// records that role assignment is validated against. Orchestrators build it
// from store lookups before calling ValidateRoleAssignment.
type PersonSnapshot struct {
	RegNo        string
	Category     models.Category
	HasLecturer  bool
	HasStudent   bool
	HasGraduate  bool
	StudentLevel models.Level
}

// ValidateRoleAssignment enforces the category compatibility table gating the
// satellite role tables. It runs on every create and on every update that
// changes the owning person's category or the role linkage, never only at
// initial creation.
func ValidateRoleAssignment(snap PersonSnapshot, target models.RoleKind, cal Calendar) *apperrors.Error {
	switch target {
	case models.RoleLecturer:
		if snap.Category != models.CategoryTeaching {
			return incompatibleCategory(target, snap.Category, models.CategoryTeaching)
		}
	case models.RoleStudent:
		if snap.Category != models.CategoryStudent && snap.Category != models.CategoryGraduate {
			return incompatibleCategory(target, snap.Category, models.CategoryStudent, models.CategoryGraduate)
		}
	case models.RoleGraduate:
		if snap.Category != models.CategoryStudent && snap.Category != models.CategoryGraduate {
			return incompatibleCategory(target, snap.Category, models.CategoryStudent, models.CategoryGraduate)
		}
		if !snap.HasStudent {
			return missingPrerequisite(target, "a student record is required before graduate standing")
		}
		if snap.StudentLevel != cal.TerminalLevel() {
			return missingPrerequisite(target,
				fmt.Sprintf("student level must be %s, found %s", cal.TerminalLevel(), snap.StudentLevel))
		}
	case models.RoleResearcher:
		if !snap.HasLecturer && !snap.HasGraduate {
			return missingPrerequisite(target, "a lecturer or graduate record is required")
		}
	default:
		return apperrors.OnField(apperrors.ErrFieldConstraint, "role", "kind", "known_role_kind",
			fmt.Sprintf("unknown role kind %q", target))
	}
	return nil
}

func incompatibleCategory(target models.RoleKind, actual models.Category, required ...models.Category) *apperrors.Error {
	msg := fmt.Sprintf("role %s requires category %v, person has %s", target, required, actual)
	return apperrors.OnField(apperrors.ErrIncompatibleRole, string(target), "category", "role_category_compatibility", msg)
}

func missingPrerequisite(target models.RoleKind, reason string) *apperrors.Error {
	msg := fmt.Sprintf("cannot assign role %s: %s", target, reason)
	return apperrors.OnField(apperrors.ErrMissingPrereqRole, string(target), "role", "role_prerequisite", msg)
}
