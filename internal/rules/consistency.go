package rules

import (
	"fmt"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

// Relationship consistency rules. Each validator is a pure function of the
// candidate record plus, where years are involved, a reference clock.

// ValidateStudentRecord rejects a student whose minor and major resolve to the
// same department. Either side may be absent.
func ValidateStudentRecord(rec models.StudentRecord) *apperrors.Error {
	if rec.MinorDept == nil || rec.MajorDept == nil {
		return nil
	}
	if *rec.MinorDept == *rec.MajorDept {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "student", "major", "minor_major_distinct",
			fmt.Sprintf("minor and major cannot both be %q", *rec.MajorDept))
	}
	return nil
}

// ValidateDegree requires the degree year to lie strictly in the past:
// within [1900, clock.Year-1].
func ValidateDegree(d models.Degree, clock ReferenceClock) *apperrors.Error {
	if d.Year < MinYear || d.Year > clock.Year-1 {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "degree", "year", "degree_year_range",
			fmt.Sprintf("year must be between %d and %d, got %d", MinYear, clock.Year-1, d.Year))
	}
	return nil
}

// ValidateSession requires the offering year within [1900, clock.Year] and a
// quarter known to the calendar.
func ValidateSession(s models.Session, clock ReferenceClock, cal Calendar) *apperrors.Error {
	if s.Year < MinYear || s.Year > clock.Year {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "session", "year", "session_year_range",
			fmt.Sprintf("year must be between %d and %d, got %d", MinYear, clock.Year, s.Year))
	}
	if !cal.Knows(s.Quarter) {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "session", "quarter", "known_quarter",
			fmt.Sprintf("unknown quarter %q", s.Quarter))
	}
	return nil
}

// ValidateSupport requires a non-inverted funding window and a spend
// percentage within [0,100].
func ValidateSupport(s models.Support) *apperrors.Error {
	if s.StartDate.After(s.EndDate) {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "support", "start_date", "support_date_order",
			"start date must not be after end date")
	}
	if s.TimePercent < 0 || s.TimePercent > 100 {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "support", "time_percent", "support_percent_range",
			fmt.Sprintf("time percentage must be between 0 and 100, got %d", s.TimePercent))
	}
	return nil
}

// ValidateDepartment requires a designated head of department to be drawn
// from the department's own lecturer membership.
func ValidateDepartment(d models.Department) *apperrors.Error {
	if d.HODLecturerID == nil {
		return nil
	}
	for _, id := range d.LecturerIDs {
		if id == *d.HODLecturerID {
			return nil
		}
	}
	return apperrors.OnField(apperrors.ErrFieldConstraint, "department", "hod_lecturer_id", "hod_in_membership",
		"head of department must be a member of the department's lecturers")
}
