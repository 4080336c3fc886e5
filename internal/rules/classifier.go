package rules

import (
	"fmt"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

// Classify derives the temporal status of a session against a reference
// clock. It is a pure function: same inputs, same status, no hidden state.
//
// A future year is PENDING. Within the reference year the session is CURRENT
// while the reference month falls inside its quarter, PENDING while the
// quarter is still ahead, and HISTORICAL once the quarter has elapsed. Any
// past year is HISTORICAL. Because the reference clock only advances, a
// session never moves backward out of HISTORICAL.
func Classify(s models.Session, clock ReferenceClock, cal Calendar) models.SessionStatus {
	switch {
	case s.Year > clock.Year:
		return models.StatusPending
	case s.Year < clock.Year:
		return models.StatusHistorical
	}

	if cal.Contains(s.Quarter, clock.Month) {
		return models.StatusCurrent
	}
	first := cal.FirstMonth(s.Quarter)
	if first == 0 || clock.Month < first {
		// Unknown quarters stay out of both specialised views; validation
		// rejects them before anything is committed.
		return models.StatusPending
	}
	return models.StatusHistorical
}

// EnsureCurrent gates promotion into the current roster: the session must
// classify as CURRENT for the supplied clock.
func EnsureCurrent(s models.Session, clock ReferenceClock, cal Calendar) *apperrors.Error {
	if status := Classify(s, clock, cal); status != models.StatusCurrent {
		return apperrors.OnField(apperrors.ErrNotCurrentPeriod, "session", "quarter", "promote_current",
			fmt.Sprintf("session %d/%s classifies as %s for %d-%02d", s.Year, s.Quarter, status, clock.Year, clock.Month))
	}
	return nil
}

// EnsureArchivable gates promotion into the archive: the session must
// classify as HISTORICAL and a valid grade must accompany the snapshot.
func EnsureArchivable(s models.Session, grade models.Grade, clock ReferenceClock, cal Calendar) *apperrors.Error {
	if status := Classify(s, clock, cal); status != models.StatusHistorical {
		return apperrors.OnField(apperrors.ErrNotHistoricalPeriod, "session", "quarter", "promote_historical",
			fmt.Sprintf("session %d/%s classifies as %s for %d-%02d", s.Year, s.Quarter, status, clock.Year, clock.Month))
	}
	if grade == "" {
		return apperrors.OnField(apperrors.ErrGradeRequired, "session", "grade", "archive_grade_required",
			"a grade must accompany a historical snapshot")
	}
	if !grade.Valid() {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "session", "grade", "known_grade",
			fmt.Sprintf("unknown grade %q", grade))
	}
	return nil
}
