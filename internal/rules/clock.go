package rules

import (
	"fmt"
	"time"

	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

// MinYear is the lower bound accepted for degree and session years.
const MinYear = 1900

// ReferenceClock is the externally supplied notion of "now" used for all
// temporal rules. Callers always pass it explicitly, never a hidden global,
// so every rule is deterministic and replayable against historical clocks.
type ReferenceClock struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ClockFromTime derives a reference clock from a wall-clock instant.
func ClockFromTime(t time.Time) ReferenceClock {
	return ReferenceClock{Year: t.Year(), Month: int(t.Month())}
}

// ValidateClock rejects clocks outside the representable range.
func ValidateClock(c ReferenceClock) *apperrors.Error {
	if c.Year < MinYear {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "clock", "year", "min_year", fmt.Sprintf("reference year must be %d or later", MinYear))
	}
	if c.Month < 1 || c.Month > 12 {
		return apperrors.OnField(apperrors.ErrFieldConstraint, "clock", "month", "month_range", "reference month must be between 1 and 12")
	}
	return nil
}

// Before reports whether c is strictly earlier than other.
func (c ReferenceClock) Before(other ReferenceClock) bool {
	if c.Year != other.Year {
		return c.Year < other.Year
	}
	return c.Month < other.Month
}
