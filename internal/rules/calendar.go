package rules

import (
	"fmt"
	"sort"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/pkg/config"
)

// Calendar holds the quarter-to-month table and the terminal student level.
// It is built once from configuration at process start and never mutated.
type Calendar struct {
	terminalLevel models.Level
	quarters      map[models.Quarter][]int
}

// NewCalendar validates and freezes the academic configuration.
func NewCalendar(cfg config.AcademicConfig) (Calendar, error) {
	level := models.Level(cfg.TerminalLevel)
	if !level.Valid() {
		return Calendar{}, fmt.Errorf("unknown terminal level %q", cfg.TerminalLevel)
	}

	quarters := make(map[models.Quarter][]int, len(cfg.QuarterMonths))
	for name, months := range cfg.QuarterMonths {
		if len(months) == 0 {
			return Calendar{}, fmt.Errorf("quarter %q has no months", name)
		}
		sorted := append([]int(nil), months...)
		sort.Ints(sorted)
		for _, m := range sorted {
			if m < 1 || m > 12 {
				return Calendar{}, fmt.Errorf("quarter %q month %d out of range", name, m)
			}
		}
		quarters[models.Quarter(name)] = sorted
	}
	if len(quarters) == 0 {
		return Calendar{}, fmt.Errorf("quarter calendar must not be empty")
	}

	return Calendar{terminalLevel: level, quarters: quarters}, nil
}

// DefaultCalendar returns the standard four-quarter calendar with GRADUATE as
// the terminal level. Tests and local tooling use it directly.
func DefaultCalendar() Calendar {
	return Calendar{
		terminalLevel: models.LevelGraduate,
		quarters: map[models.Quarter][]int{
			models.QuarterFirst:  {1, 2, 3},
			models.QuarterSecond: {4, 5, 6},
			models.QuarterThird:  {7, 8, 9},
			models.QuarterFourth: {10, 11, 12},
		},
	}
}

// TerminalLevel is the student level denoting graduate standing.
func (c Calendar) TerminalLevel() models.Level {
	return c.terminalLevel
}

// Knows reports whether the quarter exists in the calendar.
func (c Calendar) Knows(q models.Quarter) bool {
	_, ok := c.quarters[q]
	return ok
}

// Contains reports whether the month falls inside the quarter.
func (c Calendar) Contains(q models.Quarter, month int) bool {
	for _, m := range c.quarters[q] {
		if m == month {
			return true
		}
	}
	return false
}

// FirstMonth returns the earliest month of the quarter, or 0 when the quarter
// is unknown.
func (c Calendar) FirstMonth(q models.Quarter) int {
	months := c.quarters[q]
	if len(months) == 0 {
		return 0
	}
	return months[0]
}
