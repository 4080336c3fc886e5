package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
	apperrors "github.com/iagbolahan/college-registry-api/pkg/errors"
)

func session(year int, qtr models.Quarter) models.Session {
	return models.Session{ID: "s1", SectionNo: 1, Year: year, Quarter: qtr}
}

func TestClassify(t *testing.T) {
	cal := DefaultCalendar()

	cases := []struct {
		name   string
		year   int
		qtr    models.Quarter
		clock  ReferenceClock
		expect models.SessionStatus
	}{
		{"future year", 2025, models.QuarterFirst, ReferenceClock{2024, 5}, models.StatusPending},
		{"past year", 2023, models.QuarterFourth, ReferenceClock{2024, 1}, models.StatusHistorical},
		{"same year inside quarter", 2024, models.QuarterSecond, ReferenceClock{2024, 5}, models.StatusCurrent},
		{"same year quarter ahead", 2024, models.QuarterFourth, ReferenceClock{2024, 5}, models.StatusPending},
		{"same year quarter elapsed", 2024, models.QuarterSecond, ReferenceClock{2024, 9}, models.StatusHistorical},
		{"first month of quarter", 2024, models.QuarterThird, ReferenceClock{2024, 7}, models.StatusCurrent},
		{"last month of quarter", 2024, models.QuarterThird, ReferenceClock{2024, 9}, models.StatusCurrent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(session(tc.year, tc.qtr), tc.clock, cal)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestClassifyAcrossAdvancingClocks(t *testing.T) {
	cal := DefaultCalendar()
	s := session(2024, models.QuarterSecond)

	assert.Equal(t, models.StatusCurrent, Classify(s, ReferenceClock{2024, 5}, cal))
	assert.Equal(t, models.StatusHistorical, Classify(s, ReferenceClock{2024, 9}, cal))
	assert.Equal(t, models.StatusHistorical, Classify(s, ReferenceClock{2025, 1}, cal))
}

func TestClassifyIdempotent(t *testing.T) {
	cal := DefaultCalendar()
	s := session(2022, models.QuarterThird)
	clock := ReferenceClock{2023, 4}

	first := Classify(s, clock, cal)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(s, clock, cal))
	}
}

// A session must never classify as CURRENT again after any earlier clock
// already classified it HISTORICAL.
func TestClassifyMonotone(t *testing.T) {
	cal := DefaultCalendar()

	for _, qtr := range []models.Quarter{models.QuarterFirst, models.QuarterSecond, models.QuarterThird, models.QuarterFourth} {
		s := session(2024, qtr)
		seenHistorical := false
		for year := 2023; year <= 2026; year++ {
			for month := 1; month <= 12; month++ {
				status := Classify(s, ReferenceClock{year, month}, cal)
				if seenHistorical {
					require.NotEqual(t, models.StatusCurrent, status,
						"session %s reverted to CURRENT at %d-%02d", qtr, year, month)
					require.NotEqual(t, models.StatusPending, status,
						"session %s reverted to PENDING at %d-%02d", qtr, year, month)
				}
				if status == models.StatusHistorical {
					seenHistorical = true
				}
			}
		}
		assert.True(t, seenHistorical)
	}
}

func TestEnsureCurrent(t *testing.T) {
	cal := DefaultCalendar()

	err := EnsureCurrent(session(2024, models.QuarterSecond), ReferenceClock{2024, 5}, cal)
	require.Nil(t, err)

	err = EnsureCurrent(session(2024, models.QuarterSecond), ReferenceClock{2024, 9}, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrNotCurrentPeriod.Code, err.Code)

	err = EnsureCurrent(session(2023, models.QuarterSecond), ReferenceClock{2024, 5}, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrNotCurrentPeriod.Code, err.Code)
}

func TestEnsureArchivable(t *testing.T) {
	cal := DefaultCalendar()
	clock := ReferenceClock{2024, 5}

	err := EnsureArchivable(session(2023, models.QuarterFourth), models.GradeVeryGood, clock, cal)
	require.Nil(t, err)

	err = EnsureArchivable(session(2024, models.QuarterSecond), models.GradeVeryGood, clock, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrNotHistoricalPeriod.Code, err.Code)

	err = EnsureArchivable(session(2023, models.QuarterFourth), "", clock, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrGradeRequired.Code, err.Code)

	err = EnsureArchivable(session(2023, models.QuarterFourth), models.Grade("Z"), clock, cal)
	require.NotNil(t, err)
	assert.Equal(t, apperrors.ErrFieldConstraint.Code, err.Code)
}
