package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iagbolahan/college-registry-api/internal/models"
	"github.com/iagbolahan/college-registry-api/pkg/config"
)

func TestNewCalendar(t *testing.T) {
	cal, err := NewCalendar(config.AcademicConfig{
		TerminalLevel: "GRADUATE",
		QuarterMonths: map[string][]int{"Q1": {1, 2, 3}, "Q2": {4, 5, 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.LevelGraduate, cal.TerminalLevel())
	assert.True(t, cal.Knows(models.QuarterFirst))
	assert.False(t, cal.Knows(models.QuarterFourth))
	assert.True(t, cal.Contains(models.QuarterSecond, 5))
	assert.Equal(t, 4, cal.FirstMonth(models.QuarterSecond))
}

func TestNewCalendarRejectsBadConfig(t *testing.T) {
	_, err := NewCalendar(config.AcademicConfig{TerminalLevel: "WIZARD", QuarterMonths: map[string][]int{"Q1": {1}}})
	assert.Error(t, err)

	_, err = NewCalendar(config.AcademicConfig{TerminalLevel: "GRADUATE", QuarterMonths: map[string][]int{"Q1": {0}}})
	assert.Error(t, err)

	_, err = NewCalendar(config.AcademicConfig{TerminalLevel: "GRADUATE"})
	assert.Error(t, err)
}

func TestClockFromTimeAndBefore(t *testing.T) {
	assert.True(t, ReferenceClock{2023, 12}.Before(ReferenceClock{2024, 1}))
	assert.True(t, ReferenceClock{2024, 3}.Before(ReferenceClock{2024, 4}))
	assert.False(t, ReferenceClock{2024, 4}.Before(ReferenceClock{2024, 4}))
}
