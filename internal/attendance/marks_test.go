package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schooladmin/internal/calendar"
)

func TestMarkOverwritesSingleStatus(t *testing.T) {
	m := Marks{}
	require.NoError(t, m.Mark("April_day_1", Present))
	require.NoError(t, m.Mark("April_day_1", Absent))

	st, ok := m.Status("April_day_1")
	assert.True(t, ok)
	assert.Equal(t, Absent, st)
	assert.Len(t, m, 1)

	_, ok = m.Status("April_day_2")
	assert.False(t, ok, "unmarked days stay absent from the map")
}

func TestMarkRejects(t *testing.T) {
	m := Marks{}
	assert.ErrorIs(t, m.Mark("April_day_1", "L"), ErrInvalidStatus)
	assert.ErrorIs(t, m.Mark("Apr_day_1", Present), calendar.ErrBadDayKey)
	assert.Empty(t, m)
}

func TestCountOnlyQueriedMonth(t *testing.T) {
	m := Marks{
		"June_day_1":  "P",
		"June_day_2":  "P",
		"June_day_3":  "A",
		"June_day_4":  "L",
		"July_day_1":  "A",
		"junk":        "P",
		"June_day_30": "P",
	}
	got := Count(m, "June")
	assert.Equal(t, Tally{Present: 3, Absent: 1}, got)

	days, err := calendar.DaysInMonth(2024, "June")
	require.NoError(t, err)
	assert.LessOrEqual(t, got.Marked(), days)

	assert.Equal(t, Tally{Absent: 1}, Count(m, "July"))
	assert.Equal(t, Tally{}, Count(m, "March"))
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "attendance.May_day_9", FieldPath("May_day_9"))
}
