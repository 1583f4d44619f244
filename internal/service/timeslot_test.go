package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

func TestParseClock(t *testing.T) {
	cases := map[string]struct {
		in      string
		want    int
		wantErr bool
	}{
		"midnight":       {in: "00:00", want: 0},
		"morning":        {in: "10:30", want: 630},
		"last minute":    {in: "23:59", want: 1439},
		"hour overflow":  {in: "24:00", wantErr: true},
		"single digit":   {in: "9:00", wantErr: true},
		"minute garbage": {in: "10:xx", wantErr: true},
		"no colon":       {in: "1030", wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewTimeSlotRejectsInvertedRange(t *testing.T) {
	_, err := NewTimeSlot(models.Monday, "11:00", "10:00")
	assert.Error(t, err)
	_, err = NewTimeSlot(models.Monday, "10:00", "10:00")
	assert.Error(t, err)
	_, err = NewTimeSlot("FUNDAY", "10:00", "11:00")
	assert.Error(t, err)
}

func TestHasTimeConflict(t *testing.T) {
	existing := []models.OfferedCourseClassSchedule{
		{DayOfWeek: models.Monday, StartTime: "10:00", EndTime: "11:00"},
	}

	overlapping, err := NewTimeSlot(models.Monday, "10:30", "11:30")
	require.NoError(t, err)
	assert.True(t, HasTimeConflict(existing, overlapping))

	touching, err := NewTimeSlot(models.Monday, "11:00", "12:00")
	require.NoError(t, err)
	assert.False(t, HasTimeConflict(existing, touching))

	before, err := NewTimeSlot(models.Monday, "09:00", "10:00")
	require.NoError(t, err)
	assert.False(t, HasTimeConflict(existing, before))

	enclosing, err := NewTimeSlot(models.Monday, "09:00", "12:00")
	require.NoError(t, err)
	assert.True(t, HasTimeConflict(existing, enclosing))

	otherDay, err := NewTimeSlot(models.Tuesday, "10:30", "11:30")
	require.NoError(t, err)
	assert.False(t, HasTimeConflict(existing, otherDay))
}
