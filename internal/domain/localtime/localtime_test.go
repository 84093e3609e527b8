package localtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textra/chorebot/internal/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		instant time.Time
		zone    string
		want    Local
	}{
		{
			name:    "New York under standard time",
			instant: time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC), // UTC-5
			zone:    "America/New_York",
			want:    Local{TimeOfDay: "09:00", Date: "2024-03-09", Weekday: "Saturday", DayOfMonth: 9},
		},
		{
			name:    "New York under daylight time",
			instant: time.Date(2024, 3, 11, 13, 0, 0, 0, time.UTC), // UTC-4 after March 10 transition
			zone:    "America/New_York",
			want:    Local{TimeOfDay: "09:00", Date: "2024-03-11", Weekday: "Monday", DayOfMonth: 11},
		},
		{
			name:    "date rolls over across midnight",
			instant: time.Date(2024, 6, 1, 2, 30, 0, 0, time.UTC),
			zone:    "America/Los_Angeles", // 19:30 the previous day
			want:    Local{TimeOfDay: "19:30", Date: "2024-05-31", Weekday: "Friday", DayOfMonth: 31},
		},
		{
			name:    "UTC passthrough",
			instant: time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC),
			zone:    "UTC",
			want:    Local{TimeOfDay: "09:05", Date: "2024-01-15", Weekday: "Monday", DayOfMonth: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.instant, tt.zone)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_InvalidZone(t *testing.T) {
	_, err := Resolve(time.Now(), "Mars/Olympus_Mons")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTimeZone)
}

func TestResolve_PureFunction(t *testing.T) {
	instant := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	first, err := Resolve(instant, "America/New_York")
	require.NoError(t, err)
	second, err := Resolve(instant, "America/New_York")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
