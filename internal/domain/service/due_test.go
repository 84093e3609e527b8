package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textra/chorebot/internal/domain"
	"github.com/textra/chorebot/internal/domain/entity"
)

// dueCalc builds a calculator with no collaborators; ComputeDue only reads
// its arguments.
func dueCalc() *cycleService {
	return newCycle(nil, nil, nil, domain.DeliveryModePerRecipient, quietLogger())
}

// localInstant returns the UTC instant at which the given zone's wall
// clock reads the given local time.
func localInstant(t *testing.T, zone string, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(zone)
	require.NoError(t, err)
	return time.Date(year, month, day, hour, min, 0, 0, loc).UTC()
}

func TestComputeDue_Daily(t *testing.T) {
	calc := dueCalc()

	bot := &entity.Bot{
		ID:                1,
		Timezone:          "America/New_York",
		Recurrence:        domain.RecurrenceDaily,
		ScheduleTimeLocal: "09:00",
		IsActive:          true,
	}

	tests := []struct {
		name         string
		now          time.Time
		lastSentDate string
		wantDue      bool
	}{
		{
			name:    "due at exactly 09:00 local",
			now:     localInstant(t, "America/New_York", 2024, 3, 11, 9, 0),
			wantDue: true,
		},
		{
			name:    "not due one minute late",
			now:     localInstant(t, "America/New_York", 2024, 3, 11, 9, 1),
			wantDue: false,
		},
		{
			name:         "not due when already fired this local day",
			now:          localInstant(t, "America/New_York", 2024, 3, 11, 9, 0),
			lastSentDate: "2024-03-11",
			wantDue:      false,
		},
		{
			name:         "due again the next local day",
			now:          localInstant(t, "America/New_York", 2024, 3, 12, 9, 0),
			lastSentDate: "2024-03-11",
			wantDue:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := *bot
			b.LastSentDate = tt.lastSentDate

			due := calc.ComputeDue(tt.now, []*entity.Bot{&b})
			if tt.wantDue {
				require.Len(t, due, 1)
			} else {
				assert.Empty(t, due)
			}
		})
	}
}

// A Weekly bot fires on exactly one of any 7 consecutive local days, even
// with a daylight-saving transition inside the window (America/New_York
// sprang forward on 2024-03-10).
func TestComputeDue_WeeklyAcrossDSTTransition(t *testing.T) {
	calc := dueCalc()

	bot := &entity.Bot{
		ID:                1,
		Timezone:          "America/New_York",
		Recurrence:        domain.RecurrenceWeekly,
		Weekday:           "Wednesday",
		ScheduleTimeLocal: "09:00",
		IsActive:          true,
	}

	dueDays := 0
	for day := 6; day <= 12; day++ {
		now := localInstant(t, "America/New_York", 2024, 3, day, 9, 0)
		if len(calc.ComputeDue(now, []*entity.Bot{bot})) == 1 {
			dueDays++
			assert.Equal(t, 6, day, "March 6 2024 is the only Wednesday in the window")
		}
	}

	assert.Equal(t, 1, dueDays)
}

func TestComputeDue_Monthly(t *testing.T) {
	calc := dueCalc()

	bot := &entity.Bot{
		ID:                1,
		Timezone:          "UTC",
		Recurrence:        domain.RecurrenceMonthly,
		DayOfMonth:        15,
		ScheduleTimeLocal: "12:00",
		IsActive:          true,
	}

	onThe15th := time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)
	require.Len(t, calc.ComputeDue(onThe15th, []*entity.Bot{bot}), 1)

	onThe16th := time.Date(2024, 4, 16, 12, 0, 0, 0, time.UTC)
	assert.Empty(t, calc.ComputeDue(onThe16th, []*entity.Bot{bot}))
}

func TestComputeDue_SkipsInactiveAndBadZones(t *testing.T) {
	calc := dueCalc()
	now := time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)

	inactive := &entity.Bot{
		ID: 1, Timezone: "UTC", Recurrence: domain.RecurrenceDaily,
		ScheduleTimeLocal: "12:00", IsActive: false,
	}
	badZone := &entity.Bot{
		ID: 2, Timezone: "Not/AZone", Recurrence: domain.RecurrenceDaily,
		ScheduleTimeLocal: "12:00", IsActive: true,
	}
	good := &entity.Bot{
		ID: 3, Timezone: "UTC", Recurrence: domain.RecurrenceDaily,
		ScheduleTimeLocal: "12:00", IsActive: true,
	}

	// a bad zone skips that bot, never the batch
	due := calc.ComputeDue(now, []*entity.Bot{inactive, badZone, good})
	require.Len(t, due, 1)
	assert.Equal(t, int64(3), due[0].ID)
}

func TestComputeDue_Idempotent(t *testing.T) {
	calc := dueCalc()
	now := localInstant(t, "America/New_York", 2024, 3, 11, 9, 0)

	bots := []*entity.Bot{
		{ID: 1, Timezone: "America/New_York", Recurrence: domain.RecurrenceDaily, ScheduleTimeLocal: "09:00", IsActive: true},
		{ID: 2, Timezone: "America/New_York", Recurrence: domain.RecurrenceDaily, ScheduleTimeLocal: "10:00", IsActive: true},
	}

	first := calc.ComputeDue(now, bots)
	second := calc.ComputeDue(now, bots)

	require.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Empty(t, first[0].LastSentDate, "due detection must not mutate the bot")
}
