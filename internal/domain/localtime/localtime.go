// Package localtime converts UTC instants to wall-clock values in a bot's
// IANA time zone. All due-ness comparisons are done on the strings returned
// here, never on instants, so daylight-saving shifts cannot double-fire or
// skip a local day.
package localtime

import (
	"fmt"
	"time"

	"github.com/textra/chorebot/internal/domain"
)

// Local is the wall-clock view of one UTC instant in one zone.
type Local struct {
	TimeOfDay  string // "15:04"
	Date       string // "2006-01-02"
	Weekday    string // "Monday"
	DayOfMonth int
}

// Resolve converts instant to the wall clock of the given IANA zone.
// Returns domain.ErrInvalidTimeZone when the zone name is unknown.
func Resolve(instant time.Time, zone string) (Local, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Local{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimeZone, zone)
	}

	t := instant.In(loc)
	return Local{
		TimeOfDay:  t.Format("15:04"),
		Date:       t.Format("2006-01-02"),
		Weekday:    t.Weekday().String(),
		DayOfMonth: t.Day(),
	}, nil
}
