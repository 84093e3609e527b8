package domain

// Recurrence kinds supported by a bot's schedule
const (
	RecurrenceDaily   = "Daily"
	RecurrenceWeekly  = "Weekly"
	RecurrenceMonthly = "Monthly"
)

// Delivery modes for the dispatcher
const (
	// DeliveryModeGroup sends one transport call with all recipient numbers
	// (the carrier creates a native group thread)
	DeliveryModeGroup = "group"
	// DeliveryModePerRecipient sends one transport call per recipient
	DeliveryModePerRecipient = "per_recipient"
)

// Delivery record statuses
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// GroupAddressPrefix marks a delivery record written for a single group send.
// The full address is "GROUP:" followed by the comma-joined recipient numbers.
const GroupAddressPrefix = "GROUP:"

// GroupRecipientLimit is the carrier limit for group MMS participants.
// Sends above this limit are attempted anyway but logged as a warning.
const GroupRecipientLimit = 10

// MessageFooter is appended to every scheduled chore notification.
const MessageFooter = "Reply STOP to opt out."

// WeekdayNames are the accepted values for a Weekly bot's weekday field.
var WeekdayNames = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
	"Saturday":  true,
	"Sunday":    true,
}
