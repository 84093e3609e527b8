package entity

import "time"

// Bot is one recurring chore notification group.
type Bot struct {
	ID                int64
	Name              string
	Timezone          string // IANA name, e.g. "America/New_York"
	Recurrence        string // Daily, Weekly or Monthly
	ScheduleTimeLocal string // HH:MM in the bot's local time
	Weekday           string // set when Recurrence is Weekly
	DayOfMonth        int    // 1-28, set when Recurrence is Monthly
	IsActive          bool
	LastSentDate      string // YYYY-MM-DD local date of the last send, empty if never
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Member is a person eligible to receive a bot's messages.
type Member struct {
	ID          int64
	BotID       int64
	DisplayName string
	PhoneE164   string
	IsOptedIn   bool
	CreatedAt   time.Time
}

// Chore is one rotating unit of obligation, unique by (bot, title).
type Chore struct {
	ID    int64
	BotID int64
	Title string
}

// Assignment pairs a member with a chore at a rotation position.
// Positions form a contiguous 0..N-1 permutation per bot.
type Assignment struct {
	ID            int64
	BotID         int64
	MemberID      int64
	ChoreID       int64
	PositionIndex int
}

// MessageLog is one send attempt, append-only. BotID is nil only when a
// record could not be tied to a bot; relay records keep the bot reference
// so later replies can resolve their group.
type MessageLog struct {
	ID        int64
	BotID     *int64
	TwilioSID string
	ToPhone   string
	Body      string
	Status    string // sent or failed
	Error     string
	SentAt    time.Time
}

// InboundEvent is a provider webhook delivery for a received message.
type InboundEvent struct {
	From       string
	Body       string
	MessageSID string
}
