package domain

import "errors"

var (
	// ErrInvalidTimeZone means a bot's IANA zone name could not be loaded.
	// The bot is skipped for the cycle; the batch continues.
	ErrInvalidTimeZone = errors.New("invalid time zone")

	// ErrInsufficientParticipants means a bot has no members or no chores,
	// so there is nothing to seed or dispatch.
	ErrInsufficientParticipants = errors.New("insufficient participants")

	// ErrPersistenceConflict means a concurrent cycle already stamped the
	// bot's last sent date. Retried once, then recorded as a failure.
	ErrPersistenceConflict = errors.New("persistence conflict")

	// ErrBotNotFound means the referenced bot does not exist or is inactive.
	ErrBotNotFound = errors.New("bot not found")
)
