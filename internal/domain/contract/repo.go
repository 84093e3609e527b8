package contract

import (
	"context"

	"github.com/textra/chorebot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Bot() BotRepo
	Member() MemberRepo
	Chore() ChoreRepo
	Assignment() AssignmentRepo
	MessageLog() MessageLogRepo
}

// BotRepo defines the contract for the bot repository
type BotRepo interface {
	Create(bot *entity.Bot) error
	GetByID(id int64) (*entity.Bot, error)
	Update(bot *entity.Bot) error
	GetActiveBots() ([]*entity.Bot, error)

	// StampLastSentDate conditionally updates last_sent_date from expected
	// to date. Returns false when the row no longer matches expected,
	// meaning a concurrent cycle got there first.
	StampLastSentDate(botID int64, expected, date string) (bool, error)
}

// MemberRepo defines the contract for the member repository
type MemberRepo interface {
	Create(member *entity.Member) error
	GetByBot(botID int64) ([]*entity.Member, error)
	GetOptedInByBot(botID int64) ([]*entity.Member, error)
	SetOptedIn(memberID int64, optedIn bool) error
	Delete(memberID int64) error
}

// ChoreRepo defines the contract for the chore repository
type ChoreRepo interface {
	Upsert(chore *entity.Chore) error
	GetByBot(botID int64) ([]*entity.Chore, error)
	Delete(choreID int64) error
}

// AssignmentRepo defines the contract for the assignment repository
type AssignmentRepo interface {
	// ReplaceForBot deletes the bot's assignments and inserts the given
	// set. Call inside a transaction.
	ReplaceForBot(botID int64, assignments []*entity.Assignment) error
	GetByBot(botID int64) ([]*entity.Assignment, error)
}

// MessageLogRepo defines the contract for the delivery log repository.
// Records are append-only; there is no update or delete.
type MessageLogRepo interface {
	Create(record *entity.MessageLog) error
	GetRecentWithBot(limit int) ([]*entity.MessageLog, error)
	GetByBot(botID int64) ([]*entity.MessageLog, error)
}
