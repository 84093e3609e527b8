package database

import (
	"context"
	"fmt"

	"github.com/textra/chorebot/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db             *DB
	botRepo        contract.BotRepo
	memberRepo     contract.MemberRepo
	choreRepo      contract.ChoreRepo
	assignmentRepo contract.AssignmentRepo
	messageLogRepo contract.MessageLogRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	return repoInstancesWithConn(db, db.conn)
}

// repoInstancesWithConn creates repository instances with custom dbConn
func repoInstancesWithConn(db *DB, conn dbConn) *instance {
	return &instance{
		db:             db,
		botRepo:        newBotRepo(conn),
		memberRepo:     newMemberRepo(conn),
		choreRepo:      newChoreRepo(conn),
		assignmentRepo: newAssignmentRepo(conn),
		messageLogRepo: newMessageLogRepo(conn),
	}
}

func (i *instance) Bot() contract.BotRepo {
	return i.botRepo
}

func (i *instance) Member() contract.MemberRepo {
	return i.memberRepo
}

func (i *instance) Chore() contract.ChoreRepo {
	return i.choreRepo
}

func (i *instance) Assignment() contract.AssignmentRepo {
	return i.assignmentRepo
}

func (i *instance) MessageLog() contract.MessageLogRepo {
	return i.messageLogRepo
}

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(i.db, tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
