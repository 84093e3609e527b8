package database

import (
	"fmt"

	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
)

type choreRepo struct {
	db dbConn
}

func newChoreRepo(db dbConn) contract.ChoreRepo {
	return &choreRepo{db: db}
}

// Upsert inserts the chore or, when (bot_id, title) already exists, keeps
// the existing row and fills in its id.
func (r *choreRepo) Upsert(chore *entity.Chore) error {
	query := `
		INSERT INTO chores (bot_id, title)
		VALUES (?, ?)
		ON CONFLICT (bot_id, title) DO NOTHING
	`

	if _, err := r.db.Exec(query, chore.BotID, chore.Title); err != nil {
		return fmt.Errorf("failed to upsert chore: %w", err)
	}

	err := r.db.QueryRow(
		`SELECT id FROM chores WHERE bot_id = ? AND title = ?`,
		chore.BotID, chore.Title,
	).Scan(&chore.ID)
	if err != nil {
		return fmt.Errorf("failed to read back chore id: %w", err)
	}

	return nil
}

func (r *choreRepo) GetByBot(botID int64) ([]*entity.Chore, error) {
	query := `
		SELECT id, bot_id, title
		FROM chores
		WHERE bot_id = ?
		ORDER BY title ASC
	`

	rows, err := r.db.Query(query, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chores: %w", err)
	}
	defer rows.Close()

	var chores []*entity.Chore
	for rows.Next() {
		chore := &entity.Chore{}
		if err := rows.Scan(&chore.ID, &chore.BotID, &chore.Title); err != nil {
			return nil, fmt.Errorf("failed to scan chore: %w", err)
		}
		chores = append(chores, chore)
	}

	return chores, nil
}

func (r *choreRepo) Delete(choreID int64) error {
	query := `DELETE FROM chores WHERE id = ?`

	_, err := r.db.Exec(query, choreID)
	if err != nil {
		return fmt.Errorf("failed to delete chore: %w", err)
	}

	return nil
}
