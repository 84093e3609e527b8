package database

import (
	"fmt"

	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
)

type assignmentRepo struct {
	db dbConn
}

func newAssignmentRepo(db dbConn) contract.AssignmentRepo {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) ReplaceForBot(botID int64, assignments []*entity.Assignment) error {
	if _, err := r.db.Exec(`DELETE FROM assignments WHERE bot_id = ?`, botID); err != nil {
		return fmt.Errorf("failed to delete assignments: %w", err)
	}

	query := `
		INSERT INTO assignments (bot_id, member_id, chore_id, position_index)
		VALUES (?, ?, ?, ?)
	`

	for _, a := range assignments {
		result, err := r.db.Exec(query, botID, a.MemberID, a.ChoreID, a.PositionIndex)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		a.ID = id
		a.BotID = botID
	}

	return nil
}

func (r *assignmentRepo) GetByBot(botID int64) ([]*entity.Assignment, error) {
	query := `
		SELECT id, bot_id, member_id, chore_id, position_index
		FROM assignments
		WHERE bot_id = ?
		ORDER BY position_index ASC
	`

	rows, err := r.db.Query(query, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*entity.Assignment
	for rows.Next() {
		a := &entity.Assignment{}
		err := rows.Scan(&a.ID, &a.BotID, &a.MemberID, &a.ChoreID, &a.PositionIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}
