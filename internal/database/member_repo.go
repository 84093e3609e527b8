package database

import (
	"database/sql"
	"fmt"

	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
)

type memberRepo struct {
	db dbConn
}

func newMemberRepo(db dbConn) contract.MemberRepo {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(member *entity.Member) error {
	query := `
		INSERT INTO bot_members (bot_id, display_name, phone_e164, is_opted_in)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		member.BotID,
		member.DisplayName,
		member.PhoneE164,
		member.IsOptedIn,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	member.ID = id
	return nil
}

func (r *memberRepo) GetByBot(botID int64) ([]*entity.Member, error) {
	query := `
		SELECT id, bot_id, display_name, phone_e164, is_opted_in, created_at
		FROM bot_members
		WHERE bot_id = ?
		ORDER BY display_name ASC, id ASC
	`

	return r.queryMembers(query, botID)
}

func (r *memberRepo) GetOptedInByBot(botID int64) ([]*entity.Member, error) {
	query := `
		SELECT id, bot_id, display_name, phone_e164, is_opted_in, created_at
		FROM bot_members
		WHERE bot_id = ? AND is_opted_in = 1
		ORDER BY display_name ASC, id ASC
	`

	return r.queryMembers(query, botID)
}

func (r *memberRepo) queryMembers(query string, args ...interface{}) ([]*entity.Member, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*entity.Member
	for rows.Next() {
		member := &entity.Member{}
		err := rows.Scan(
			&member.ID,
			&member.BotID,
			&member.DisplayName,
			&member.PhoneE164,
			&member.IsOptedIn,
			&member.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

func (r *memberRepo) SetOptedIn(memberID int64, optedIn bool) error {
	query := `UPDATE bot_members SET is_opted_in = ? WHERE id = ?`

	result, err := r.db.Exec(query, optedIn, memberID)
	if err != nil {
		return fmt.Errorf("failed to set opted in: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *memberRepo) Delete(memberID int64) error {
	query := `DELETE FROM bot_members WHERE id = ?`

	_, err := r.db.Exec(query, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	return nil
}
