package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
)

type messageLogRepo struct {
	db dbConn
}

func newMessageLogRepo(db dbConn) contract.MessageLogRepo {
	return &messageLogRepo{db: db}
}

func (r *messageLogRepo) Create(record *entity.MessageLog) error {
	query := `
		INSERT INTO message_log (bot_id, twilio_sid, to_phone, body, status, error, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var botID sql.NullInt64
	if record.BotID != nil {
		botID = sql.NullInt64{Int64: *record.BotID, Valid: true}
	}

	if record.SentAt.IsZero() {
		record.SentAt = time.Now().UTC()
	}

	result, err := r.db.Exec(query,
		botID,
		record.TwilioSID,
		record.ToPhone,
		record.Body,
		record.Status,
		record.Error,
		record.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// GetRecentWithBot returns the newest records that carry a bot reference,
// newest first. The relay scans these in memory because phone matching is
// done on normalized numbers, not raw column values.
func (r *messageLogRepo) GetRecentWithBot(limit int) ([]*entity.MessageLog, error) {
	query := `
		SELECT id, bot_id, twilio_sid, to_phone, body, status, error, sent_at
		FROM message_log
		WHERE bot_id IS NOT NULL
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`

	return r.queryRecords(query, limit)
}

func (r *messageLogRepo) GetByBot(botID int64) ([]*entity.MessageLog, error) {
	query := `
		SELECT id, bot_id, twilio_sid, to_phone, body, status, error, sent_at
		FROM message_log
		WHERE bot_id = ?
		ORDER BY sent_at DESC, id DESC
	`

	return r.queryRecords(query, botID)
}

func (r *messageLogRepo) queryRecords(query string, args ...interface{}) ([]*entity.MessageLog, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get message log: %w", err)
	}
	defer rows.Close()

	var records []*entity.MessageLog
	for rows.Next() {
		record := &entity.MessageLog{}
		var botID sql.NullInt64
		var errDetail sql.NullString

		err := rows.Scan(
			&record.ID,
			&botID,
			&record.TwilioSID,
			&record.ToPhone,
			&record.Body,
			&record.Status,
			&errDetail,
			&record.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message log: %w", err)
		}

		if botID.Valid {
			id := botID.Int64
			record.BotID = &id
		}
		record.Error = errDetail.String
		records = append(records, record)
	}

	return records, nil
}
