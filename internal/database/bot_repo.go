package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
)

type botRepo struct {
	db dbConn
}

func newBotRepo(db dbConn) contract.BotRepo {
	return &botRepo{db: db}
}

func (r *botRepo) Create(bot *entity.Bot) error {
	query := `
		INSERT INTO bots (name, timezone, recurrence, schedule_time_local, weekday, day_of_month, is_active, last_sent_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		bot.Name,
		bot.Timezone,
		bot.Recurrence,
		bot.ScheduleTimeLocal,
		bot.Weekday,
		bot.DayOfMonth,
		bot.IsActive,
		nullableDate(bot.LastSentDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	bot.ID = id
	return nil
}

func (r *botRepo) GetByID(id int64) (*entity.Bot, error) {
	query := `
		SELECT id, name, timezone, recurrence, schedule_time_local, weekday, day_of_month,
			is_active, last_sent_date, created_at, updated_at
		FROM bots
		WHERE id = ?
	`

	bot, err := scanBot(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bot: %w", err)
	}

	return bot, nil
}

func (r *botRepo) Update(bot *entity.Bot) error {
	query := `
		UPDATE bots SET
			name = ?,
			timezone = ?,
			recurrence = ?,
			schedule_time_local = ?,
			weekday = ?,
			day_of_month = ?,
			is_active = ?,
			updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		bot.Name,
		bot.Timezone,
		bot.Recurrence,
		bot.ScheduleTimeLocal,
		bot.Weekday,
		bot.DayOfMonth,
		bot.IsActive,
		time.Now(),
		bot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bot: %w", err)
	}

	return nil
}

func (r *botRepo) GetActiveBots() ([]*entity.Bot, error) {
	query := `
		SELECT id, name, timezone, recurrence, schedule_time_local, weekday, day_of_month,
			is_active, last_sent_date, created_at, updated_at
		FROM bots
		WHERE is_active = 1
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active bots: %w", err)
	}
	defer rows.Close()

	var bots []*entity.Bot
	for rows.Next() {
		bot, err := scanBot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bot: %w", err)
		}
		bots = append(bots, bot)
	}

	return bots, nil
}

func (r *botRepo) StampLastSentDate(botID int64, expected, date string) (bool, error) {
	query := `
		UPDATE bots SET
			last_sent_date = ?,
			updated_at = ?
		WHERE id = ? AND IFNULL(last_sent_date, '') = ?
	`

	result, err := r.db.Exec(query, date, time.Now(), botID, expected)
	if err != nil {
		return false, fmt.Errorf("failed to stamp last sent date: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBot(row rowScanner) (*entity.Bot, error) {
	bot := &entity.Bot{}
	var lastSentDate sql.NullString

	err := row.Scan(
		&bot.ID,
		&bot.Name,
		&bot.Timezone,
		&bot.Recurrence,
		&bot.ScheduleTimeLocal,
		&bot.Weekday,
		&bot.DayOfMonth,
		&bot.IsActive,
		&lastSentDate,
		&bot.CreatedAt,
		&bot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	bot.LastSentDate = lastSentDate.String
	return bot, nil
}

func nullableDate(date string) interface{} {
	if date == "" {
		return nil
	}
	return date
}
