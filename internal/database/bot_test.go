package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/textra/chorebot/internal/domain"
	"github.com/textra/chorebot/internal/domain/entity"
)

func newTestBot() *entity.Bot {
	return &entity.Bot{
		Name:              "Maple Street House",
		Timezone:          "America/New_York",
		Recurrence:        domain.RecurrenceDaily,
		ScheduleTimeLocal: "09:00",
		IsActive:          true,
	}
}

func TestBotRepo_CreateAndGet(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := newBotRepo(db.conn)

	bot := newTestBot()
	err := repo.Create(bot)
	require.NoError(t, err)
	assert.NotZero(t, bot.ID)

	got, err := repo.GetByID(bot.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Maple Street House", got.Name)
	assert.Equal(t, "America/New_York", got.Timezone)
	assert.Equal(t, "09:00", got.ScheduleTimeLocal)
	assert.Empty(t, got.LastSentDate, "new bot has never fired")
	assert.True(t, got.IsActive)
}

func TestBotRepo_GetByID_NotFound(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := newBotRepo(db.conn)

	got, err := repo.GetByID(999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBotRepo_GetActiveBots(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := newBotRepo(db.conn)

	active := newTestBot()
	require.NoError(t, repo.Create(active))

	inactive := newTestBot()
	inactive.Name = "Paused House"
	inactive.IsActive = false
	require.NoError(t, repo.Create(inactive))

	bots, err := repo.GetActiveBots()
	require.NoError(t, err)
	require.Len(t, bots, 1)
	assert.Equal(t, active.ID, bots[0].ID)
}

func TestBotRepo_StampLastSentDate(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := newBotRepo(db.conn)

	bot := newTestBot()
	require.NoError(t, repo.Create(bot))

	t.Run("stamps when expected matches the null date", func(t *testing.T) {
		ok, err := repo.StampLastSentDate(bot.ID, "", "2024-03-09")
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(bot.ID)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-09", got.LastSentDate)
	})

	t.Run("rejects a stale expected value", func(t *testing.T) {
		ok, err := repo.StampLastSentDate(bot.ID, "", "2024-03-10")
		require.NoError(t, err)
		assert.False(t, ok, "concurrent cycle should lose the race")

		got, err := repo.GetByID(bot.ID)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-09", got.LastSentDate, "stale stamp must not overwrite")
	})

	t.Run("stamps forward from the current value", func(t *testing.T) {
		ok, err := repo.StampLastSentDate(bot.ID, "2024-03-09", "2024-03-10")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
