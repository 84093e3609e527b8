package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/textra/chorebot/internal/database"
	"github.com/textra/chorebot/internal/domain"
	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
)

type sendCall struct {
	To   []string
	Body string
}

// fakeTransport records every send and can be told to fail specific calls
// or specific recipients.
type fakeTransport struct {
	mu         sync.Mutex
	calls      []sendCall
	failOnCall map[int]error    // 1-based call index
	failTo     map[string]error // recipient phone
}

func (f *fakeTransport) Send(ctx context.Context, to []string, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, sendCall{To: to, Body: body})
	n := len(f.calls)

	if err, ok := f.failOnCall[n]; ok {
		return "", err
	}
	for _, phone := range to {
		if err, ok := f.failTo[phone]; ok {
			return "", err
		}
	}

	return fmt.Sprintf("MM%030d", n), nil
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestInstance wires the services against a real in-memory database
// and a fake transport.
func newTestInstance(t *testing.T, deliveryMode string) (*Instance, contract.DataManager, *fakeTransport) {
	t.Helper()

	db := database.SetupTestDB(t)
	t.Cleanup(func() { db.Close() })

	dm := database.NewInstance(db)
	transport := &fakeTransport{}
	services := NewInstance(dm, transport, deliveryMode, quietLogger())
	require.NotNil(t, services)

	return services, dm, transport
}

func createTestBot(t *testing.T, dm contract.DataManager, mutate func(*entity.Bot)) *entity.Bot {
	t.Helper()

	bot := &entity.Bot{
		Name:              "Maple Street House",
		Timezone:          "America/New_York",
		Recurrence:        domain.RecurrenceDaily,
		ScheduleTimeLocal: "09:00",
		IsActive:          true,
	}
	if mutate != nil {
		mutate(bot)
	}
	require.NoError(t, dm.Bot().Create(bot))
	return bot
}

// seedHousehold adds one member and one chore per name and seeds the
// rotation table.
func seedHousehold(t *testing.T, services *Instance, dm contract.DataManager, botID int64, names ...string) []*entity.Member {
	t.Helper()

	members := make([]*entity.Member, 0, len(names))
	for i, name := range names {
		member := &entity.Member{
			BotID:       botID,
			DisplayName: name,
			PhoneE164:   fmt.Sprintf("+1555555%04d", i+100),
			IsOptedIn:   true,
		}
		require.NoError(t, dm.Member().Create(member))
		members = append(members, member)

		require.NoError(t, dm.Chore().Upsert(&entity.Chore{
			BotID: botID,
			Title: fmt.Sprintf("Chore %d", i+1),
		}))
	}

	require.NoError(t, services.Rotation.SeedAssignments(context.Background(), botID))
	return members
}
