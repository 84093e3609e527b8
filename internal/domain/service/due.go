package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/textra/chorebot/internal/domain"
	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
	"github.com/textra/chorebot/internal/domain/localtime"
)

// CycleSummary reports one due-cycle invocation.
type CycleSummary struct {
	Evaluated int         `json:"evaluated"`
	Due       int         `json:"due"`
	Results   []BotResult `json:"results"`
}

// BotResult is the per-bot outcome of a cycle.
type BotResult struct {
	BotID  int64  `json:"bot_id"`
	Name   string `json:"name"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
	Error  string `json:"error,omitempty"`
}

type cycleService struct {
	dm           contract.DataManager
	transport    contract.MessageTransport
	rotation     *rotationService
	deliveryMode string
	log          *logrus.Logger

	// one mutex per bot so dispatch-and-advance for a single bot never
	// interleaves with a concurrent cycle
	botLocks sync.Map
}

func newCycle(dm contract.DataManager, transport contract.MessageTransport, rotation *rotationService, deliveryMode string, log *logrus.Logger) *cycleService {
	return &cycleService{
		dm:           dm,
		transport:    transport,
		rotation:     rotation,
		deliveryMode: deliveryMode,
		log:          log,
	}
}

// ComputeDue returns the subset of bots that should fire at this instant.
// It reads nothing but its arguments and the zone database, so callers can
// dry-run it; only a successful dispatch commits the last sent date.
//
// Due-ness is an exact HH:MM match on the bot's local wall clock. A caller
// that invokes this less often than once per minute will skip bots; the
// cron cadence, not a window here, is the contract.
func (s *cycleService) ComputeDue(now time.Time, bots []*entity.Bot) []*entity.Bot {
	var due []*entity.Bot

	for _, bot := range bots {
		if !bot.IsActive {
			continue
		}

		local, err := localtime.Resolve(now, bot.Timezone)
		if err != nil {
			s.log.WithError(err).WithField("bot_id", bot.ID).Warn("Skipping bot with unresolvable time zone")
			continue
		}

		// local-date string equality, never instant comparison: this is
		// what stops a re-run within the same local day from re-firing
		if bot.LastSentDate != "" && local.Date == bot.LastSentDate {
			continue
		}

		if local.TimeOfDay != bot.ScheduleTimeLocal {
			continue
		}

		switch bot.Recurrence {
		case domain.RecurrenceWeekly:
			if local.Weekday != bot.Weekday {
				continue
			}
		case domain.RecurrenceMonthly:
			if local.DayOfMonth != bot.DayOfMonth {
				continue
			}
		}

		due = append(due, bot)
	}

	return due
}

// RunDueCycle is the periodic trigger's entry point: compute the due set,
// dispatch each due bot, record outcomes. Bots dispatch concurrently with
// each other; each bot's own dispatch-and-advance runs under its lock.
func (s *cycleService) RunDueCycle(ctx context.Context, now time.Time) (*CycleSummary, error) {
	bots, err := s.dm.Bot().GetActiveBots()
	if err != nil {
		return nil, fmt.Errorf("failed to get active bots: %w", err)
	}

	due := s.ComputeDue(now, bots)

	summary := &CycleSummary{
		Evaluated: len(bots),
		Due:       len(due),
		Results:   make([]BotResult, len(due)),
	}

	var wg sync.WaitGroup
	for i, bot := range due {
		wg.Add(1)
		go func(i int, bot *entity.Bot) {
			defer wg.Done()
			summary.Results[i] = s.dispatchDueBot(ctx, bot, now)
		}(i, bot)
	}
	wg.Wait()

	s.log.WithFields(logrus.Fields{
		"evaluated": summary.Evaluated,
		"due":       summary.Due,
	}).Info("Due cycle finished")

	return summary, nil
}

func (s *cycleService) lockFor(botID int64) *sync.Mutex {
	mu, _ := s.botLocks.LoadOrStore(botID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
