package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/textra/chorebot/internal/domain"
	"github.com/textra/chorebot/internal/domain/entity"
	"github.com/textra/chorebot/internal/domain/localtime"
)

// dispatchDueBot runs the full serialized unit for one due bot: fan out,
// log every attempt, then commit the last sent date and advance the
// rotation. The commit and advance happen even when every recipient is
// opted out, otherwise the bot would re-fan-out on every later cycle of
// the same local day.
func (s *cycleService) dispatchDueBot(ctx context.Context, bot *entity.Bot, now time.Time) BotResult {
	mu := s.lockFor(bot.ID)
	mu.Lock()
	defer mu.Unlock()

	res := BotResult{BotID: bot.ID, Name: bot.Name}

	views, err := s.rotation.CurrentAssignments(bot.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientParticipants) {
			s.log.WithField("bot_id", bot.ID).Debug("Nothing to dispatch")
		} else {
			s.log.WithError(err).WithField("bot_id", bot.ID).Error("Failed to load assignments")
		}
		res.Error = err.Error()
		return res
	}

	recipients, err := s.dm.Member().GetOptedInByBot(bot.ID)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	body := composeBody(bot.Name, views)

	sent, failed := s.fanOut(ctx, bot.ID, recipients, body)
	res.Sent, res.Failed = sent, failed

	local, err := localtime.Resolve(now, bot.Timezone)
	if err != nil {
		// due detection already resolved this zone, so only a zone
		// database change mid-cycle lands here
		res.Error = err.Error()
		return res
	}

	if err := s.commitAndAdvance(ctx, bot, local.Date); err != nil {
		s.log.WithError(err).WithField("bot_id", bot.ID).Error("Failed to commit dispatch")
		res.Error = err.Error()
		return res
	}

	return res
}

// SendNow dispatches the bot's current chore list immediately, without
// stamping the last sent date or rotating. Used by the test-send endpoint.
func (s *cycleService) SendNow(ctx context.Context, botID int64) (*BotResult, error) {
	bot, err := s.dm.Bot().GetByID(botID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot: %w", err)
	}
	if bot == nil || !bot.IsActive {
		return nil, domain.ErrBotNotFound
	}

	mu := s.lockFor(bot.ID)
	mu.Lock()
	defer mu.Unlock()

	views, err := s.rotation.CurrentAssignments(bot.ID)
	if err != nil {
		return nil, err
	}

	recipients, err := s.dm.Member().GetOptedInByBot(bot.ID)
	if err != nil {
		return nil, err
	}

	res := &BotResult{BotID: bot.ID, Name: bot.Name}
	res.Sent, res.Failed = s.fanOut(ctx, bot.ID, recipients, composeBody(bot.Name, views))
	return res, nil
}

// fanOut sends body to every recipient under the configured delivery mode
// and writes one delivery record per transport call. A failed call never
// aborts the remaining calls.
func (s *cycleService) fanOut(ctx context.Context, botID int64, recipients []*entity.Member, body string) (sent, failed int) {
	if len(recipients) == 0 {
		s.log.WithField("bot_id", botID).Info("No opted-in recipients, skipping sends")
		return 0, 0
	}

	if s.deliveryMode == domain.DeliveryModeGroup {
		phones := make([]string, 0, len(recipients))
		for _, m := range recipients {
			phones = append(phones, m.PhoneE164)
		}

		if len(phones) > domain.GroupRecipientLimit {
			s.log.WithFields(logrus.Fields{
				"bot_id":     botID,
				"recipients": len(phones),
				"limit":      domain.GroupRecipientLimit,
			}).Warn("Group send exceeds carrier participant limit")
		}

		sid, err := s.transport.Send(ctx, phones, body)
		s.logDelivery(botID, domain.GroupAddressPrefix+strings.Join(phones, ","), body, sid, err)
		if err != nil {
			return 0, 1
		}
		return 1, 0
	}

	for _, m := range recipients {
		sid, err := s.transport.Send(ctx, []string{m.PhoneE164}, body)
		s.logDelivery(botID, m.PhoneE164, body, sid, err)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"bot_id": botID,
				"to":     m.PhoneE164,
			}).Error("Send failed")
			failed++
			continue
		}
		sent++
	}

	return sent, failed
}

// logDelivery appends one delivery record. A record that cannot be written
// is only logged: losing an audit row must not fail the send that already
// happened.
func (s *cycleService) logDelivery(botID int64, toPhone, body, sid string, sendErr error) {
	record := &entity.MessageLog{
		BotID:     &botID,
		TwilioSID: sid,
		ToPhone:   toPhone,
		Body:      body,
		Status:    domain.StatusSent,
	}
	if sendErr != nil {
		record.Status = domain.StatusFailed
		record.Error = sendErr.Error()
	}

	if err := s.dm.MessageLog().Create(record); err != nil {
		s.log.WithError(err).WithField("bot_id", botID).Error("Failed to write delivery record")
	}
}

// commitAndAdvance stamps the bot's last sent date with a conditional
// update and then rotates the assignment table. A conditional-update miss
// means another cycle won the race; it is retried once against the fresh
// value before giving up with ErrPersistenceConflict.
func (s *cycleService) commitAndAdvance(ctx context.Context, bot *entity.Bot, localDate string) error {
	ok, err := s.dm.Bot().StampLastSentDate(bot.ID, bot.LastSentDate, localDate)
	if err != nil {
		return fmt.Errorf("failed to stamp last sent date: %w", err)
	}

	if !ok {
		fresh, err := s.dm.Bot().GetByID(bot.ID)
		if err != nil {
			return fmt.Errorf("failed to re-read bot: %w", err)
		}
		if fresh == nil {
			return domain.ErrBotNotFound
		}
		if fresh.LastSentDate == localDate {
			// a concurrent cycle already sent and rotated today
			return fmt.Errorf("%w: bot %d already stamped for %s", domain.ErrPersistenceConflict, bot.ID, localDate)
		}

		ok, err = s.dm.Bot().StampLastSentDate(bot.ID, fresh.LastSentDate, localDate)
		if err != nil {
			return fmt.Errorf("failed to stamp last sent date on retry: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: bot %d", domain.ErrPersistenceConflict, bot.ID)
		}
	}

	bot.LastSentDate = localDate

	if err := s.rotation.Advance(ctx, bot.ID); err != nil {
		return err
	}

	return nil
}

func composeBody(botName string, views []AssignmentView) string {
	lines := make([]string, 0, len(views))
	for _, v := range views {
		lines = append(lines, fmt.Sprintf("• %s — %s", v.Member.DisplayName, v.Chore.Title))
	}

	return fmt.Sprintf("%s — Today's chores:\n%s\n\n%s", botName, strings.Join(lines, "\n"), domain.MessageFooter)
}
