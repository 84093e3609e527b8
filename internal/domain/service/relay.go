package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/textra/chorebot/internal/domain"
	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
)

// recentLookupLimit bounds how far back the relay searches the delivery
// log for the sender's group. Matching happens on normalized numbers, so
// the comparison cannot be pushed into SQL against the raw to_phone
// column (group rows store a comma-joined list behind the GROUP: marker)
// and the scan is capped instead. A sender whose newest delivery has
// fallen out of this window is dropped like any unmatched number; size
// the limit to comfortably exceed one fan-out across all active bots.
const recentLookupLimit = 200

var (
	// relayed messages always carry this shape, so a retried webhook
	// delivery of our own relay is recognized and dropped
	alreadyPrefixedRe = regexp.MustCompile(`^.+ said: '.+'$`)

	// carrier keywords the provider handles itself
	commandRe = regexp.MustCompile(`(?i)^(STOP|START|HELP|UNSTOP)$`)

	nonDigitRe = regexp.MustCompile(`\D`)
)

type relayService struct {
	dm        contract.DataManager
	transport contract.MessageTransport
	log       *logrus.Logger
}

func newRelay(dm contract.DataManager, transport contract.MessageTransport, log *logrus.Logger) *relayService {
	return &relayService{dm: dm, transport: transport, log: log}
}

// HandleInbound processes one provider webhook delivery: guard against
// retries and carrier keywords, match the sender to the group they were
// most recently messaged for, and relay the body to every other opted-in
// member. Unmatched messages are dropped without error so the provider
// never retries them.
func (s *relayService) HandleInbound(ctx context.Context, event entity.InboundEvent) error {
	body := strings.TrimSpace(event.Body)

	log := s.log.WithFields(logrus.Fields{
		"from":        event.From,
		"message_sid": event.MessageSID,
	})

	if body == "" || commandRe.MatchString(body) {
		log.Debug("Ignoring empty or carrier-keyword message")
		return nil
	}

	if alreadyPrefixedRe.MatchString(body) {
		log.Debug("Message already prefixed, treating as retried delivery")
		return nil
	}

	from := normalizePhone(event.From)
	if from == "" {
		log.Debug("Sender address has no digits, dropping")
		return nil
	}

	botID, ok, err := s.findOriginatingBot(from)
	if err != nil {
		return err
	}
	if !ok {
		log.Info("No recent delivery for sender, dropping")
		return nil
	}

	members, err := s.dm.Member().GetOptedInByBot(botID)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}

	var sender *entity.Member
	others := make([]*entity.Member, 0, len(members))
	for _, m := range members {
		if normalizePhone(m.PhoneE164) == from {
			sender = m
			continue
		}
		others = append(others, m)
	}

	if sender == nil {
		log.WithField("bot_id", botID).Info("Sender is not an opted-in member, dropping")
		return nil
	}
	if len(others) == 0 {
		log.WithField("bot_id", botID).Debug("No other members to relay to")
		return nil
	}

	relayBody := fmt.Sprintf("%s said: '%s'", sender.DisplayName, body)

	for _, m := range others {
		sid, err := s.transport.Send(ctx, []string{m.PhoneE164}, relayBody)

		record := &entity.MessageLog{
			BotID:     &botID,
			TwilioSID: sid,
			ToPhone:   m.PhoneE164,
			Body:      relayBody,
			Status:    domain.StatusSent,
		}
		if err != nil {
			record.Status = domain.StatusFailed
			record.Error = err.Error()
			log.WithError(err).WithField("to", m.PhoneE164).Error("Relay send failed")
		}

		if logErr := s.dm.MessageLog().Create(record); logErr != nil {
			log.WithError(logErr).Error("Failed to write relay delivery record")
		}
	}

	log.WithFields(logrus.Fields{
		"bot_id": botID,
		"sender": sender.DisplayName,
		"others": len(others),
	}).Info("Relayed inbound message")

	return nil
}

// findOriginatingBot scans recent delivery records, newest first, for one
// whose recipient address normalizes to the sender's number. Group records
// store all recipients behind the GROUP: marker, so each number inside is
// checked.
func (s *relayService) findOriginatingBot(normalizedFrom string) (int64, bool, error) {
	records, err := s.dm.MessageLog().GetRecentWithBot(recentLookupLimit)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get recent deliveries: %w", err)
	}

	for _, rec := range records {
		for _, addr := range splitAddresses(rec.ToPhone) {
			if normalizePhone(addr) == normalizedFrom {
				return *rec.BotID, true, nil
			}
		}
	}

	return 0, false, nil
}

func splitAddresses(toPhone string) []string {
	if joined, ok := strings.CutPrefix(toPhone, domain.GroupAddressPrefix); ok {
		return strings.Split(joined, ",")
	}
	return []string{toPhone}
}

// normalizePhone strips non-digits and keeps the last 10 digits, so
// "+1 (555) 555-0100" and "15555550100" compare equal regardless of
// country code or formatting.
func normalizePhone(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}
