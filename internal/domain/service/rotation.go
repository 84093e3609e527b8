package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/textra/chorebot/internal/domain"
	"github.com/textra/chorebot/internal/domain/contract"
	"github.com/textra/chorebot/internal/domain/entity"
)

// AssignmentView is one resolved (member, chore) pairing at its current
// rotation position.
type AssignmentView struct {
	Member   *entity.Member
	Chore    *entity.Chore
	Position int
}

type rotationService struct {
	dm  contract.DataManager
	log *logrus.Logger
}

func newRotation(dm contract.DataManager, log *logrus.Logger) *rotationService {
	return &rotationService{dm: dm, log: log}
}

// SeedAssignments rebuilds the bot's rotation table from its current
// members and chores. Members are paired with chores in sorted order
// (display name vs title), so re-seeding an unchanged set reproduces the
// same pairing. Prior assignments are fully replaced; rotation continuity
// across a membership change is intentionally lost.
func (s *rotationService) SeedAssignments(ctx context.Context, botID int64) error {
	members, err := s.dm.Member().GetByBot(botID)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}

	chores, err := s.dm.Chore().GetByBot(botID)
	if err != nil {
		return fmt.Errorf("failed to get chores: %w", err)
	}

	if len(members) == 0 || len(chores) == 0 {
		return fmt.Errorf("%w: bot %d has %d members and %d chores",
			domain.ErrInsufficientParticipants, botID, len(members), len(chores))
	}

	// Surplus members or chores stay unassigned until the sets grow to
	// match; that is not an error.
	n := len(members)
	if len(chores) < n {
		n = len(chores)
	}

	assignments := make([]*entity.Assignment, 0, n)
	for i := 0; i < n; i++ {
		assignments = append(assignments, &entity.Assignment{
			BotID:         botID,
			MemberID:      members[i].ID,
			ChoreID:       chores[i].ID,
			PositionIndex: i,
		})
	}

	err = s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		return tx.Assignment().ReplaceForBot(botID, assignments)
	})
	if err != nil {
		return fmt.Errorf("failed to replace assignments: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"bot_id":      botID,
		"assignments": n,
	}).Info("Rotation table seeded")

	return nil
}

// CurrentAssignments returns the bot's pairings in position order. Rows
// whose member or chore has been deleted since seeding are skipped.
func (s *rotationService) CurrentAssignments(botID int64) ([]AssignmentView, error) {
	assignments, err := s.dm.Assignment().GetByBot(botID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}

	if len(assignments) == 0 {
		return nil, fmt.Errorf("%w: bot %d has no assignments", domain.ErrInsufficientParticipants, botID)
	}

	members, err := s.dm.Member().GetByBot(botID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	chores, err := s.dm.Chore().GetByBot(botID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chores: %w", err)
	}

	memberByID := make(map[int64]*entity.Member, len(members))
	for _, m := range members {
		memberByID[m.ID] = m
	}
	choreByID := make(map[int64]*entity.Chore, len(chores))
	for _, c := range chores {
		choreByID[c.ID] = c
	}

	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		member, ok := memberByID[a.MemberID]
		if !ok {
			continue
		}
		chore, ok := choreByID[a.ChoreID]
		if !ok {
			continue
		}
		views = append(views, AssignmentView{
			Member:   member,
			Chore:    chore,
			Position: a.PositionIndex,
		})
	}

	if len(views) == 0 {
		return nil, fmt.Errorf("%w: bot %d assignments reference no live members or chores",
			domain.ErrInsufficientParticipants, botID)
	}

	return views, nil
}

// Advance moves every member one position forward modulo the table size.
// Chores stay bound to their position, so the member who had the chore at
// position 0 takes over the chore at position 1, and so on around the
// table. Cascaded member or chore deletes can leave holes in the stored
// positions, so the surviving rows are re-ranked by position order before
// rotating; the rewritten table is contiguous again. The whole rotation is
// one transaction: a partially rotated table is never visible.
func (s *rotationService) Advance(ctx context.Context, botID int64) error {
	err := s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		assignments, err := tx.Assignment().GetByBot(botID)
		if err != nil {
			return fmt.Errorf("failed to get assignments: %w", err)
		}
		if len(assignments) == 0 {
			return nil
		}

		// assignments come back ordered by position, so the slice index
		// is the rank among survivors
		n := len(assignments)
		rotated := make([]*entity.Assignment, 0, n)
		for rank, a := range assignments {
			next := (rank + 1) % n
			rotated = append(rotated, &entity.Assignment{
				BotID:         botID,
				MemberID:      a.MemberID,
				ChoreID:       assignments[next].ChoreID,
				PositionIndex: next,
			})
		}

		return tx.Assignment().ReplaceForBot(botID, rotated)
	})
	if err != nil {
		return fmt.Errorf("failed to advance rotation: %w", err)
	}

	return nil
}
