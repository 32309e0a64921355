// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

// Package voting enforces the voting window and per-modality limits, and
// handles moderation of flagged designs.
package voting

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"codeberg.org/teedsvote/teeds/internal/config"
	"codeberg.org/teedsvote/teeds/internal/repository"
)

var (
	// ErrVotingClosed rejects votes outside the configured window.
	ErrVotingClosed = errors.New("voting is not open")
	// ErrVoteLimit rejects votes past the per-modality cap.
	ErrVoteLimit = errors.New("vote limit reached for this modality")
	// ErrDesignUnavailable covers missing and flagged designs.
	ErrDesignUnavailable = errors.New("design unavailable")
)

// candidateCount caps the redistribution search when a design is flagged.
const candidateCount = 5

// Service applies the voting rules on top of the repository.
type Service struct {
	repo *repository.Repository
	cfg  *config.VotingConfig
}

// NewService creates a voting service.
func NewService(repo *repository.Repository, cfg *config.VotingConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Open reports whether the voting window contains the given instant.
func (s *Service) Open(now time.Time) bool {
	if !s.cfg.Start.IsZero() && now.Before(s.cfg.Start) {
		return false
	}
	if !s.cfg.End.IsZero() && now.After(s.cfg.End) {
		return false
	}
	return true
}

// Cast records a vote for a design. The checks and the insert run in one
// transaction so two concurrent votes cannot both slip under the limit.
func (s *Service) Cast(ctx context.Context, voterID, designID string, now time.Time) error {
	if !s.Open(now) {
		return ErrVotingClosed
	}

	return s.repo.Tx(ctx, func(tx *repository.Repository) error {
		design, err := tx.GetDesign(ctx, designID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrDesignUnavailable
			}
			return fmt.Errorf("loading design: %w", err)
		}
		if design.IsFlagged {
			return ErrDesignUnavailable
		}

		settings, err := tx.GetSettings(ctx)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		limit := s.limitFor(settings, design.Modality)

		used, err := tx.CountVotesByVoter(ctx, voterID, design.Modality)
		if err != nil {
			return fmt.Errorf("counting votes: %w", err)
		}
		if used >= limit {
			return ErrVoteLimit
		}

		if _, err := tx.CreateVote(ctx, design.ID, design.Modality, voterID); err != nil {
			return fmt.Errorf("recording vote: %w", err)
		}
		return nil
	})
}

// Flag sets the moderation flag on a design. Flagging redistributes its
// votes to the highest-voted unflagged design in the same modality; when
// no candidate exists the votes are discarded.
func (s *Service) Flag(ctx context.Context, designID string, flag bool) error {
	return s.repo.Tx(ctx, func(tx *repository.Repository) error {
		design, err := tx.GetDesign(ctx, designID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrDesignUnavailable
			}
			return fmt.Errorf("loading design: %w", err)
		}

		if err := tx.SetDesignFlag(ctx, design.ID, flag); err != nil {
			return fmt.Errorf("updating flag: %w", err)
		}
		if !flag {
			return nil
		}

		tallies, err := tx.TallyTopDesigns(ctx, design.Modality, design.ID, candidateCount)
		if err != nil {
			return fmt.Errorf("tallying candidates: %w", err)
		}

		for _, tally := range tallies {
			candidate, err := tx.GetDesign(ctx, tally.DesignID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				return fmt.Errorf("loading candidate: %w", err)
			}
			if candidate.IsFlagged {
				continue
			}
			if err := tx.ReassignVotes(ctx, design.ID, candidate.ID); err != nil {
				return fmt.Errorf("reassigning votes: %w", err)
			}
			return nil
		}

		if err := tx.DeleteVotesForDesign(ctx, design.ID); err != nil {
			return fmt.Errorf("discarding votes: %w", err)
		}
		return nil
	})
}

// limitFor resolves the vote limit for a modality from the settings
// table, falling back through the historical key spellings.
func (s *Service) limitFor(settings map[string]string, modality string) int {
	for _, key := range []string{"votes_per_" + modality, "votes_" + modality, "default"} {
		if raw, ok := settings[key]; ok {
			if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
				return limit
			}
		}
	}
	if s.cfg.DefaultVoteLimit > 0 {
		return s.cfg.DefaultVoteLimit
	}
	return 1
}
