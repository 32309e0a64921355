// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"codeberg.org/teedsvote/teeds/internal/models"
)

// VoteTally is a per-design vote count.
type VoteTally struct {
	DesignID string `db:"design_id" json:"design_id"`
	Votes    int    `db:"votes" json:"votes"`
}

// CreateVote inserts a vote for a design.
func (r *Repository) CreateVote(ctx context.Context, designID, modality, voterID string) (*models.Vote, error) {
	vote := &models.Vote{
		ID:        uuid.NewString(),
		DesignID:  designID,
		Modality:  modality,
		VoterID:   voterID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`INSERT INTO votes (id, design_id, modality, voter_id, created_at) VALUES (?, ?, ?, ?, ?)`),
		vote.ID, vote.DesignID, vote.Modality, vote.VoterID, vote.CreatedAt)
	if err != nil {
		return nil, err
	}
	return vote, nil
}

// CountVotesByVoter returns how many votes a voter has spent in a modality.
func (r *Repository) CountVotesByVoter(ctx context.Context, voterID, modality string) (int, error) {
	var count int
	err := r.q.GetContext(ctx, &count,
		r.q.Rebind(`SELECT count(*) FROM votes WHERE voter_id = ? AND modality = ?`),
		voterID, modality)
	return count, err
}

// TallyTopDesigns returns the highest-voted designs in a modality,
// excluding one design, ordered by vote count descending.
func (r *Repository) TallyTopDesigns(ctx context.Context, modality, excludeDesignID string, limit int) ([]VoteTally, error) {
	var tallies []VoteTally
	err := r.q.SelectContext(ctx, &tallies,
		r.q.Rebind(`SELECT design_id, count(*) AS votes FROM votes
			WHERE modality = ? AND design_id <> ?
			GROUP BY design_id ORDER BY votes DESC LIMIT ?`),
		modality, excludeDesignID, limit)
	if err != nil {
		return nil, err
	}
	return tallies, nil
}

// TallyVotes returns vote counts for every design.
func (r *Repository) TallyVotes(ctx context.Context) ([]VoteTally, error) {
	var tallies []VoteTally
	err := r.q.SelectContext(ctx, &tallies,
		`SELECT design_id, count(*) AS votes FROM votes GROUP BY design_id`)
	if err != nil {
		return nil, err
	}
	return tallies, nil
}

// ListVotes returns all votes.
func (r *Repository) ListVotes(ctx context.Context) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.q.SelectContext(ctx, &votes, `SELECT * FROM votes`)
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// ReassignVotes moves all votes from one design to another.
func (r *Repository) ReassignVotes(ctx context.Context, fromDesignID, toDesignID string) error {
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`UPDATE votes SET design_id = ? WHERE design_id = ?`), toDesignID, fromDesignID)
	return err
}

// DeleteVotesForDesign discards all votes attached to a design.
func (r *Repository) DeleteVotesForDesign(ctx context.Context, designID string) error {
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM votes WHERE design_id = ?`), designID)
	return err
}
