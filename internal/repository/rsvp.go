// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/teedsvote/teeds/internal/models"
)

// UpsertRSVP records or replaces a user's RSVP.
func (r *Repository) UpsertRSVP(ctx context.Context, userID, willAttend string) (*models.RSVP, error) {
	rsvp := &models.RSVP{
		UserID:     userID,
		WillAttend: willAttend,
		UpdatedAt:  time.Now().UTC(),
	}
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`INSERT INTO rsvps (user_id, will_attend, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET will_attend = excluded.will_attend, updated_at = excluded.updated_at`),
		rsvp.UserID, rsvp.WillAttend, rsvp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rsvp, nil
}

// GetRSVP retrieves a user's RSVP.
func (r *Repository) GetRSVP(ctx context.Context, userID string) (*models.RSVP, error) {
	var rsvp models.RSVP
	err := r.q.GetContext(ctx, &rsvp, r.q.Rebind(`SELECT * FROM rsvps WHERE user_id = ?`), userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &rsvp, nil
}

// CountRSVPs returns yes/no attendance totals.
func (r *Repository) CountRSVPs(ctx context.Context) (yes, no int, err error) {
	var rows []struct {
		WillAttend string `db:"will_attend"`
		Total      int    `db:"total"`
	}
	err = r.q.SelectContext(ctx, &rows,
		`SELECT will_attend, count(*) AS total FROM rsvps GROUP BY will_attend`)
	if err != nil {
		return 0, 0, err
	}
	for _, row := range rows {
		switch row.WillAttend {
		case "yes":
			yes = row.Total
		case "no":
			no = row.Total
		}
	}
	return yes, no, nil
}
