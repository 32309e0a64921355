// Copyright 2026 The TEEDS Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/teedsvote/teeds/internal/models"
)

// CreateDesign inserts a new design submission.
func (r *Repository) CreateDesign(ctx context.Context, d *models.Design) error {
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`INSERT INTO designs
			(id, filename, artwork_name, storage_path, modality, submitter_id,
			 student_name, major, year_level, asurite, is_flagged, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		d.ID, d.Filename, d.ArtworkName, d.StoragePath, d.Modality, d.SubmitterID,
		d.StudentName, d.Major, d.YearLevel, d.Asurite, d.IsFlagged, d.CreatedAt)
	return err
}

// GetDesign retrieves a design by ID.
func (r *Repository) GetDesign(ctx context.Context, id string) (*models.Design, error) {
	var design models.Design
	err := r.q.GetContext(ctx, &design, r.q.Rebind(`SELECT * FROM designs WHERE id = ?`), id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &design, nil
}

// GetDesignForSubmitter retrieves a design only if it belongs to the submitter.
func (r *Repository) GetDesignForSubmitter(ctx context.Context, id, submitterID string) (*models.Design, error) {
	var design models.Design
	err := r.q.GetContext(ctx, &design,
		r.q.Rebind(`SELECT * FROM designs WHERE id = ? AND submitter_id = ?`), id, submitterID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &design, nil
}

// ListDesignsBySubmitter returns the designs a user has uploaded.
func (r *Repository) ListDesignsBySubmitter(ctx context.Context, submitterID string) ([]models.Design, error) {
	var designs []models.Design
	err := r.q.SelectContext(ctx, &designs,
		r.q.Rebind(`SELECT * FROM designs WHERE submitter_id = ? ORDER BY created_at`), submitterID)
	if err != nil {
		return nil, err
	}
	return designs, nil
}

// ListDesigns returns designs, optionally filtered by modality. Flagged
// designs are excluded unless includeFlagged is set.
func (r *Repository) ListDesigns(ctx context.Context, modality string, includeFlagged bool) ([]models.Design, error) {
	query := `SELECT * FROM designs WHERE 1=1`
	var args []any
	if !includeFlagged {
		query += ` AND is_flagged = ?`
		args = append(args, false)
	}
	if modality != "" {
		query += ` AND modality = ?`
		args = append(args, modality)
	}
	query += ` ORDER BY created_at`

	var designs []models.Design
	err := r.q.SelectContext(ctx, &designs, r.q.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return designs, nil
}

// SetDesignFlag updates the moderation flag on a design.
func (r *Repository) SetDesignFlag(ctx context.Context, id string, flagged bool) error {
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind(`UPDATE designs SET is_flagged = ? WHERE id = ?`), flagged, id)
	return err
}

// DeleteDesign removes a design row and its votes. The votes are deleted
// explicitly rather than left to the cascade, which depends on the
// foreign_keys pragma being active on the connection.
func (r *Repository) DeleteDesign(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM votes WHERE design_id = ?`), id); err != nil {
		return err
	}
	_, err := r.q.ExecContext(ctx, r.q.Rebind(`DELETE FROM designs WHERE id = ?`), id)
	return err
}
