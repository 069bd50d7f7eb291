package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rhythmfm/model"
)

// AdRepository defines access to advertisements. Only counters are
// maintained here; campaign management is out of scope.
type AdRepository interface {
	ActiveAds(ctx context.Context, placement string) ([]model.Advertisement, error)
	GetAd(ctx context.Context, id int64) (*model.Advertisement, error)
	IncrementImpression(ctx context.Context, id int64) error
	IncrementClick(ctx context.Context, id int64) error
}

type mysqlAdRepository struct {
	db *sql.DB
}

// NewAdRepository creates a MySQL backed advertisement repository.
func NewAdRepository(db *sql.DB) AdRepository {
	return &mysqlAdRepository{db: db}
}

// ActiveAds returns active ads, optionally filtered by placement. Ads with
// a schedule window outside of now are excluded.
func (r *mysqlAdRepository) ActiveAds(ctx context.Context, placement string) ([]model.Advertisement, error) {
	query := `SELECT id, title, placement, media_url, target_url, is_active, starts_at, ends_at,
	                  impression_count, click_count, created_at, updated_at
	           FROM advertisements
	           WHERE is_active = 1
	             AND (starts_at IS NULL OR starts_at <= ?)
	             AND (ends_at IS NULL OR ends_at >= ?)`
	args := []interface{}{time.Now(), time.Now()}
	if placement != "" {
		query += " AND placement = ?"
		args = append(args, placement)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query active ads: %w", err)
	}
	defer rows.Close()

	ads := make([]model.Advertisement, 0)
	for rows.Next() {
		var ad model.Advertisement
		err := rows.Scan(&ad.ID, &ad.Title, &ad.Placement, &ad.MediaURL, &ad.TargetURL, &ad.IsActive,
			&ad.StartsAt, &ad.EndsAt, &ad.ImpressionCount, &ad.ClickCount, &ad.CreatedAt, &ad.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advertisement: %w", err)
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ads iteration: %w", err)
	}
	return ads, nil
}

// GetAd retrieves an ad by ID, nil when not found.
func (r *mysqlAdRepository) GetAd(ctx context.Context, id int64) (*model.Advertisement, error) {
	query := `SELECT id, title, placement, media_url, target_url, is_active, starts_at, ends_at,
	                  impression_count, click_count, created_at, updated_at
	           FROM advertisements WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var ad model.Advertisement
	err := row.Scan(&ad.ID, &ad.Title, &ad.Placement, &ad.MediaURL, &ad.TargetURL, &ad.IsActive,
		&ad.StartsAt, &ad.EndsAt, &ad.ImpressionCount, &ad.ClickCount, &ad.CreatedAt, &ad.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan advertisement %d: %w", id, err)
	}
	return &ad, nil
}

// IncrementImpression bumps the impression counter in a single statement.
func (r *mysqlAdRepository) IncrementImpression(ctx context.Context, id int64) error {
	query := `UPDATE advertisements SET impression_count = impression_count + 1 WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment impressions for ad %d: %w", id, err)
	}
	return nil
}

// IncrementClick bumps the click counter in a single statement.
func (r *mysqlAdRepository) IncrementClick(ctx context.Context, id int64) error {
	query := `UPDATE advertisements SET click_count = click_count + 1 WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment clicks for ad %d: %w", id, err)
	}
	return nil
}
