package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Sentinel errors for favorite bookkeeping.
var (
	ErrAlreadyFavorited = errors.New("track already in favorites")
	ErrNotFavorited     = errors.New("track not in favorites")
)

// ActivityRepository defines access to per-user listening activity.
// The membership check is a batch operation by design; callers must not
// loop it per track.
type ActivityRepository interface {
	RecentlyPlayedIDs(ctx context.Context, userID int64, offset, limit int) ([]int64, error)
	CountRecentlyPlayed(ctx context.Context, userID int64) (int64, error)
	FavoriteTrackIDs(ctx context.Context, userID int64, offset, limit int) ([]int64, error)
	CountFavorites(ctx context.Context, userID int64) (int64, error)
	FavoritedSet(ctx context.Context, userID int64, trackIDs []int64) (map[int64]bool, error)

	RecordPlay(ctx context.Context, userID, trackID int64) error
	AddFavorite(ctx context.Context, userID, trackID int64) error
	RemoveFavorite(ctx context.Context, userID, trackID int64) error
}

type mysqlActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a MySQL backed activity repository.
func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &mysqlActivityRepository{db: db}
}

// RecentlyPlayedIDs returns track IDs for the user, most recent play first.
func (r *mysqlActivityRepository) RecentlyPlayedIDs(ctx context.Context, userID int64, offset, limit int) ([]int64, error) {
	query := `SELECT track_id FROM recently_played WHERE user_id = ? ORDER BY played_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query recently played for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// CountRecentlyPlayed returns the number of recently-played rows for the user.
func (r *mysqlActivityRepository) CountRecentlyPlayed(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recently_played WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recently played for user %d: %w", userID, err)
	}
	return count, nil
}

// FavoriteTrackIDs returns track IDs for the user, most recently favorited first.
func (r *mysqlActivityRepository) FavoriteTrackIDs(ctx context.Context, userID int64, offset, limit int) ([]int64, error) {
	query := `SELECT track_id FROM favorites WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// CountFavorites returns the number of favorites for the user.
func (r *mysqlActivityRepository) CountFavorites(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites for user %d: %w", userID, err)
	}
	return count, nil
}

// FavoritedSet returns which of the given track IDs the user has favorited,
// in a single query.
func (r *mysqlActivityRepository) FavoritedSet(ctx context.Context, userID int64, trackIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(trackIDs))
	if len(trackIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(trackIDs)), ",")
	args := make([]interface{}, 0, len(trackIDs)+1)
	args = append(args, userID)
	for _, id := range trackIDs {
		args = append(args, id)
	}

	query := fmt.Sprintf(`SELECT track_id FROM favorites WHERE user_id = ? AND track_id IN (%s)`, placeholders)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite membership for user %d: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite membership: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during favorite membership iteration: %w", err)
	}

	return result, nil
}

// RecordPlay upserts the recently-played row for (user, track). Playing
// again only refreshes the timestamp.
func (r *mysqlActivityRepository) RecordPlay(ctx context.Context, userID, trackID int64) error {
	query := `INSERT INTO recently_played (user_id, track_id, played_at) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE played_at = VALUES(played_at)`
	if _, err := r.db.ExecContext(ctx, query, userID, trackID, time.Now()); err != nil {
		return fmt.Errorf("failed to record play for user %d track %d: %w", userID, trackID, err)
	}
	return nil
}

// AddFavorite inserts a favorite row; ErrAlreadyFavorited on duplicates.
// Duplicates are detected on the unique index rather than a pre-check, so
// concurrent adds cannot race past each other.
func (r *mysqlActivityRepository) AddFavorite(ctx context.Context, userID, trackID int64) error {
	query := `INSERT INTO favorites (user_id, track_id, created_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, userID, trackID, time.Now())
	if isDuplicateKey(err) {
		return ErrAlreadyFavorited
	}
	if err != nil {
		return fmt.Errorf("failed to add favorite for user %d track %d: %w", userID, trackID, err)
	}
	return nil
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (errno 1062).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// RemoveFavorite deletes a favorite row; ErrNotFavorited when absent.
func (r *mysqlActivityRepository) RemoveFavorite(ctx context.Context, userID, trackID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND track_id = ?`, userID, trackID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite for user %d track %d: %w", userID, trackID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for remove favorite: %w", err)
	}
	if affected == 0 {
		return ErrNotFavorited
	}
	return nil
}

// scanIDs drains an id-only result set preserving row order.
func scanIDs(rows *sql.Rows) ([]int64, error) {
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return ids, nil
}
