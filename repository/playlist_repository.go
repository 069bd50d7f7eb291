package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rhythmfm/model"
)

// PlaylistRepository defines access to user playlists.
type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error)
	GetPlaylist(ctx context.Context, id int64) (*model.Playlist, error)
	PlaylistsByUser(ctx context.Context, userID int64) ([]model.Playlist, error)
	AddTrack(ctx context.Context, playlistID, trackID int64) error
	RemoveTrack(ctx context.Context, playlistID, trackID int64) error
	TrackIDs(ctx context.Context, playlistID int64) ([]int64, error)
}

type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a MySQL backed playlist repository.
func NewPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// CreatePlaylist inserts a new playlist.
func (r *mysqlPlaylistRepository) CreatePlaylist(ctx context.Context, playlist *model.Playlist) (int64, error) {
	now := time.Now()
	query := `INSERT INTO playlists (name, user_id, is_public, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, playlist.Name, playlist.UserID, playlist.IsPublic, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create playlist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for playlist: %w", err)
	}
	return id, nil
}

// GetPlaylist retrieves a playlist by ID, nil when not found.
func (r *mysqlPlaylistRepository) GetPlaylist(ctx context.Context, id int64) (*model.Playlist, error) {
	query := `SELECT id, name, user_id, is_public, created_at, updated_at FROM playlists WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	playlist := &model.Playlist{}
	err := row.Scan(&playlist.ID, &playlist.Name, &playlist.UserID, &playlist.IsPublic, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist %d: %w", id, err)
	}
	return playlist, nil
}

// PlaylistsByUser returns the user's playlists, most recently updated first.
func (r *mysqlPlaylistRepository) PlaylistsByUser(ctx context.Context, userID int64) ([]model.Playlist, error) {
	query := `SELECT id, name, user_id, is_public, created_at, updated_at
	           FROM playlists WHERE user_id = ? ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for user %d: %w", userID, err)
	}
	defer rows.Close()

	playlists := make([]model.Playlist, 0)
	for rows.Next() {
		var p model.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during playlists iteration: %w", err)
	}
	return playlists, nil
}

// AddTrack links a track to a playlist, ignoring duplicates.
func (r *mysqlPlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID int64) error {
	query := `INSERT IGNORE INTO playlist_tracks (playlist_id, track_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, playlistID, trackID); err != nil {
		return fmt.Errorf("failed to add track %d to playlist %d: %w", trackID, playlistID, err)
	}
	return nil
}

// RemoveTrack unlinks a track from a playlist.
func (r *mysqlPlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID int64) error {
	query := `DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`
	if _, err := r.db.ExecContext(ctx, query, playlistID, trackID); err != nil {
		return fmt.Errorf("failed to remove track %d from playlist %d: %w", trackID, playlistID, err)
	}
	return nil
}

// TrackIDs returns the track IDs in a playlist.
func (r *mysqlPlaylistRepository) TrackIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	query := `SELECT track_id FROM playlist_tracks WHERE playlist_id = ?`
	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	return scanIDs(rows)
}
