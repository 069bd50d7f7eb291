package model

import "time"

// RecentlyPlayed records the last time a user played a track. Playing a
// track again updates the timestamp instead of inserting a duplicate row,
// enforced by the (user, track) uniqueness constraint.
type RecentlyPlayed struct {
	ID       int64     `gorm:"primaryKey" json:"id"`
	UserID   int64     `gorm:"uniqueIndex:idx_recently_played_user_track;index:idx_recently_played_user_time,priority:1" json:"user_id"`
	TrackID  int64     `gorm:"uniqueIndex:idx_recently_played_user_track" json:"track_id"`
	PlayedAt time.Time `gorm:"index:idx_recently_played_user_time,priority:2" json:"played_at"`
}

// TableName keeps the historical table name.
func (RecentlyPlayed) TableName() string { return "recently_played" }

// Favorite marks a track as favorited by a user.
type Favorite struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_favorites_user_track" json:"user_id"`
	TrackID   int64     `gorm:"uniqueIndex:idx_favorites_user_track" json:"track_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Playlist is a user created track collection.
type Playlist struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200" json:"name"`
	UserID    int64     `gorm:"index" json:"user_id"`
	IsPublic  bool      `json:"is_public"`
	Tracks    []Track   `gorm:"many2many:playlist_tracks" json:"tracks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
