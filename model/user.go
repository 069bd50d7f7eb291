package model

import "time"

// User roles.
const (
	RoleCustomer    = "CUSTOMER"
	RoleBroadcaster = "BROADCASTER"
	RoleAdmin       = "ADMIN"
)

// User represents an account. Email is the unique identifier.
type User struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Email           string    `gorm:"size:254;uniqueIndex" json:"email"`
	PasswordHash    string    `gorm:"size:128" json:"-"`
	Role            string    `gorm:"size:20;default:CUSTOMER" json:"role"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"-"`
}

// IsBroadcaster reports whether the user may upload music.
func (u *User) IsBroadcaster() bool {
	return u.Role == RoleBroadcaster || u.Role == RoleAdmin
}

// UserProfile carries listening preferences used by the home feed.
type UserProfile struct {
	ID              int64    `gorm:"primaryKey" json:"id"`
	UserID          int64    `gorm:"uniqueIndex" json:"user_id"`
	Language        string   `gorm:"size:5;default:en" json:"language"` // "en" or "ar"
	Bio             string   `gorm:"size:500" json:"bio,omitempty"`
	ImageURL        string   `gorm:"size:500" json:"image_url,omitempty"`
	FavoriteArtists []Artist `gorm:"many2many:profile_favorite_artists" json:"favorite_artists,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// Broadcaster verification statuses.
const (
	BroadcasterPending  = "PENDING"
	BroadcasterVerified = "VERIFIED"
	BroadcasterRejected = "REJECTED"
)

// Broadcaster holds upload stats for users allowed to publish music.
type Broadcaster struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	UserID             int64     `gorm:"uniqueIndex" json:"user_id"`
	VerificationStatus string    `gorm:"size:20;default:PENDING" json:"verification_status"`
	TotalUploads       int64     `json:"total_uploads"`
	TotalPlays         int64     `json:"total_plays"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"-"`
}
