package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rhythmfm/model"
)

// ProfileUpdate carries a partial listening-profile update. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Language *string
	Bio      *string
	ImageURL *string
}

// UserRepository defines access to accounts and listening profiles.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) error
	FavoriteArtistIDs(ctx context.Context, userID int64) ([]int64, error)
	SetFavoriteArtists(ctx context.Context, userID int64, artistIDs []int64) error
}

type mysqlUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a MySQL backed user repository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

// CreateUser inserts a user plus an empty profile row.
func (r *mysqlUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	now := time.Now()
	query := `INSERT INTO users (email, password_hash, role, is_email_verified, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.Email, user.PasswordHash, user.Role, user.IsEmailVerified, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}

	profileQuery := `INSERT INTO user_profiles (user_id, language, created_at, updated_at) VALUES (?, 'en', ?, ?)`
	if _, err := r.db.ExecContext(ctx, profileQuery, id, now, now); err != nil {
		return 0, fmt.Errorf("failed to create profile for user %d: %w", id, err)
	}

	return id, nil
}

func (r *mysqlUserRepository) getUser(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	query := `SELECT id, email, password_hash, role, is_email_verified, created_at, updated_at
	           FROM users WHERE ` + where
	row := r.db.QueryRowContext(ctx, query, arg)

	user := &model.User{}
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.IsEmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID, nil when not found.
func (r *mysqlUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

// GetUserByEmail retrieves a user by email, nil when not found.
func (r *mysqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, "email = ?", email)
}

// GetProfile retrieves the listening profile, nil when none exists.
// bio and image_url are nullable; fresh profiles carry NULL there.
func (r *mysqlUserRepository) GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	query := `SELECT id, user_id, language, bio, image_url, created_at, updated_at
	           FROM user_profiles WHERE user_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID)

	profile := &model.UserProfile{}
	var bio, imageURL sql.NullString
	err := row.Scan(&profile.ID, &profile.UserID, &profile.Language, &bio, &imageURL, &profile.CreatedAt, &profile.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile for user %d: %w", userID, err)
	}
	profile.Bio = bio.String
	profile.ImageURL = imageURL.String
	return profile, nil
}

// UpdateProfile applies the non-nil fields of the update. A no-op update
// returns nil without touching the database.
func (r *mysqlUserRepository) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if update.Language != nil {
		sets = append(sets, "language = ?")
		args = append(args, *update.Language)
	}
	if update.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *update.Bio)
	}
	if update.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *update.ImageURL)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), userID)

	query := `UPDATE user_profiles SET ` + strings.Join(sets, ", ") + ` WHERE user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update profile for user %d: %w", userID, err)
	}
	return nil
}

// FavoriteArtistIDs returns the user's favorite-artist set.
func (r *mysqlUserRepository) FavoriteArtistIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT pfa.artist_id FROM profile_favorite_artists pfa
	           JOIN user_profiles up ON up.id = pfa.user_profile_id
	           WHERE up.user_id = ?`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite artists for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// SetFavoriteArtists replaces the user's favorite-artist set in one
// transaction.
func (r *mysqlUserRepository) SetFavoriteArtists(ctx context.Context, userID int64, artistIDs []int64) error {
	var profileID int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM user_profiles WHERE user_id = ?`, userID).Scan(&profileID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("no profile for user %d", userID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up profile for user %d: %w", userID, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin favorite artists transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM profile_favorite_artists WHERE user_profile_id = ?`, profileID); err != nil {
		return fmt.Errorf("failed to clear favorite artists for user %d: %w", userID, err)
	}
	for _, artistID := range artistIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO profile_favorite_artists (user_profile_id, artist_id) VALUES (?, ?)`,
			profileID, artistID); err != nil {
			return fmt.Errorf("failed to add favorite artist %d for user %d: %w", artistID, userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit favorite artists for user %d: %w", userID, err)
	}
	return nil
}
