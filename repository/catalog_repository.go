package repository

import (
	"context"
	"fmt"

	"rhythmfm/model"

	"gorm.io/gorm"
)

// TrackOrder selects the ranking applied to a track query.
type TrackOrder int

const (
	// OrderByPlayCount ranks by descending play count.
	OrderByPlayCount TrackOrder = iota
	// OrderByCreatedAt ranks by descending creation time.
	OrderByCreatedAt
)

// TrackQuery describes a filtered, ordered track listing. Every filter is
// explicit; there is no hidden relation traversal behind it.
type TrackQuery struct {
	IDs        []int64 // restrict to this ID set
	ArtistIDs  []int64 // tracks by any of these artists
	TagIDs     []int64 // tracks sharing any of these tags
	Language   string  // tracks in this language
	ExcludeIDs []int64 // never include these IDs
	Order      TrackOrder
}

// CatalogRepository defines read access to the track catalog. Batch
// methods take ID sets and return maps so callers never fall into
// per-item queries.
type CatalogRepository interface {
	TrackIDs(ctx context.Context, q TrackQuery, offset, limit int) ([]int64, error)
	CountTracks(ctx context.Context, q TrackQuery) (int64, error)
	TracksByIDs(ctx context.Context, ids []int64) (map[int64]*model.Track, error)
	TagIDsForTracks(ctx context.Context, trackIDs []int64) ([]int64, error)

	GetTrack(ctx context.Context, id int64) (*model.Track, error)
	CreateTrack(ctx context.Context, track *model.Track) error
	IncrementPlayCount(ctx context.Context, trackID int64) error
	SearchTracks(ctx context.Context, query, language string, tagNames []string) ([]model.Track, error)

	ListArtists(ctx context.Context) ([]model.Artist, error)
	ListAlbums(ctx context.Context) ([]model.Album, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type gormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a GORM backed catalog repository.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &gormCatalogRepository{db: db}
}

// applyQuery translates a TrackQuery into a GORM chain. Joins against the
// relation tables can produce duplicate rows, so callers group by track ID.
func (r *gormCatalogRepository) applyQuery(ctx context.Context, q TrackQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&model.Track{})

	if len(q.IDs) > 0 {
		tx = tx.Where("tracks.id IN ?", q.IDs)
	}
	if len(q.ArtistIDs) > 0 {
		tx = tx.Joins("JOIN track_artists ON track_artists.track_id = tracks.id").
			Where("track_artists.artist_id IN ?", q.ArtistIDs)
	}
	if len(q.TagIDs) > 0 {
		tx = tx.Joins("JOIN track_tags ON track_tags.track_id = tracks.id").
			Where("track_tags.tag_id IN ?", q.TagIDs)
	}
	if q.Language != "" {
		tx = tx.Where("tracks.language = ?", q.Language)
	}
	if len(q.ExcludeIDs) > 0 {
		tx = tx.Where("tracks.id NOT IN ?", q.ExcludeIDs)
	}

	return tx
}

func orderClause(order TrackOrder) string {
	if order == OrderByCreatedAt {
		return "tracks.created_at DESC, tracks.id DESC"
	}
	return "tracks.play_count DESC, tracks.id DESC"
}

// TrackIDs returns the ordered track IDs matching the query.
func (r *gormCatalogRepository) TrackIDs(ctx context.Context, q TrackQuery, offset, limit int) ([]int64, error) {
	var ids []int64
	tx := r.applyQuery(ctx, q).
		Group("tracks.id").
		Order(orderClause(q.Order))
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Pluck("tracks.id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query track IDs: %w", err)
	}
	return ids, nil
}

// CountTracks returns the number of distinct tracks matching the query.
func (r *gormCatalogRepository) CountTracks(ctx context.Context, q TrackQuery) (int64, error) {
	var count int64
	if err := r.applyQuery(ctx, q).Distinct("tracks.id").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}

// TracksByIDs fetches all tracks in the set with artists, album and tags
// resolved in one pass.
func (r *gormCatalogRepository) TracksByIDs(ctx context.Context, ids []int64) (map[int64]*model.Track, error) {
	result := make(map[int64]*model.Track, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var tracks []model.Track
	err := r.db.WithContext(ctx).
		Preload("Artists").
		Preload("Album").
		Preload("Tags").
		Where("id IN ?", ids).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch tracks: %w", err)
	}

	for i := range tracks {
		result[tracks[i].ID] = &tracks[i]
	}
	return result, nil
}

// TagIDsForTracks returns the distinct tag IDs attached to any of the tracks.
func (r *gormCatalogRepository) TagIDsForTracks(ctx context.Context, trackIDs []int64) ([]int64, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}

	var tagIDs []int64
	err := r.db.WithContext(ctx).
		Table("track_tags").
		Distinct("tag_id").
		Where("track_id IN ?", trackIDs).
		Pluck("tag_id", &tagIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for tracks: %w", err)
	}
	return tagIDs, nil
}

// GetTrack retrieves one track with relations, nil when not found.
func (r *gormCatalogRepository) GetTrack(ctx context.Context, id int64) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).
		Preload("Artists").
		Preload("Album").
		Preload("Tags").
		First(&track, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get track %d: %w", id, err)
	}
	return &track, nil
}

// CreateTrack inserts a track together with its relation rows.
func (r *gormCatalogRepository) CreateTrack(ctx context.Context, track *model.Track) error {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}
	return nil
}

// IncrementPlayCount bumps the play counter by one.
func (r *gormCatalogRepository) IncrementPlayCount(ctx context.Context, trackID int64) error {
	err := r.db.WithContext(ctx).
		Model(&model.Track{}).
		Where("id = ?", trackID).
		UpdateColumn("play_count", gorm.Expr("play_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment play count for track %d: %w", trackID, err)
	}
	return nil
}

// SearchTracks matches the query against title, artist name and album title.
func (r *gormCatalogRepository) SearchTracks(ctx context.Context, query, language string, tagNames []string) ([]model.Track, error) {
	like := "%" + query + "%"
	tx := r.db.WithContext(ctx).
		Model(&model.Track{}).
		Joins("LEFT JOIN track_artists ON track_artists.track_id = tracks.id").
		Joins("LEFT JOIN artists ON artists.id = track_artists.artist_id").
		Joins("LEFT JOIN albums ON albums.id = tracks.album_id").
		Where("tracks.title LIKE ? OR tracks.title_ar LIKE ? OR artists.name LIKE ? OR albums.title LIKE ?",
			like, like, like, like)

	if language != "" {
		tx = tx.Where("tracks.language = ?", language)
	}
	if len(tagNames) > 0 {
		tx = tx.Joins("JOIN track_tags ON track_tags.track_id = tracks.id").
			Joins("JOIN tags ON tags.id = track_tags.tag_id").
			Where("tags.name IN ?", tagNames)
	}

	var tracks []model.Track
	err := tx.Group("tracks.id").
		Preload("Artists").
		Preload("Album").
		Preload("Tags").
		Limit(100).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search tracks: %w", err)
	}
	return tracks, nil
}

// ListArtists returns all artists ordered by name.
func (r *gormCatalogRepository) ListArtists(ctx context.Context) ([]model.Artist, error) {
	var artists []model.Artist
	if err := r.db.WithContext(ctx).Order("name").Find(&artists).Error; err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	return artists, nil
}

// ListAlbums returns all albums with artists, newest release first.
func (r *gormCatalogRepository) ListAlbums(ctx context.Context) ([]model.Album, error) {
	var albums []model.Album
	err := r.db.WithContext(ctx).
		Preload("Artists").
		Order("release_date DESC").
		Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

// ListTags returns all tags grouped by category then name.
func (r *gormCatalogRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("category, name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}
