package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"rhythmfm/model"
	"rhythmfm/repository"
)

// ErrUnknownSection marks a slug outside the fixed section set.
var ErrUnknownSection = errors.New("unknown section slug")

// Pagination bounds for section drill-down.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageSection re-derives one section's query without the preview cap and
// pages through it. This path always bypasses the feed cache: "see all"
// must reflect live ordering beyond the capped preview.
func (s *Service) PageSection(ctx context.Context, slug string, userID int64, page, pageSize int) (*model.SectionPage, error) {
	k, ok := KindFromSlug(slug)
	if !ok {
		return nil, ErrUnknownSection
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	offset := (page - 1) * pageSize

	ids, total, err := s.pageIDs(ctx, k, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}

	results, err := s.orderedProjections(ctx, ids, userID)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	sectionPage := &model.SectionPage{
		Count:       total,
		Results:     results,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
	if page < totalPages {
		next := page + 1
		sectionPage.Next = &next
	}
	if page > 1 {
		previous := page - 1
		sectionPage.Previous = &previous
	}

	return sectionPage, nil
}

// pageIDs runs the uncapped section query with offset pagination and
// returns the page of IDs plus the total count.
func (s *Service) pageIDs(ctx context.Context, k Kind, userID int64, offset, limit int) ([]int64, int64, error) {
	switch k {
	case KindRecentlyPlayed:
		ids, err := s.activity.RecentlyPlayedIDs(ctx, userID, offset, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to page recently played: %w", err)
		}
		total, err := s.activity.CountRecentlyPlayed(ctx, userID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count recently played: %w", err)
		}
		return ids, total, nil

	case KindFavorites:
		ids, err := s.activity.FavoriteTrackIDs(ctx, userID, offset, limit)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to page favorites: %w", err)
		}
		total, err := s.activity.CountFavorites(ctx, userID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count favorites: %w", err)
		}
		return ids, total, nil
	}

	// Catalog-driven sections share the builders' query derivation,
	// including their preconditions and exclusions.
	locale := s.localeFor(ctx, userID)
	snap, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	switch k {
	case KindRecommendedArtists:
		query, ok := artistQuery(snap)
		if !ok {
			return nil, 0, nil
		}
		return s.countedQuery(ctx, query, offset, limit)

	case KindRecommendedMood:
		query, ok, err := s.moodQuery(ctx, snap)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return nil, 0, nil
		}
		return s.countedQuery(ctx, query, offset, limit)

	case KindTrending:
		return s.countedQuery(ctx, trendingQuery(), offset, limit)

	case KindNewReleases:
		return s.countedQuery(ctx, newReleasesQuery(), offset, limit)

	case KindPopularLanguage:
		return s.countedQuery(ctx, popularLanguageQuery(locale), offset, limit)
	}

	return nil, 0, nil
}

// orderedProjections normalizes the IDs and returns projections in the
// original ranking order.
func (s *Service) orderedProjections(ctx context.Context, ids []int64, userID int64) ([]model.NormalizedTrack, error) {
	musicMap, err := s.Normalize(ctx, ids, userID)
	if err != nil {
		return nil, err
	}

	results := make([]model.NormalizedTrack, 0, len(ids))
	for _, id := range ids {
		if projection, ok := musicMap[strconv.FormatInt(id, 10)]; ok {
			results = append(results, projection)
		}
	}
	return results, nil
}

func (s *Service) countedQuery(ctx context.Context, q repository.TrackQuery, offset, limit int) ([]int64, int64, error) {
	ids, err := s.catalog.TrackIDs(ctx, q, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to page section query: %w", err)
	}
	total, err := s.catalog.CountTracks(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count section query: %w", err)
	}
	return ids, total, nil
}
