package feed

import (
	"context"

	"rhythmfm/repository"
)

// buildSection runs one section's ranking query and returns the capped
// item list plus whether it was truncated. An empty list means the
// section is skipped; builders with unmet preconditions return empty
// without touching the stores.
func (s *Service) buildSection(ctx context.Context, k Kind, userID int64, locale string, snap activitySnapshot) ([]int64, bool, error) {
	size := k.Cap()

	switch k {
	case KindRecentlyPlayed:
		return snap.recentIDs, snap.recentHasMore, nil

	case KindFavorites:
		ids, err := s.activity.FavoriteTrackIDs(ctx, userID, 0, size+1)
		if err != nil {
			return nil, false, err
		}
		return truncate(ids, size)

	case KindRecommendedArtists:
		q, ok := artistQuery(snap)
		if !ok {
			return nil, false, nil
		}
		return s.cappedQuery(ctx, q, size)

	case KindRecommendedMood:
		q, ok, err := s.moodQuery(ctx, snap)
		if err != nil || !ok {
			return nil, false, err
		}
		return s.cappedQuery(ctx, q, size)

	case KindTrending:
		return s.cappedQuery(ctx, trendingQuery(), size)

	case KindNewReleases:
		return s.cappedQuery(ctx, newReleasesQuery(), size)

	case KindPopularLanguage:
		return s.cappedQuery(ctx, popularLanguageQuery(locale), size)
	}

	return nil, false, nil
}

func trendingQuery() repository.TrackQuery {
	return repository.TrackQuery{Order: repository.OrderByPlayCount}
}

func newReleasesQuery() repository.TrackQuery {
	return repository.TrackQuery{Order: repository.OrderByCreatedAt}
}

func popularLanguageQuery(locale string) repository.TrackQuery {
	return repository.TrackQuery{
		Language: languageForLocale(locale),
		Order:    repository.OrderByPlayCount,
	}
}

// artistQuery derives the recommended_for_you query. Requires a non-empty
// favorite-artist set; tracks already in the recently played preview are
// excluded.
func artistQuery(snap activitySnapshot) (repository.TrackQuery, bool) {
	if len(snap.favoriteArtistIDs) == 0 {
		return repository.TrackQuery{}, false
	}
	return repository.TrackQuery{
		ArtistIDs:  snap.favoriteArtistIDs,
		ExcludeIDs: snap.recentIDs,
		Order:      repository.OrderByPlayCount,
	}, true
}

// moodQuery derives the recommended_mood query from the tags of the
// latest plays. Requires recent plays carrying at least one tag.
func (s *Service) moodQuery(ctx context.Context, snap activitySnapshot) (repository.TrackQuery, bool, error) {
	if len(snap.recentIDs) == 0 {
		return repository.TrackQuery{}, false, nil
	}

	lookback := snap.recentIDs
	if len(lookback) > moodLookback {
		lookback = lookback[:moodLookback]
	}

	tagIDs, err := s.catalog.TagIDsForTracks(ctx, lookback)
	if err != nil {
		return repository.TrackQuery{}, false, err
	}
	if len(tagIDs) == 0 {
		return repository.TrackQuery{}, false, nil
	}

	return repository.TrackQuery{
		TagIDs:     tagIDs,
		ExcludeIDs: snap.recentIDs,
		Order:      repository.OrderByPlayCount,
	}, true, nil
}

// cappedQuery fetches one item past the cap to detect truncation.
func (s *Service) cappedQuery(ctx context.Context, q repository.TrackQuery, size int) ([]int64, bool, error) {
	ids, err := s.catalog.TrackIDs(ctx, q, 0, size+1)
	if err != nil {
		return nil, false, err
	}
	return truncate(ids, size)
}

func truncate(ids []int64, size int) ([]int64, bool, error) {
	if len(ids) > size {
		return ids[:size], true, nil
	}
	return ids, false, nil
}
