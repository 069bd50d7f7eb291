package feed

import (
	"context"
	"fmt"
	"strconv"

	"rhythmfm/model"
)

// Normalize builds the id-keyed projection map for a set of track IDs.
// All tracks are fetched in one batch with relations resolved, and the
// user's favorite membership is checked in a single query. IDs missing
// from the catalog are silently omitted. Pass userID <= 0 for contexts
// without a user; is_favorited is then always false.
func (s *Service) Normalize(ctx context.Context, trackIDs []int64, userID int64) (map[string]model.NormalizedTrack, error) {
	result := make(map[string]model.NormalizedTrack, len(trackIDs))
	if len(trackIDs) == 0 {
		return result, nil
	}

	tracks, err := s.catalog.TracksByIDs(ctx, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracks for normalization: %w", err)
	}

	var favorited map[int64]bool
	if userID > 0 {
		favorited, err = s.activity.FavoritedSet(ctx, userID, trackIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve favorite membership: %w", err)
		}
	}

	for _, id := range trackIDs {
		track, ok := tracks[id]
		if !ok {
			continue
		}
		result[strconv.FormatInt(id, 10)] = projectTrack(track, favorited[id])
	}

	return result, nil
}

// projectTrack converts a full track entity into its compact projection.
func projectTrack(track *model.Track, isFavorited bool) model.NormalizedTrack {
	var albumTitle *string
	if track.Album != nil {
		albumTitle = &track.Album.Title
	}

	return model.NormalizedTrack{
		ID:              track.ID,
		Titles:          track.Titles(),
		ArtistNames:     track.ArtistNames(),
		AlbumTitle:      albumTitle,
		ThumbURL:        track.ThumbURL,
		AudioURL:        track.AudioURL,
		Duration:        track.Duration,
		Language:        track.Language,
		LanguageDisplay: model.LanguageDisplay(track.Language),
		PlayCount:       track.PlayCount,
		IsFavorited:     isFavorited,
	}
}
