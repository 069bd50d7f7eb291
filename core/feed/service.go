package feed

import (
	"context"
	"fmt"
	"time"

	"rhythmfm/cache"
	"rhythmfm/logger"
	"rhythmfm/model"
	"rhythmfm/repository"
)

// Service assembles, caches and pages the personalized home feed.
type Service struct {
	catalog  repository.CatalogRepository
	activity repository.ActivityRepository
	users    repository.UserRepository
	cache    cache.FeedCache
	ttl      time.Duration
}

// NewService wires the feed service. ttl bounds cache staleness; writes to
// the underlying stores do not evict entries before it elapses.
func NewService(
	catalog repository.CatalogRepository,
	activity repository.ActivityRepository,
	users repository.UserRepository,
	feedCache cache.FeedCache,
	ttl time.Duration,
) *Service {
	return &Service{
		catalog:  catalog,
		activity: activity,
		users:    users,
		cache:    feedCache,
		ttl:      ttl,
	}
}

// localeFor resolves the user's preferred locale, defaulting to English.
func (s *Service) localeFor(ctx context.Context, userID int64) string {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		logger.Warn("failed to load profile, defaulting locale",
			logger.Int64("userId", userID), logger.ErrorField(err))
		return "en"
	}
	if profile == nil || profile.Language == "" {
		return "en"
	}
	return profile.Language
}

// languageForLocale maps a profile locale to the catalog language enum
// driving the popular_language section.
func languageForLocale(locale string) string {
	if locale == "ar" {
		return model.LanguageArabic
	}
	return model.LanguageEnglish
}

// activitySnapshot is the user's own prior activity, fetched once per
// request and reused by every builder that depends on it.
type activitySnapshot struct {
	recentIDs         []int64 // capped at the recently_played preview size
	recentHasMore     bool
	favoriteArtistIDs []int64
}

// loadSnapshot fetches the activity snapshot.
func (s *Service) loadSnapshot(ctx context.Context, userID int64) (activitySnapshot, error) {
	var snap activitySnapshot

	size := KindRecentlyPlayed.Cap()
	recent, err := s.activity.RecentlyPlayedIDs(ctx, userID, 0, size+1)
	if err != nil {
		return snap, fmt.Errorf("failed to load recently played snapshot: %w", err)
	}
	if len(recent) > size {
		snap.recentHasMore = true
		recent = recent[:size]
	}
	snap.recentIDs = recent

	artistIDs, err := s.users.FavoriteArtistIDs(ctx, userID)
	if err != nil {
		return snap, fmt.Errorf("failed to load favorite artists snapshot: %w", err)
	}
	snap.favoriteArtistIDs = artistIDs

	return snap, nil
}
