package feed

import (
	"context"
	"fmt"
	"strconv"

	"rhythmfm/cache"
	"rhythmfm/logger"
	"rhythmfm/model"
)

// BuildFeed returns the normalized home feed for the user, served from
// cache when fresh. On a miss every section builder runs in the fixed
// policy order; a failing builder degrades to an omitted section instead
// of aborting the aggregation. Only a catalog failure during
// normalization propagates.
func (s *Service) BuildFeed(ctx context.Context, userID int64) (*model.Feed, error) {
	locale := s.localeFor(ctx, userID)
	key := cache.FeedKey(userID, locale)

	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	snap, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		// Activity-driven sections degrade to empty; the catalog-driven
		// ones still build.
		logger.Warn("home feed activity snapshot degraded",
			logger.Int64("userId", userID), logger.ErrorField(err))
		snap = activitySnapshot{}
	}

	sections := make([]model.Section, 0, len(sectionOrder))
	seen := make(map[int64]struct{})
	union := make([]int64, 0)

	for _, k := range sectionOrder {
		items, hasMore, err := s.buildSection(ctx, k, userID, locale, snap)
		if err != nil {
			logger.Warn("home feed section degraded",
				logger.String("slug", k.Slug()),
				logger.Int64("userId", userID),
				logger.ErrorField(err))
			continue
		}
		if len(items) == 0 {
			continue
		}

		sections = append(sections, model.Section{
			Title:   k.Title(),
			Slug:    k.Slug(),
			Items:   items,
			HasMore: hasMore,
		})
		for _, id := range items {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				union = append(union, id)
			}
		}
	}

	musicMap, err := s.Normalize(ctx, union, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize home feed: %w", err)
	}

	feed := &model.Feed{
		Sections: pruneSections(sections, musicMap),
		MusicMap: musicMap,
	}

	s.cache.Put(ctx, key, feed, s.ttl)
	return feed, nil
}

// pruneSections drops item IDs whose tracks no longer exist in the
// catalog (stale activity rows), keeping sections and music_map in exact
// correspondence. Sections emptied by pruning are removed.
func pruneSections(sections []model.Section, musicMap map[string]model.NormalizedTrack) []model.Section {
	result := sections[:0]
	for _, section := range sections {
		items := make([]int64, 0, len(section.Items))
		for _, id := range section.Items {
			if _, ok := musicMap[strconv.FormatInt(id, 10)]; ok {
				items = append(items, id)
			}
		}
		if len(items) == 0 {
			continue
		}
		section.Items = items
		result = append(result, section)
	}
	return result
}
