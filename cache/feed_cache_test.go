package cache

import (
	"context"
	"testing"
	"time"

	"rhythmfm/model"
)

func TestFeedKey(t *testing.T) {
	if got := FeedKey(42, "ar"); got != "home_feed:42:ar" {
		t.Errorf("unexpected feed key %q", got)
	}
}

func TestMemoryFeedCacheRoundTrip(t *testing.T) {
	c := NewMemoryFeedCache()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "home_feed:1:en"); ok {
		t.Fatal("empty cache must miss")
	}

	feed := &model.Feed{
		Sections: []model.Section{{Title: "Trending", Slug: "trending", Items: []int64{1}}},
		MusicMap: map[string]model.NormalizedTrack{"1": {ID: 1}},
	}
	c.Put(ctx, "home_feed:1:en", feed, time.Minute)

	cached, ok := c.Get(ctx, "home_feed:1:en")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(cached.Sections) != 1 || cached.Sections[0].Slug != "trending" {
		t.Errorf("cached feed corrupted: %+v", cached)
	}

	if _, ok := c.Get(ctx, "home_feed:1:ar"); ok {
		t.Error("different locale must be a separate entry")
	}
}

func TestMemoryFeedCacheExpiry(t *testing.T) {
	c := NewMemoryFeedCache()
	ctx := context.Background()

	c.Put(ctx, "home_feed:1:en", &model.Feed{}, -time.Second)
	if _, ok := c.Get(ctx, "home_feed:1:en"); ok {
		t.Fatal("expired entry must miss")
	}
}
