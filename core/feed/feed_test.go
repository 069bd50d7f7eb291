package feed

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"rhythmfm/cache"
	"rhythmfm/model"
	"rhythmfm/repository"
)

// fakeCatalog serves a fixed track set, emulating the filter and ranking
// semantics of the real catalog repository.
type fakeCatalog struct {
	tracks map[int64]*model.Track
	err    error
}

func (f *fakeCatalog) matches(t *model.Track, q repository.TrackQuery) bool {
	if len(q.IDs) > 0 && !containsID(q.IDs, t.ID) {
		return false
	}
	if len(q.ExcludeIDs) > 0 && containsID(q.ExcludeIDs, t.ID) {
		return false
	}
	if q.Language != "" && t.Language != q.Language {
		return false
	}
	if len(q.ArtistIDs) > 0 {
		found := false
		for _, a := range t.Artists {
			if containsID(q.ArtistIDs, a.ID) {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if len(q.TagIDs) > 0 {
		found := false
		for _, tag := range t.Tags {
			if containsID(q.TagIDs, tag.ID) {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *fakeCatalog) ranked(q repository.TrackQuery) []int64 {
	matched := make([]*model.Track, 0, len(f.tracks))
	for _, t := range f.tracks {
		if f.matches(t, q) {
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.Order == repository.OrderByCreatedAt {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		} else if a.PlayCount != b.PlayCount {
			return a.PlayCount > b.PlayCount
		}
		return a.ID > b.ID
	})
	ids := make([]int64, len(matched))
	for i, t := range matched {
		ids[i] = t.ID
	}
	return ids
}

func (f *fakeCatalog) TrackIDs(_ context.Context, q repository.TrackQuery, offset, limit int) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := f.ranked(q)
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeCatalog) CountTracks(_ context.Context, q repository.TrackQuery) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.ranked(q))), nil
}

func (f *fakeCatalog) TracksByIDs(_ context.Context, ids []int64) (map[int64]*model.Track, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[int64]*model.Track, len(ids))
	for _, id := range ids {
		if t, ok := f.tracks[id]; ok {
			result[id] = t
		}
	}
	return result, nil
}

func (f *fakeCatalog) TagIDsForTracks(_ context.Context, trackIDs []int64) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := make(map[int64]struct{})
	var tagIDs []int64
	for _, id := range trackIDs {
		t, ok := f.tracks[id]
		if !ok {
			continue
		}
		for _, tag := range t.Tags {
			if _, dup := seen[tag.ID]; !dup {
				seen[tag.ID] = struct{}{}
				tagIDs = append(tagIDs, tag.ID)
			}
		}
	}
	return tagIDs, nil
}

func (f *fakeCatalog) GetTrack(_ context.Context, id int64) (*model.Track, error) {
	return f.tracks[id], nil
}

func (f *fakeCatalog) CreateTrack(_ context.Context, track *model.Track) error { return nil }

func (f *fakeCatalog) IncrementPlayCount(_ context.Context, trackID int64) error { return nil }

func (f *fakeCatalog) SearchTracks(_ context.Context, query, language string, tagNames []string) ([]model.Track, error) {
	return nil, nil
}

func (f *fakeCatalog) ListArtists(_ context.Context) ([]model.Artist, error) { return nil, nil }
func (f *fakeCatalog) ListAlbums(_ context.Context) ([]model.Album, error)  { return nil, nil }
func (f *fakeCatalog) ListTags(_ context.Context) ([]model.Tag, error)      { return nil, nil }

// fakeActivity serves fixed recent/favorite lists with injectable errors.
type fakeActivity struct {
	recent    []int64
	favorites []int64

	recentErr    error
	favoritesErr error
}

func paginate(ids []int64, offset, limit int) []int64 {
	if offset >= len(ids) {
		return nil
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (f *fakeActivity) RecentlyPlayedIDs(_ context.Context, userID int64, offset, limit int) ([]int64, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return paginate(f.recent, offset, limit), nil
}

func (f *fakeActivity) CountRecentlyPlayed(_ context.Context, userID int64) (int64, error) {
	if f.recentErr != nil {
		return 0, f.recentErr
	}
	return int64(len(f.recent)), nil
}

func (f *fakeActivity) FavoriteTrackIDs(_ context.Context, userID int64, offset, limit int) ([]int64, error) {
	if f.favoritesErr != nil {
		return nil, f.favoritesErr
	}
	return paginate(f.favorites, offset, limit), nil
}

func (f *fakeActivity) CountFavorites(_ context.Context, userID int64) (int64, error) {
	if f.favoritesErr != nil {
		return 0, f.favoritesErr
	}
	return int64(len(f.favorites)), nil
}

func (f *fakeActivity) FavoritedSet(_ context.Context, userID int64, trackIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool)
	for _, id := range trackIDs {
		if containsID(f.favorites, id) {
			result[id] = true
		}
	}
	return result, nil
}

func (f *fakeActivity) RecordPlay(_ context.Context, userID, trackID int64) error  { return nil }
func (f *fakeActivity) AddFavorite(_ context.Context, userID, trackID int64) error { return nil }
func (f *fakeActivity) RemoveFavorite(_ context.Context, userID, trackID int64) error {
	return nil
}

// fakeUsers serves a fixed profile and favorite-artist set.
type fakeUsers struct {
	language   string
	favArtists []int64
	profileErr error
	favArtErr  error
}

func (f *fakeUsers) CreateUser(_ context.Context, user *model.User) (int64, error) { return 0, nil }
func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*model.User, error)  { return nil, nil }
func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (f *fakeUsers) GetProfile(_ context.Context, userID int64) (*model.UserProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &model.UserProfile{UserID: userID, Language: f.language}, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID int64, update repository.ProfileUpdate) error {
	return nil
}

func (f *fakeUsers) FavoriteArtistIDs(_ context.Context, userID int64) ([]int64, error) {
	if f.favArtErr != nil {
		return nil, f.favArtErr
	}
	return f.favArtists, nil
}

func (f *fakeUsers) SetFavoriteArtists(_ context.Context, userID int64, artistIDs []int64) error {
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// track builds a catalog entry. Higher seq means newer and, unless
// overridden, more played.
func track(id int64, language string, playCount int64, artistIDs, tagIDs []int64) *model.Track {
	t := &model.Track{
		ID:        id,
		Title:     "Track " + strconv.FormatInt(id, 10),
		Language:  language,
		PlayCount: playCount,
		AudioURL:  "http://cdn.test/audio/" + strconv.FormatInt(id, 10),
		CreatedAt: time.Unix(1700000000+id*3600, 0),
	}
	for _, aid := range artistIDs {
		t.Artists = append(t.Artists, model.Artist{ID: aid, Name: "Artist " + strconv.FormatInt(aid, 10)})
	}
	for _, tid := range tagIDs {
		t.Tags = append(t.Tags, model.Tag{ID: tid, Name: "Tag " + strconv.FormatInt(tid, 10)})
	}
	return t
}

func catalogWithTracks(tracks ...*model.Track) *fakeCatalog {
	byID := make(map[int64]*model.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}
	return &fakeCatalog{tracks: byID}
}

func newTestService(catalog *fakeCatalog, activity *fakeActivity, users *fakeUsers) *Service {
	return NewService(catalog, activity, users, cache.NewMemoryFeedCache(), time.Minute)
}

// defaultFixture builds a small catalog: twelve English tracks plus two
// Arabic ones, with artists 1..3 and mood tags on the first few.
func defaultFixture() *fakeCatalog {
	tracks := make([]*model.Track, 0, 14)
	for id := int64(1); id <= 12; id++ {
		artistID := id%3 + 1
		var tagIDs []int64
		if id <= 8 {
			tagIDs = []int64{100}
		}
		tracks = append(tracks, track(id, model.LanguageEnglish, 100-id, []int64{artistID}, tagIDs))
	}
	tracks = append(tracks,
		track(21, model.LanguageArabic, 500, []int64{9}, nil),
		track(22, model.LanguageArabic, 400, []int64{9}, nil),
	)
	return catalogWithTracks(tracks...)
}

func sectionBySlug(t *testing.T, f *model.Feed, slug string) *model.Section {
	t.Helper()
	for i := range f.Sections {
		if f.Sections[i].Slug == slug {
			return &f.Sections[i]
		}
	}
	return nil
}

func TestBuildFeedMusicMapMatchesSections(t *testing.T) {
	catalog := defaultFixture()
	activity := &fakeActivity{recent: []int64{1, 2, 3}, favorites: []int64{4, 5}}
	users := &fakeUsers{language: "en", favArtists: []int64{2}}
	svc := newTestService(catalog, activity, users)

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	union := make(map[string]struct{})
	for _, section := range feed.Sections {
		seen := make(map[int64]struct{})
		for _, id := range section.Items {
			if _, dup := seen[id]; dup {
				t.Errorf("section %s contains duplicate track %d", section.Slug, id)
			}
			seen[id] = struct{}{}
			key := strconv.FormatInt(id, 10)
			union[key] = struct{}{}
			if _, ok := feed.MusicMap[key]; !ok {
				t.Errorf("section %s references track %s missing from music_map", section.Slug, key)
			}
		}
	}
	for key := range feed.MusicMap {
		if _, ok := union[key]; !ok {
			t.Errorf("music_map contains track %s referenced by no section", key)
		}
	}
}

func TestBuildFeedSectionOrder(t *testing.T) {
	catalog := defaultFixture()
	activity := &fakeActivity{recent: []int64{1, 2}, favorites: []int64{4}}
	users := &fakeUsers{language: "en", favArtists: []int64{2}}
	svc := newTestService(catalog, activity, users)

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	rank := make(map[string]int)
	for i, k := range sectionOrder {
		rank[k.Slug()] = i
	}
	last := -1
	for _, section := range feed.Sections {
		position, ok := rank[section.Slug]
		if !ok {
			t.Fatalf("unexpected section slug %q", section.Slug)
		}
		if position <= last {
			t.Errorf("section %s out of order", section.Slug)
		}
		last = position
	}
}

func TestBuildFeedEmptyActivity(t *testing.T) {
	catalog := defaultFixture()
	svc := newTestService(catalog, &fakeActivity{}, &fakeUsers{language: "en"})

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	for _, slug := range []string{"recently_played", "favorites", "recommended_for_you", "recommended_mood"} {
		if sectionBySlug(t, feed, slug) != nil {
			t.Errorf("expected section %s to be omitted for a user without activity", slug)
		}
	}
	for _, slug := range []string{"trending", "new_releases", "popular_language"} {
		if sectionBySlug(t, feed, slug) == nil {
			t.Errorf("expected catalog section %s to be present", slug)
		}
	}
}

func TestBuildFeedExcludesRecentFromRecommendations(t *testing.T) {
	catalog := defaultFixture()
	activity := &fakeActivity{recent: []int64{1, 2, 3, 4}}
	users := &fakeUsers{language: "en", favArtists: []int64{1, 2, 3}}
	svc := newTestService(catalog, activity, users)

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	for _, slug := range []string{"recommended_for_you", "recommended_mood"} {
		section := sectionBySlug(t, feed, slug)
		if section == nil {
			t.Fatalf("expected section %s to be present", slug)
		}
		for _, id := range section.Items {
			if containsID(activity.recent, id) {
				t.Errorf("section %s contains recently played track %d", slug, id)
			}
		}
	}
}

func TestBuildFeedDegradedBuilder(t *testing.T) {
	catalog := defaultFixture()
	activity := &fakeActivity{
		recent:       []int64{1, 2},
		favoritesErr: errors.New("favorites store down"),
	}
	svc := newTestService(catalog, activity, &fakeUsers{language: "en"})

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed should degrade, got error: %v", err)
	}
	if sectionBySlug(t, feed, "favorites") != nil {
		t.Error("expected failing favorites section to be omitted")
	}
	if sectionBySlug(t, feed, "recently_played") == nil {
		t.Error("expected recently_played section to survive favorites failure")
	}
	if sectionBySlug(t, feed, "trending") == nil {
		t.Error("expected trending section to survive favorites failure")
	}
}

func TestBuildFeedIsFavorited(t *testing.T) {
	catalog := defaultFixture()
	activity := &fakeActivity{recent: []int64{1}, favorites: []int64{1}}
	svc := newTestService(catalog, activity, &fakeUsers{language: "en"})

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	favorited, ok := feed.MusicMap["1"]
	if !ok {
		t.Fatal("expected track 1 in music_map")
	}
	if !favorited.IsFavorited {
		t.Error("expected track 1 to be marked favorited")
	}

	for key, projection := range feed.MusicMap {
		if key != "1" && projection.IsFavorited {
			t.Errorf("track %s should not be marked favorited", key)
		}
	}
}

func TestBuildFeedServesFromCache(t *testing.T) {
	catalog := defaultFixture()
	activity := &fakeActivity{recent: []int64{1, 2}}
	svc := newTestService(catalog, activity, &fakeUsers{language: "en"})

	first, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	// Mutate underlying activity; a fresh build would change the feed.
	activity.recent = nil

	second, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}
	if sectionBySlug(t, second, "recently_played") == nil {
		t.Error("expected cached feed to still contain recently_played")
	}
	if len(first.Sections) != len(second.Sections) {
		t.Errorf("cached feed differs: %d vs %d sections", len(first.Sections), len(second.Sections))
	}
}

func TestBuildFeedPrunesDeletedTracks(t *testing.T) {
	catalog := defaultFixture()
	// 999 was played but no longer exists in the catalog.
	activity := &fakeActivity{recent: []int64{999, 1}}
	svc := newTestService(catalog, activity, &fakeUsers{language: "en"})

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	section := sectionBySlug(t, feed, "recently_played")
	if section == nil {
		t.Fatal("expected recently_played section")
	}
	if containsID(section.Items, 999) {
		t.Error("expected deleted track 999 to be pruned from section items")
	}
	if _, ok := feed.MusicMap["999"]; ok {
		t.Error("expected deleted track 999 to be absent from music_map")
	}
}

func TestBuildFeedSectionCaps(t *testing.T) {
	tracks := make([]*model.Track, 0, 30)
	recent := make([]int64, 0, 12)
	for id := int64(1); id <= 30; id++ {
		tracks = append(tracks, track(id, model.LanguageEnglish, id, []int64{1}, nil))
	}
	for id := int64(1); id <= 12; id++ {
		recent = append(recent, id)
	}
	catalog := catalogWithTracks(tracks...)
	activity := &fakeActivity{recent: recent}
	svc := newTestService(catalog, activity, &fakeUsers{language: "en"})

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	recentSection := sectionBySlug(t, feed, "recently_played")
	if recentSection == nil {
		t.Fatal("expected recently_played section")
	}
	if len(recentSection.Items) != 10 {
		t.Errorf("recently_played should cap at 10, got %d", len(recentSection.Items))
	}
	if !recentSection.HasMore {
		t.Error("recently_played should report has_more with 12 plays")
	}

	trending := sectionBySlug(t, feed, "trending")
	if trending == nil {
		t.Fatal("expected trending section")
	}
	if len(trending.Items) != 15 {
		t.Errorf("trending should cap at 15, got %d", len(trending.Items))
	}
	if !trending.HasMore {
		t.Error("trending should report has_more with 30 catalog tracks")
	}
}

func TestBuildFeedArabicLocale(t *testing.T) {
	catalog := defaultFixture()
	catalog.tracks[21].TitleAr = "مسار"
	svc := newTestService(catalog, &fakeActivity{}, &fakeUsers{language: "ar"})

	feed, err := svc.BuildFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("BuildFeed returned error: %v", err)
	}

	section := sectionBySlug(t, feed, "popular_language")
	if section == nil {
		t.Fatal("expected popular_language section")
	}
	for _, id := range section.Items {
		projection := feed.MusicMap[strconv.FormatInt(id, 10)]
		if projection.Language != model.LanguageArabic {
			t.Errorf("popular_language for ar locale returned %s track %d", projection.Language, id)
		}
	}

	projection := feed.MusicMap["21"]
	if projection.Titles["ar"] != "مسار" {
		t.Errorf("expected Arabic title variant, got %q", projection.Titles["ar"])
	}
	if projection.Titles["en"] != "Track 21" {
		t.Errorf("expected default title for en locale, got %q", projection.Titles["en"])
	}
}

func TestNormalizeOmitsMissingTracks(t *testing.T) {
	catalog := defaultFixture()
	svc := newTestService(catalog, &fakeActivity{}, &fakeUsers{language: "en"})

	musicMap, err := svc.Normalize(context.Background(), []int64{1, 999}, 0)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(musicMap) != 1 {
		t.Fatalf("expected 1 projection, got %d", len(musicMap))
	}
	if _, ok := musicMap["1"]; !ok {
		t.Error("expected projection for track 1")
	}
	if musicMap["1"].IsFavorited {
		t.Error("anonymous normalization must not mark favorites")
	}
}
