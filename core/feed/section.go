package feed

// Kind enumerates the home feed sections. The set is fixed; adding a
// section means extending this enum and the switches over it.
type Kind int

const (
	KindRecentlyPlayed Kind = iota
	KindFavorites
	KindRecommendedArtists
	KindRecommendedMood
	KindTrending
	KindNewReleases
	KindPopularLanguage
)

// sectionOrder is the fixed policy order sections appear in on the feed.
var sectionOrder = [...]Kind{
	KindRecentlyPlayed,
	KindFavorites,
	KindRecommendedArtists,
	KindRecommendedMood,
	KindTrending,
	KindNewReleases,
	KindPopularLanguage,
}

// moodLookback is how many of the latest plays seed the mood section.
const moodLookback = 5

// Slug returns the stable identifier used in URLs and payloads.
func (k Kind) Slug() string {
	switch k {
	case KindRecentlyPlayed:
		return "recently_played"
	case KindFavorites:
		return "favorites"
	case KindRecommendedArtists:
		return "recommended_for_you"
	case KindRecommendedMood:
		return "recommended_mood"
	case KindTrending:
		return "trending"
	case KindNewReleases:
		return "new_releases"
	case KindPopularLanguage:
		return "popular_language"
	}
	return ""
}

// Title returns the display title for the section.
func (k Kind) Title() string {
	switch k {
	case KindRecentlyPlayed:
		return "Recently Played"
	case KindFavorites:
		return "Favorites"
	case KindRecommendedArtists:
		return "Recommended for You"
	case KindRecommendedMood:
		return "Based on your mood"
	case KindTrending:
		return "Trending"
	case KindNewReleases:
		return "New Releases"
	case KindPopularLanguage:
		return "Popular in your language"
	}
	return ""
}

// Cap returns the per-section preview size.
func (k Kind) Cap() int {
	if k == KindRecentlyPlayed {
		return 10
	}
	return 15
}

// KindFromSlug resolves a slug back to its Kind.
func KindFromSlug(slug string) (Kind, bool) {
	for _, k := range sectionOrder {
		if k.Slug() == slug {
			return k, true
		}
	}
	return 0, false
}
