package model

// Section is one ranked, capped sub-list of the home feed. Items hold
// track IDs only; the payload for each ID lives in Feed.MusicMap.
type Section struct {
	Title   string  `json:"title"`
	Slug    string  `json:"slug"`
	Items   []int64 `json:"items"`
	HasMore bool    `json:"has_more"`
}

// Feed is the normalized home feed. MusicMap contains exactly the union
// of all track IDs referenced by Sections, keyed by the ID as a string.
type Feed struct {
	Sections []Section                  `json:"sections"`
	MusicMap map[string]NormalizedTrack `json:"music_map"`
}

// NormalizedTrack is the compact, locale-aware track projection used in
// feed payloads.
type NormalizedTrack struct {
	ID              int64             `json:"id"`
	Titles          map[string]string `json:"titles"`
	ArtistNames     []string          `json:"artist_names"`
	AlbumTitle      *string           `json:"album_title"`
	ThumbURL        string            `json:"thumb_url"`
	AudioURL        string            `json:"audio_url"`
	Duration        int               `json:"duration"`
	Language        string            `json:"language"`
	LanguageDisplay string            `json:"language_display"`
	PlayCount       int64             `json:"play_count"`
	IsFavorited     bool              `json:"is_favorited"`
}

// SectionPage is the paginated envelope for single-section drill-down.
// Next and Previous are page numbers, nil at the ends.
type SectionPage struct {
	Count       int64             `json:"count"`
	Next        *int              `json:"next"`
	Previous    *int              `json:"previous"`
	Results     []NormalizedTrack `json:"results"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
}
