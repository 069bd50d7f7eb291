package model

import "time"

// Track languages. Stored as enum strings, matching the catalog import format.
const (
	LanguageEnglish      = "ENGLISH"
	LanguageArabic       = "ARABIC"
	LanguageMalayalam    = "MALAYALAM"
	LanguageHindi        = "HINDI"
	LanguageTelugu       = "TELUGU"
	LanguageKannada      = "KANNADA"
	LanguageTamil        = "TAMIL"
	LanguageInstrumental = "INSTRUMENTAL"
	LanguageBilingual    = "BILINGUAL"
)

// languageDisplay maps the language enum to its display label.
var languageDisplay = map[string]string{
	LanguageEnglish:      "English",
	LanguageArabic:       "Arabic",
	LanguageMalayalam:    "Malayalam",
	LanguageHindi:        "Hindi",
	LanguageTelugu:       "Telugu",
	LanguageKannada:      "Kannada",
	LanguageTamil:        "Tamil",
	LanguageInstrumental: "Instrumental",
	LanguageBilingual:    "Bilingual",
}

// LanguageDisplay returns the human readable label for a language enum value.
func LanguageDisplay(language string) string {
	if label, ok := languageDisplay[language]; ok {
		return label
	}
	return language
}

// SupportedLocales lists the locale codes title variants exist for.
// The default title doubles as the "en" variant.
var SupportedLocales = []string{"en", "ar"}

// Tag categories.
const (
	TagCategoryMood  = "MOOD"
	TagCategoryGenre = "GENRE"
	TagCategoryTheme = "THEME"
)

// Artist represents a music creator.
type Artist struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;index" json:"name"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	ImageURL  string    `gorm:"size:500" json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// Album groups tracks under a shared release.
type Album struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200" json:"title"`
	Artists     []Artist   `gorm:"many2many:album_artists" json:"artists,omitempty"`
	ReleaseDate *time.Time `gorm:"index" json:"release_date,omitempty"`
	CoverURL    string     `gorm:"size:500" json:"cover_url,omitempty"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`
}

// Tag categorizes tracks by mood, genre or theme.
type Tag struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex" json:"name"`
	Category    string    `gorm:"size:20;index;default:MOOD" json:"category"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ColorCode   string    `gorm:"size:7;default:#000000" json:"color_code"`
	Icon        string    `gorm:"size:50" json:"icon,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Track represents an audio track in the catalog.
//
// Title holds the default (English) title; TitleAr the Arabic variant.
// Variants are populated at write time, readers never construct field
// names dynamically.
type Track struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:200" json:"title"`
	TitleAr    string    `gorm:"size:200" json:"title_ar,omitempty"`
	Artists    []Artist  `gorm:"many2many:track_artists" json:"artists,omitempty"`
	AlbumID    *int64    `gorm:"index" json:"album_id,omitempty"`
	Album      *Album    `json:"album,omitempty"`
	Tags       []Tag     `gorm:"many2many:track_tags" json:"tags,omitempty"`
	AudioURL   string    `gorm:"size:500" json:"audio_url"`
	ThumbURL   string    `gorm:"size:500" json:"thumb_url,omitempty"`
	Duration   int       `json:"duration"` // seconds
	Language   string    `gorm:"size:20;index;default:ENGLISH" json:"language"`
	UploadedBy int64     `gorm:"index" json:"uploaded_by,omitempty"`
	PlayCount  int64     `gorm:"index" json:"play_count"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}

// TitleForLocale returns the title variant for a locale, falling back to
// the default title when no variant is stored.
func (t *Track) TitleForLocale(locale string) string {
	if locale == "ar" && t.TitleAr != "" {
		return t.TitleAr
	}
	return t.Title
}

// Titles builds the locale to title map used by the normalized projection.
func (t *Track) Titles() map[string]string {
	titles := make(map[string]string, len(SupportedLocales))
	for _, locale := range SupportedLocales {
		titles[locale] = t.TitleForLocale(locale)
	}
	return titles
}

// ArtistNames returns artist names in relation order.
func (t *Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}
