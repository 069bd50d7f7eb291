package model

import "time"

// Advertisement placements.
const (
	AdPlacementHome   = "HOME"
	AdPlacementPlayer = "PLAYER"
	AdPlacementSearch = "SEARCH"
)

// Advertisement carries an ad creative plus its counters. Only the
// counters are maintained here; campaign management lives elsewhere.
type Advertisement struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:200" json:"title"`
	Placement       string     `gorm:"size:20;index" json:"placement"`
	MediaURL        string     `gorm:"size:500" json:"media_url"`
	TargetURL       string     `gorm:"size:500" json:"target_url"`
	IsActive        bool       `gorm:"index" json:"is_active"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	ImpressionCount int64      `json:"impression_count"`
	ClickCount      int64      `json:"click_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"-"`
}
