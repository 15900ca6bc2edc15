package cpstats

import "cpstats-backend/lib/platforms"

// OverallStats is the headline block of a snapshot. ActiveDays mirrors
// TotalContests, the profile pages expose no real activity calendar.
type OverallStats struct {
	TotalSolved       int    `json:"totalSolved"`
	ActiveDays        int    `json:"activeDays"`
	TotalContests     int    `json:"totalContests"`
	OverallPercentile string `json:"overallPercentile"`
	PeakRating        int    `json:"peakRating"`
}

// PlatformReview is one row of the per-platform breakdown. Color and
// Bg are opaque styling tags passed through to the frontend.
type PlatformReview struct {
	Name      string   `json:"name"`
	Score     string   `json:"score"`
	RawRating string   `json:"rawRating"`
	Badge     string   `json:"badge"`
	Color     string   `json:"color"`
	Bg        string   `json:"bg"`
	Changes   []string `json:"changes"`
}

type RatingPoint struct {
	Month  string `json:"month"`
	Rating int    `json:"rating"`
}

// Snapshot is the full aggregated payload for one account view.
type Snapshot struct {
	OverallStats      OverallStats          `json:"overallStats"`
	PlatformReviews   []PlatformReview      `json:"platformReviews"`
	RatingEvolution   []RatingPoint         `json:"ratingEvolution"`
	ContestHighlights []platforms.Highlight `json:"contestHighlights"`
}
