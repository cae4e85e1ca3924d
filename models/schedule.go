package models

import "time"

// ScheduleIDs holds external identifiers for a show or episode.
type ScheduleIDs struct {
	Trakt int64  `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int64  `json:"tmdb,omitempty"`
	TVDB  int64  `json:"tvdb,omitempty"`
}

// ScheduleShow is the show block of a calendar entry.
type ScheduleShow struct {
	Title string      `json:"title"`
	Year  int         `json:"year,omitempty"`
	IDs   ScheduleIDs `json:"ids"`
}

// ScheduleEpisode is the episode block of a calendar entry.
type ScheduleEpisode struct {
	Season int         `json:"season"`
	Number int         `json:"number"`
	Title  string      `json:"title"`
	IDs    ScheduleIDs `json:"ids"`
}

// ScheduleEntry is one row of the Trakt "all shows" calendar: an episode
// airing within the requested window. Entries are fetched fresh each cycle
// and never persisted.
type ScheduleEntry struct {
	FirstAired time.Time       `json:"first_aired"`
	Episode    ScheduleEpisode `json:"episode"`
	Show       ScheduleShow    `json:"show"`
}
