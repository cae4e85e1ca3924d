package sync

import (
	"fmt"
	"math/rand"

	"showsync/models"
)

const (
	pinIDPrefix      = "schedule-"
	unknownShowTitle = "Unknown show"
	episodeTinyIcon  = "system://images/MOVIE_EVENT"

	// Trakt does not expose runtimes on the calendar feed, so every
	// episode pin gets a nominal 40 minute duration.
	episodeDurationMinutes = 40
)

// PinID returns the deterministic pin id for an episode. This is the sole
// dedup key: the same episode always maps to the same id.
func PinID(episodeID int64) string {
	return fmt.Sprintf("%s%d", pinIDPrefix, episodeID)
}

// BuildEpisodePin transforms one schedule entry into a timeline pin.
// Deterministic apart from the two freshly drawn launch codes; missing
// optional fields are absorbed with defaults rather than failing.
func BuildEpisodePin(entry models.ScheduleEntry) models.Pin {
	showTitle := entry.Show.Title
	if showTitle == "" {
		showTitle = unknownShowTitle
	}

	title := fmt.Sprintf("%s | S%02dE%02d", showTitle, entry.Episode.Season, entry.Episode.Number)

	duration := episodeDurationMinutes
	return models.Pin{
		ID:       PinID(entry.Episode.IDs.Trakt),
		Time:     entry.FirstAired,
		Duration: &duration,
		Layout: models.PinLayout{
			Type:     "calendarPin",
			Title:    title,
			Body:     entry.Episode.Title,
			TinyIcon: episodeTinyIcon,
		},
		Actions: []models.PinAction{
			{Title: models.ActionCheckIn, Type: "openWatchApp", LaunchCode: rand.Uint32()},
			{Title: models.ActionMarkAsSeen, Type: "openWatchApp", LaunchCode: rand.Uint32()},
		},
	}
}
