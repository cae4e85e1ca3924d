package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showsync/models"
)

func scheduleEntry(episodeID int64) models.ScheduleEntry {
	return models.ScheduleEntry{
		FirstAired: time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC),
		Episode: models.ScheduleEpisode{
			Season: 3, Number: 7, Title: "The One",
			IDs: models.ScheduleIDs{Trakt: episodeID},
		},
		Show: models.ScheduleShow{
			Title: "Some Show",
			IDs:   models.ScheduleIDs{Trakt: 99},
		},
	}
}

func TestBuildEpisodePin(t *testing.T) {
	pin := BuildEpisodePin(scheduleEntry(4242))

	assert.Equal(t, "schedule-4242", pin.ID)
	assert.Equal(t, "calendarPin", pin.Layout.Type)
	assert.Equal(t, "Some Show | S03E07", pin.Layout.Title)
	assert.Equal(t, "The One", pin.Layout.Body)
	assert.Equal(t, "system://images/MOVIE_EVENT", pin.Layout.TinyIcon)
	assert.Equal(t, time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC), pin.Time)

	require.NotNil(t, pin.Duration)
	assert.Equal(t, 40, *pin.Duration)

	require.Len(t, pin.Actions, 2)
	assert.Equal(t, models.ActionCheckIn, pin.Actions[0].Title)
	assert.Equal(t, models.ActionMarkAsSeen, pin.Actions[1].Title)
	for _, action := range pin.Actions {
		assert.Equal(t, "openWatchApp", action.Type)
	}
}

func TestBuildEpisodePinIDDeterminism(t *testing.T) {
	a := BuildEpisodePin(scheduleEntry(4242))
	b := BuildEpisodePin(scheduleEntry(4242))
	c := BuildEpisodePin(scheduleEntry(4243))

	assert.Equal(t, a.ID, b.ID, "same episode must always yield the same pin id")
	assert.NotEqual(t, a.ID, c.ID, "distinct episodes must never collide")
}

func TestBuildEpisodePinUnknownShow(t *testing.T) {
	entry := scheduleEntry(4242)
	entry.Show.Title = ""
	entry.Episode.Title = ""

	pin := BuildEpisodePin(entry)

	assert.Equal(t, "Unknown show | S03E07", pin.Layout.Title)
	assert.Empty(t, pin.Layout.Body, "empty episode title must not produce a body")
}

func TestBuildEpisodePinLaunchCodesAreFresh(t *testing.T) {
	a := BuildEpisodePin(scheduleEntry(4242))
	b := BuildEpisodePin(scheduleEntry(4242))

	// Codes are random 32-bit draws; equality across independent draws is
	// possible in theory but indicates a broken generator in practice.
	assert.NotEqual(t, a.Actions[0].LaunchCode, a.Actions[1].LaunchCode)
	assert.NotEqual(t, a.Actions[0].LaunchCode, b.Actions[0].LaunchCode)
}
