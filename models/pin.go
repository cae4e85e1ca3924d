package models

import "time"

// Pin action titles as rendered on the watch. The launch-code lookup maps
// these back to API action names, so they are shared constants rather than
// literals scattered across packages.
const (
	ActionCheckIn    = "Check-in"
	ActionMarkAsSeen = "Mark as seen"
)

// Pin is a Pebble timeline pin for one episode's air event. The JSON shape
// follows the timeline API wire format: Duration and Body are omitted when
// absent rather than sent as zero values.
type Pin struct {
	ID       string      `json:"id"`
	Time     time.Time   `json:"time"`
	Duration *int        `json:"duration,omitempty"`
	Layout   PinLayout   `json:"layout"`
	Actions  []PinAction `json:"actions"`
}

// PinLayout is the visual layout block of a timeline pin.
type PinLayout struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	TinyIcon string `json:"tinyIcon"`
}

// PinAction is one user-invokable action on a pin. The launch code is a
// random correlation token the watchapp sends back when the action fires;
// it is only ever resolved through the owning pin's stored action list.
type PinAction struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	LaunchCode uint32 `json:"launchCode"`
}

// PinMetadata is stored alongside a sent pin so lookups can recover the
// episode without re-parsing the pin body.
type PinMetadata struct {
	EpisodeID int64 `json:"episodeID"`
}
