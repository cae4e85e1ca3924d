package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"showsync/internal/database"
	"showsync/models"
)

// PinStore looks up previously sent pins by launch code.
type PinStore interface {
	PinForLaunchCode(code uint32) (models.Pin, models.PinMetadata, error)
}

// LaunchDataHandler serves the watchapp's launch-code lookup: when a pin
// action fires on the watch, the app asks which episode and which action
// the code belongs to.
type LaunchDataHandler struct {
	Store PinStore
}

// NewLaunchDataHandler creates a new LaunchDataHandler.
func NewLaunchDataHandler(store PinStore) *LaunchDataHandler {
	return &LaunchDataHandler{Store: store}
}

// LaunchDataResponse tells the watchapp which episode the launch code
// belongs to and which action was invoked.
type LaunchDataResponse struct {
	EpisodeID int64  `json:"episodeID"`
	Action    string `json:"action"`
}

// GetLaunchData resolves a launch code to its episode and action.
func (h *LaunchDataHandler) GetLaunchData(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseUint(mux.Vars(r)["launchCode"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid launch code")
		return
	}

	pin, meta, err := h.Store.PinForLaunchCode(uint32(code))
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no pin for launch code")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "pin lookup failed")
		return
	}

	var action string
	for _, pinAction := range pin.Actions {
		if pinAction.LaunchCode != uint32(code) {
			continue
		}
		switch pinAction.Title {
		case models.ActionCheckIn:
			action = "checkIn"
		case models.ActionMarkAsSeen:
			action = "markAsSeen"
		}
		break
	}
	if action == "" {
		writeError(w, http.StatusInternalServerError, "pin action unknown")
		return
	}

	writeJSON(w, http.StatusOK, LaunchDataResponse{
		EpisodeID: meta.EpisodeID,
		Action:    action,
	})
}
