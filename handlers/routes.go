package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches every handler to the router.
func RegisterRoutes(r *mux.Router, launch *LaunchDataHandler, pebbleConfig *PebbleConfigHandler) {
	r.HandleFunc("/api/getLaunchData/{launchCode}", launch.GetLaunchData).Methods(http.MethodGet)
	r.HandleFunc("/pebbleConfig/", pebbleConfig.StartConfig).Methods(http.MethodGet)
	r.HandleFunc("/login/authorized", pebbleConfig.Authorized).Methods(http.MethodGet)
}
