package handlers

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var traktOAuthEndpoint = oauth2.Endpoint{
	AuthURL:  "https://trakt.tv/oauth/authorize",
	TokenURL: "https://trakt.tv/oauth/token",
}

// setOAuthEndpoint overrides the OAuth endpoint. Used by tests.
func setOAuthEndpoint(ep oauth2.Endpoint) {
	traktOAuthEndpoint = ep
}

// defaultReturnTo closes the watch configuration page, handing the fragment
// back to the watchapp.
const defaultReturnTo = "pebblejs://close#"

// pendingAuth ties an OAuth state nonce to where the browser should be sent
// after the token exchange.
type pendingAuth struct {
	returnTo  string
	createdAt time.Time
}

const pendingAuthTTL = 10 * time.Minute

// PebbleConfigHandler runs the Trakt authorization flow for the watch
// configuration page: the watchapp opens /pebbleConfig/, the user authorizes
// on Trakt, and the access token is returned to the watchapp through the
// pebblejs close fragment.
type PebbleConfigHandler struct {
	oauth *oauth2.Config

	mu      sync.Mutex
	pending map[string]pendingAuth
}

// NewPebbleConfigHandler creates a new PebbleConfigHandler. baseURL is the
// externally reachable URL of this server, used to build the OAuth redirect.
func NewPebbleConfigHandler(clientID, clientSecret, baseURL string) *PebbleConfigHandler {
	return &PebbleConfigHandler{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     traktOAuthEndpoint,
			RedirectURL:  baseURL + "/login/authorized",
		},
		pending: make(map[string]pendingAuth),
	}
}

// StartConfig begins the authorization flow. An optional return_to query
// parameter overrides where the token is delivered afterwards.
func (h *PebbleConfigHandler) StartConfig(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")
	if returnTo == "" {
		returnTo = defaultReturnTo
	}

	state := uuid.NewString()

	h.mu.Lock()
	h.sweepLocked()
	h.pending[state] = pendingAuth{returnTo: returnTo, createdAt: time.Now()}
	h.mu.Unlock()

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusFound)
}

// Authorized completes the flow: it exchanges the authorization code for an
// access token and redirects back to the watchapp with the token in the
// fragment.
func (h *PebbleConfigHandler) Authorized(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	returnTo, ok := h.take(query.Get("state"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown oauth state")
		return
	}

	if errCode := query.Get("error"); errCode != "" {
		writeError(w, http.StatusBadRequest, "access denied: "+errCode)
		return
	}

	token, err := h.oauth.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "oauth token exchange failed")
		return
	}

	values := url.Values{"accessToken": {token.AccessToken}}
	http.Redirect(w, r, returnTo+values.Encode(), http.StatusFound)
}

// take removes and returns the pending auth for a state nonce.
func (h *PebbleConfigHandler) take(state string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	auth, ok := h.pending[state]
	if !ok || time.Since(auth.createdAt) > pendingAuthTTL {
		delete(h.pending, state)
		return "", false
	}
	delete(h.pending, state)
	return auth.returnTo, true
}

// sweepLocked drops expired pending auths. Caller holds mu.
func (h *PebbleConfigHandler) sweepLocked() {
	for state, auth := range h.pending {
		if time.Since(auth.createdAt) > pendingAuthTTL {
			delete(h.pending, state)
		}
	}
}
