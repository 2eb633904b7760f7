package handler

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/racesync/internal/api/response"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/storage"
)

// StatusHandler serves the mirrored session state
type StatusHandler struct {
	store     storage.Storage
	sessionID func() model.SessionID
}

// NewStatusHandler creates a status handler. sessionID names the session to
// report on; when it is nil or returns "", the first stored session is used.
func NewStatusHandler(store storage.Storage, sessionID func() model.SessionID) *StatusHandler {
	return &StatusHandler{store: store, sessionID: sessionID}
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListSessions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok", Sessions: len(ids)})
}

// Session handles GET /session
func (h *StatusHandler) Session(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolve(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	snap, err := h.store.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(snap))
}

// Races handles GET /races
func (h *StatusHandler) Races(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolve(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	races, err := h.store.ListRaces(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	sort.Slice(races, func(i, j int) bool { return races[i].ID < races[j].ID })
	resp := response.RaceList{Races: make([]response.RaceSummary, len(races))}
	for i, race := range races {
		resp.Races[i] = response.RaceSummaryFromModel(race)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Race handles GET /races/{id}
func (h *StatusHandler) Race(w http.ResponseWriter, r *http.Request) {
	raceID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || raceID < 0 {
		WriteError(w, NewInvalidRequestError("race id must be a non-negative integer"))
		return
	}

	id, err := h.resolve(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	race, err := h.store.GetRace(r.Context(), id, model.RaceID(raceID))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RaceFromModel(race))
}

func (h *StatusHandler) resolve(ctx context.Context) (model.SessionID, error) {
	if h.sessionID != nil {
		if id := h.sessionID(); id != "" {
			return id, nil
		}
	}

	ids, err := h.store.ListSessions(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", model.ErrSessionNotFound
	}
	return ids[0], nil
}
