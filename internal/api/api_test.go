package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/racesync/internal/api"
	"github.com/mcoot/racesync/internal/api/apierr"
	"github.com/mcoot/racesync/internal/api/response"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/storage/memory"
	"github.com/mcoot/racesync/internal/testutil"
)

type testServer struct {
	handler http.Handler
	storage *memory.Storage
	current model.SessionID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{storage: memory.New()}
	ts.handler = api.NewRouter(api.RouterConfig{
		Logger:    testutil.NopLogger(),
		Storage:   ts.storage,
		SessionID: func() model.SessionID { return ts.current },
	})
	return ts
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) seed(t *testing.T, id model.SessionID) {
	t.Helper()

	racer := model.NewRacer("Zamiel")
	racer.Status = model.RacerStatusRacing
	racer.FloorNum = 3
	racer.Items = []model.RaceItem{{ID: 114, FloorNum: 2}}

	snap := &model.SessionSnapshot{
		SessionID:     id,
		Username:      "Zamiel",
		UserID:        7,
		Screen:        model.ScreenRace,
		CurrentRaceID: 12,
		Rooms: []model.RoomSummary{
			{Room: model.LobbyRoom(), Users: []string{"Alice", "Zamiel"}, NumUsers: 2},
			{Room: model.RaceRoom(12), Users: []string{"Zamiel"}, NumUsers: 1},
		},
		Races: []*model.Race{
			{
				ID: 12, Name: "weekly", Status: model.RaceStatusInProgress, Captain: "Zamiel",
				Racers: []string{"Zamiel"}, DatetimeStarted: 1700000000000,
				RacerList: []*model.Racer{racer},
			},
			{ID: 3, Name: "solo", Status: model.RaceStatusOpen, Captain: "Alice",
				Ruleset: model.Ruleset{Solo: true, Format: "unseeded"}, Racers: []string{"Alice"}},
		},
		TakenAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, ts.storage.SaveSnapshot(context.Background(), snap))
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "s-1")

	rr := ts.request(http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)

	health := decode[response.Health](t, rr)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Sessions)
}

func TestSessionWithoutSnapshot(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/session")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	errResp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, apierr.CodeSessionNotFound, errResp.Error.Code)
}

func TestSession(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "s-1")

	rr := ts.request(http.MethodGet, "/api/v1/session")
	require.Equal(t, http.StatusOK, rr.Code)

	sess := decode[response.Session](t, rr)
	assert.Equal(t, "s-1", sess.ID)
	assert.Equal(t, "Zamiel", sess.Username)
	assert.Equal(t, "race", sess.Screen)
	require.NotNil(t, sess.CurrentRaceID)
	assert.Equal(t, 12, *sess.CurrentRaceID)
	require.Len(t, sess.Rooms, 2)
	assert.Equal(t, "lobby", sess.Rooms[0].Name)
	assert.Equal(t, "_race_12", sess.Rooms[1].Name)
	assert.Equal(t, 2, sess.RaceCount)
}

func TestSessionPrefersCurrentID(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "a-old")
	ts.seed(t, "b-live")
	ts.current = "b-live"

	rr := ts.request(http.MethodGet, "/api/v1/session")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "b-live", decode[response.Session](t, rr).ID)

	ts.current = "gone"
	rr = ts.request(http.MethodGet, "/api/v1/session")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRaces(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "s-1")

	rr := ts.request(http.MethodGet, "/api/v1/races")
	require.Equal(t, http.StatusOK, rr.Code)

	list := decode[response.RaceList](t, rr)
	require.Len(t, list.Races, 2)
	assert.Equal(t, 3, list.Races[0].ID)
	assert.True(t, list.Races[0].Solo)
	assert.Equal(t, "unseeded", list.Races[0].Format)
	assert.Equal(t, 12, list.Races[1].ID)
	assert.Equal(t, "in progress", list.Races[1].Status)
}

func TestRaceDetail(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "s-1")

	rr := ts.request(http.MethodGet, "/api/v1/races/12")
	require.Equal(t, http.StatusOK, rr.Code)

	race := decode[response.Race](t, rr)
	assert.Equal(t, "weekly", race.Name)
	require.NotNil(t, race.StartedAt)
	assert.Equal(t, int64(1700000000000), race.StartedAt.UnixMilli())
	require.Len(t, race.Roster, 1)
	assert.Equal(t, "racing", race.Roster[0].Status)
	assert.Equal(t, 3, race.Roster[0].FloorNum)
	assert.Equal(t, []response.Item{{ID: 114, FloorNum: 2}}, race.Roster[0].Items)

	rr = ts.request(http.MethodGet, "/api/v1/races/3")
	require.Equal(t, http.StatusOK, rr.Code)
	solo := decode[response.Race](t, rr)
	assert.Nil(t, solo.StartedAt)
	assert.Empty(t, solo.Roster)
}

func TestRaceErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "s-1")

	rr := ts.request(http.MethodGet, "/api/v1/races/99")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeRaceNotFound, decode[apierr.ErrorResponse](t, rr).Error.Code)

	rr = ts.request(http.MethodGet, "/api/v1/races/abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/session")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, apierr.CodeMethodNotAllowed, decode[apierr.ErrorResponse](t, rr).Error.Code)

	rr = ts.request(http.MethodGet, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServerServesRouter(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, "s-1")

	cfg := api.DefaultServerConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := api.NewServer(ts.handler, cfg, testutil.NopLogger())
	require.NoError(t, srv.Listen())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	resp, err := http.Get("http://" + srv.Addr() + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, <-errCh)
}
