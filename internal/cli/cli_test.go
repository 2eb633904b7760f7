package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/racesync/internal/api"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/command"
	"github.com/mcoot/racesync/internal/storage/memory"
	"github.com/mcoot/racesync/internal/testutil"
)

func setup(t *testing.T) {
	t.Helper()
	t.Setenv("RACESYNC_USERNAME", "")
	t.Setenv("RACESYNC_DEV", "")
	cfg = DefaultConfig()
	logger = testutil.NopLogger()
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("RACESYNC_SERVER", "ws://localhost:9000/ws")
	t.Setenv("RACESYNC_STORAGE", "redis")
	t.Setenv("REDIS_URL", "")
	t.Setenv("RACESYNC_DEV", "true")

	c := DefaultConfig()
	assert.Equal(t, "ws://localhost:9000/ws", c.ServerURL)
	assert.True(t, c.DevMode)
	assert.Equal(t, api.DefaultAddr, c.StatusAddr)
	assert.Equal(t, "http://"+api.DefaultAddr, c.StatusURL())

	_, err := c.FactoryConfig(testutil.NopLogger())
	assert.Error(t, err, "redis needs a URL")

	c.RedisURL = "redis://localhost:6379/0"
	fc, err := c.FactoryConfig(testutil.NopLogger())
	require.NoError(t, err)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://localhost:6379/0", fc.RedisConfig.URL)
}

func TestParseInput(t *testing.T) {
	setup(t)

	parsed, err := parseInput("/pm alice hello there", parseOptions{raceID: int(model.NoRace), online: []string{"Alice"}})
	require.NoError(t, err)
	assert.Equal(t, "privateMessage", parsed.Name)
	assert.JSONEq(t, `{"name":"Alice","message":"hello there"}`, string(parsed.Payload))

	parsed, err = parseInput("/floor 3 0", parseOptions{raceID: 12})
	require.NoError(t, err)
	assert.Equal(t, "raceFloor", parsed.Name)

	parsed, err = parseInput("gl", parseOptions{raceID: 12})
	require.NoError(t, err)
	assert.Equal(t, "roomMessage", parsed.Name)
	assert.Contains(t, string(parsed.Payload), "_race_12")
}

func TestParseInputRejected(t *testing.T) {
	setup(t)

	_, err := parseInput("/pm bob hi", parseOptions{raceID: int(model.NoRace), online: []string{"Alice"}})
	require.Error(t, err)
	assert.True(t, command.IsValidationError(err))
	assert.Equal(t, command.HintNotOnline, err.Error())

	_, err = parseInput("/floor 3 0", parseOptions{raceID: int(model.NoRace)})
	assert.Equal(t, command.HintNotInRace, err.Error())
}

func TestParseCommandOutput(t *testing.T) {
	setup(t)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"parse", "--output", "json", "--race", "4", "/checkpoint"})
	require.NoError(t, root.Execute())

	var parsed ParsedCommand
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	assert.Equal(t, "raceItem", parsed.Name)
}

const replayScript = `# a captured lobby session
settings {"userID":7,"username":"Zamiel"}
open
roomList {"room":"lobby","users":[{"name":"Zamiel"},{"name":"Alice"}]}
raceList [{"id":3,"name":"fun","status":"open","ruleset":{"solo":false,"format":"seeded"},"captain":"Alice","racers":["Alice"]}]
> hello everyone
`

func TestReplay(t *testing.T) {
	setup(t)

	var rendered bytes.Buffer
	result, err := replay(context.Background(), strings.NewReader(replayScript), &rendered, 50*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, "Zamiel", result.Session.Username)
	require.Len(t, result.Session.Rooms, 1)
	assert.Equal(t, 2, result.Session.Rooms[0].NumUsers)
	require.Len(t, result.Races, 1)
	assert.Equal(t, "seeded", result.Races[0].Format)
}

func TestReplayRejectsBadFrames(t *testing.T) {
	setup(t)

	_, err := replay(context.Background(), strings.NewReader("settings {not json\n"), &bytes.Buffer{}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedEvent)
	assert.Contains(t, err.Error(), "line 1")
}

func TestStatusCommand(t *testing.T) {
	setup(t)

	store := memory.New()
	require.NoError(t, store.SaveSnapshot(context.Background(), &model.SessionSnapshot{
		SessionID:     "s-1",
		Username:      "Zamiel",
		Screen:        model.ScreenLobby,
		CurrentRaceID: model.NoRace,
		Races:         []*model.Race{{ID: 3, Name: "fun", Status: model.RaceStatusOpen, Captain: "Alice"}},
	}))
	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{Logger: testutil.NopLogger(), Storage: store}))
	defer srv.Close()

	run := func(args ...string) string {
		root := NewRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(append([]string{"--status-addr", srv.URL}, args...))
		require.NoError(t, root.Execute())
		return out.String()
	}

	assert.Contains(t, run("status"), "User: Zamiel")
	assert.Contains(t, run("status", "races"), "#3 fun - open, captain Alice")
	assert.Contains(t, run("status", "health"), "Sessions: 1")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--status-addr", srv.URL, "status", "race", "99"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RACE_NOT_FOUND")
}

func TestClientReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Get("/api/v1/health", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}
