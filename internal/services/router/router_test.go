package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/testutil"
)

func TestDispatchRunsHandler(t *testing.T) {
	r := New(testutil.NopLogger())
	var got model.RaceMemberPayload
	r.Handle("raceJoined", On(func(_ context.Context, p model.RaceMemberPayload) error {
		got = p
		return nil
	}))

	err := r.Dispatch(context.Background(), "raceJoined", json.RawMessage(`{"id":4,"name":"Alice"}`))

	require.NoError(t, err)
	assert.Equal(t, model.RaceMemberPayload{ID: 4, Name: "Alice"}, got)
}

func TestDispatchIgnoresUnknownEvents(t *testing.T) {
	r := New(testutil.NopLogger())
	assert.NoError(t, r.Dispatch(context.Background(), "somethingNew", json.RawMessage(`{}`)))
}

func TestDispatchMalformedPayload(t *testing.T) {
	r := New(testutil.NopLogger())
	r.Handle("raceJoined", On(func(context.Context, model.RaceMemberPayload) error { return nil }))

	err := r.Dispatch(context.Background(), "raceJoined", json.RawMessage(`{"id":"four"}`))

	assert.ErrorIs(t, err, model.ErrMalformedEvent)
	assert.Contains(t, err.Error(), "raceJoined")
	assert.False(t, model.IsFatal(err))
}

func TestDispatchUnknownStatusIsFatal(t *testing.T) {
	r := New(testutil.NopLogger())
	r.Handle("raceCreated", On(func(context.Context, *model.Race) error { return nil }))

	err := r.Dispatch(context.Background(), "raceCreated", json.RawMessage(`{"id":1,"status":"paused"}`))

	assert.ErrorIs(t, err, model.ErrMalformedEvent)
	assert.ErrorIs(t, err, model.ErrUnknownRaceStatus)
	assert.True(t, model.IsFatal(err))
}

func TestDispatchEmptyPayload(t *testing.T) {
	r := New(testutil.NopLogger())
	called := false
	r.Handle("open", On(func(context.Context, struct{}) error {
		called = true
		return nil
	}))

	require.NoError(t, r.Dispatch(context.Background(), "open", nil))
	assert.True(t, called)
}

func TestDispatchWrapsHandlerError(t *testing.T) {
	r := New(testutil.NopLogger())
	boom := errors.New("boom")
	r.Handle("x", func(context.Context, json.RawMessage) error { return boom })

	err := r.Dispatch(context.Background(), "x", nil)
	assert.ErrorIs(t, err, boom)
}
