package stream_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V8Velocity/auto-climate/internal/stream"
)

func TestHub_AddAndRemove(t *testing.T) {
	hub := stream.NewHub(zerolog.Nop())

	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	require.True(t, hub.Add(session))
	assert.Equal(t, 1, hub.Len())

	go session.Run()

	hub.Remove(session.ID())
	assert.Equal(t, 0, hub.Len())

	select {
	case <-session.Done():
	case <-time.After(time.Second):
		t.Fatal("session still running after removal")
	}
}

func TestHub_RemoveUnknownIsNoop(t *testing.T) {
	hub := stream.NewHub(zerolog.Nop())
	hub.Remove("nope")
	assert.Equal(t, 0, hub.Len())
}

func TestHub_CloseStopsAllSessions(t *testing.T) {
	hub := stream.NewHub(zerolog.Nop())
	svc := newTestWeather(t)

	var sessions []*stream.Session
	for i := 0; i < 3; i++ {
		s := newTestSession(t, svc, &recordingTransport{}, "")
		require.True(t, hub.Add(s))
		go s.Run()
		sessions = append(sessions, s)
	}

	hub.Close()
	assert.Equal(t, 0, hub.Len())

	for _, s := range sessions {
		select {
		case <-s.Done():
		case <-time.After(time.Second):
			t.Fatal("session still running after hub close")
		}
	}
}

func TestHub_RejectsAddAfterClose(t *testing.T) {
	hub := stream.NewHub(zerolog.Nop())
	hub.Close()

	session := newTestSession(t, newTestWeather(t), &recordingTransport{}, "")
	assert.False(t, hub.Add(session))
	assert.Equal(t, 0, hub.Len())

	// The rejected session was closed; Run exits immediately.
	go session.Run()
	select {
	case <-session.Done():
	case <-time.After(time.Second):
		t.Fatal("rejected session was not closed")
	}
}
