// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/autorotate/internal/orientation"
	"github.com/relabs-tech/autorotate/internal/rotator"
	"github.com/relabs-tech/autorotate/internal/testutil/testlog"
)

func TestOrientationEndpoint(t *testing.T) {
	testlog.Start(t)
	hub := NewStateHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orientation")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	hub.Update(sampleEvent())

	resp, err = http.Get(srv.URL + "/api/orientation")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var ev rotator.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	assert.Equal(t, orientation.State270, ev.State)
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) rotator.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev rotator.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebsocketReceivesLatestThenUpdates(t *testing.T) {
	testlog.Start(t)
	hub := NewStateHub()
	hub.Update(sampleEvent())
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dialWS(t, srv)
	assert.Equal(t, orientation.State270, readEvent(t, conn).State, "new clients get the current state")

	next := sampleEvent()
	next.Previous, next.State = orientation.State270, orientation.StateNormal
	// Registration and the initial write share one critical section.
	hub.Update(next)
	got := readEvent(t, conn)
	assert.Equal(t, orientation.StateNormal, got.State)
	assert.Equal(t, orientation.State270, got.Previous)
}

func TestWebsocketWithoutStateWaitsForFirstUpdate(t *testing.T) {
	testlog.Start(t)
	hub := NewStateHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn := dialWS(t, srv)
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.Update(sampleEvent())
	assert.Equal(t, orientation.State270, readEvent(t, conn).State)

	conn.Close()
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 0
	}, 2*time.Second, 10*time.Millisecond, "closed clients are unregistered")
}
