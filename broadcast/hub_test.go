// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mcthuva007/Acadamist/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, hub *Hub, initial ...models.Message) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, _ = hub.Register(conn, r.RemoteAddr, initial...)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestRegister_SendsInitialStateFirst(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	url := newTestServer(t, hub,
		models.Message{Event: models.EventVoteUpdate, Data: models.Tally{"Alice": 2}},
		models.Message{Event: models.EventCalendarUpdate, Data: models.Calendar{}},
	)

	conn := dial(t, url)
	waitForClients(t, hub, 1)
	hub.Publish(models.EventVoteUpdate, models.Tally{"Alice": 3})

	first := readFrame(t, conn)
	assert.Equal(t, models.EventVoteUpdate, first.Event)
	assert.JSONEq(t, `{"Alice":2}`, string(first.Data))

	second := readFrame(t, conn)
	assert.Equal(t, models.EventCalendarUpdate, second.Event)
	assert.JSONEq(t, `{}`, string(second.Data))

	third := readFrame(t, conn)
	assert.Equal(t, models.EventVoteUpdate, third.Event)
	assert.JSONEq(t, `{"Alice":3}`, string(third.Data))
}

func TestPublish_ReachesEveryClient(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	url := newTestServer(t, hub)

	conns := []*websocket.Conn{dial(t, url), dial(t, url), dial(t, url)}
	waitForClients(t, hub, len(conns))

	hub.Publish(models.EventCalendarUpdate, models.Calendar{
		"March-5-2025": {{ID: "e1", Title: "Lunch", Time: "12:00 PM", Desc: "Cafe"}},
	})

	for _, conn := range conns {
		f := readFrame(t, conn)
		assert.Equal(t, models.EventCalendarUpdate, f.Event)
		assert.JSONEq(t,
			`{"March-5-2025":[{"id":"e1","title":"Lunch","time":"12:00 PM","desc":"Cafe"}]}`,
			string(f.Data))
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	url := newTestServer(t, hub)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	waitForClients(t, hub, 0)
}

func TestInboundFramesIgnored(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	url := newTestServer(t, hub)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"vote","data":"Mallory"}`)))
	hub.Publish(models.EventVoteUpdate, models.Tally{})

	f := readFrame(t, conn)
	assert.Equal(t, models.EventVoteUpdate, f.Event)
	assert.Equal(t, 1, hub.Count())
}

func TestRun_ClosesClientsOnCancel(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)
	conn := dial(t, url)
	waitForClients(t, hub, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Zero(t, hub.Count())
}

func TestRegister_AfterClose(t *testing.T) {
	hub := NewHub()
	hub.Close()

	registered := make(chan error, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			registered <- err
			return
		}
		_, err = hub.Register(conn, r.RemoteAddr)
		registered <- err
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.ErrorIs(t, <-registered, ErrHubClosed)
}

func TestPublish_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	c := &Client{ID: "slow", hub: hub, send: make(chan []byte, 1)}
	hub.clients[c] = struct{}{}

	hub.Publish(models.EventVoteUpdate, models.Tally{})
	assert.Equal(t, 1, hub.Count())

	hub.Publish(models.EventVoteUpdate, models.Tally{})
	assert.Zero(t, hub.Count())

	_, ok := <-c.send
	assert.True(t, ok, "queued frame is still delivered")
	_, ok = <-c.send
	assert.False(t, ok, "queue is closed after the drop")
}
