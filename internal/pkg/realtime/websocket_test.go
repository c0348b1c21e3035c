package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebSocketTestServer(t *testing.T, hub *Hub) *httptest.Server {
	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sink := NewWebSocketSink(conn)
		sub := hub.Subscribe(r.URL.Query().Get("userId"), sink)
		defer hub.Unsubscribe(sub.ID)

		go sink.PingLoop(sub.Done())
		sink.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocketSink_ReceivesPublishedEvents(t *testing.T) {
	hub := NewHub(0)
	srv := newWebSocketTestServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?userId=admin"
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	delivered := hub.Publish(Event{Type: EventCheckOut, EmployeeID: 9, EmployeeName: "Sam"})
	assert.Equal(t, 1, delivered)

	var got Event
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, EventCheckOut, got.Type)
	assert.Equal(t, int64(9), got.EmployeeID)
	assert.Equal(t, "Sam", got.EmployeeName)
}

func TestWebSocketSink_DisconnectUnsubscribes(t *testing.T) {
	hub := NewHub(0)
	srv := newWebSocketTestServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
	client.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	u := NewUpgrader([]string{"http://localhost:3000"})

	ok := httptest.NewRequest(http.MethodGet, "/", nil)
	ok.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, u.CheckOrigin(ok))

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Origin", "http://evil.test")
	assert.False(t, u.CheckOrigin(bad))
}
