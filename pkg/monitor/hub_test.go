package monitor

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestHub_GreetingAndBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	defer a.Close()
	b := dial(t, srv)
	defer b.Close()

	for _, conn := range []*websocket.Conn{a, b} {
		m := readMessage(t, conn)
		assert.Equal(t, KindConnected, m.Event)
		data, ok := m.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, connectedGreet, data["message"])
	}
	require.Equal(t, 2, hub.Clients())

	require.NoError(t, hub.Broadcast(KindLiveData, Event{"type": "metric", "value": 42.0}))
	for _, conn := range []*websocket.Conn{a, b} {
		m := readMessage(t, conn)
		assert.Equal(t, KindLiveData, m.Event)
		data := m.Data.(map[string]any)
		assert.Equal(t, "metric", data["type"])
		assert.Equal(t, 42.0, data["value"])
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	readMessage(t, conn)
	require.Equal(t, 1, hub.Clients())

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	readMessage(t, conn)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &client{send: make(chan []byte, 1)}
	hub.clients[slow] = struct{}{}

	require.NoError(t, hub.Broadcast(KindLiveData, Event{"n": 1}))
	assert.Equal(t, 1, hub.Clients())
	require.NoError(t, hub.Broadcast(KindLiveData, Event{"n": 2}))
	assert.Equal(t, 0, hub.Clients())

	_, open := <-slow.send
	assert.True(t, open, "queued message should still be delivered")
	_, open = <-slow.send
	assert.False(t, open, "send channel should be closed after the drop")
}

func TestHub_BroadcastUnencodable(t *testing.T) {
	hub := NewHub()
	err := hub.Broadcast(KindLiveData, Event{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestHub_AllowedOrigins(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(WithAllowedOrigins("https://nodeward.example"))
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, 403, resp.StatusCode)
		resp.Body.Close()
	}

	header = map[string][]string{"Origin": {"https://nodeward.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)
}
