package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conectar(t *testing.T, hub *Hub, usuarioID uint) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, usuarioID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_SendToUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	a := conectar(t, hub, 7)
	b := conectar(t, hub, 7)
	otro := conectar(t, hub, 8)
	require.Eventually(t, func() bool { return hub.Conectados(7) == 2 && hub.Conectados(8) == 1 },
		2*time.Second, 10*time.Millisecond)

	assert.True(t, hub.SendToUser(7, []byte(`{"tipo":"STOCK_BAJO"}`)))

	for _, c := range []*websocket.Conn{a, b} {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := c.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"tipo":"STOCK_BAJO"}`, string(data))
	}

	require.NoError(t, otro.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := otro.ReadMessage()
	assert.Error(t, err, "pushes are addressed to one user only")
}

func TestHub_DesconexionLiberaCliente(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	conn := conectar(t, hub, 3)
	require.Eventually(t, func() bool { return hub.Conectados(3) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Conectados(3) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ApagadoCierraConexiones(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	conn := conectar(t, hub, 5)
	require.Eventually(t, func() bool { return hub.Conectados(5) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, hub.Conectados(5))
}
