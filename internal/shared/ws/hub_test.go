package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spartan077/Taxi-Share/internal/shared/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuth(token string) (string, string, error) {
	switch token {
	case "user-token":
		return "u-1", "USER", nil
	case "admin-token":
		return "a-1", "ADMIN", nil
	}
	return "", "", errors.New("bad token")
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(testAuth, logger.Nop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialAndAuth(t *testing.T, url, token string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]string{"token": token}))
	return conn
}

func TestHub_DeliversToAuthenticatedUser(t *testing.T) {
	hub, url := startHub(t)
	conn := dialAndAuth(t, url, "user-token")

	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "authenticated", ack["status"])

	require.Eventually(t, func() bool { return hub.IsUserConnected("u-1") }, time.Second, 10*time.Millisecond)

	n, err := hub.SendToUserJSON("u-1", map[string]string{"type": "member_joined"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "member_joined", msg["type"])

	n, err = hub.SendToRoleJSON("ADMIN", map[string]string{"type": "x"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHub_RejectsInvalidToken(t *testing.T) {
	hub, url := startHub(t)
	conn := dialAndAuth(t, url, "nope")

	var resp map[string]string
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "invalid token", resp["error"])
	assert.False(t, hub.IsUserConnected(""))
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, url := startHub(t)
	conn := dialAndAuth(t, url, "admin-token")

	var ack map[string]string
	require.NoError(t, conn.ReadJSON(&ack))
	require.Eventually(t, func() bool { return hub.IsUserConnected("a-1") }, time.Second, 10*time.Millisecond)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	assert.Eventually(t, func() bool { return !hub.IsUserConnected("a-1") }, 2*time.Second, 10*time.Millisecond)
}
