package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/chat/ws", WSHandler(hub))
	router.GET("/chat/history", HistoryHandler(hub))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dialRoom(t *testing.T, srv *httptest.Server, gid, token, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws?gid=" + gid + "&token=" + token + "&user=" + user
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readUntil(t *testing.T, ws *websocket.Conn, msgType string) Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, ws.SetReadDeadline(deadline))
		var msg Message
		require.NoError(t, ws.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestChatMessageReachesEveryMember(t *testing.T) {
	hub := NewHub(0)
	srv := newChatServer(t, hub)

	alice := dialRoom(t, srv, "42", "c219d2cf41", "alice")
	bob := dialRoom(t, srv, "42", "c219d2cf41", "bob")

	// bob's own join frame confirms he is registered in the room
	readUntil(t, bob, "user_join")

	require.NoError(t, alice.WriteJSON(map[string]string{"text": "hello"}))

	for _, ws := range []*websocket.Conn{alice, bob} {
		msg := readUntil(t, ws, "message")
		assert.Equal(t, "42/c219d2cf41", msg.Room)
		assert.Equal(t, "alice", msg.User)
		assert.Equal(t, "hello", msg.Text)
		assert.False(t, msg.At.IsZero())
	}
}

func TestChatHistoryIsBounded(t *testing.T) {
	hub := NewHub(2)
	srv := newChatServer(t, hub)

	ws := dialRoom(t, srv, "7", "deadbeef00", "carol")

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, ws.WriteJSON(map[string]string{"text": text}))
	}
	for i := 0; i < 3; i++ {
		readUntil(t, ws, "message")
	}

	history := hub.History(RoomID{GID: 7, Token: "deadbeef00"})
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[0].Text)
	assert.Equal(t, "three", history[1].Text)
}

func TestChatRejectsMissingIdentity(t *testing.T) {
	srv := newChatServer(t, NewHub(0))

	resp, err := http.Get(srv.URL + "/chat/history?gid=abc&token=short")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
