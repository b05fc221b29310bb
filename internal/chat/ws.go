package chat

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"galleryhub/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type incomingMessage struct {
	Text string `json:"text"`
	User string `json:"user"`
}

// galleryRoom validates the gid/token query pair and returns the room
// identity for that gallery.
func galleryRoom(c *gin.Context) (RoomID, bool) {
	gid, err := strconv.ParseInt(strings.TrimSpace(c.Query("gid")), 10, 64)
	token := strings.TrimSpace(c.Query("token"))
	if err != nil || gid <= 0 || !models.ValidToken(token) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gid and token required"})
		return RoomID{}, false
	}
	return RoomID{GID: gid, Token: token}, true
}

func HistoryHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := galleryRoom(c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, hub.History(id))
	}
}

func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := galleryRoom(c)
		if !ok {
			return
		}

		user := strings.TrimSpace(c.Query("user"))
		if user == "" {
			user = "anon"
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		for _, msg := range hub.Join(id, ws, user) {
			_ = ws.WriteJSON(msg)
		}

		for {
			_, payload, err := ws.ReadMessage()
			if err != nil {
				break
			}

			var incoming incomingMessage
			if err := json.Unmarshal(payload, &incoming); err != nil {
				// plain text frames are accepted as message bodies
				if text := strings.TrimSpace(string(payload)); text != "" {
					hub.Say(id, hub.User(id, ws), text)
				}
				continue
			}

			text := strings.TrimSpace(incoming.Text)
			if text == "" {
				continue
			}

			msgUser := strings.TrimSpace(incoming.User)
			if msgUser == "" {
				msgUser = hub.User(id, ws)
			}

			hub.Say(id, msgUser, text)
		}

		hub.Leave(id, ws)
	}
}
