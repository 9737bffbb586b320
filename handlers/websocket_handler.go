package handlers

import (
	"log"
	"net/http"

	"github.com/Dosada05/party-tournament/broadcast"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin уже ограничен CORS для REST; табло открывают с любых экранов.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *broadcast.Hub
}

func NewWebSocketHandler(hub *broadcast.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подключает клиента к комнате турнира.
// Клиент должен подключаться к /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту
		log.Printf("Failed to upgrade connection for tournament %s: %v", tournamentID, err)
		return
	}

	roomID := broadcast.RoomForTournament(tournamentID)
	client := broadcast.NewClient(h.hub, conn, roomID)
	if !h.hub.RegisterClient(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	log.Printf("WebSocket client registered in room %s", roomID)
}
