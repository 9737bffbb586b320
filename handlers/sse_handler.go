package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Dosada05/party-tournament/broadcast"
)

const sseKeepAlive = 25 * time.Second

// Subscriber is the part of the hub the SSE stream needs.
type Subscriber interface {
	Subscribe(roomID string) (<-chan []byte, func())
}

type SSEHandler struct {
	hub       Subscriber
	keepAlive time.Duration
}

func NewSSEHandler(hub Subscriber) *SSEHandler {
	return &SSEHandler{hub: hub, keepAlive: sseKeepAlive}
}

// Stream отдаёт те же сообщения, что и websocket-комната, в виде text/event-stream.
func (h *SSEHandler) Stream(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		serverErrorResponse(w, r, fmt.Errorf("streaming unsupported by response writer"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	roomID := broadcast.RoomForTournament(tournamentID)
	messages, cancel := h.hub.Subscribe(roomID)
	defer cancel()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg); err != nil {
				log.Printf("SSE write failed for room %s: %v", roomID, err)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
