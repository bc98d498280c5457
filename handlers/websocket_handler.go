package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dosada05/kicker-system/brackets"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are already checked by the CORS middleware on the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub         *brackets.Hub
	tournaments *TournamentHandler
	logger      *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, tournaments *TournamentHandler, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{hub: hub, tournaments: tournaments, logger: logger}
}

// ServeWs joins the client to the active tournament room. The first message
// the client gets is the current tournament state.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		h.logger.Warn("failed to upgrade websocket connection", slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: brackets.TournamentRoom,
	}

	initial, err := json.Marshal(brackets.WebSocketMessage{
		Type:    brackets.MessageTournamentUpdated,
		Payload: h.tournaments.CurrentView(),
		RoomID:  brackets.TournamentRoom,
	})
	if err != nil {
		h.logger.Error("failed to marshal initial tournament state", slog.Any("error", err))
		conn.Close()
		return
	}
	client.Send <- initial

	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client joined", slog.String("remote", r.RemoteAddr))
}
