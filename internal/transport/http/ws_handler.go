package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"live-quiz-service/internal/app"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

// Client roles accepted on the websocket endpoint.
const (
	RoleAdmin  = "admin"
	RoleScreen = "screen"
	RolePlayer = "player"
)

// ViewMe carries a player's own view (score, rank, answer) to that player.
const ViewMe = "me"

type WSHandler struct {
	svc      Services
	logger   *slog.Logger
	metrics  *Metrics
	isAdmin  func(token string) bool
	validate *validator.Validate
	upgrader websocket.Upgrader
}

func NewWSHandler(svc Services, logger *slog.Logger, metrics *Metrics, isAdmin func(string) bool, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		svc:      svc,
		logger:   logger,
		metrics:  metrics,
		isAdmin:  isAdmin,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and streams room projections to the client.
// Players authenticate with their session token and may submit answers.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	role := r.URL.Query().Get("role")
	token := r.URL.Query().Get("token")
	if role == "" {
		role = RoleScreen
	}
	if roomID == "" {
		http.Error(w, "missing roomId", http.StatusBadRequest)
		return
	}

	var playerID string
	switch role {
	case RoleAdmin:
		if !h.isAdmin(token) {
			http.Error(w, "admin token required", http.StatusUnauthorized)
			return
		}
	case RolePlayer:
		player, err := h.svc.Players.Restore(r.Context(), roomID, token)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		playerID = player.ID
	case RoleScreen:
	default:
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	ctx, cancelWatch := context.WithCancel(r.Context())
	defer cancelWatch()
	updates, err := h.svc.Views.Watch(ctx, roomID, role != RoleAdmin)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.metrics.WSConnections.WithLabelValues(role).Inc()
	defer h.metrics.WSConnections.WithLabelValues(role).Dec()
	log := h.logger.With("room", roomID, "role", role)
	log.Debug("ws client connected")

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		case <-closeSignals:
			return false
		}
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !push(outboundMessage[any]{Type: update.Kind, Payload: update.Payload}) {
					return
				}
				if playerID != "" && update.Kind != app.ViewAnswers {
					me, err := h.svc.Views.Player(ctx, roomID, playerID)
					if err != nil {
						continue
					}
					if !push(outboundMessage[any]{Type: ViewMe, Payload: me}) {
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			if playerID == "" {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "only players can answer"}})
				continue
			}
			var payload answerRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			result, err := submitAnswer(ctx, h.svc.Ledger, h.validate, h.metrics, roomID, playerID, payload)
			if err != nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			push(outboundMessage[any]{Type: "answerResult", Payload: result})
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	cancelWatch()
	<-updatesDone
	close(send)
	<-writerDone
	log.Debug("ws client disconnected")
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
