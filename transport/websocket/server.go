package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
	"github.com/rocketscienceinc/ludo-backend/internal/pkg"
	"github.com/rocketscienceinc/ludo-backend/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 8 * 1024
	requestTimeout = 5 * time.Second
)

type uRoom interface {
	CreateRoom(ctx context.Context, sessionID, hostName string, maxPlayers int) (*entity.Room, error)
	JoinRoom(ctx context.Context, sessionID, roomID, name string) (*entity.RoomPlayer, *entity.Room, error)
	StartGame(ctx context.Context, roomID string) (*entity.Room, error)
	RollDice(ctx context.Context, sessionID, roomID, playerID string) (ludo.RollOutcome, error)
	MoveToken(ctx context.Context, sessionID, roomID, playerID string, move ludo.Move) (ludo.Effects, error)
	SendChat(ctx context.Context, sessionID, roomID, playerID, text string) (usecase.ChatMessage, error)
	LeaveRoom(ctx context.Context, sessionID, roomID, playerID string) error
	Disconnect(ctx context.Context, sessionID string, roomIDs []string) error
	ReconnectRoom(ctx context.Context, sessionID, roomID, playerID string) (*entity.Room, error)
}

type Options struct {
	AllowedOrigins []string
	SendBuffer     int
}

type handlerFunc func(ctx context.Context, s *session, msg *Message) error

type Server struct {
	logger *slog.Logger
	uRoom  uRoom
	hub    *Hub

	upgrader   websocket.Upgrader
	sendBuffer int

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uRoom uRoom, hub *Hub, opts Options) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		uRoom:      uRoom,
		hub:        hub,
		sendBuffer: max(opts.SendBuffer, 1),

		handlers: make(map[string]handlerFunc),
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     allowOrigins(opts.AllowedOrigins),
	}

	server.handlers[actionCreateRoom] = server.handleCreateRoom
	server.handlers[actionJoinRoom] = server.handleJoinRoom
	server.handlers[actionStartGame] = server.handleStartGame
	server.handlers[actionRollDice] = server.handleRollDice
	server.handlers[actionMoveToken] = server.handleMoveToken
	server.handlers[actionSendChat] = server.handleSendChat
	server.handlers[actionLeaveRoom] = server.handleLeaveRoom
	server.handlers[actionReconnectRoom] = server.handleReconnectRoom

	return server
}

// Handler exposes the websocket endpoint at /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeWait)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS upgrades the connection and runs it until either side hangs up.
func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	stop := context.AfterFunc(req.Context(), func() { _ = conn.Close() })
	defer stop()

	s := newSession(pkg.GenerateNewSessionID(), that.sendBuffer)
	that.hub.register(s)

	log = log.With("sessionID", s.id)
	log.Info("WebSocket connection established")

	done := make(chan struct{})
	go func() {
		defer close(done)
		that.writePump(conn, s)
	}()

	that.readPump(req.Context(), conn, s)

	roomIDs := that.hub.unregister(s.id)
	<-done

	if err = that.uRoom.Disconnect(context.WithoutCancel(req.Context()), s.id, roomIDs); err != nil {
		log.Error("failed to mark session offline", "error", err)
	}

	log.Info("WebSocket connection closed", "rooms", len(roomIDs))
}

func (that *Server) readPump(ctx context.Context, conn *websocket.Conn, s *session) {
	log := that.logger.With("method", "readPump", "sessionID", s.id)

	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}

			return
		}

		that.handleMessage(ctx, s, data)
	}
}

func (that *Server) writePump(conn *websocket.Conn, s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage - dispatches one client message. A failing handler never takes
// the connection down.
func (that *Server) handleMessage(ctx context.Context, s *session, data []byte) {
	log := that.logger.With("method", "handleMessage", "sessionID", s.id)

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		log.Warn("failed to unmarshal message", "error", err)
		that.sendErrorResponse(s, &message, fmt.Errorf("%w: malformed message", apperror.ErrInvalidRequest))

		return
	}

	log = log.With("action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Warn("unknown action")
		that.sendErrorResponse(s, &message, fmt.Errorf("%w: unknown action %q", apperror.ErrInvalidRequest, message.Action))

		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", "panic", r)
			that.sendErrorResponse(s, &message, fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := handler(ctx, s, &message); err != nil {
		that.sendErrorResponse(s, &message, err)
	}
}

func (that *Server) sendResponse(s *session, response any) {
	frame, err := json.Marshal(response)
	if err != nil {
		that.logger.Error("failed to marshal response", "sessionID", s.id, "error", err)
		return
	}

	that.hub.send(s.id, frame)
}

func (that *Server) sendErrorResponse(s *session, msg *Message, err error) {
	kind := apperror.KindOf(err)

	log := that.logger.With("sessionID", s.id, "action", msg.Action, "code", kind)
	switch kind {
	case apperror.KindTransient, apperror.KindInternal:
		log.Error("request failed", "error", err)
	default:
		log.Warn("request rejected", "error", err)
	}

	that.sendResponse(s, ack{
		Action: msg.Action,
		ID:     msg.ID,
		OK:     false,
		Error:  apperror.Public(err),
		Code:   kind,
	})
}

func okAck(msg *Message) ack {
	return ack{Action: msg.Action, ID: msg.ID, OK: true}
}

func allowOrigins(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(req *http.Request) bool {
		return slices.Contains(origins, req.Header.Get("Origin"))
	}
}
