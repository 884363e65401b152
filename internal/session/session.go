// Package session implements the per-connection handler: one session
// per WebSocket, servicing two concurrent streams — inbound client
// frames and outbound event-bus notifications — per a declared role
// (player or controller). Grounded on the teacher's Conn/ReadLoop
// (connection.go), generalized from the teacher's single flat
// connection registry and compact one-letter protocol to role-gated
// dispatch over the spec's full tagged JSON envelope, and on
// GoliveKit's websocket transport (pkg/transport/websocket.go) for the
// separate read-pump/write-pump goroutines with one writer apiece.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"snakegrid/internal/apperr"
	"snakegrid/internal/bus"
	"snakegrid/internal/config"
	"snakegrid/internal/engine"
	"snakegrid/internal/gameloop"
	"snakegrid/internal/grid"
	"snakegrid/internal/logging"
	"snakegrid/internal/protocol"
	"snakegrid/internal/room"
)

// Role selects which message set and bus reactions a session honors.
type Role int

const (
	RolePlayer Role = iota
	RoleController
)

// Conn is the minimal surface session needs from a transport
// connection; satisfied by *websocket.Conn, and by a fake in tests.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	Close() error
}

// Session is one active bidirectional connection.
type Session struct {
	ID   string
	Name string
	role Role

	conn Conn
	room *room.Room
	bus  *bus.Bus
	loop *gameloop.GameLoop
	eng  *engine.World

	timing config.Timing
	log    logging.Logger

	direct chan []byte
}

// New creates a session bound to conn with the given role. name is
// only meaningful for RolePlayer.
func New(id, name string, role Role, conn Conn, rm *room.Room, b *bus.Bus, loop *gameloop.GameLoop, eng *engine.World, timing config.Timing, maxFrameSize int64, log logging.Logger) *Session {
	if log == nil {
		log = logging.Nop{}
	}
	conn.SetReadLimit(maxFrameSize)
	return &Session{
		ID:     id,
		Name:   name,
		role:   role,
		conn:   conn,
		room:   rm,
		bus:    b,
		loop:   loop,
		eng:    eng,
		timing: timing,
		log:    log,
		direct: make(chan []byte, 16),
	}
}

// Serve runs the session until the connection closes or ctx is
// canceled. It blocks; call it from its own goroutine per connection.
func (s *Session) Serve(ctx context.Context) {
	sub := s.bus.Subscribe()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, sub)
	}()

	s.onConnect()

	s.readLoop()

	sub.Unsubscribe()
	close(s.direct)
	<-writerDone

	if s.role == RolePlayer {
		s.room.RemovePlayer(s.ID)
		s.bus.Publish(bus.Event{Kind: bus.PlayerLeft, PlayerID: s.ID})
	}
	_ = s.conn.Close()
}

// onConnect sends the role-specific greeting spec.md §4.5 requires.
func (s *Session) onConnect() {
	switch s.role {
	case RolePlayer:
		s.sendDirect(protocol.NewLobbyJoined(s.ID, s.Name))
		s.bus.Publish(bus.Event{Kind: bus.PlayerJoined, PlayerID: s.ID, PlayerName: s.Name})
		s.sendDirect(protocol.NewLobbyState(protocol.FromLobbyPlayers(s.room.Players())))
	case RoleController:
		s.sendDirect(protocol.NewLobbyState(protocol.FromLobbyPlayers(s.room.Players())))
	}
}

// readLoop services inbound client frames until the connection errors
// or closes. Malformed or role-inappropriate input never kills the
// session — it is answered with an Error and the loop continues.
func (s *Session) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", logging.String("session_id", s.ID), logging.Err(err))
			}
			return
		}

		msg, err := protocol.DecodeClient(data)
		if err != nil {
			s.sendDirect(protocol.NewError(fmt.Sprintf("Error processing message: %v", err)))
			continue
		}

		if s.role == RolePlayer {
			s.handlePlayerMessage(msg)
		} else {
			s.handleControllerMessage(msg)
		}
	}
}

func (s *Session) handlePlayerMessage(msg protocol.ClientMessage) {
	switch msg.Type {
	case protocol.TypeJoinLobby:
		name := msg.PlayerName
		if name == "" {
			name = s.Name
		}
		if _, err := s.room.AddPlayer(s.ID, name); err != nil {
			s.sendDirect(protocol.NewError(joinError(err)))
			return
		}
		s.Name = name

	case protocol.TypeSubmitMove:
		dir, ok := grid.ParseDirection(msg.Direction)
		if !ok {
			s.sendDirect(protocol.NewError(fmt.Sprintf("invalid direction: %q", msg.Direction)))
			return
		}
		if !s.eng.IsRunning() {
			s.log.Debug("move ignored", logging.String("session_id", s.ID), logging.Err(apperr.ErrGameNotRunning))
			return
		}
		s.room.RecordMove(s.ID, dir)

	case protocol.TypePing:
		s.sendDirect(protocol.NewPong())

	default:
		s.sendDirect(protocol.NewError(fmt.Sprintf("unsupported message type: %q", msg.Type)))
	}
}

func (s *Session) handleControllerMessage(msg protocol.ClientMessage) {
	switch msg.Type {
	case protocol.TypeStartGame:
		if err := s.loop.Start(); err != nil {
			s.sendDirect(protocol.NewError(startError(err)))
		}

	case protocol.TypeJoinLobby:
		s.sendDirect(protocol.NewError("controllers do not participate in the lobby"))

	case protocol.TypePing:
		s.sendDirect(protocol.NewPong())

	default:
		s.sendDirect(protocol.NewError(fmt.Sprintf("unsupported message type: %q", msg.Type)))
	}
}

// writeLoop is the session's single writer: it drains direct replies
// and bus events and serializes both onto the connection. Direct
// replies already queued are written before any pending bus event,
// and each source is written in the order it was queued.
func (s *Session) writeLoop(ctx context.Context, sub *bus.Subscription) {
	for {
		select {
		case data, ok := <-s.direct:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return

		case data, ok := <-s.direct:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if s.role != RolePlayer {
				// Controllers only react to membership changes below;
				// game-progress events are player-only per spec.md §4.5.
				if evt.Kind == bus.PlayerJoined || evt.Kind == bus.PlayerLeft {
					s.writeDirectly(protocol.NewLobbyState(protocol.FromLobbyPlayers(s.room.Players())))
				}
				continue
			}
			s.handlePlayerEvent(evt)
		}
	}
}

func (s *Session) handlePlayerEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.PlayerJoined, bus.PlayerLeft:
		s.writeDirectly(protocol.NewLobbyState(protocol.FromLobbyPlayers(s.room.Players())))

	case bus.GameStarted:
		if !s.eng.IsAlive(s.ID) {
			return
		}
		snap := s.eng.Snapshot()
		s.writeDirectly(protocol.NewGameStarted(protocol.FromSnapshot(snap), s.ID))
		s.sendMoveRequest(snap)

	case bus.GameTick:
		snap := s.eng.Snapshot()
		s.writeDirectly(protocol.NewGameUpdate(protocol.FromSnapshot(snap)))
		if s.eng.IsAlive(s.ID) {
			s.sendMoveRequest(snap)
		}

	case bus.GameEnded:
		snap := s.eng.Snapshot()
		var winner *protocol.LobbyPlayer
		if evt.Winner != nil {
			if p, ok := s.room.Player(*evt.Winner); ok {
				w := protocol.FromLobbyPlayer(p)
				winner = &w
			}
		}
		s.writeDirectly(protocol.NewGameEnded(winner, protocol.FromSnapshot(snap)))
	}
}

func (s *Session) sendMoveRequest(snap engine.Snapshot) {
	sv, ok := snap.Snakes[s.ID]
	if !ok {
		return
	}
	valid := validDirectionsFromView(sv)
	s.writeDirectly(protocol.NewMoveRequest(valid, uint64(s.timing.MoveTimeout/time.Millisecond)))
}

func validDirectionsFromView(sv engine.SnakeView) []grid.Direction {
	if len(sv.Body) < 2 || sv.LastDirection == nil {
		out := make([]grid.Direction, len(grid.All))
		copy(out, grid.All[:])
		return out
	}
	forbidden := sv.LastDirection.Opposite()
	out := make([]grid.Direction, 0, 3)
	for _, d := range grid.All {
		if d != forbidden {
			out = append(out, d)
		}
	}
	return out
}

// sendDirect marshals msg and queues it before the writer goroutine
// has necessarily started; used from onConnect and from readLoop.
func (s *Session) sendDirect(msg any) {
	data, err := protocol.Encode(msg)
	if err != nil {
		s.log.Error("failed to encode outbound message", logging.Err(err))
		return
	}
	select {
	case s.direct <- data:
	default:
		s.log.Warn("direct send buffer full, dropping message", logging.String("session_id", s.ID))
	}
}

// writeDirectly is sendDirect's counterpart called from the writer
// goroutine itself (handlePlayerEvent runs inside writeLoop).
func (s *Session) writeDirectly(msg any) {
	data, err := protocol.Encode(msg)
	if err != nil {
		s.log.Error("failed to encode outbound message", logging.Err(err))
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Warn("write failed", logging.String("session_id", s.ID), logging.Err(err))
	}
}

func joinError(err error) string {
	switch {
	case errors.Is(err, apperr.ErrRoomFull):
		return "room is full"
	case errors.Is(err, apperr.ErrNameTaken):
		return "name already taken"
	default:
		return err.Error()
	}
}

func startError(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotEnoughPlayers):
		return "not enough players to start"
	case errors.Is(err, apperr.ErrInternal):
		return "internal error starting game"
	default:
		return err.Error()
	}
}
