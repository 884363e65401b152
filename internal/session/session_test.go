package session

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakegrid/internal/bus"
	"snakegrid/internal/config"
	"snakegrid/internal/engine"
	"snakegrid/internal/gameloop"
	"snakegrid/internal/grid"
	"snakegrid/internal/logging"
	"snakegrid/internal/protocol"
	"snakegrid/internal/room"
)

// fakeConn is an in-memory Conn: inbound frames are fed through in,
// outbound frames land in out. Closing in mimics client disconnect.
type fakeConn struct {
	mu     sync.Mutex
	in     chan []byte
	out    chan []byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16), out: make(chan []byte, 64)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.in
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return 1, data, nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("write on closed connection")
	}
	select {
	case f.out <- data:
	default:
	}
	return nil
}

func (f *fakeConn) SetReadLimit(limit int64) {}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) send(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f.in <- data
}

func (f *fakeConn) disconnect() { close(f.in) }

func (f *fakeConn) nextOutbound(t *testing.T) map[string]any {
	t.Helper()
	select {
	case data := <-f.out:
		var v map[string]any
		require.NoError(t, json.Unmarshal(data, &v))
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outbound message")
		return nil
	}
}

func newTestRig(t *testing.T) (*room.Room, *bus.Bus, *gameloop.GameLoop, *engine.World) {
	t.Helper()
	gridCfg := config.Grid{Width: 10, Height: 10, WinningLength: 300, InitialLength: 1, FruitSpawnTick: 5}
	roomCfg := config.Room{MinPlayers: 2, MaxPlayers: 8}
	timing := config.Timing{TickDuration: 5 * time.Millisecond, MoveTimeout: 30 * time.Millisecond, MovePollInterval: 2 * time.Millisecond}

	w := engine.New(gridCfg, rand.New(rand.NewSource(1)), logging.Nop{})
	rm := room.New(roomCfg)
	b := bus.New(16)
	gl := gameloop.New(w, rm, b, timing, logging.Nop{})
	return rm, b, gl, w
}

func TestPlayerSessionJoinsAndReceivesLobbyState(t *testing.T) {
	rm, b, gl, w := newTestRig(t)
	_, err := rm.AddPlayer("p0", "Alice")
	require.NoError(t, err)

	conn := newFakeConn()
	sess := New("p0", "Alice", RolePlayer, conn, rm, b, gl, w, config.Default().Timing, 16*1024, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		sess.Serve(ctx)
		close(done)
	}()

	joined := conn.nextOutbound(t)
	assert.Equal(t, protocol.TypeLobbyJoined, joined["type"])
	assert.Equal(t, "p0", joined["player_id"])

	state := conn.nextOutbound(t)
	assert.Equal(t, protocol.TypeLobbyState, state["type"])

	conn.disconnect()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after disconnect")
	}

	_, ok := rm.Player("p0")
	assert.False(t, ok, "player should be removed from the room on disconnect")
}

func TestPlayerSessionRecordsSubmittedMoves(t *testing.T) {
	rm, b, gl, w := newTestRig(t)
	_, err := rm.AddPlayer("p0", "Alice")
	require.NoError(t, err)
	_, err = rm.AddPlayer("p1", "Bob")
	require.NoError(t, err)
	require.NoError(t, w.Init(rm.InitPlayers()))

	conn := newFakeConn()
	sess := New("p0", "Alice", RolePlayer, conn, rm, b, gl, w, config.Default().Timing, 16*1024, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	conn.nextOutbound(t) // LobbyJoined
	conn.nextOutbound(t) // LobbyState

	rm.RecordMove("p1", grid.Up)
	assert.False(t, rm.AllMovesSubmitted(w), "p0 has not submitted yet")

	conn.send(t, protocol.ClientMessage{Type: protocol.TypeSubmitMove, Direction: "Up"})

	require.Eventually(t, func() bool {
		return rm.AllMovesSubmitted(w)
	}, time.Second, time.Millisecond, "recorded move should satisfy AllMovesSubmitted once both snakes have submitted")

	conn.disconnect()
}

func TestControllerStartGameRejectsWithoutQuorum(t *testing.T) {
	rm, b, gl, w := newTestRig(t)
	conn := newFakeConn()
	sess := New("c0", "", RoleController, conn, rm, b, gl, w, config.Default().Timing, 16*1024, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.Serve(ctx)

	conn.nextOutbound(t) // initial LobbyState

	conn.send(t, protocol.ClientMessage{Type: protocol.TypeStartGame})

	reply := conn.nextOutbound(t)
	assert.Equal(t, protocol.TypeError, reply["type"])

	conn.disconnect()
}
