package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakegrid/internal/apperr"
	"snakegrid/internal/engine"
	"snakegrid/internal/grid"
	"snakegrid/internal/room"
)

func TestDecodeClientParsesSubmitMove(t *testing.T) {
	msg, err := DecodeClient([]byte(`{"type":"SubmitMove","direction":"Up"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeSubmitMove, msg.Type)
	assert.Equal(t, "Up", msg.Direction)
}

func TestDecodeClientWrapsMalformedJSON(t *testing.T) {
	_, err := DecodeClient([]byte(`{not json`))
	assert.ErrorIs(t, err, apperr.ErrSerialization)
}

func TestEncodeThenDecodeRoundTripsClientMessage(t *testing.T) {
	data, err := Encode(ClientMessage{Type: TypeJoinLobby, PlayerName: "Alice"})
	require.NoError(t, err)

	msg, err := DecodeClient(data)
	require.NoError(t, err)
	assert.Equal(t, TypeJoinLobby, msg.Type)
	assert.Equal(t, "Alice", msg.PlayerName)
}

func TestFromLobbyPlayerCopiesEveryField(t *testing.T) {
	p := room.Player{ID: "p0", Name: "Alice", ColorIndex: 2, Ready: false}
	wire := FromLobbyPlayer(p)
	assert.Equal(t, "p0", wire.ID)
	assert.Equal(t, "Alice", wire.Name)
	assert.Equal(t, 2, wire.ColorIndex)
	assert.False(t, wire.IsReady)
}

func TestFromSnapshotConvertsLastDirectionToItsWireName(t *testing.T) {
	dir := grid.Right
	snap := engine.Snapshot{
		Snakes: map[string]engine.SnakeView{
			"p0": {ID: "p0", Name: "Alice", Body: []grid.Position{{X: 1, Y: 1}}, Length: 1, Alive: true, LastDirection: &dir},
		},
		Width:  10,
		Height: 10,
	}

	state := FromSnapshot(snap)
	require.Contains(t, state.Snakes, "p0")
	require.NotNil(t, state.Snakes["p0"].LastDirection)
	assert.Equal(t, "Right", *state.Snakes["p0"].LastDirection)
}

func TestFromSnapshotLeavesNilLastDirectionNil(t *testing.T) {
	snap := engine.Snapshot{
		Snakes: map[string]engine.SnakeView{
			"p0": {ID: "p0", Body: []grid.Position{{X: 0, Y: 0}}, Length: 1, Alive: true},
		},
	}

	state := FromSnapshot(snap)
	assert.Nil(t, state.Snakes["p0"].LastDirection)
}

func TestNewMoveRequestRendersDirectionsAsWireStrings(t *testing.T) {
	msg := NewMoveRequest([]grid.Direction{grid.Up, grid.Left}, 5000)
	assert.Equal(t, []string{"Up", "Left"}, msg.ValidDirections)
	assert.Equal(t, uint64(5000), msg.TimeLimitMs)
}
