// Package protocol defines the wire envelope exchanged between the
// server and its clients: a JSON object tagged by a string "type"
// discriminator, per spec.md §6. Grounded on the teacher's tagged
// ClientMessage / *Msg structs (protocol.go), generalized from the
// teacher's single-character compact keys to the full field names
// spec.md pins bit-exactly, and from one flat ClientMessage struct per
// direction to one concrete Go type per outbound message kind.
package protocol

import "snakegrid/internal/grid"

// Message type discriminators, client → server.
const (
	TypeJoinLobby  = "JoinLobby"
	TypeSubmitMove = "SubmitMove"
	TypeStartGame  = "StartGame"
	TypePing       = "Ping"
)

// Message type discriminators, server → client.
const (
	TypeLobbyJoined = "LobbyJoined"
	TypeLobbyState  = "LobbyState"
	TypeGameStarted = "GameStarted"
	TypeGameUpdate  = "GameUpdate"
	TypeMoveRequest = "MoveRequest"
	TypeGameEnded   = "GameEnded"
	TypeError       = "Error"
	TypePong        = "Pong"
)

// ClientMessage is the envelope every inbound frame decodes into
// first; Type drives which optional fields are meaningful.
type ClientMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"player_name,omitempty"`
	Direction  string `json:"direction,omitempty"`
}

// Position is the wire shape of a grid cell.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LobbyPlayer is the wire shape of one lobby member.
type LobbyPlayer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ColorIndex int    `json:"color_index"`
	IsReady    bool   `json:"is_ready"`
}

// Snake is the wire shape of one in-game snake. Body[0] is the head.
type Snake struct {
	ID            string     `json:"id"`
	PlayerName    string     `json:"player_name"`
	Body          []Position `json:"body"`
	Length        int        `json:"length"`
	IsAlive       bool       `json:"is_alive"`
	ColorIndex    int        `json:"color_index"`
	LastDirection *string    `json:"last_direction"`
}

// Fruit is the wire shape of one fruit.
type Fruit struct {
	Position  Position `json:"position"`
	SpawnTick uint64   `json:"spawn_tick"`
}

// GameState is the wire shape of the whole world at one tick.
type GameState struct {
	Snakes      map[string]Snake `json:"snakes"`
	Fruits      []Fruit          `json:"fruits"`
	Tick        uint64           `json:"tick"`
	IsRunning   bool             `json:"is_running"`
	Winner      *string          `json:"winner"`
	GridWidth   int              `json:"grid_width"`
	GridHeight  int              `json:"grid_height"`
}

// LobbyJoinedMsg acknowledges a new player session.
type LobbyJoinedMsg struct {
	Type       string `json:"type"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

func NewLobbyJoined(id, name string) LobbyJoinedMsg {
	return LobbyJoinedMsg{Type: TypeLobbyJoined, PlayerID: id, PlayerName: name}
}

// LobbyStateMsg fans out the current membership list.
type LobbyStateMsg struct {
	Type    string        `json:"type"`
	Players []LobbyPlayer `json:"players"`
}

func NewLobbyState(players []LobbyPlayer) LobbyStateMsg {
	return LobbyStateMsg{Type: TypeLobbyState, Players: players}
}

// GameStartedMsg is sent once per session when a game begins.
type GameStartedMsg struct {
	Type        string    `json:"type"`
	GameState   GameState `json:"game_state"`
	YourSnakeID string    `json:"your_snake_id"`
}

func NewGameStarted(state GameState, yourSnakeID string) GameStartedMsg {
	return GameStartedMsg{Type: TypeGameStarted, GameState: state, YourSnakeID: yourSnakeID}
}

// GameUpdateMsg carries the post-tick state to every session.
type GameUpdateMsg struct {
	Type      string    `json:"type"`
	GameState GameState `json:"game_state"`
}

func NewGameUpdate(state GameState) GameUpdateMsg {
	return GameUpdateMsg{Type: TypeGameUpdate, GameState: state}
}

// MoveRequestMsg asks a living player for their next direction.
type MoveRequestMsg struct {
	Type            string   `json:"type"`
	ValidDirections []string `json:"valid_directions"`
	TimeLimitMs     uint64   `json:"time_limit_ms"`
}

func NewMoveRequest(valid []grid.Direction, timeLimitMs uint64) MoveRequestMsg {
	names := make([]string, len(valid))
	for i, d := range valid {
		names[i] = d.String()
	}
	return MoveRequestMsg{Type: TypeMoveRequest, ValidDirections: names, TimeLimitMs: timeLimitMs}
}

// GameEndedMsg is sent once per session when a game concludes.
type GameEndedMsg struct {
	Type       string       `json:"type"`
	Winner     *LobbyPlayer `json:"winner"`
	FinalState GameState    `json:"final_state"`
}

func NewGameEnded(winner *LobbyPlayer, final GameState) GameEndedMsg {
	return GameEndedMsg{Type: TypeGameEnded, Winner: winner, FinalState: final}
}

// ErrorMsg reports a local, session-scoped failure.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) ErrorMsg {
	return ErrorMsg{Type: TypeError, Message: message}
}

// PongMsg answers a Ping.
type PongMsg struct {
	Type string `json:"type"`
}

func NewPong() PongMsg {
	return PongMsg{Type: TypePong}
}
