package protocol

import (
	"encoding/json"
	"fmt"

	"snakegrid/internal/apperr"
	"snakegrid/internal/engine"
	"snakegrid/internal/room"
)

// DecodeClient parses one inbound frame into a ClientMessage. A parse
// failure is wrapped in ErrSerialization per the error taxonomy.
func DecodeClient(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", apperr.ErrSerialization, err)
	}
	return msg, nil
}

// Encode serializes any outbound message struct to its wire form.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// FromLobbyPlayer converts a room.Player to its wire shape.
func FromLobbyPlayer(p room.Player) LobbyPlayer {
	return LobbyPlayer{
		ID:         p.ID,
		Name:       p.Name,
		ColorIndex: p.ColorIndex,
		IsReady:    p.Ready,
	}
}

// FromLobbyPlayers converts a slice of room.Player to their wire shape.
func FromLobbyPlayers(players []room.Player) []LobbyPlayer {
	out := make([]LobbyPlayer, len(players))
	for i, p := range players {
		out[i] = FromLobbyPlayer(p)
	}
	return out
}

// FromSnapshot converts an engine.Snapshot to its wire GameState.
func FromSnapshot(snap engine.Snapshot) GameState {
	snakes := make(map[string]Snake, len(snap.Snakes))
	for id, s := range snap.Snakes {
		body := make([]Position, len(s.Body))
		for i, p := range s.Body {
			body[i] = Position{X: p.X, Y: p.Y}
		}
		var lastDir *string
		if s.LastDirection != nil {
			name := s.LastDirection.String()
			lastDir = &name
		}
		snakes[id] = Snake{
			ID:            s.ID,
			PlayerName:    s.Name,
			Body:          body,
			Length:        s.Length,
			IsAlive:       s.Alive,
			ColorIndex:    s.ColorIndex,
			LastDirection: lastDir,
		}
	}

	fruits := make([]Fruit, len(snap.Fruits))
	for i, f := range snap.Fruits {
		fruits[i] = Fruit{
			Position:  Position{X: f.Position.X, Y: f.Position.Y},
			SpawnTick: f.SpawnTick,
		}
	}

	var winner *string
	if snap.Winner != nil {
		id := *snap.Winner
		winner = &id
	}

	return GameState{
		Snakes:     snakes,
		Fruits:     fruits,
		Tick:       snap.Tick,
		IsRunning:  snap.Running,
		Winner:     winner,
		GridWidth:  snap.Width,
		GridHeight: snap.Height,
	}
}
