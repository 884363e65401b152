// Package apperr holds the sentinel errors shared across the engine,
// room, and session layers. Each maps to an entry in the error
// taxonomy: session-originated failures recover locally, engine
// failures end the current game.
package apperr

import "errors"

var (
	// ErrPlayerNotFound names a stale player/session reference. No
	// function in this module returns it.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrGameNotRunning marks a move submitted while no game is running.
	// The session logs it and ignores the move; no user-visible error.
	ErrGameNotRunning = errors.New("game not running")

	// ErrInvalidMove covers malformed or role-inappropriate messages.
	ErrInvalidMove = errors.New("invalid move")

	// ErrRoomFull is returned by Room.AddPlayer when capacity is reached.
	ErrRoomFull = errors.New("room full")

	// ErrNameTaken is returned by Room.AddPlayer on a duplicate display name.
	ErrNameTaken = errors.New("name taken")

	// ErrSerialization wraps inbound JSON that failed to parse.
	ErrSerialization = errors.New("error processing message")

	// ErrInternal marks an engine invariant violation (e.g. no empty
	// cell for initial placement). During game start this surfaces on
	// the controller session; during a tick it ends the current game.
	ErrInternal = errors.New("internal error")

	// ErrNotEnoughPlayers is returned by StartGame when the room has
	// fewer than MinPlayers members.
	ErrNotEnoughPlayers = errors.New("not enough players to start")
)
