// Package gameloop is the sole dedicated task that mutates the engine
// and room during active play. It gathers moves under a deadline,
// advances the simulation, and fans the result out over the event
// bus. Grounded on the teacher's GameLoop.Run/tick (game_loop.go) —
// lock, advance, unlock, broadcast — generalized from a fixed 20Hz
// ticker to the deadline-driven variant spec.md §4.6 and §9 require:
// poll for a full quorum of moves, but never wait past MoveTimeout,
// and never present a tick faster than TickDuration.
package gameloop

import (
	"context"
	"time"

	"snakegrid/internal/apperr"
	"snakegrid/internal/bus"
	"snakegrid/internal/config"
	"snakegrid/internal/engine"
	"snakegrid/internal/logging"
	"snakegrid/internal/room"
)

// GameLoop drives one room's matches from Idle to Running and back.
type GameLoop struct {
	world  *engine.World
	room   *room.Room
	bus    *bus.Bus
	timing config.Timing
	log    logging.Logger
}

// New creates a GameLoop bound to world, room, and bus.
func New(world *engine.World, rm *room.Room, b *bus.Bus, timing config.Timing, log logging.Logger) *GameLoop {
	if log == nil {
		log = logging.Nop{}
	}
	return &GameLoop{world: world, room: rm, bus: b, timing: timing, log: log}
}

// Start validates the room can begin, initializes the engine from the
// current membership, and publishes GameStarted. Called by the
// controller session in response to a StartGame message; the caller
// is responsible for surfacing a returned error as an Error reply.
func (gl *GameLoop) Start() error {
	if !gl.room.CanStart() {
		return apperr.ErrNotEnoughPlayers
	}
	players := gl.room.InitPlayers()
	if err := gl.world.Init(players); err != nil {
		return err
	}
	gl.bus.Publish(bus.Event{Kind: bus.GameStarted})
	return nil
}

// Run blocks until ctx is canceled. It alternates between waiting for
// a GameStarted event (Idle) and driving tick-by-tick play until the
// game ends (Running).
func (gl *GameLoop) Run(ctx context.Context) {
	sub := gl.bus.Subscribe()
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if evt.Kind == bus.GameStarted {
				gl.runGame(ctx)
			}
		}
	}
}

// runGame drives ticks until the world stops running or ctx is canceled.
func (gl *GameLoop) runGame(ctx context.Context) {
	for {
		tickStart := time.Now()

		for !gl.room.AllMovesSubmitted(gl.world) && time.Since(tickStart) < gl.timing.MoveTimeout {
			select {
			case <-ctx.Done():
				return
			case <-time.After(gl.timing.MovePollInterval):
			}
		}

		moves := gl.room.TakeMoves()

		if elapsed := time.Since(tickStart); elapsed < gl.timing.TickDuration {
			select {
			case <-ctx.Done():
				return
			case <-time.After(gl.timing.TickDuration - elapsed):
			}
		}

		if err := gl.world.AdvanceTick(moves); err != nil {
			gl.log.Error("tick failed, ending game", logging.Err(err))
		}

		if !gl.world.IsRunning() {
			snap := gl.world.Snapshot()
			gl.bus.Publish(bus.Event{Kind: bus.GameEnded, Winner: snap.Winner})
			return
		}

		gl.bus.Publish(bus.Event{Kind: bus.GameTick})
	}
}

