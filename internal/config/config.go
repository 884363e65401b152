// Package config centralizes the tunable constants spec.md requires to
// be mirrored bit-exactly by default, laid out the way golivekit's
// pkg/core/config.go groups timeouts and limits into one validated
// struct instead of scattering package-level constants.
package config

import (
	"fmt"
	"time"
)

// Grid holds the world dimensions and win condition.
type Grid struct {
	Width          int
	Height         int
	WinningLength  int
	InitialLength  int
	FruitSpawnTick int // ticks a spawn timer waits before producing a fruit
}

// Room holds lobby membership bounds.
type Room struct {
	MinPlayers int
	MaxPlayers int
}

// Timing holds the tick/deadline durations that drive the game loop.
type Timing struct {
	TickDuration     time.Duration // floor: minimum visible tick duration
	MoveTimeout      time.Duration // deadline: max wait for all moves
	MovePollInterval time.Duration
}

// Transport holds wire-level limits.
type Transport struct {
	MaxFrameSize  int64
	BusQueueDepth int // per-subscriber event bus backlog bound
}

// Config aggregates every tunable the server needs at boot.
type Config struct {
	Addr      string
	Grid      Grid
	Room      Room
	Timing    Timing
	Transport Transport
}

// Default returns the constants spec.md §6 requires to be mirrored
// bit-exactly unless explicitly reconfigured.
func Default() Config {
	return Config{
		Addr: ":3000",
		Grid: Grid{
			Width:          50,
			Height:         50,
			WinningLength:  300,
			InitialLength:  1,
			FruitSpawnTick: 5,
		},
		Room: Room{
			MinPlayers: 2,
			MaxPlayers: 8,
		},
		Timing: Timing{
			TickDuration:     200 * time.Millisecond,
			MoveTimeout:      5000 * time.Millisecond,
			MovePollInterval: 50 * time.Millisecond,
		},
		Transport: Transport{
			MaxFrameSize:  16 * 1024,
			BusQueueDepth: 1000,
		},
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("config: grid dimensions must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Room.MinPlayers < 1 {
		return fmt.Errorf("config: min players must be at least 1, got %d", c.Room.MinPlayers)
	}
	if c.Room.MaxPlayers < c.Room.MinPlayers {
		return fmt.Errorf("config: max players (%d) below min players (%d)", c.Room.MaxPlayers, c.Room.MinPlayers)
	}
	if c.Timing.MoveTimeout < c.Timing.TickDuration {
		return fmt.Errorf("config: move timeout (%s) shorter than tick floor (%s)", c.Timing.MoveTimeout, c.Timing.TickDuration)
	}
	if c.Transport.MaxFrameSize <= 0 {
		return fmt.Errorf("config: max frame size must be positive, got %d", c.Transport.MaxFrameSize)
	}
	if c.Transport.BusQueueDepth <= 0 {
		return fmt.Errorf("config: bus queue depth must be positive, got %d", c.Transport.BusQueueDepth)
	}
	return nil
}
