// Package engine is the deterministic tick processor: given a set of
// player moves it resolves movement, collisions, consumption, growth,
// spawning, and termination for the whole world in one atomic step.
// Grounded on the teacher's World/GameLoop split (world.go, game_loop.go)
// but adapted from continuous float64 physics to the spec's discrete
// toroidal integer grid and from a fixed 20Hz ticker to an
// externally-driven AdvanceTick call.
package engine

import (
	"fmt"
	"math/rand"
	"sync"

	"snakegrid/internal/apperr"
	"snakegrid/internal/config"
	"snakegrid/internal/grid"
	"snakegrid/internal/logging"
)

// InitPlayer is the minimal shape the engine needs from the room to
// seed a game: a stable ID, a display name, and an assigned color slot.
type InitPlayer struct {
	ID         string
	Name       string
	ColorIndex int
}

// World holds the simulation state plus everything advanceTick needs
// to reproduce it: the RNG source, per-slot fruit spawn timers, and
// the fruit cap fixed at initialization time. Protected by mu — Init
// and the tick function are the only writers, everything else takes
// RLock.
type World struct {
	mu sync.RWMutex

	Snakes  map[string]*Snake
	Fruits  []*Fruit
	Tick    uint64
	Running bool
	Winner  *string
	Width   int
	Height  int

	winningLength  int
	initialLength  int
	spawnThreshold int
	fruitTimers    []int
	fruitCap       int

	rng *rand.Rand
	log logging.Logger

	fruitsSpawnedTotal    uint64
	snakesEliminatedTotal uint64
}

// New creates an idle world sized per cfg. Call Init to seed a game.
func New(cfg config.Grid, rng *rand.Rand, log logging.Logger) *World {
	if log == nil {
		log = logging.Nop{}
	}
	return &World{
		Snakes:         make(map[string]*Snake),
		Width:          cfg.Width,
		Height:         cfg.Height,
		winningLength:  cfg.WinningLength,
		initialLength:  cfg.InitialLength,
		spawnThreshold: cfg.FruitSpawnTick,
		rng:            rng,
		log:            log,
	}
}

// Init clears world state and seeds one length-initialLength snake per
// player at a uniformly random empty cell, then seeds the fruit
// scheduler. Players are placed in iteration order; each draw is
// rejection-sampled against cells already taken by earlier snakes,
// bounded by Width*Height attempts.
func (w *World) Init(players []InitPlayer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Snakes = make(map[string]*Snake, len(players))
	w.Fruits = nil
	w.Tick = 0
	w.Winner = nil

	occupied := make(map[grid.Position]bool, len(players))
	for _, p := range players {
		pos, err := w.randomEmptyCellLocked(occupied)
		if err != nil {
			w.Snakes = make(map[string]*Snake)
			w.Running = false
			return err
		}
		occupied[pos] = true
		w.Snakes[p.ID] = &Snake{
			ID:         p.ID,
			Name:       p.Name,
			Body:       []grid.Position{pos},
			Length:     w.initialLength,
			Alive:      true,
			ColorIndex: p.ColorIndex,
		}
	}

	slots := maxInt(0, len(players)-1)
	w.fruitCap = slots
	w.fruitTimers = make([]int, slots)
	for i := range w.fruitTimers {
		w.fruitTimers[i] = i
	}

	w.Running = true
	return nil
}

// randomEmptyCellLocked draws a uniformly random cell not present in
// occupied, using rejection sampling bounded by the grid's area.
// Caller must hold w.mu.
func (w *World) randomEmptyCellLocked(occupied map[grid.Position]bool) (grid.Position, error) {
	attempts := w.Width * w.Height
	for i := 0; i < attempts; i++ {
		pos := grid.Position{X: w.rng.Intn(w.Width), Y: w.rng.Intn(w.Height)}
		if !occupied[pos] {
			return pos, nil
		}
	}
	return grid.Position{}, fmt.Errorf("%w: no empty positions", apperr.ErrInternal)
}

// AdvanceTick advances the world by exactly one tick given the
// per-snake moves submitted for it. The whole function runs under an
// exclusive lock so no reader ever observes an intermediate state.
func (w *World) AdvanceTick(moves map[string]grid.Direction) (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			w.Running = false
			err = fmt.Errorf("%w: panic during tick: %v", apperr.ErrInternal, r)
		}
	}()

	if !w.Running {
		return nil
	}

	w.movementPhase(moves)
	w.collisionPhase()
	w.consumptionPhase()
	if err := w.spawningPhase(); err != nil {
		w.Running = false
		return err
	}
	w.terminationPhase()
	w.Tick++
	return nil
}

// movementPhase advances every living snake's head one cell, or kills
// it in place if it submitted no move or an invalid (reversing) one.
func (w *World) movementPhase(moves map[string]grid.Direction) {
	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		dir, submitted := moves[s.ID]
		if !submitted || !ValidDirections(s)[dir] {
			s.Alive = false
			w.snakesEliminatedTotal++
			continue
		}
		AdvanceSnake(s, dir, false, w.Width, w.Height)
		d := dir
		s.LastDirection = &d
	}
}

// collisionPhase kills any living snake whose head shares a cell with
// another living snake's head (mutual kill), with any snake's tail, or
// with a dead snake's head — a dead snake's whole body persists in
// place as an obstacle for the rest of the game.
func (w *World) collisionPhase() {
	headPositions := make(map[grid.Position][]string)
	for _, s := range w.Snakes {
		if s.Alive {
			headPositions[s.Head()] = append(headPositions[s.Head()], s.ID)
		}
	}

	dead := make(map[string]bool)
	for _, ids := range headPositions {
		if len(ids) > 1 {
			for _, id := range ids {
				dead[id] = true
			}
		}
	}

	obstacles := make(map[grid.Position]bool)
	for _, s := range w.Snakes {
		for _, cell := range s.Tail() {
			obstacles[cell] = true
		}
		if !s.Alive {
			obstacles[s.Head()] = true
		}
	}

	for _, s := range w.Snakes {
		if !s.Alive || dead[s.ID] {
			continue
		}
		if obstacles[s.Head()] {
			dead[s.ID] = true
		}
	}

	for id := range dead {
		if s := w.Snakes[id]; s.Alive {
			s.Alive = false
			w.snakesEliminatedTotal++
		}
	}
}

// consumptionPhase removes any fruit whose cell holds exactly one
// living snake's head, and grows that snake at once: its Length goes
// up by one and its last body cell is repeated. A fruit under a snake
// that died this tick is left in place.
func (w *World) consumptionPhase() {
	eaters := make(map[grid.Position][]*Snake)
	for _, s := range w.Snakes {
		if s.Alive {
			eaters[s.Head()] = append(eaters[s.Head()], s)
		}
	}

	remaining := w.Fruits[:0]
	for _, f := range w.Fruits {
		candidates := eaters[f.Position]
		if len(candidates) == 1 {
			s := candidates[0]
			s.Body = append(s.Body, s.Body[len(s.Body)-1])
			s.Length++
			continue
		}
		remaining = append(remaining, f)
	}
	w.Fruits = remaining
}

// spawningPhase advances every fruit timer and spawns a fruit for any
// timer that has reached the threshold, as long as the board is below
// the fruit cap fixed at Init. The number of timer slots tracks the
// cap (growing up to it, never shrinking past it).
func (w *World) spawningPhase() error {
	if len(w.fruitTimers) < w.fruitCap {
		grown := make([]int, w.fruitCap)
		copy(grown, w.fruitTimers)
		w.fruitTimers = grown
	}

	occupied := make(map[grid.Position]bool)
	for _, s := range w.Snakes {
		for _, cell := range s.Body {
			occupied[cell] = true
		}
	}
	for _, f := range w.Fruits {
		occupied[f.Position] = true
	}

	for i := range w.fruitTimers {
		w.fruitTimers[i]++
		if w.fruitTimers[i] < w.spawnThreshold {
			continue
		}
		if len(w.Fruits) >= w.fruitCap {
			continue
		}
		pos, err := w.randomEmptyCellLocked(occupied)
		if err != nil {
			return err
		}
		occupied[pos] = true
		w.Fruits = append(w.Fruits, &Fruit{Position: pos, SpawnTick: w.Tick})
		w.fruitsSpawnedTotal++
		w.fruitTimers[i] = 0
	}
	return nil
}

// terminationPhase ends the game if a winning condition is met.
func (w *World) terminationPhase() {
	var living []*Snake
	var lengthWinner *Snake
	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		living = append(living, s)
		if s.Length >= w.winningLength && lengthWinner == nil {
			lengthWinner = s
		}
	}

	switch {
	case lengthWinner != nil:
		id := lengthWinner.ID
		w.Winner = &id
		w.Running = false
	case len(living) <= 1:
		if len(living) == 1 {
			id := living[0].ID
			w.Winner = &id
		} else {
			w.Winner = nil
		}
		w.Running = false
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// LivingSnakeIDs returns the IDs of every currently-alive snake.
func (w *World) LivingSnakeIDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]string, 0, len(w.Snakes))
	for id, s := range w.Snakes {
		if s.Alive {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsAlive reports whether id names a currently-living snake.
func (w *World) IsAlive(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.Snakes[id]
	return ok && s.Alive
}

// IsRunning reports whether the world is mid-game.
func (w *World) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.Running
}

// Diagnostics returns the cumulative counters surfaced on /stats.
func (w *World) Diagnostics() (fruitsSpawned, snakesEliminated uint64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fruitsSpawnedTotal, w.snakesEliminatedTotal
}
