package engine

import "snakegrid/internal/grid"

// SnakeView is an immutable, race-free view of one snake at the
// moment Snapshot was taken.
type SnakeView struct {
	ID            string
	Name          string
	Body          []grid.Position
	Length        int
	Alive         bool
	ColorIndex    int
	LastDirection *grid.Direction
}

// FruitView is an immutable view of one fruit.
type FruitView struct {
	Position  grid.Position
	SpawnTick uint64
}

// Snapshot is a point-in-time, deep copy of world state safe to read
// and serialize without holding any lock.
type Snapshot struct {
	Snakes  map[string]SnakeView
	Fruits  []FruitView
	Tick    uint64
	Running bool
	Winner  *string
	Width   int
	Height  int
}

// Snapshot takes a consistent, deep-copied read of the world.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snakes := make(map[string]SnakeView, len(w.Snakes))
	for id, s := range w.Snakes {
		body := make([]grid.Position, len(s.Body))
		copy(body, s.Body)

		var lastDir *grid.Direction
		if s.LastDirection != nil {
			d := *s.LastDirection
			lastDir = &d
		}

		snakes[id] = SnakeView{
			ID:            s.ID,
			Name:          s.Name,
			Body:          body,
			Length:        s.Length,
			Alive:         s.Alive,
			ColorIndex:    s.ColorIndex,
			LastDirection: lastDir,
		}
	}

	fruits := make([]FruitView, len(w.Fruits))
	for i, f := range w.Fruits {
		fruits[i] = FruitView{Position: f.Position, SpawnTick: f.SpawnTick}
	}

	var winner *string
	if w.Winner != nil {
		id := *w.Winner
		winner = &id
	}

	return Snapshot{
		Snakes:  snakes,
		Fruits:  fruits,
		Tick:    w.Tick,
		Running: w.Running,
		Winner:  winner,
		Width:   w.Width,
		Height:  w.Height,
	}
}
