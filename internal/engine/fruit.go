package engine

import "snakegrid/internal/grid"

// Fruit is a consumable cell. SpawnTick is diagnostic only — it plays
// no role in tick resolution, just lets clients show "how fresh" a
// fruit is.
type Fruit struct {
	Position  grid.Position
	SpawnTick uint64
}
