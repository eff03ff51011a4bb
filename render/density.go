package render

import (
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
)

// densityRamp maps increasing cell occupancy to glyphs
var densityRamp = []rune(" .:-=+*#%@")

// DensityGrid bins particle positions into a rows x cols occupancy grid over the world area
func DensityGrid(particles []core.Particle, cols, rows int) [][]int {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	grid := make([][]int, rows)
	for y := range grid {
		grid[y] = make([]int, cols)
	}
	for _, p := range particles {
		col, row, ok := cellOf(p.X, p.Y, cols, rows)
		if ok {
			grid[row][col]++
		}
	}
	return grid
}

// cellOf projects a world coordinate onto the grid
func cellOf(x, y float64, cols, rows int) (int, int, bool) {
	if x < 0 || y < 0 || x > parameter.WorldWidth || y > parameter.WorldHeight {
		return 0, 0, false
	}
	col := int(x / parameter.WorldWidth * float64(cols))
	row := int(y / parameter.WorldHeight * float64(rows))
	// right and bottom edges belong to the last cell
	col = min(col, cols-1)
	row = min(row, rows-1)
	return col, row, true
}

// DensityGlyph picks the ramp glyph for count, saturating at the last entry
func DensityGlyph(count int) rune {
	if count <= 0 {
		return densityRamp[0]
	}
	if count >= len(densityRamp) {
		return densityRamp[len(densityRamp)-1]
	}
	return densityRamp[count]
}
