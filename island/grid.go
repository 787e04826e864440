package island

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/biosim/components"
)

// parseMap turns a map string into terrain rows. Surrounding blank lines and
// indentation are ignored.
func parseMap(s string) ([][]components.Terrain, error) {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	if len(lines) == 0 || lines[0] == "" {
		return nil, fmt.Errorf("%w: empty map", components.ErrConfiguration)
	}

	width := len(lines[0])
	for i, line := range lines {
		if len(line) != width {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d",
				components.ErrConfiguration, i, len(line), width)
		}
	}

	ocean := components.Ocean.Symbol()
	last := len(lines) - 1
	for r, line := range lines {
		for c := 0; c < width; c++ {
			border := r == 0 || r == last || c == 0 || c == width-1
			if border && line[c] != ocean {
				return nil, fmt.Errorf("%w: border cell (%d, %d) is %q, islands must be surrounded by %q",
					components.ErrConfiguration, r, c, line[c], ocean)
			}
		}
	}

	grid := make([][]components.Terrain, len(lines))
	for r, line := range lines {
		grid[r] = make([]components.Terrain, width)
		for c := 0; c < width; c++ {
			t, ok := components.TerrainFromSymbol(line[c])
			if !ok {
				return nil, fmt.Errorf("%w: unknown terrain symbol %q at (%d, %d)",
					components.ErrConfiguration, line[c], r, c)
			}
			grid[r][c] = t
		}
	}
	return grid, nil
}
