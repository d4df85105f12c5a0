package supervisor

import (
	"sync"

	"github.com/muesli/termenv"
)

// palette holds the prefix colors, cycled in launch order.
var palette = []termenv.Color{
	termenv.ANSIGreen,
	termenv.ANSIRed,
	termenv.ANSICyan,
	termenv.ANSIMagenta,
	termenv.ANSIYellow,
}

// colorCycle assigns colors round-robin. A command keeps its color for the
// whole run; with more commands than palette entries, colors repeat.
type colorCycle struct {
	mu   sync.Mutex
	next int
}

func newColorCycle() *colorCycle {
	return &colorCycle{}
}

func (c *colorCycle) assign() termenv.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	color := palette[c.next%len(palette)]
	c.next++
	return color
}
