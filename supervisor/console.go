package supervisor

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"
)

// procInfo is a command's display identity, fixed at launch. color is nil
// when the console is uncolored.
type procInfo struct {
	name  string
	color termenv.Color
}

// console serializes writes to the shared output. Every line (prefix, body,
// and newline together) is one critical section, so concurrent commands
// interleave at line granularity only. Write errors are dropped: a failed
// console write can't be reported anywhere better.
type console struct {
	mu      sync.Mutex
	w       io.Writer
	profile termenv.Profile
}

func newConsole(w io.Writer, colored bool) *console {
	profile := termenv.Ascii
	if colored {
		profile = termenv.ANSI
	}
	return &console{w: w, profile: profile}
}

func (c *console) colored() bool {
	return c.profile != termenv.Ascii
}

// line writes one line of a command's output, coloring only the name
// prefix.
func (c *console) line(info procInfo, body string) {
	prefix := "[" + info.name + "] "
	if info.color != nil {
		prefix = c.profile.String(prefix).Foreground(info.color).String()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s%s\n", prefix, body)
}

// printf writes an uncolored, unprefixed line (exit reports, signal
// receipts).
func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format+"\n", args...)
}
