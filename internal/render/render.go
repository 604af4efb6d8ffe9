// Package render projects board snapshots and run outcomes as terminal text.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"

	"github.com/specialistvlad/blockgridgo/internal/event"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

var (
	agentStyle    = color.New(color.FgCyan, color.OpBold)
	goalStyle     = color.New(color.FgGreen, color.OpBold)
	obstacleStyle = color.New(color.FgRed)
	emptyStyle    = color.New(color.FgGray)
	wonStyle      = color.New(color.FgGreen, color.OpBold)
	lostStyle     = color.New(color.FgRed, color.OpBold)
)

var agentGlyphs = map[world.Facing]string{
	world.Up:    "^",
	world.Right: ">",
	world.Down:  "v",
	world.Left:  "<",
}

// Renderer draws boards. The zero value draws plain text.
type Renderer struct {
	Color bool
}

func (r Renderer) paint(s color.Style, text string) string {
	if !r.Color {
		return text
	}
	return s.Sprint(text)
}

// Board draws s as one row per line, the agent as an arrow, the goal as G
// and obstacles as #, followed by the move counter.
func (r Renderer) Board(s world.Snapshot) string {
	blocked := make(map[world.Cell]bool, len(s.Obstacles))
	for _, c := range s.Obstacles {
		blocked[c] = true
	}

	var b strings.Builder
	for y := range s.Size {
		for x := range s.Size {
			if x > 0 {
				b.WriteByte(' ')
			}
			c := world.Cell{X: x, Y: y}
			switch {
			case c == s.Agent:
				b.WriteString(r.paint(agentStyle, agentGlyphs[s.Facing]))
			case c == s.Goal:
				b.WriteString(r.paint(goalStyle, "G"))
			case blocked[c]:
				b.WriteString(r.paint(obstacleStyle, "#"))
			default:
				b.WriteString(r.paint(emptyStyle, "."))
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "moves %d/%d\n", s.Moves, s.MoveLimit)
	return b.String()
}

// Outcome draws the one-line verdict of a terminal event.
func (r Renderer) Outcome(e event.Event) string {
	switch e.Kind {
	case event.Won:
		return r.paint(wonStyle, "🏆 solved") + "\n"
	case event.Lost:
		return r.paint(lostStyle, "💥 lost: "+e.Message) + "\n"
	default:
		return ""
	}
}

// Sink writes boards to w as the stream goes by. Terminal events always get
// the board and the verdict; with Trace set every board-carrying event is
// drawn too.
type Sink struct {
	Renderer
	Trace bool

	mu sync.Mutex
	w  io.Writer
}

// NewSink returns a sink drawing to w.
func NewSink(w io.Writer, r Renderer, trace bool) *Sink {
	return &Sink{Renderer: r, Trace: trace, w: w}
}

// Emit implements event.Sink. Write errors are dropped.
func (s *Sink) Emit(_ context.Context, e event.Event) {
	if e.Board == nil {
		return
	}
	if !e.Kind.Terminal() && !s.Trace {
		return
	}

	var b strings.Builder
	if s.Trace && !e.Kind.Terminal() {
		fmt.Fprintf(&b, "%s\n", e)
	}
	b.WriteString(s.Board(*e.Board))
	b.WriteString(s.Outcome(e))

	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.w, b.String())
}
