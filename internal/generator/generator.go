// Package generator produces random, solvable puzzle layouts.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/specialistvlad/blockgridgo/internal/reach"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

const (
	DefaultSize        = 6
	DefaultObstacles   = 10
	DefaultMaxAttempts = 1000
)

var (
	// ErrUnsolvable is returned when no solvable layout was sampled within
	// the attempt bound.
	ErrUnsolvable = errors.New("no solvable puzzle found")
	// ErrInvalidOptions is returned when the options cannot describe a board.
	ErrInvalidOptions = errors.New("invalid generator options")
)

// Options controls the shape of generated puzzles. A zero Size or
// MaxAttempts takes the package default; Obstacles is used as given.
type Options struct {
	Size        int
	Obstacles   int
	MaxAttempts int
}

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// Validate reports whether the options leave room for an agent, a goal and
// every obstacle.
func (o Options) Validate() error {
	o = o.withDefaults()
	if o.Size < 2 {
		return fmt.Errorf("%w: size %d is below 2", ErrInvalidOptions, o.Size)
	}
	if o.Obstacles < 0 {
		return fmt.Errorf("%w: negative obstacle count %d", ErrInvalidOptions, o.Obstacles)
	}
	if free := o.Size*o.Size - 2; o.Obstacles > free {
		return fmt.Errorf("%w: %d obstacles do not fit, at most %d cells are free", ErrInvalidOptions, o.Obstacles, free)
	}
	return nil
}

// Generator samples layouts from an injected random source. It is not safe
// for concurrent use, matching *rand.Rand.
type Generator struct {
	opts Options
	rnd  *rand.Rand
}

// New returns a generator drawing from src.
func New(opts Options, src rand.Source) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Generator{opts: opts.withDefaults(), rnd: rand.New(src)}, nil
}

// NewSeeded returns a generator whose output is fully determined by seed.
func NewSeeded(opts Options, seed uint64) (*Generator, error) {
	return New(opts, rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Options returns the effective options.
func (g *Generator) Options() Options { return g.opts }

// Generate samples layouts until the oracle accepts one. It returns the
// layout together with the number of samples drawn.
func (g *Generator) Generate() (world.Layout, int, error) {
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		l := g.sample()
		b, err := world.NewBoard(l)
		if err != nil {
			return world.Layout{}, attempt, fmt.Errorf("sampled layout rejected: %w", err)
		}
		if reach.Reachable(b, l.Start) {
			return l, attempt, nil
		}
	}
	return world.Layout{}, g.opts.MaxAttempts, fmt.Errorf("%w after %d attempts", ErrUnsolvable, g.opts.MaxAttempts)
}

func (g *Generator) sample() world.Layout {
	n := g.opts.Size
	agent := g.cell()
	goal := g.cell()
	for goal == agent {
		goal = g.cell()
	}

	free := make([]world.Cell, 0, n*n-2)
	for y := range n {
		for x := range n {
			c := world.Cell{X: x, Y: y}
			if c != agent && c != goal {
				free = append(free, c)
			}
		}
	}
	// Partial Fisher-Yates: the first Obstacles entries become a uniform
	// sample without replacement.
	for i := range g.opts.Obstacles {
		j := i + g.rnd.IntN(len(free)-i)
		free[i], free[j] = free[j], free[i]
	}

	return world.Layout{
		Size:      n,
		Start:     world.Pose{Cell: agent, Facing: world.Right},
		Goal:      goal,
		Obstacles: free[:g.opts.Obstacles:g.opts.Obstacles],
	}
}

func (g *Generator) cell() world.Cell {
	return world.Cell{X: g.rnd.IntN(g.opts.Size), Y: g.rnd.IntN(g.opts.Size)}
}
