package config

import (
	"fmt"

	"github.com/specialistvlad/blockgridgo/internal/program"
	"github.com/specialistvlad/blockgridgo/internal/world"
)

// Model is the unified representation of one or more script files.
type Model struct {
	Rules    *Rules
	Player   *Player
	Puzzle   *Puzzle
	Programs []*Program
}

// Player describes who is playing.
type Player struct {
	Privileged bool `yaml:"privileged"`
}

// Puzzle selects the board to play on: either a seed for the generator, or a
// fixed layout. Exactly one of the two is set.
type Puzzle struct {
	Seed   *uint64
	Layout *world.Layout
}

// Program is one named program to build and run, in file order.
type Program struct {
	Name string
	// Mode is the mode to switch to before building, if any.
	Mode   string
	Blocks []Block
}

// Block is one node of a scripted program.
type Block struct {
	Kind      program.Kind
	Count     int
	Predicate program.Predicate
	Children  []Block
}

// Spec converts the block into an insertable node description.
func (b Block) Spec() program.Spec {
	return program.Spec{Kind: b.Kind, Count: b.Count, Predicate: b.Predicate}
}

// Len returns the number of blocks in the subtree rooted at b.
func (b Block) Len() int {
	n := 1
	for _, c := range b.Children {
		n += c.Len()
	}
	return n
}

// PairToCell converts an [x, y] pair as written in scripts into a cell.
func PairToCell(pair []int) (world.Cell, error) {
	if len(pair) != 2 {
		return world.Cell{}, fmt.Errorf("coordinate must be [x, y], got %d values", len(pair))
	}
	return world.Cell{X: pair[0], Y: pair[1]}, nil
}

// FixedLayout builds a layout from the raw values both formats share. A zero
// size is filled in from the rules when the model is resolved.
func FixedLayout(size int, agent []int, facing string, goal []int, obstacles [][]int) (*world.Layout, error) {
	start, err := PairToCell(agent)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	target, err := PairToCell(goal)
	if err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	f := world.Right
	if facing != "" {
		if f, err = world.ParseFacing(facing); err != nil {
			return nil, err
		}
	}
	l := &world.Layout{
		Size:  size,
		Start: world.Pose{Cell: start, Facing: f},
		Goal:  target,
	}
	for i, o := range obstacles {
		c, err := PairToCell(o)
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		l.Obstacles = append(l.Obstacles, c)
	}
	return l, nil
}
