// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package program

import (
	"fmt"
	"strings"
)

// Kind identifies the type of a program node.
type Kind int

const (
	Forward Kind = iota + 1
	TurnLeft
	TurnRight
	Repeat
	Conditional
)

var kindNames = map[Kind]string{
	Forward:     "forward",
	TurnLeft:    "turnLeft",
	TurnRight:   "turnRight",
	Repeat:      "repeat",
	Conditional: "conditional",
}

// kindAliases maps normalized names (lower case, no separators) to kinds.
var kindAliases = map[string]Kind{
	"forward":     Forward,
	"turnleft":    TurnLeft,
	"turnright":   TurnRight,
	"repeat":      Repeat,
	"conditional": Conditional,
	"condition":   Conditional,
	"until":       Conditional,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is a known node kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Atomic reports whether k is a single command that consumes budget.
func (k Kind) Atomic() bool {
	return k == Forward || k == TurnLeft || k == TurnRight
}

// Container reports whether nodes of this kind own children.
func (k Kind) Container() bool {
	return k == Repeat || k == Conditional
}

// ParseKind accepts camelCase, snake_case or kebab-case names.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[normalize(s)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

// Predicate is the stop condition of a condition block.
type Predicate int

const (
	ObstacleAhead Predicate = iota + 1
	BoundaryAhead
	AtGoal
)

var predicateNames = map[Predicate]string{
	ObstacleAhead: "obstacle_ahead",
	BoundaryAhead: "boundary_ahead",
	AtGoal:        "at_goal",
}

var predicateAliases = map[string]Predicate{
	"obstacleahead": ObstacleAhead,
	"obstacle":      ObstacleAhead,
	"boundaryahead": BoundaryAhead,
	"atboundary":    BoundaryAhead,
	"bound":         BoundaryAhead,
	"atgoal":        AtGoal,
	"goal":          AtGoal,
	"inclass":       AtGoal,
}

func (p Predicate) String() string {
	if name, ok := predicateNames[p]; ok {
		return name
	}
	return fmt.Sprintf("predicate(%d)", int(p))
}

// Valid reports whether p is a known predicate.
func (p Predicate) Valid() bool {
	_, ok := predicateNames[p]
	return ok
}

// ParsePredicate converts a predicate name into a Predicate.
func ParsePredicate(s string) (Predicate, error) {
	if p, ok := predicateAliases[normalize(s)]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown condition %q", s)
}

// Mode is a curriculum stage. It decides which block kinds may be built.
type Mode int

const (
	Basic Mode = iota + 1
	Conditions
	Loop
)

var modeNames = map[Mode]string{
	Basic:      "basic",
	Conditions: "conditions",
	Loop:       "loop",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// Allows reports whether nodes of kind k may exist while m is active.
func (m Mode) Allows(k Kind) bool {
	switch k {
	case Repeat:
		return m == Loop
	case Conditional:
		return m == Conditions
	default:
		return k.Atomic()
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	name := normalize(s)
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q: must be one of basic, conditions, loop", s)
}

// DefaultModes is the curriculum order for non-privileged players.
func DefaultModes() []Mode {
	return []Mode{Basic, Conditions, Loop}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}
