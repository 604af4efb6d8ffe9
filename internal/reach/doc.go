// Package reach answers whether a goal can be reached on a board, by
// breadth-first search over the oriented state space (cell x facing).
//
// Turns are free here: a state can rotate in place any number of times.
// Only forward transitions move the agent, and only onto in-bounds cells that
// are not obstacles. The search is therefore more permissive than play, where
// forward moves are budgeted; it answers "is there a path at all".
package reach
