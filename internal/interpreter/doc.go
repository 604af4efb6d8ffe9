// Package interpreter executes a program against a world.
//
// # Execution model
//
// A Machine is a resumable state machine. Its position in the program is an
// explicit stack of frames, one per block being walked, each holding the
// index of the next child and the pass counter of the block. Step advances
// the machine to the next suspension point, which is always "right after one
// atomic command was applied" or a terminal state. Nothing recurses across a
// suspension point, so the caller decides the pace: run it in a tight loop,
// or hand it to a scheduler that waits between steps.
//
// # Budgets
//
// Every atomic command spends one unit of the global command budget. Forward
// moves are additionally charged by the world against its move limit. Each
// condition block is capped in passes per entry. Exhausting any budget ends
// the run as Lost with a reason, never as an error.
package interpreter
