// Package scheduler decides when the next step of a run happens.
//
// # Why Scheduler Exists
//
// The interpreter only knows how to advance one atomic command at a time; it
// never sleeps. Pacing is a presentation concern: observers want to see the
// agent move, so each step is separated from the next by a fixed delay. The
// scheduler owns that delay, which keeps the interpreter synchronous and
// trivially testable.
//
// # How It Works
//
//  1. Wait until the pacing limiter grants a token (the first one is free).
//  2. Call Step on the stepper.
//  3. Repeat until Step reports that the run is over, or the context ends.
//
// A zero delay skips the limiter entirely, so a non-visual caller can run a
// program synchronously.
//
// # Relationship with Other Components
//
//   - **Interpreter:** a *interpreter.Machine is the Stepper being driven
//   - **Session:** owns the scheduler and aborts the machine when Drive
//     returns a context error
package scheduler
