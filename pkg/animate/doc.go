// Package animate paces highlight-path playback against audio duration.
//
// The animator divides an externally supplied audio duration evenly across
// the path's steps (with a floor per step), schedules one timer per step, and
// advances a cursor callback as each fires. Cancellation is generation-based:
// starting a new animation first stops every pending timer, and any tick that
// already left the gate checks its captured generation and no-ops if it has
// been superseded. At most one timer chain is ever live.
package animate
