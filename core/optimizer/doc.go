// Package optimizer assigns players to fixed-size pods from their stated
// day availability. It maximizes the number of distinct players who get at
// least one game using a greedy heuristic: days that are the only option for
// the most players fill first, and inflexible players are seated before
// flexible ones. Ambiguous placements are not auto-resolved; they surface as
// choice scenarios and volunteer gaps for the caller to settle out of band.
//
// Optimize is a pure function: it never mutates its input, holds no state
// across calls, and is deterministic for a given input. It is safe to call
// concurrently.
package optimizer
