// Package timeline implements the tickspan span-crossing core.
//
// The core tracks many independently-paced virtual clocks (Runners), each
// owning a set of time intervals (Spans). Every frame the host feeds one
// delta-time value into Engine.Tick, which advances each runner's position
// and reports, per span, whether the position crossed into or out of the
// span this tick. Consumers (animators, audio triggers, UI) drain the
// resulting crossing events and apply their own effects; the core never
// interprets what a span means.
//
// ARCHITECTURE:
//
// Single-Writer Tick Loop:
// All runner mutation happens inside Engine.Tick (and the explicit command
// methods on Runner, which the host calls between ticks). There are no
// internal goroutines and no ambient clock access; the only time source is
// the delta passed to Tick. This ensures:
//   - Reproducible event streams on replay
//   - Identical behavior for per-frame ticks and large seeks
//   - Simple reasoning about ordering
//
// Tick Processing Flow:
//  1. Runners are visited in insertion order, every tick.
//  2. Each runner's sink is cleared (undrained events from the previous
//     tick are discarded).
//  3. The runner's position advances by delta * speed, signed by direction,
//     then boundary handling applies its repeat policy (clamp, wrap, or
//     reflect).
//  4. Every span is evaluated with the pure crossing function Cross; the
//     resulting events are stamped with a logical sequence number and
//     delivered to the runner's sink.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// All crossing events are stamped with a monotonic seq from Clock.Next.
// Wall-clock time is never consulted for ordering.
//
// Deterministic Scheduling:
// Runners tick in insertion order; spans evaluate in insertion order.
// Two runs with identical inputs produce byte-identical event streams.
//
// Boundary handling is two-phase: a tick that reaches a timeline boundary
// evaluates spans only up to the boundary, and the wrapped (or reflected)
// segment is evaluated on the following tick. A span is therefore never
// traversed twice within a single evaluation.
package timeline
