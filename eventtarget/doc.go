// Package eventtarget implements the DOM Event/EventTarget object model in
// pure Go, for hosts that have no native implementation or need one with
// uniform behavior.
//
// A Target owns per-event-name chains of listener registrations and drives
// single-target dispatch: listeners run synchronously, in insertion order, in
// the AT_TARGET phase only. There is no capturing or bubbling traversal across
// a tree of targets.
//
// Any Go value carrying an event type can be dispatched. The value is wrapped
// once per dispatch in an Event, which exposes the standard surface (phase,
// propagation flags, preventDefault, legacy aliases) while forwarding reads
// and writes of the raw value's own fields and methods through a per-type
// shape cache.
//
// Dispatch is single-threaded and re-entrant: listeners may add, remove, and
// dispatch on the same target from within a dispatch. Targets are not safe
// for concurrent use from multiple goroutines, and a listener that never
// returns blocks the dispatching caller.
package eventtarget
