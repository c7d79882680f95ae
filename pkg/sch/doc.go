// Package sch implements the schematic editor core: nodes with
// connectors, wires routed between them, wire nets tracking electrical
// connectivity, and a scene that maintains the wire-to-net partition
// through interactive edits (move, resize, rotate, wire drawing) with
// undo/redo.
//
// The package is single-threaded by design: one event loop drives all
// mutation, and every connectivity re-scan completes synchronously
// before the next event is processed. Rendering, input decoding and
// file management live outside this package; callers hand in normalized
// scene coordinates and receive invertible commands and records.
package sch
