// Package pipeline is the analysis orchestrator for the pose processing
// core. It wires the layer packages (l2geometry through l6assessment) into
// a per-frame flow and owns the only mutable state: the active exercise
// configuration and the pose history.
//
// This package is the composition root: it imports from layer packages
// (l1keypoints, l2geometry, l3history, l4phase, l5activation, l6assessment),
// but none of those packages import pipeline/.
//
// Analyzer processes frames synchronously and serializes Ingest and
// Configure with a single mutex. Runner adds a bounded single-consumer
// queue in front of an Analyzer for asynchronous producers.
package pipeline
