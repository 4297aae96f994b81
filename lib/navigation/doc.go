// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package navigation implements keyboard navigation over a notebook's
// cells: which cell is active, whether it is being edited, and which
// key chords trigger which commands.
//
// The package is split in two so it can be driven by any event source:
//
//   - [Detector] turns a stream of key-down and key-up events into
//     chord matches. It tracks the set of held keys; a chord fires
//     once, on the key-down that completes it, and matching does not
//     depend on the order the keys were pressed in. Releasing a
//     modifier clears the whole held set.
//   - [Navigator] applies a [Command] to the navigation state and
//     returns the [Action] (run, clear, create, delete) the caller
//     should turn into a server request. Commands whose preconditions
//     fail change nothing and report that they were not applied, so
//     the caller can let the key through to its default handling.
//
// Neither type is safe for concurrent use; the session serializes
// access.
package navigation
