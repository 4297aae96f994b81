// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connection

// State is the lifecycle phase of the managed connection.
type State int

const (
	// StateConnecting is a dial in progress, or a wait before the
	// next dial.
	StateConnecting State = iota

	// StateOpen is a live connection that accepts sends.
	StateOpen

	// StateClosing is an intentional teardown in progress.
	StateClosing

	// StateClosed is no connection and no dial pending: either the
	// manager was stopped or retries are exhausted.
	StateClosed
)

func (state State) String() string {
	switch state {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the manager.
type Status struct {
	State State

	// Attempts counts consecutive failed dials since the last
	// successful open.
	Attempts int

	// Exhausted is set when the manager gave up after reaching its
	// attempt limit. Only a closed status can be exhausted.
	Exhausted bool
}
