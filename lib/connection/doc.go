// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package connection owns the single WebSocket connection between the
// cado client and the notebook server.
//
// A [Manager] dials a fixed URL, decodes every inbound frame with a
// [protocol.Codec], and hands the resulting responses to one message
// handler in the order the transport delivered them. Outbound requests
// go through [Manager.Send], which serializes writes so frames never
// interleave.
//
// # Reconnection
//
// When a dial fails or an open connection drops, the manager waits a
// fixed interval and dials again. Each failed dial counts as one
// attempt; a successful open resets the count. Once the count reaches
// the configured limit the manager stops retrying and reports an
// exhausted, closed status. Timers come from an injected
// lib/clock.Clock so tests can drive the schedule deterministically.
//
// # Teardown
//
// [Manager.Stop] is the only way to shut the manager down on purpose.
// It marks the manager as closing before touching the socket, so the
// retry decision that follows the resulting disconnect sees the flag
// and gives up. A retry timer that is already scheduled is cancelled,
// and Stop waits for the background goroutine to exit: after Stop
// returns there is no pending timer and no dial in flight.
package connection
