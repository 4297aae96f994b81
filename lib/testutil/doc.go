// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for cado packages.
//
// [RequireReceive], [RequireNoReceive], and [RequireClosed] wrap the
// select-with-timeout pattern so individual tests never call
// time.After themselves. These timeouts only guard against a hung
// test; protocol timing is driven by lib/clock's FakeClock.
//
// [WebSocketServer] is an in-process notebook server endpoint built on
// httptest and gorilla/websocket. Tests accept the client's
// connections, read the frames it sends, push response frames back,
// and drop connections to exercise reconnection.
//
// [UniqueID] hands out identifiers that are unique within the test
// binary.
//
// All helpers fail the test with t.Fatalf instead of returning errors.
package testutil
