// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session ties the cado client together. A [Session] receives
// decoded responses and connection status changes from a transport
// (normally a lib/connection Manager), applies them to the notebook
// store, keeps the navigation state consistent with the cell order,
// and turns user input (key chords, clicks, edits) into protocol
// requests.
//
// Control flows one way:
//
//	key chord -> navigation.Navigator -> Action -> protocol.Request -> transport
//	transport -> protocol.Response -> notebookstore.Store -> navigator re-validation -> subscribers
//
// Every entry point takes the session lock, so response handling and
// user input never interleave. Subscribers are told that something
// changed and read a [Snapshot] to render.
//
// # Reconciliation
//
// Server records are authoritative and replace local ones wholesale.
// Text edits live in a reconcile.Ledger until the field loses focus;
// the display shows the draft until the server's echo settles it. Two
// changes are applied before the server answers: a run marks the cell
// running, and a reorder rearranges the local cells. An error response
// never mutates local state; it triggers a full resync instead.
package session
