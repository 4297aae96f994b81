// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notebookui implements cado's terminal viewer. Built on
// bubbletea, it renders a [session.Session] as one of three screens (a
// disconnected notice, the notebook listing, or the open notebook's
// cells) and turns terminal input into session calls.
//
// Terminal keys reach the session's chord detector first, translated
// into browser key names by keySequence and pressed then released as
// a whole. Only keys no chord consumed fall through to the focused
// text editor or to the viewer's own [KeyMap]. Terminals cannot
// report every chord a browser can, so [TerminalBindings] adds
// Control and Alt alternatives to the standard ones.
//
// Data flow:
//
//	[session] --Subscribe--> sessionChangedMsg --> Snapshot --> [Model.View]
//	[store]   --Subscribe--> storeEventMsg     --> change highlight
//	[terminal keys] --> chord detector --> editor / KeyMap --> session calls
package notebookui
