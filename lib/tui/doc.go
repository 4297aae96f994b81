// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides terminal user interface components shared by
// cado's viewers. Built on bubbletea (Elm architecture), these
// components cover a multi-line text editor, dialog overlays, fuzzy
// matching, and ANSI-aware text manipulation.
//
// Viewers own their data source, layout, and domain rendering; this
// package supplies the theme and the mechanics.
package tui
