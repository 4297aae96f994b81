// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notebook defines the data model shared by every layer of the
// cado client: cells, notebooks, and the summaries shown in the
// notebook listing.
//
// These types are plain values that mirror the server's JSON wire
// format (snake_case field names). A [Cell] is identified by its
// server-assigned ID, which never changes; every mutation of a cell is
// a whole-record replacement keyed by that ID. A [Notebook] holds its
// cells in display order and never contains two cells with the same
// ID.
//
// This package has no cado-internal dependencies.
package notebook
