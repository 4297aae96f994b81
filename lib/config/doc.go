// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the cado client configuration.
//
// Configuration lives in one file read at startup, config.json in the
// working directory unless --config names another path. A missing file
// is not an error: every key has a default, and the defaults point at
// a server on localhost:8000.
//
// JSON files may contain comments and trailing commas. Files ending in
// .yaml or .yml are parsed as YAML with the same keys:
//
//	{
//	    // Server address. host may carry the port itself.
//	    "host": "localhost",
//	    "port": 8000,
//	    "reconnectAttempts": 150,
//	    "reconnectInterval": 2000, // milliseconds
//	}
//
// frameEncoding selects how inbound frames are unwrapped (auto,
// single, or double; see lib/protocol).
package config
