// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol defines the typed messages exchanged with the cado
// notebook server and the codec that moves them on and off the wire.
//
// Every message is a JSON object tagged by a kebab-case "type" field.
// Client-to-server messages implement [Request]; server-to-client
// messages implement [Response]. Both interfaces are sealed: the set of
// message types is closed, and callers dispatch with a type switch
// whose default arm handles [Unknown], the response produced for any
// discriminator this client does not recognize.
//
// There is no correlation identifier. A response is never paired with
// the request that caused it; every cell-carrying response is a full
// authoritative replacement of that cell, and [GetNotebookResponse]
// replaces the whole notebook.
//
// # Frame encoding
//
// Some server builds serialize each response object to a JSON string
// and then serialize that string again, so the frame on the wire is a
// JSON string literal whose contents are the object. [Codec] treats
// this as a configurable decode step (see [FrameEncoding]); outbound
// frames are always the object itself.
package protocol
