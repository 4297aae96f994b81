// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebook

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// NotebookDetails summarizes a notebook file for the listing view.
type NotebookDetails struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Filepath string    `json:"filepath"`
	Created  Timestamp `json:"created"`
	Updated  Timestamp `json:"updated"`
}

// SortByUpdated orders details most recently updated first. Entries
// with equal timestamps keep their relative order.
func SortByUpdated(details []NotebookDetails) {
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Updated.After(details[j].Updated.Time)
	})
}

// Timestamp is a time decoded from the server's ISO-8601 strings. The
// server emits timestamps both with and without a zone offset;
// timestamps without one are taken as UTC.
type Timestamp struct {
	time.Time
}

// timestampLayouts are tried in order when decoding.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp in any of the forms the
// server emits.
func ParseTimestamp(value string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return Timestamp{parsed.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// UnmarshalJSON accepts a timestamp string or null.
func (timestamp *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*timestamp = Timestamp{}
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if value == "" {
		*timestamp = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(value)
	if err != nil {
		return err
	}
	*timestamp = parsed
	return nil
}

// MarshalJSON encodes the timestamp as RFC 3339, or null when zero.
func (timestamp Timestamp) MarshalJSON() ([]byte, error) {
	if timestamp.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(timestamp.Time.Format(time.RFC3339Nano))
}
