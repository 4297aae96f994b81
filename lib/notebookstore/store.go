// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notebookstore holds the client's authoritative copy of the
// open notebook.
//
// A [Store] is the only place cell records live. Server responses
// replace cells wholesale by ID ([Store.UpsertCell], [Store.InsertCell])
// or replace the whole notebook ([Store.Replace]). Every operation is
// atomic with respect to the others, and subscribers receive an
// [Event] after each change. The store never holds two cells with the
// same ID and never loses a cell during a reorder.
package notebookstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/cado/lib/notebook"
)

// ErrNoNotebook is returned by cell operations when no notebook is
// loaded.
var ErrNoNotebook = errors.New("no notebook loaded")

// EventKind names what changed.
type EventKind string

const (
	EventReplaced  EventKind = "replaced"
	EventPut       EventKind = "put"
	EventRemoved   EventKind = "removed"
	EventReordered EventKind = "reordered"
	EventRenamed   EventKind = "renamed"
)

// Event describes one change. CellID is set for put and removed.
type Event struct {
	Kind   EventKind
	CellID string
}

// Fingerprint is a BLAKE3 digest of a notebook's content.
type Fingerprint [32]byte

// Store is the authoritative notebook state. The zero value is not
// usable; call New.
type Store struct {
	mutex       sync.RWMutex
	notebook    *notebook.Notebook
	subscribers []chan Event
}

// New returns an empty store with no notebook loaded. The store does
// not log; callers report what its return values tell them, often
// while holding locks of their own.
func New() *Store {
	return &Store{}
}

// Subscribe returns a channel that receives an Event after every
// change. Events are dropped when the channel's buffer is full; a
// subscriber that falls behind should re-read the whole notebook.
func (store *Store) Subscribe() <-chan Event {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	channel := make(chan Event, 64)
	store.subscribers = append(store.subscribers, channel)
	return channel
}

// Replace installs a new notebook, or clears the store when replacement
// is nil. Duplicate cell IDs in the replacement are dropped, keeping
// the first occurrence; the number dropped is returned.
func (store *Store) Replace(replacement *notebook.Notebook) int {
	var dropped int
	store.mutex.Lock()
	if replacement == nil {
		store.notebook = nil
	} else {
		var deduped notebook.Notebook
		deduped, dropped = replacement.Dedupe()
		store.notebook = &deduped
	}
	subscribers := store.subscribers
	store.mutex.Unlock()

	dispatch(subscribers, Event{Kind: EventReplaced})
	return dropped
}

// Loaded reports whether a notebook is loaded.
func (store *Store) Loaded() bool {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return store.notebook != nil
}

// Notebook returns a copy of the loaded notebook.
func (store *Store) Notebook() (notebook.Notebook, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	if store.notebook == nil {
		return notebook.Notebook{}, false
	}
	return store.notebook.Clone(), true
}

// Cell returns a copy of the cell with the given ID.
func (store *Store) Cell(cellID string) (notebook.Cell, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	if store.notebook == nil {
		return notebook.Cell{}, false
	}
	index := store.notebook.Index(cellID)
	if index < 0 {
		return notebook.Cell{}, false
	}
	return store.notebook.Cells[index].Clone(), true
}

// IDs returns the cell IDs in order, or nil when nothing is loaded.
func (store *Store) IDs() []string {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	if store.notebook == nil {
		return nil
	}
	return store.notebook.IDs()
}

// UpsertCell replaces the cell with the same ID in place, keeping its
// position, or appends the cell when its ID is new. Returns the cell's
// position.
func (store *Store) UpsertCell(cell notebook.Cell) (int, error) {
	return store.put(cell, -1)
}

// InsertCell places a cell with a new ID at index, clamped to the
// valid range. A cell whose ID already exists is replaced in place
// instead, so a late or repeated response never creates a duplicate.
func (store *Store) InsertCell(cell notebook.Cell, index int) (int, error) {
	if index < 0 {
		index = 0
	}
	return store.put(cell, index)
}

// put implements UpsertCell (index < 0 appends) and InsertCell.
func (store *Store) put(cell notebook.Cell, index int) (int, error) {
	store.mutex.Lock()
	if store.notebook == nil {
		store.mutex.Unlock()
		return -1, ErrNoNotebook
	}

	position := store.notebook.Index(cell.ID)
	switch {
	case position >= 0:
		store.notebook.Cells[position] = cell.Clone()
	case index < 0 || index >= len(store.notebook.Cells):
		store.notebook.Cells = append(store.notebook.Cells, cell.Clone())
		position = len(store.notebook.Cells) - 1
	default:
		cells := make([]notebook.Cell, 0, len(store.notebook.Cells)+1)
		cells = append(cells, store.notebook.Cells[:index]...)
		cells = append(cells, cell.Clone())
		cells = append(cells, store.notebook.Cells[index:]...)
		store.notebook.Cells = cells
		position = index
	}
	subscribers := store.subscribers
	store.mutex.Unlock()

	dispatch(subscribers, Event{Kind: EventPut, CellID: cell.ID})
	return position, nil
}

// RemoveCell deletes a cell. Returns false, and changes nothing, when
// the cell is not present.
func (store *Store) RemoveCell(cellID string) bool {
	store.mutex.Lock()
	if store.notebook == nil {
		store.mutex.Unlock()
		return false
	}
	position := store.notebook.Index(cellID)
	if position < 0 {
		store.mutex.Unlock()
		return false
	}
	cells := store.notebook.Cells
	store.notebook.Cells = append(cells[:position:position], cells[position+1:]...)
	subscribers := store.subscribers
	store.mutex.Unlock()

	dispatch(subscribers, Event{Kind: EventRemoved, CellID: cellID})
	return true
}

// Reorder arranges the cells in the order given by cellIDs. IDs that
// are unknown or repeated are ignored. Cells missing from cellIDs keep
// their relative order after the listed ones, so no cell is ever lost.
func (store *Store) Reorder(cellIDs []string) error {
	store.mutex.Lock()
	if store.notebook == nil {
		store.mutex.Unlock()
		return ErrNoNotebook
	}

	byID := make(map[string]notebook.Cell, len(store.notebook.Cells))
	for _, cell := range store.notebook.Cells {
		byID[cell.ID] = cell
	}
	placed := make(map[string]bool, len(byID))
	ordered := make([]notebook.Cell, 0, len(byID))
	for _, cellID := range cellIDs {
		cell, exists := byID[cellID]
		if !exists || placed[cellID] {
			continue
		}
		placed[cellID] = true
		ordered = append(ordered, cell)
	}
	for _, cell := range store.notebook.Cells {
		if !placed[cell.ID] {
			ordered = append(ordered, cell)
		}
	}
	store.notebook.Cells = ordered
	subscribers := store.subscribers
	store.mutex.Unlock()

	dispatch(subscribers, Event{Kind: EventReordered})
	return nil
}

// SetName renames the loaded notebook locally.
func (store *Store) SetName(name string) error {
	store.mutex.Lock()
	if store.notebook == nil {
		store.mutex.Unlock()
		return ErrNoNotebook
	}
	store.notebook.Name = name
	subscribers := store.subscribers
	store.mutex.Unlock()

	dispatch(subscribers, Event{Kind: EventRenamed})
	return nil
}

// SetCellStatus changes one cell's status, used to mark a cell running
// before the server answers. Returns false when the cell is absent.
func (store *Store) SetCellStatus(cellID string, status notebook.Status) bool {
	store.mutex.Lock()
	if store.notebook == nil {
		store.mutex.Unlock()
		return false
	}
	position := store.notebook.Index(cellID)
	if position < 0 {
		store.mutex.Unlock()
		return false
	}
	store.notebook.Cells[position].Status = status
	subscribers := store.subscribers
	store.mutex.Unlock()

	dispatch(subscribers, Event{Kind: EventPut, CellID: cellID})
	return true
}

// Fingerprint digests the loaded notebook. Two stores holding equal
// notebooks have equal fingerprints. An empty store has the zero
// fingerprint.
func (store *Store) Fingerprint() (Fingerprint, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	if store.notebook == nil {
		return Fingerprint{}, nil
	}
	encoded, err := json.Marshal(store.notebook)
	if err != nil {
		// Cells are plain values; a marshal failure means an output
		// carried invalid raw JSON.
		return Fingerprint{}, fmt.Errorf("fingerprinting notebook: %w", err)
	}
	return Fingerprint(blake3.Sum256(encoded)), nil
}

// dispatch delivers event to every subscriber without blocking.
func dispatch(subscribers []chan Event, event Event) {
	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
		}
	}
}
