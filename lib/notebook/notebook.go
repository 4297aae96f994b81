// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebook

// Notebook is an ordered sequence of cells plus identifying metadata.
type Notebook struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Cells []Cell `json:"cells"`
}

// Index returns the position of the cell with the given ID, or -1.
func (notebook Notebook) Index(cellID string) int {
	for index, cell := range notebook.Cells {
		if cell.ID == cellID {
			return index
		}
	}
	return -1
}

// IDs returns the cell IDs in display order.
func (notebook Notebook) IDs() []string {
	ids := make([]string, len(notebook.Cells))
	for index, cell := range notebook.Cells {
		ids[index] = cell.ID
	}
	return ids
}

// Clone returns a deep copy of the notebook.
func (notebook Notebook) Clone() Notebook {
	clone := Notebook{ID: notebook.ID, Name: notebook.Name}
	if notebook.Cells != nil {
		clone.Cells = make([]Cell, len(notebook.Cells))
		for index, cell := range notebook.Cells {
			clone.Cells[index] = cell.Clone()
		}
	}
	return clone
}

// Dedupe returns a copy of the notebook with any repeated cell IDs
// removed, keeping the first occurrence. A well-behaved server never
// sends duplicates, but the client must never hold two cells with the
// same ID.
func (notebook Notebook) Dedupe() (Notebook, int) {
	seen := make(map[string]bool, len(notebook.Cells))
	clone := Notebook{ID: notebook.ID, Name: notebook.Name, Cells: make([]Cell, 0, len(notebook.Cells))}
	dropped := 0
	for _, cell := range notebook.Cells {
		if seen[cell.ID] {
			dropped++
			continue
		}
		seen[cell.ID] = true
		clone.Cells = append(clone.Cells, cell.Clone())
	}
	return clone, dropped
}
