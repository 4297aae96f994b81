// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult is the outcome of matching one text against a pattern.
// A zero Score means no match.
type FuzzyResult struct {
	Score int

	// Positions are the rune indices of matched characters in the
	// text, unordered.
	Positions []int
}

var fuzzyInit sync.Once

// NewFuzzySlab returns scratch memory for FuzzyMatch. Reusing one slab
// across the matches of a single filter pass avoids per-call
// allocation. Not safe for concurrent use.
func NewFuzzySlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// FuzzyMatch scores text against pattern with fzf's matching algorithm.
// Matching is case-insensitive: both sides are lowercased. slab may be
// nil.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}
	fuzzyInit.Do(func() { algo.Init("default") })

	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(strings.ToLower(text)))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 || result.Score <= 0 {
		return FuzzyResult{}
	}
	fuzzy := FuzzyResult{Score: result.Score}
	if positions != nil {
		fuzzy.Positions = append([]int(nil), (*positions)...)
	}
	return fuzzy
}
