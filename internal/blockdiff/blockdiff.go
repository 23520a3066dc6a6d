// Package blockdiff computes structural changes between two block
// sequences: aligned blocks are no-ops, reordered identical blocks
// become moves, similar same-typed blocks become updates with an
// embedded inline diff, everything else delete+insert.
package blockdiff

import (
	"fmt"

	"github.com/xxxsen/mdld/internal/model"
	apperr "github.com/xxxsen/mdld/internal/pkg/errors"
	"github.com/xxxsen/mdld/internal/textdiff"
)

const (
	DefaultSimilarityThreshold = 0.5
	DefaultMaxBlocks           = 10000
	DefaultMaxTokens           = 5000
)

type Options struct {
	SimilarityThreshold float64
	MaxBlocks           int
	MaxTokens           int
}

func (o Options) withDefaults() Options {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.MaxBlocks <= 0 {
		o.MaxBlocks = DefaultMaxBlocks
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}

// Diff aligns old and new by LCS over (type, text) and emits an
// ordered change list for everything left unaligned. A document with
// nothing in common simply yields a full delete+insert set.
func Diff(oldBlocks, newBlocks []model.Block, opts Options) ([]model.Change, error) {
	opts = opts.withDefaults()
	if len(oldBlocks) > opts.MaxBlocks || len(newBlocks) > opts.MaxBlocks {
		return nil, fmt.Errorf("%w: %d/%d blocks, limit %d",
			apperr.ErrLimitExceeded, len(oldBlocks), len(newBlocks), opts.MaxBlocks)
	}

	aligned := alignBlocks(oldBlocks, newBlocks)
	oldUsed := make([]bool, len(oldBlocks))
	newUsed := make([]bool, len(newBlocks))
	for _, p := range aligned {
		oldUsed[p.oldIdx] = true
		newUsed[p.newIdx] = true
	}

	var changes []model.Change

	// Identical blocks that fell out of the LCS alignment were
	// reordered, not edited: pair them up as moves before the runs are
	// matched positionally.
	moved := map[string][]int{}
	for i, b := range oldBlocks {
		if !oldUsed[i] {
			key := blockKey(b)
			moved[key] = append(moved[key], i)
		}
	}
	for j, b := range newBlocks {
		if newUsed[j] {
			continue
		}
		key := blockKey(b)
		queue := moved[key]
		if len(queue) == 0 {
			continue
		}
		i := queue[0]
		moved[key] = queue[1:]
		oldUsed[i] = true
		newUsed[j] = true
		changes = append(changes, model.Change{
			Kind: model.KindMoveBlock,
			Path: model.Path{Blocks: oldBlocks[i].Path},
			Move: &model.MovePayload{From: oldBlocks[i].Path, To: newBlocks[j].Path},
		})
	}

	// Walk the unaligned runs between consecutive aligned pairs and
	// pair leftovers positionally.
	oldPos, newPos := 0, 0
	flush := func(oldEnd, newEnd int) error {
		var runOld, runNew []model.Block
		for ; oldPos < oldEnd; oldPos++ {
			if !oldUsed[oldPos] {
				runOld = append(runOld, oldBlocks[oldPos])
			}
		}
		for ; newPos < newEnd; newPos++ {
			if !newUsed[newPos] {
				runNew = append(runNew, newBlocks[newPos])
			}
		}
		runChanges, err := diffRun(runOld, runNew, opts)
		if err != nil {
			return err
		}
		changes = append(changes, runChanges...)
		return nil
	}
	for _, p := range aligned {
		if err := flush(p.oldIdx, p.newIdx); err != nil {
			return nil, err
		}
		oldPos, newPos = p.oldIdx+1, p.newIdx+1
	}
	if err := flush(len(oldBlocks), len(newBlocks)); err != nil {
		return nil, err
	}
	return changes, nil
}

// diffRun pairs leftover blocks at the same relative offset; blocks of
// different type are never paired as updates.
func diffRun(runOld, runNew []model.Block, opts Options) ([]model.Change, error) {
	var changes []model.Change
	n := len(runOld)
	if len(runNew) < n {
		n = len(runNew)
	}
	for k := 0; k < n; k++ {
		before, after := runOld[k], runNew[k]
		if before.Type == after.Type {
			score, err := similarity(before.Text, after.Text, opts.MaxTokens)
			if err != nil {
				return nil, err
			}
			if score >= opts.SimilarityThreshold {
				changes = append(changes, model.Change{
					Kind: model.KindUpdateBlock,
					Path: model.Path{Blocks: before.Path},
					Update: &model.UpdatePayload{
						Type:   before.Type,
						Before: before.Text,
						After:  after.Text,
						Ops:    textdiff.Diff(before.Text, after.Text),
					},
				})
				continue
			}
		}
		changes = append(changes,
			deleteChange(before),
			insertChange(after),
		)
	}
	for _, b := range runOld[n:] {
		changes = append(changes, deleteChange(b))
	}
	for _, b := range runNew[n:] {
		changes = append(changes, insertChange(b))
	}
	return changes, nil
}

func deleteChange(b model.Block) model.Change {
	block := b
	return model.Change{Kind: model.KindDeleteBlock, Path: model.Path{Blocks: b.Path}, Block: &block}
}

func insertChange(b model.Block) model.Change {
	block := b
	return model.Change{Kind: model.KindInsertBlock, Path: model.Path{Blocks: b.Path}, Block: &block}
}

type alignPair struct {
	oldIdx int
	newIdx int
}

// alignBlocks runs an LCS pass over (type, text) pairs.
func alignBlocks(oldBlocks, newBlocks []model.Block) []alignPair {
	n, m := len(oldBlocks), len(newBlocks)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if sameBlock(oldBlocks[i-1], newBlocks[j-1]) {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}
	var pairs []alignPair
	i, j := n, m
	for i > 0 && j > 0 {
		switch {
		case sameBlock(oldBlocks[i-1], newBlocks[j-1]):
			pairs = append(pairs, alignPair{oldIdx: i - 1, newIdx: j - 1})
			i--
			j--
		case table[i-1][j] >= table[i][j-1]:
			i--
		default:
			j--
		}
	}
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}
	return pairs
}

func sameBlock(a, b model.Block) bool {
	return a.Type == b.Type && a.Text == b.Text
}

func blockKey(b model.Block) string {
	return string(b.Type) + "\x00" + b.Text
}

// similarity is the Dice coefficient over token multisets:
// 2*|A∩B| / (|A|+|B|). Two empty blocks score 1.
func similarity(a, b string, maxTokens int) (float64, error) {
	ta := textdiff.Tokenize(a)
	tb := textdiff.Tokenize(b)
	if len(ta) > maxTokens || len(tb) > maxTokens {
		return 0, fmt.Errorf("%w: %d/%d tokens, limit %d",
			apperr.ErrLimitExceeded, len(ta), len(tb), maxTokens)
	}
	if len(ta) == 0 && len(tb) == 0 {
		return 1, nil
	}
	counts := map[string]int{}
	for _, tok := range ta {
		counts[tok]++
	}
	common := 0
	for _, tok := range tb {
		if counts[tok] > 0 {
			counts[tok]--
			common++
		}
	}
	return 2 * float64(common) / float64(len(ta)+len(tb)), nil
}
