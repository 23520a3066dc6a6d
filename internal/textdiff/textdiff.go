// Package textdiff computes token-level diffs between two strings via
// an iterative LCS dynamic-programming table.
package textdiff

import (
	"strings"
	"unicode"

	"github.com/xxxsen/mdld/internal/model"
)

// Tokenize splits text on runs of characters that are not letters,
// digits or underscores. Separators are not emitted.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

type pair struct {
	oldIdx int
	newIdx int
}

// lcsPairs returns the matched index pairs of the longest common
// subsequence, in ascending order. The table is built iteratively to
// keep stack usage flat on large inputs.
func lcsPairs(a, b []string) []pair {
	n, m := len(a), len(b)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}
	var pairs []pair
	i, j := n, m
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			pairs = append(pairs, pair{oldIdx: i - 1, newIdx: j - 1})
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

// Diff walks both token streams against the LCS match set. Tokens
// lagging on exactly one side emit delete or insert; when neither side
// sits at a kept token, a paired delete+insert is emitted as a
// substitution and both sides advance.
func Diff(oldText, newText string) []model.TokenOp {
	a := Tokenize(oldText)
	b := Tokenize(newText)
	pairs := lcsPairs(a, b)

	var ops []model.TokenOp
	i, j := 0, 0
	for _, p := range pairs {
		for i < p.oldIdx && j < p.newIdx {
			ops = append(ops,
				model.TokenOp{Op: model.OpDelete, Value: a[i]},
				model.TokenOp{Op: model.OpInsert, Value: b[j]},
			)
			i++
			j++
		}
		for i < p.oldIdx {
			ops = append(ops, model.TokenOp{Op: model.OpDelete, Value: a[i]})
			i++
		}
		for j < p.newIdx {
			ops = append(ops, model.TokenOp{Op: model.OpInsert, Value: b[j]})
			j++
		}
		ops = append(ops, model.TokenOp{Op: model.OpKeep, Value: a[i]})
		i++
		j++
	}
	for i < len(a) && j < len(b) {
		ops = append(ops,
			model.TokenOp{Op: model.OpDelete, Value: a[i]},
			model.TokenOp{Op: model.OpInsert, Value: b[j]},
		)
		i++
		j++
	}
	for ; i < len(a); i++ {
		ops = append(ops, model.TokenOp{Op: model.OpDelete, Value: a[i]})
	}
	for ; j < len(b); j++ {
		ops = append(ops, model.TokenOp{Op: model.OpInsert, Value: b[j]})
	}
	return ops
}

// RenderOps formats an op list as inline change markup, e.g.
// "Hello {-brave-} {+bold+} world".
func RenderOps(ops []model.TokenOp) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Op {
		case model.OpKeep:
			parts = append(parts, op.Value)
		case model.OpDelete:
			parts = append(parts, "{-"+op.Value+"-}")
		case model.OpInsert:
			parts = append(parts, "{+"+op.Value+"+}")
		}
	}
	return strings.Join(parts, " ")
}
