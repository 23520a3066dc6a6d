package textdiff_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/textdiff"
)

func TestTokenize(t *testing.T) {
	require.Equal(t, []string{"hello", "brave_new", "world2"}, textdiff.Tokenize("hello, brave_new world2!"))
	require.Empty(t, textdiff.Tokenize("--- ..."))
}

func TestDiffIdentical(t *testing.T) {
	ops := textdiff.Diff("one two three", "one two three")
	require.Len(t, ops, 3)
	for _, op := range ops {
		require.Equal(t, model.OpKeep, op.Op)
	}
}

func TestDiffSubstitution(t *testing.T) {
	ops := textdiff.Diff("Hello brave world", "Hello bold world")
	require.Equal(t, []model.TokenOp{
		{Op: model.OpKeep, Value: "Hello"},
		{Op: model.OpDelete, Value: "brave"},
		{Op: model.OpInsert, Value: "bold"},
		{Op: model.OpKeep, Value: "world"},
	}, ops)
}

func TestDiffInsertDelete(t *testing.T) {
	ops := textdiff.Diff("a b c", "a c d")
	require.Equal(t, []model.TokenOp{
		{Op: model.OpKeep, Value: "a"},
		{Op: model.OpDelete, Value: "b"},
		{Op: model.OpKeep, Value: "c"},
		{Op: model.OpInsert, Value: "d"},
	}, ops)
}

func TestDiffReconstructsNewText(t *testing.T) {
	ops := textdiff.Diff("the quick brown fox", "the slow brown dog jumps")
	var rebuilt []string
	for _, op := range ops {
		if op.Op == model.OpKeep || op.Op == model.OpInsert {
			rebuilt = append(rebuilt, op.Value)
		}
	}
	require.Equal(t, textdiff.Tokenize("the slow brown dog jumps"), rebuilt)
}

func TestRenderOps(t *testing.T) {
	got := textdiff.RenderOps([]model.TokenOp{
		{Op: model.OpKeep, Value: "Hello"},
		{Op: model.OpDelete, Value: "brave"},
		{Op: model.OpInsert, Value: "bold"},
		{Op: model.OpKeep, Value: "world"},
	})
	require.Equal(t, "Hello {-brave-} {+bold+} world", got)
}
