package merge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mdld/internal/merge"
	"github.com/xxxsen/mdld/internal/model"
)

func insertAt(path []int, text string) model.Change {
	return model.Change{
		Kind:  model.KindInsertBlock,
		Path:  model.Path{Blocks: path},
		Block: &model.Block{Type: model.BlockParagraph, Path: path, Text: text},
	}
}

func updateAt(path []int, before, after string) model.Change {
	return model.Change{
		Kind: model.KindUpdateBlock,
		Path: model.Path{Blocks: path},
		Update: &model.UpdatePayload{
			Type:   model.BlockParagraph,
			Before: before,
			After:  after,
		},
	}
}

func deleteAt(path []int, text string) model.Change {
	return model.Change{
		Kind:  model.KindDeleteBlock,
		Path:  model.Path{Blocks: path},
		Block: &model.Block{Type: model.BlockParagraph, Path: path, Text: text},
	}
}

func TestDetectConflictsDisjointPaths(t *testing.T) {
	ours := []model.Change{insertAt([]int{0}, "a"), updateAt([]int{2}, "x", "y")}
	theirs := []model.Change{insertAt([]int{1}, "b"), deleteAt([]int{3}, "z")}
	require.Empty(t, merge.DetectConflicts(ours, theirs))
}

func TestDetectConflictsSameSegmentEdit(t *testing.T) {
	ours := []model.Change{updateAt([]int{0, 0}, "base", "ours text")}
	theirs := []model.Change{updateAt([]int{0, 0}, "base", "theirs text")}
	conflicts := merge.DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ReasonSameSegmentEdit, conflicts[0].Reason)
	require.Equal(t, "ours text", conflicts[0].Ours.Update.After)
	require.Equal(t, "theirs text", conflicts[0].Theirs.Update.After)
}

func TestDetectConflictsDeleteVsEdit(t *testing.T) {
	ours := []model.Change{deleteAt([]int{1}, "gone")}
	theirs := []model.Change{updateAt([]int{1}, "gone", "kept")}
	conflicts := merge.DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ReasonDeleteVsEdit, conflicts[0].Reason)
}

func TestDetectConflictsPathPrefix(t *testing.T) {
	ours := []model.Change{deleteAt([]int{1}, "parent")}
	theirs := []model.Change{updateAt([]int{1, 0}, "child", "edited child")}
	conflicts := merge.DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 1)
}

func TestDetectConflictsSemanticKey(t *testing.T) {
	ours := []model.Change{{
		Kind:   model.KindJSONLDUpdate,
		Path:   model.Path{Key: "ex:doc title"},
		Triple: &model.TriplePayload{Subject: "ex:doc", Predicate: "title", Before: "a", After: "b"},
	}}
	theirs := []model.Change{{
		Kind:   model.KindJSONLDUpdate,
		Path:   model.Path{Key: "ex:doc title"},
		Triple: &model.TriplePayload{Subject: "ex:doc", Predicate: "title", Before: "a", After: "c"},
	}}
	conflicts := merge.DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ReasonJSONLDSemantic, conflicts[0].Reason)
}

func TestThreeWayDisjointInserts(t *testing.T) {
	base := &model.Patch{ToRev: "base-rev"}
	ours := &model.Patch{Changes: []model.Change{insertAt([]int{0}, "ours block")}}
	theirs := &model.Patch{Changes: []model.Change{insertAt([]int{1}, "theirs block")}}

	merged, conflicts := merge.ThreeWay(base, ours, theirs)
	require.Empty(t, conflicts)
	require.NotNil(t, merged)
	require.Len(t, merged.Changes, 2)
	require.Equal(t, "base-rev", merged.FromRev)
	require.NotEmpty(t, merged.ToRev)
}

func TestThreeWayIdenticalResultResolves(t *testing.T) {
	base := &model.Patch{ToRev: "base-rev"}
	ours := &model.Patch{Changes: []model.Change{updateAt([]int{0}, "old", "same new")}}
	theirs := &model.Patch{Changes: []model.Change{updateAt([]int{0}, "old", "same new")}}

	merged, conflicts := merge.ThreeWay(base, ours, theirs)
	require.NotNil(t, merged)
	require.Len(t, merged.Changes, 1)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ResolutionIdentical, conflicts[0].Resolution)
}

func TestThreeWaySupersetResolves(t *testing.T) {
	base := &model.Patch{ToRev: "base-rev"}
	ours := &model.Patch{Changes: []model.Change{updateAt([]int{0}, "old", "short text")}}
	theirs := &model.Patch{Changes: []model.Change{updateAt([]int{0}, "old", "longer short text with more words")}}

	merged, conflicts := merge.ThreeWay(base, ours, theirs)
	require.NotNil(t, merged)
	require.Len(t, merged.Changes, 1)
	require.Equal(t, "longer short text with more words", merged.Changes[0].Update.After)
	require.Equal(t, model.ResolutionSuperset, conflicts[0].Resolution)
}

func TestThreeWayUnresolvedReturnsNilMerged(t *testing.T) {
	base := &model.Patch{ToRev: "base-rev"}
	ours := &model.Patch{Changes: []model.Change{updateAt([]int{0}, "old", "apple")}}
	theirs := &model.Patch{Changes: []model.Change{updateAt([]int{0}, "old", "banana")}}

	merged, conflicts := merge.ThreeWay(base, ours, theirs)
	require.Nil(t, merged)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.Resolution(""), conflicts[0].Resolution)
}

func TestThreeWayDeterministicRev(t *testing.T) {
	base := &model.Patch{ToRev: "base-rev"}
	ours := &model.Patch{Changes: []model.Change{insertAt([]int{0}, "a")}}
	theirs := &model.Patch{Changes: []model.Change{insertAt([]int{1}, "b")}}

	first, _ := merge.ThreeWay(base, ours, theirs)
	second, _ := merge.ThreeWay(base, ours, theirs)
	require.Equal(t, first.ToRev, second.ToRev)
}

func moveAt(from, to []int) model.Change {
	return model.Change{
		Kind: model.KindMoveBlock,
		Path: model.Path{Blocks: from},
		Move: &model.MovePayload{From: from, To: to},
	}
}

func TestDetectConflictsMoveVsEdit(t *testing.T) {
	ours := []model.Change{moveAt([]int{2}, []int{0})}
	theirs := []model.Change{updateAt([]int{2}, "base", "edited")}
	conflicts := merge.DetectConflicts(ours, theirs)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ReasonMoveVsEdit, conflicts[0].Reason)

	conflicts = merge.DetectConflicts(theirs, ours)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ReasonMoveVsEdit, conflicts[0].Reason)
}

func TestThreeWayMalformedChangeStaysUnresolved(t *testing.T) {
	base := &model.Patch{ToRev: "r0"}
	broken := model.Change{Kind: model.KindUpdateBlock, Path: model.Path{Blocks: []int{1}}}
	ours := &model.Patch{FromRev: "r0", ToRev: "r1", Changes: []model.Change{broken}}
	theirs := &model.Patch{FromRev: "r0", ToRev: "r2", Changes: []model.Change{broken}}

	merged, conflicts := merge.ThreeWay(base, ours, theirs)
	require.Nil(t, merged)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ResolutionNone, conflicts[0].Resolution)
}

func TestThreeWayMalformedVsWellFormed(t *testing.T) {
	base := &model.Patch{ToRev: "r0"}
	broken := model.Change{Kind: model.KindUpdateBlock, Path: model.Path{Blocks: []int{1}}}
	ours := &model.Patch{FromRev: "r0", ToRev: "r1", Changes: []model.Change{broken}}
	theirs := &model.Patch{FromRev: "r0", ToRev: "r2", Changes: []model.Change{updateAt([]int{1}, "base", "edited")}}

	merged, conflicts := merge.ThreeWay(base, ours, theirs)
	require.Nil(t, merged)
	require.Len(t, conflicts, 1)
	require.Equal(t, model.ResolutionNone, conflicts[0].Resolution)
}
