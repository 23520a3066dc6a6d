// Package merge detects conflicts between divergent change lists and
// reconciles them against a common base patch.
package merge

import (
	"github.com/xxxsen/mdld/internal/model"
)

// DetectConflicts pairs every change from ours with every change from
// theirs whose paths are equal or prefix-related and classifies the
// pair. Disjoint paths never conflict. The ours/theirs orientation is
// preserved inside each Conflict for later resolution.
func DetectConflicts(ours, theirs []model.Change) []model.Conflict {
	conflicts, _ := detect(ours, theirs)
	return conflicts
}

type conflictPair struct {
	oursIdx   int
	theirsIdx int
}

func detect(ours, theirs []model.Change) ([]model.Conflict, []conflictPair) {
	var conflicts []model.Conflict
	var pairs []conflictPair
	for i, a := range ours {
		for j, b := range theirs {
			reason, ok := classify(a, b)
			if !ok {
				continue
			}
			conflicts = append(conflicts, model.Conflict{
				Path:   a.Path,
				Reason: reason,
				Ours:   a,
				Theirs: b,
			})
			pairs = append(pairs, conflictPair{oursIdx: i, theirsIdx: j})
		}
	}
	return conflicts, pairs
}

func classify(a, b model.Change) (model.ConflictReason, bool) {
	if a.IsSemantic() != b.IsSemantic() {
		return "", false
	}
	if a.IsSemantic() {
		if a.Path.Key == b.Path.Key {
			return model.ReasonJSONLDSemantic, true
		}
		return "", false
	}
	if !a.Path.Overlaps(b.Path) {
		return "", false
	}
	switch {
	case a.Kind == model.KindUpdateBlock && b.Kind == model.KindUpdateBlock:
		return model.ReasonSameSegmentEdit, true
	case a.Kind == model.KindDeleteBlock && (b.Kind == model.KindUpdateBlock || b.Kind == model.KindMoveBlock):
		return model.ReasonDeleteVsEdit, true
	case b.Kind == model.KindDeleteBlock && (a.Kind == model.KindUpdateBlock || a.Kind == model.KindMoveBlock):
		return model.ReasonDeleteVsEdit, true
	case a.Kind == model.KindMoveBlock && b.Kind == model.KindUpdateBlock:
		return model.ReasonMoveVsEdit, true
	case b.Kind == model.KindMoveBlock && a.Kind == model.KindUpdateBlock:
		return model.ReasonMoveVsEdit, true
	default:
		// Same-kind pairs (insert/insert, delete/delete, move/move) on
		// one path still contend for the same segment.
		return model.ReasonSameSegmentEdit, true
	}
}
