package merge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/pkg/hashutil"
)

// ThreeWay reconciles two patches that diverged from base. Conflicts
// are attempted in order: identical results collapse to one copy, a
// strictly containing text result wins over its substring. If any
// conflict stays unresolved, merged is nil and the annotated conflict
// list is returned; conflicts are a normal outcome, not an error.
// Non-conflicting changes from both sides always survive the merge.
func ThreeWay(base, ours, theirs *model.Patch) (*model.Patch, []model.Conflict) {
	conflicts, pairs := detect(ours.Changes, theirs.Changes)

	keepOurs := make([]bool, len(ours.Changes))
	keepTheirs := make([]bool, len(theirs.Changes))
	for i := range keepOurs {
		keepOurs[i] = true
	}
	for j := range keepTheirs {
		keepTheirs[j] = true
	}

	unresolved := 0
	for idx := range conflicts {
		c := &conflicts[idx]
		p := pairs[idx]
		switch {
		case c.Ours.Validate() != nil || c.Theirs.Validate() != nil:
			// A change without its payload cannot be compared, so no
			// heuristic may resolve it.
			unresolved++
		case resultKey(c.Ours) == resultKey(c.Theirs):
			c.Resolution = model.ResolutionIdentical
			keepTheirs[p.theirsIdx] = false
		case supersetWinner(c.Ours, c.Theirs) == sideOurs:
			c.Resolution = model.ResolutionSuperset
			keepTheirs[p.theirsIdx] = false
		case supersetWinner(c.Ours, c.Theirs) == sideTheirs:
			c.Resolution = model.ResolutionSuperset
			keepOurs[p.oursIdx] = false
		default:
			unresolved++
		}
	}
	if unresolved > 0 {
		return nil, conflicts
	}

	changes := make([]model.Change, 0, len(ours.Changes)+len(theirs.Changes))
	for i, c := range ours.Changes {
		if keepOurs[i] {
			changes = append(changes, c)
		}
	}
	for j, c := range theirs.Changes {
		if keepTheirs[j] {
			changes = append(changes, c)
		}
	}

	merged := &model.Patch{
		FromRev: base.ToRev,
		ToRev:   mergedRev(base.ToRev, changes),
		Changes: changes,
	}
	return merged, conflicts
}

// mergedRev derives a deterministic revision id from the merged change
// list, keeping repeated merges of the same inputs reproducible.
func mergedRev(fromRev string, changes []model.Change) string {
	encoded, _ := json.Marshal(changes)
	return hashutil.Sum(fromRev + "\x00" + string(encoded))
}

// resultKey captures the outcome a change produces, so two changes
// with the same key can be collapsed into one copy with no
// information loss.
func resultKey(c model.Change) string {
	if c.Validate() != nil {
		return fmt.Sprintf("malformed\x00%s\x00%v\x00%s", c.Kind, c.Path.Blocks, c.Path.Key)
	}
	switch c.Kind {
	case model.KindUpdateBlock:
		return "update\x00" + string(c.Update.Type) + "\x00" + c.Update.After
	case model.KindInsertBlock:
		return "insert\x00" + string(c.Block.Type) + "\x00" + c.Block.Text
	case model.KindDeleteBlock:
		return "delete\x00" + string(c.Block.Type) + "\x00" + c.Block.Text
	case model.KindMoveBlock:
		return fmt.Sprintf("move\x00%v", c.Move.To)
	case model.KindJSONLDAdd, model.KindJSONLDRemove:
		return string(c.Kind) + "\x00" + c.Path.Key + "\x00" + c.Triple.Object + "\x00" + c.Triple.Datatype + "\x00" + c.Triple.Lang
	default:
		return "jsonld_update\x00" + c.Path.Key + "\x00" + c.Triple.After + "\x00" + c.Triple.Datatype + "\x00" + c.Triple.Lang
	}
}

type side int

const (
	sideNone side = iota
	sideOurs
	sideTheirs
)

// supersetWinner applies the longer-result heuristic: when one side's
// resulting text strictly contains the other's, the superset wins.
// This is a pragmatic approximation that can drop information when
// edits are not nested, which is why the resolution is surfaced on
// the conflict rather than applied silently.
func supersetWinner(ours, theirs model.Change) side {
	a, okA := resultText(ours)
	b, okB := resultText(theirs)
	if !okA || !okB || a == b {
		return sideNone
	}
	if strings.Contains(a, b) {
		return sideOurs
	}
	if strings.Contains(b, a) {
		return sideTheirs
	}
	return sideNone
}

func resultText(c model.Change) (string, bool) {
	switch {
	case c.Kind == model.KindUpdateBlock && c.Update != nil:
		return c.Update.After, true
	case c.Kind == model.KindInsertBlock && c.Block != nil:
		return c.Block.Text, true
	default:
		return "", false
	}
}
