package semantic

import (
	"sort"

	"github.com/xxxsen/mdld/internal/model"
)

// Diff compares two triple multisets grouped by (subject, predicate).
// Single-valued keys that changed yield one jsonld_update; keys with
// multiset semantics on either side yield per-value jsonld_add and
// jsonld_remove so list-valued properties never produce spurious
// updates. Identical (s,p,o) entries contribute nothing.
func Diff(oldTriples, newTriples []model.Triple) []model.Change {
	oldGroups := groupByKey(oldTriples)
	newGroups := groupByKey(newTriples)

	keys := map[string]struct{}{}
	for k := range oldGroups {
		keys[k] = struct{}{}
	}
	for k := range newGroups {
		keys[k] = struct{}{}
	}
	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	var changes []model.Change
	for _, key := range ordered {
		olds := oldGroups[key]
		news := newGroups[key]
		switch {
		case len(olds) == 0:
			for _, t := range news {
				changes = append(changes, addChange(t))
			}
		case len(news) == 0:
			for _, t := range olds {
				changes = append(changes, removeChange(t))
			}
		case len(olds) == 1 && len(news) == 1:
			if olds[0].ObjectKey() == news[0].ObjectKey() {
				continue
			}
			changes = append(changes, updateChange(olds[0], news[0]))
		default:
			changes = append(changes, multisetChanges(olds, news)...)
		}
	}
	return changes
}

func groupByKey(triples []model.Triple) map[string][]model.Triple {
	groups := map[string][]model.Triple{}
	for _, t := range triples {
		groups[t.Key()] = append(groups[t.Key()], t)
	}
	return groups
}

// multisetChanges computes the multiset difference of object values at
// one (subject, predicate) key.
func multisetChanges(olds, news []model.Triple) []model.Change {
	counts := map[string]int{}
	for _, t := range news {
		counts[t.ObjectKey()]++
	}
	var changes []model.Change
	for _, t := range olds {
		if counts[t.ObjectKey()] > 0 {
			counts[t.ObjectKey()]--
			continue
		}
		changes = append(changes, removeChange(t))
	}
	remaining := map[string]int{}
	for _, t := range olds {
		remaining[t.ObjectKey()]++
	}
	for _, t := range news {
		if remaining[t.ObjectKey()] > 0 {
			remaining[t.ObjectKey()]--
			continue
		}
		changes = append(changes, addChange(t))
	}
	return changes
}

func addChange(t model.Triple) model.Change {
	return model.Change{
		Kind: model.KindJSONLDAdd,
		Path: model.Path{Key: t.Key()},
		Triple: &model.TriplePayload{
			Subject:   t.Subject,
			Predicate: t.Predicate,
			Object:    t.Object,
			Datatype:  t.Datatype,
			Lang:      t.Lang,
		},
	}
}

func removeChange(t model.Triple) model.Change {
	return model.Change{
		Kind: model.KindJSONLDRemove,
		Path: model.Path{Key: t.Key()},
		Triple: &model.TriplePayload{
			Subject:   t.Subject,
			Predicate: t.Predicate,
			Object:    t.Object,
			Datatype:  t.Datatype,
			Lang:      t.Lang,
		},
	}
}

func updateChange(before, after model.Triple) model.Change {
	return model.Change{
		Kind: model.KindJSONLDUpdate,
		Path: model.Path{Key: before.Key()},
		Triple: &model.TriplePayload{
			Subject:   before.Subject,
			Predicate: before.Predicate,
			Datatype:  after.Datatype,
			Lang:      after.Lang,
			Before:    before.Object,
			After:     after.Object,
		},
	}
}
