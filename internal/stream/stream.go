package stream

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xxxsen/mdld/internal/model"
	apperr "github.com/xxxsen/mdld/internal/pkg/errors"
	"github.com/xxxsen/mdld/internal/pkg/hashutil"
)

var anchorLinkRe = regexp.MustCompile(`\]\(#([^)\s]+)\)`)

// Emit produces the event stream that carries old into new. The first
// event is the init snapshot with the target manifest, one chunk_patch
// follows per newly introduced chunk (a moved chunk keeps its id and
// needs no patch), and the stream closes with a complete event
// carrying the target checksum.
func Emit(oldText, newText string, opts Options) []model.StreamEvent {
	oldChunks := Chunk(oldText, opts)
	newChunks := Chunk(newText, opts)

	oldByID := map[string]string{}
	for _, c := range oldChunks {
		oldByID[c.StableID] = c.Content
	}

	// A patch is needed when the exact content under an id is not
	// already held by the consumer; a pure move ships no patch at all.
	needPatch := func(c model.Chunk) bool {
		held, ok := oldByID[c.StableID]
		return !ok || held != c.Content
	}

	manifest := make([]string, 0, len(newChunks))
	slugToID := map[string]string{}
	for _, c := range newChunks {
		manifest = append(manifest, c.StableID)
		if _, existed := oldByID[c.StableID]; existed {
			continue
		}
		if len(c.HeadingPath) > 0 {
			slug := hashutil.HeadingSlug(c.HeadingPath[len(c.HeadingPath)-1])
			if slug != "" {
				slugToID[slug] = c.StableID
			}
		}
	}

	events := []model.StreamEvent{{
		Type: model.EventInitSnapshot,
		Meta: model.EventMeta{StableID: hashutil.Sum(oldText)},
		Snapshot: &model.SnapshotPayload{
			BaseRev:  hashutil.Sum(oldText),
			Manifest: manifest,
		},
	}}
	for _, c := range newChunks {
		if !needPatch(c) {
			continue
		}
		events = append(events, model.StreamEvent{
			Type: model.EventChunkPatch,
			Meta: model.EventMeta{
				StableID:     c.StableID,
				Dependencies: dependencies(c, slugToID),
			},
			Chunk: &model.ChunkPayload{Ordinal: c.Ordinal, Content: c.Content},
		})
	}
	events = append(events, model.StreamEvent{
		Type: model.EventComplete,
		Meta: model.EventMeta{StableID: hashutil.Sum(newText)},
	})
	return events
}

// dependencies lists the ids of other newly introduced chunks whose
// heading anchor the content links to.
func dependencies(c model.Chunk, slugToID map[string]string) []string {
	var deps []string
	seen := map[string]struct{}{}
	for _, m := range anchorLinkRe.FindAllStringSubmatch(c.Content, -1) {
		id, ok := slugToID[m[1]]
		if !ok || id == c.StableID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		deps = append(deps, id)
	}
	return deps
}

// ApplyEvents replays a stream against the old text. Events may arrive
// in any order: a chunk_patch whose dependencies are not yet applied
// is buffered and retried after every successful application. Running
// out of events with a non-empty buffer is a hard failure, distinct
// from a manifest chunk whose patch never arrived.
func ApplyEvents(oldText string, events []model.StreamEvent, opts Options) (string, error) {
	store := map[string]string{}
	for _, c := range Chunk(oldText, opts) {
		store[c.StableID] = c.Content
	}

	var manifest []string
	haveSnapshot := false
	expected := ""

	satisfied := func(ev model.StreamEvent) bool {
		for _, dep := range ev.Meta.Dependencies {
			if _, ok := store[dep]; !ok {
				return false
			}
		}
		return true
	}

	var buffer []model.StreamEvent
	apply := func(ev model.StreamEvent) {
		store[ev.Meta.StableID] = ev.Chunk.Content
	}
	drain := func() {
		for {
			progressed := false
			remaining := buffer[:0]
			for _, ev := range buffer {
				if satisfied(ev) {
					apply(ev)
					progressed = true
					continue
				}
				remaining = append(remaining, ev)
			}
			buffer = remaining
			if !progressed {
				return
			}
		}
	}

	for _, ev := range events {
		switch ev.Type {
		case model.EventInitSnapshot:
			if ev.Snapshot == nil {
				return "", fmt.Errorf("%w: snapshot payload absent", apperr.ErrInvalid)
			}
			manifest = ev.Snapshot.Manifest
			haveSnapshot = true
		case model.EventChunkPatch:
			if ev.Chunk == nil {
				return "", fmt.Errorf("%w: chunk payload absent", apperr.ErrInvalid)
			}
			if satisfied(ev) {
				apply(ev)
				drain()
				continue
			}
			buffer = append(buffer, ev)
		case model.EventComplete:
			expected = ev.Meta.StableID
		default:
			return "", fmt.Errorf("%w: unknown event type %q", apperr.ErrInvalid, ev.Type)
		}
	}

	if len(buffer) > 0 {
		ids := make([]string, 0, len(buffer))
		for _, ev := range buffer {
			ids = append(ids, ev.Meta.StableID)
		}
		return "", fmt.Errorf("%w: %s", apperr.ErrDependencyUnsatisfied, strings.Join(ids, ", "))
	}
	if !haveSnapshot {
		return "", apperr.ErrSnapshotMissing
	}

	var sb strings.Builder
	for _, id := range manifest {
		content, ok := store[id]
		if !ok {
			return "", fmt.Errorf("%w: %s", apperr.ErrChunkMissing, id)
		}
		sb.WriteString(content)
	}
	result := sb.String()
	if expected != "" && hashutil.Sum(result) != expected {
		return "", apperr.ErrChecksumMismatch
	}
	return result, nil
}
