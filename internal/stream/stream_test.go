package stream_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mdld/internal/model"
	apperr "github.com/xxxsen/mdld/internal/pkg/errors"
	"github.com/xxxsen/mdld/internal/stream"
)

const docA = "# One\n\nfirst section body\n\n# Two\n\nsecond section body\n"
const docB = "# Two\n\nsecond section body\n\n# One\n\nfirst section body, edited\n"

func TestChunkDeterminism(t *testing.T) {
	first := stream.Chunk(docA, stream.Options{})
	second := stream.Chunk(docA, stream.Options{})
	require.Equal(t, first, second)
	for i, c := range first {
		require.Equal(t, i, c.Ordinal)
		require.NotEmpty(t, c.StableID)
		require.Len(t, c.StableID, 12)
	}
}

func TestChunkContentsPartitionText(t *testing.T) {
	for _, opts := range []stream.Options{
		{Strategy: stream.StrategyHeadings},
		{Strategy: stream.StrategyMaxParagraphs, MaxParagraphs: 2},
	} {
		var rebuilt string
		for _, c := range stream.Chunk(docA, opts) {
			rebuilt += c.Content
		}
		require.Equal(t, docA, rebuilt)
	}
}

func TestStableIDSurvivesMove(t *testing.T) {
	moved := "# Two\n\nsecond section body\n\n# One\n\nfirst section body\n"
	idsOf := func(text string) map[string][]string {
		out := map[string][]string{}
		for _, c := range stream.Chunk(text, stream.Options{}) {
			out[c.StableID] = c.HeadingPath
		}
		return out
	}
	require.Equal(t, idsOf(docA), idsOf(moved))
}

func TestEmitApplyRoundTrip(t *testing.T) {
	for _, opts := range []stream.Options{
		{Strategy: stream.StrategyHeadings},
		{Strategy: stream.StrategyMaxParagraphs, MaxParagraphs: 1},
	} {
		events := stream.Emit(docA, docB, opts)
		require.Equal(t, model.EventInitSnapshot, events[0].Type)
		require.Equal(t, model.EventComplete, events[len(events)-1].Type)

		result, err := stream.ApplyEvents(docA, events, opts)
		require.NoError(t, err)
		require.Equal(t, docB, result)
	}
}

func TestEmitMoveNeedsNoPatch(t *testing.T) {
	// Both sections end with a blank line, so swapping them preserves
	// each chunk's exact content.
	base := "# One\n\nfirst section body\n\n# Two\n\nsecond section body\n\n"
	moved := "# Two\n\nsecond section body\n\n# One\n\nfirst section body\n\n"
	events := stream.Emit(base, moved, stream.Options{})
	// init + complete only: both chunks already exist under their ids.
	require.Len(t, events, 2)

	result, err := stream.ApplyEvents(base, events, stream.Options{})
	require.NoError(t, err)
	require.Equal(t, moved, result)
}

func TestApplyOutOfOrderEvents(t *testing.T) {
	events := stream.Emit(docA, docB, stream.Options{})
	reordered := make([]model.StreamEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		reordered = append(reordered, events[i])
	}
	result, err := stream.ApplyEvents(docA, reordered, stream.Options{})
	require.NoError(t, err)
	require.Equal(t, docB, result)
}

func TestEmitDependenciesOnNewChunks(t *testing.T) {
	newText := docA + "\n# Three\n\nsee [three](#three) and [four](#four)\n\n# Four\n\nfourth body\n"
	events := stream.Emit(docA, newText, stream.Options{})

	var threeID, fourID string
	var threeDeps []string
	for _, ev := range events {
		if ev.Type != model.EventChunkPatch {
			continue
		}
		if ev.Chunk != nil && len(ev.Meta.Dependencies) > 0 {
			threeID = ev.Meta.StableID
			threeDeps = ev.Meta.Dependencies
		} else {
			fourID = ev.Meta.StableID
		}
	}
	require.NotEmpty(t, threeID)
	require.Equal(t, []string{fourID}, threeDeps)
}

func TestApplyUnsatisfiableDependencyFails(t *testing.T) {
	events := []model.StreamEvent{
		{
			Type:     model.EventInitSnapshot,
			Snapshot: &model.SnapshotPayload{Manifest: []string{"abc"}},
		},
		{
			Type:  model.EventChunkPatch,
			Meta:  model.EventMeta{StableID: "abc", Dependencies: []string{"never-arrives"}},
			Chunk: &model.ChunkPayload{Content: "text\n"},
		},
		{Type: model.EventComplete},
	}
	_, err := stream.ApplyEvents("", events, stream.Options{})
	require.ErrorIs(t, err, apperr.ErrDependencyUnsatisfied)
}

func TestApplyMissingChunkDistinctError(t *testing.T) {
	events := []model.StreamEvent{
		{
			Type:     model.EventInitSnapshot,
			Snapshot: &model.SnapshotPayload{Manifest: []string{"never-sent"}},
		},
		{Type: model.EventComplete},
	}
	_, err := stream.ApplyEvents("", events, stream.Options{})
	require.ErrorIs(t, err, apperr.ErrChunkMissing)
}

func TestApplyWithoutSnapshotFails(t *testing.T) {
	_, err := stream.ApplyEvents("", []model.StreamEvent{{Type: model.EventComplete}}, stream.Options{})
	require.ErrorIs(t, err, apperr.ErrSnapshotMissing)
}
