package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/service"
	"github.com/xxxsen/mdld/internal/stream"
)

type recordingObserver struct {
	changes   []model.Change
	conflicts []model.Conflict
	events    []model.StreamEvent
}

func (r *recordingObserver) OnChange(c model.Change)      { r.changes = append(r.changes, c) }
func (r *recordingObserver) OnConflict(c model.Conflict)  { r.conflicts = append(r.conflicts, c) }
func (r *recordingObserver) OnEvent(ev model.StreamEvent) { r.events = append(r.events, ev) }

func TestDiffIdempotence(t *testing.T) {
	svc := service.NewDiffService(nil, 0, 0)
	for _, text := range []string{"", "# T\n\nhello world\n", "plain\n\ntext\n"} {
		patch, err := svc.Diff(context.Background(), text, text, service.DiffOptions{})
		require.NoError(t, err)
		require.Empty(t, patch.Changes)
		require.Equal(t, patch.FromRev, patch.ToRev)
	}
}

func TestDiffStructuralAndSemanticChanges(t *testing.T) {
	svc := service.NewDiffService(nil, 0, 0)
	oldText := "# T\n\nhello\n\nTRIPLE: ex:a, name, Alice\n"
	newText := "# T\n\nhello\n\nTRIPLE: ex:a, name, Bob\n\nworld\n"

	obs := &recordingObserver{}
	patch, err := svc.Diff(context.Background(), oldText, newText, service.DiffOptions{Observer: obs})
	require.NoError(t, err)

	kinds := map[model.ChangeKind]int{}
	for _, c := range patch.Changes {
		kinds[c.Kind]++
	}
	require.Equal(t, 1, kinds[model.KindUpdateBlock])
	require.Equal(t, 1, kinds[model.KindInsertBlock])
	require.Equal(t, 1, kinds[model.KindJSONLDUpdate])
	require.Len(t, obs.changes, len(patch.Changes))
}

func TestDiffSemanticStability(t *testing.T) {
	svc := service.NewDiffService(nil, 0, 0)
	text := "TRIPLE: ex:a, name, Alice\n"
	patch, err := svc.Diff(context.Background(), text, text+"\nextra paragraph\n", service.DiffOptions{})
	require.NoError(t, err)
	for _, c := range patch.Changes {
		require.False(t, c.IsSemantic())
	}
}

func TestDiffCustomRevsAndMeta(t *testing.T) {
	svc := service.NewDiffService(nil, 0, 0)
	patch, err := svc.Diff(context.Background(), "a", "b", service.DiffOptions{
		FromRev: "rev-1",
		ToRev:   "rev-2",
		Meta:    map[string]string{"source": "unit"},
	})
	require.NoError(t, err)
	require.Equal(t, "rev-1", patch.FromRev)
	require.Equal(t, "rev-2", patch.ToRev)
	require.Equal(t, "unit", patch.Meta["source"])
}

func TestStreamServiceRoundTrip(t *testing.T) {
	svc := service.NewStreamService()
	oldText := "# A\n\none\n\n# B\n\ntwo\n"
	newText := "# B\n\ntwo\n\n# A\n\none changed\n"

	obs := &recordingObserver{}
	events := svc.Emit(context.Background(), oldText, newText, service.StreamOptions{Observer: obs})
	require.Len(t, obs.events, len(events))

	result, err := svc.ApplyEvents(context.Background(), oldText, events, service.StreamOptions{})
	require.NoError(t, err)
	require.Equal(t, newText, result)
}

func TestStreamServiceStrategyMismatch(t *testing.T) {
	svc := service.NewStreamService()
	oldText := "# A\n\none\n\n# B\n\ntwo\n"
	newText := "# A\n\none\n\n# B\n\ntwo changed\n"

	events := svc.Emit(context.Background(), oldText, newText, service.StreamOptions{})

	// The unchanged first section is never patched, so a receiver chunking
	// with a different strategy cannot find it locally.
	_, err := svc.ApplyEvents(context.Background(), oldText, events, service.StreamOptions{
		Strategy: stream.StrategyMaxParagraphs,
	})
	require.Error(t, err)
}

func TestMergeServiceReportsConflicts(t *testing.T) {
	diffSvc := service.NewDiffService(nil, 0, 0)
	mergeSvc := service.NewMergeService()

	base := "# T\n\nshared paragraph text\n"
	ours, err := diffSvc.Diff(context.Background(), base, "# T\n\nshared paragraph text ours\n", service.DiffOptions{})
	require.NoError(t, err)
	theirs, err := diffSvc.Diff(context.Background(), base, "# T\n\nshared paragraph text theirs\n", service.DiffOptions{})
	require.NoError(t, err)

	basePatch := &model.Patch{ToRev: ours.FromRev}
	obs := &recordingObserver{}
	merged, conflicts := mergeSvc.ThreeWay(context.Background(), basePatch, ours, theirs, service.MergeOptions{Observer: obs})
	require.Nil(t, merged)
	require.NotEmpty(t, conflicts)
	require.Len(t, obs.conflicts, len(conflicts))
}
