package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mdld/internal/blockdiff"
	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/pkg/hashutil"
	"github.com/xxxsen/mdld/internal/segment"
	"github.com/xxxsen/mdld/internal/semantic"
)

type DiffService struct {
	extractor *semantic.Extractor
	maxBlocks int
	maxTokens int
}

func NewDiffService(expander semantic.Expander, maxBlocks, maxTokens int) *DiffService {
	return &DiffService{
		extractor: semantic.NewExtractor(expander),
		maxBlocks: maxBlocks,
		maxTokens: maxTokens,
	}
}

type DiffOptions struct {
	FromRev             string
	ToRev               string
	SimilarityThreshold float64
	Meta                map[string]string
	Strict              bool
	Subject             string
	Observer            Observer
}

// Diff computes the full patch between two document texts: structural
// block changes first, semantic triple changes after. Revisions
// default to the content hash of each input, giving the patch
// content-addressed identity.
func (s *DiffService) Diff(ctx context.Context, oldText, newText string, opts DiffOptions) (*model.Patch, error) {
	logger := logutil.GetLogger(ctx)
	obs := observerOrNop(opts.Observer)

	oldBlocks := segment.Segment(oldText)
	newBlocks := segment.Segment(newText)
	blockChanges, err := blockdiff.Diff(oldBlocks, newBlocks, blockdiff.Options{
		SimilarityThreshold: opts.SimilarityThreshold,
		MaxBlocks:           s.maxBlocks,
		MaxTokens:           s.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	extractOpts := semantic.ExtractOptions{Strict: opts.Strict, Subject: opts.Subject}
	oldTriples, _, err := s.extractor.Extract(oldText, extractOpts)
	if err != nil {
		return nil, err
	}
	newTriples, _, err := s.extractor.Extract(newText, extractOpts)
	if err != nil {
		return nil, err
	}
	semanticChanges := semantic.Diff(oldTriples, newTriples)

	changes := make([]model.Change, 0, len(blockChanges)+len(semanticChanges))
	changes = append(changes, blockChanges...)
	changes = append(changes, semanticChanges...)
	for _, c := range changes {
		obs.OnChange(c)
	}

	patch := &model.Patch{
		FromRev: opts.FromRev,
		ToRev:   opts.ToRev,
		Changes: changes,
		Meta:    opts.Meta,
	}
	if patch.FromRev == "" {
		patch.FromRev = hashutil.Sum(oldText)
	}
	if patch.ToRev == "" {
		patch.ToRev = hashutil.Sum(newText)
	}

	logger.Debug("diff computed",
		zap.Int("old_blocks", len(oldBlocks)),
		zap.Int("new_blocks", len(newBlocks)),
		zap.Int("block_changes", len(blockChanges)),
		zap.Int("semantic_changes", len(semanticChanges)),
		zap.String("from_rev", patch.FromRev),
		zap.String("to_rev", patch.ToRev),
	)
	return patch, nil
}
