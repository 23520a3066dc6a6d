package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mdld/internal/merge"
	"github.com/xxxsen/mdld/internal/model"
)

type MergeService struct{}

func NewMergeService() *MergeService {
	return &MergeService{}
}

type MergeOptions struct {
	Observer Observer
}

// ThreeWay reconciles ours and theirs against base. A nil merged patch
// with conflicts is a normal outcome callers must branch on, never an
// error. Superset resolutions can discard non-nested edits, so each
// one is logged at warn level.
func (s *MergeService) ThreeWay(ctx context.Context, base, ours, theirs *model.Patch, opts MergeOptions) (*model.Patch, []model.Conflict) {
	logger := logutil.GetLogger(ctx)
	obs := observerOrNop(opts.Observer)

	merged, conflicts := merge.ThreeWay(base, ours, theirs)
	unresolved := 0
	for _, c := range conflicts {
		obs.OnConflict(c)
		switch c.Resolution {
		case model.ResolutionSuperset:
			logger.Warn("conflict resolved by superset heuristic, non-nested edits may be lost",
				zap.String("reason", string(c.Reason)),
				zap.Ints("path", c.Path.Blocks),
				zap.String("key", c.Path.Key),
			)
		case model.ResolutionNone:
			unresolved++
		}
	}
	logger.Debug("three-way merge finished",
		zap.Int("conflicts", len(conflicts)),
		zap.Int("unresolved", unresolved),
		zap.Bool("merged", merged != nil),
	)
	return merged, conflicts
}
