package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/stream"
)

type StreamService struct{}

func NewStreamService() *StreamService {
	return &StreamService{}
}

type StreamOptions struct {
	Strategy      stream.Strategy
	MaxParagraphs int
	Observer      Observer
}

func (o StreamOptions) chunkOptions() stream.Options {
	return stream.Options{Strategy: o.Strategy, MaxParagraphs: o.MaxParagraphs}
}

// Emit produces the stable-chunk event stream carrying old into new.
func (s *StreamService) Emit(ctx context.Context, oldText, newText string, opts StreamOptions) []model.StreamEvent {
	obs := observerOrNop(opts.Observer)
	events := stream.Emit(oldText, newText, opts.chunkOptions())
	for _, ev := range events {
		obs.OnEvent(ev)
	}
	logutil.GetLogger(ctx).Debug("stream emitted",
		zap.String("strategy", string(opts.chunkOptions().Strategy)),
		zap.Int("events", len(events)),
	)
	return events
}

// ApplyEvents replays a stream over the old text, buffering patches
// whose dependencies have not arrived yet.
func (s *StreamService) ApplyEvents(ctx context.Context, oldText string, events []model.StreamEvent, opts StreamOptions) (string, error) {
	result, err := stream.ApplyEvents(oldText, events, opts.chunkOptions())
	if err != nil {
		logutil.GetLogger(ctx).Error("stream replay failed", zap.Error(err))
		return "", err
	}
	logutil.GetLogger(ctx).Debug("stream replayed", zap.Int("events", len(events)), zap.Int("result_bytes", len(result)))
	return result, nil
}
