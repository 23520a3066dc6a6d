package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/mdld/internal/config"
	"github.com/xxxsen/mdld/internal/handler"
	"github.com/xxxsen/mdld/internal/middleware"
	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/semantic"
	"github.com/xxxsen/mdld/internal/service"
	"github.com/xxxsen/mdld/internal/stream"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdld",
		Short: "diff, merge and stream engine for markdown documents with embedded semantics",
	}
	rootCmd.AddCommand(newDiffCmd(), newMergeCmd(), newEmitCmd(), newApplyCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("command failed", zap.Error(err))
	}
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func readPatch(path string) (*model.Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var patch model.Patch
	if err := json.Unmarshal(data, &patch); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &patch, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func chunkStrategy(name string) (stream.Strategy, error) {
	switch name {
	case "", "headings":
		return stream.StrategyHeadings, nil
	case "max_paragraphs":
		return stream.StrategyMaxParagraphs, nil
	default:
		return "", fmt.Errorf("unknown chunk strategy %q", name)
	}
}

func newDiffCmd() *cobra.Command {
	var (
		fromRev    string
		toRev      string
		similarity float64
		strict     bool
		subject    string
	)
	cmd := &cobra.Command{
		Use:   "diff <old.md> <new.md>",
		Short: "compute the structural and semantic patch between two documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldText, err := readDocument(args[0])
			if err != nil {
				return err
			}
			newText, err := readDocument(args[1])
			if err != nil {
				return err
			}
			svc := service.NewDiffService(nil, 0, 0)
			patch, err := svc.Diff(cmd.Context(), oldText, newText, service.DiffOptions{
				FromRev:             fromRev,
				ToRev:               toRev,
				SimilarityThreshold: similarity,
				Strict:              strict,
				Subject:             subject,
			})
			if err != nil {
				return err
			}
			return printJSON(patch)
		},
	}
	cmd.Flags().StringVar(&fromRev, "from-rev", "", "revision label of the old document")
	cmd.Flags().StringVar(&toRev, "to-rev", "", "revision label of the new document")
	cmd.Flags().Float64Var(&similarity, "similarity", 0, "update/replace similarity threshold, 0 for default")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed semantic annotations instead of skipping them")
	cmd.Flags().StringVar(&subject, "subject", "", "default subject for document-level triples")
	return cmd
}

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <base.json> <ours.json> <theirs.json>",
		Short: "three-way merge two patches sharing a base revision",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := readPatch(args[0])
			if err != nil {
				return err
			}
			ours, err := readPatch(args[1])
			if err != nil {
				return err
			}
			theirs, err := readPatch(args[2])
			if err != nil {
				return err
			}
			svc := service.NewMergeService()
			merged, conflicts := svc.ThreeWay(cmd.Context(), base, ours, theirs, service.MergeOptions{})
			return printJSON(map[string]interface{}{
				"merged":    merged,
				"conflicts": conflicts,
			})
		},
	}
	return cmd
}

func newEmitCmd() *cobra.Command {
	var (
		strategy      string
		maxParagraphs int
	)
	cmd := &cobra.Command{
		Use:   "emit <old.md> <new.md>",
		Short: "emit the stable-chunk event stream carrying old into new",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldText, err := readDocument(args[0])
			if err != nil {
				return err
			}
			newText, err := readDocument(args[1])
			if err != nil {
				return err
			}
			st, err := chunkStrategy(strategy)
			if err != nil {
				return err
			}
			svc := service.NewStreamService()
			events := svc.Emit(cmd.Context(), oldText, newText, service.StreamOptions{
				Strategy:      st,
				MaxParagraphs: maxParagraphs,
			})
			return printJSON(events)
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "headings", "chunking strategy: headings or max_paragraphs")
	cmd.Flags().IntVar(&maxParagraphs, "max-paragraphs", 0, "paragraphs per chunk for max_paragraphs, 0 for default")
	return cmd
}

func newApplyCmd() *cobra.Command {
	var (
		strategy      string
		maxParagraphs int
	)
	cmd := &cobra.Command{
		Use:   "apply <old.md> <events.json>",
		Short: "replay an event stream over the old document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldText, err := readDocument(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			var events []model.StreamEvent
			if err := json.Unmarshal(data, &events); err != nil {
				return fmt.Errorf("decode %s: %w", args[1], err)
			}
			st, err := chunkStrategy(strategy)
			if err != nil {
				return err
			}
			svc := service.NewStreamService()
			result, err := svc.ApplyEvents(cmd.Context(), oldText, events, service.StreamOptions{
				Strategy:      st,
				MaxParagraphs: maxParagraphs,
			})
			if err != nil {
				return err
			}
			_, err = os.Stdout.WriteString(result)
			return err
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "headings", "chunking strategy: headings or max_paragraphs")
	cmd.Flags().IntVar(&maxParagraphs, "max-paragraphs", 0, "paragraphs per chunk for max_paragraphs, 0 for default")
	return cmd
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the mdld http server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	return cmd
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.Int("max_blocks", cfg.Diff.MaxBlocks),
		zap.Int("max_tokens", cfg.Diff.MaxTokens),
	)

	expander, err := semantic.NewCachedExpander(semantic.PrefixExpander{}, cfg.Diff.ExpanderCacheSize)
	if err != nil {
		return fmt.Errorf("init expander cache: %w", err)
	}
	diffService := service.NewDiffService(expander, cfg.Diff.MaxBlocks, cfg.Diff.MaxTokens)
	mergeService := service.NewMergeService()
	streamService := service.NewStreamService()

	deps := handler.RouterDeps{
		Diff:   handler.NewDiffHandler(diffService),
		Merge:  handler.NewMergeHandler(mergeService),
		Stream: handler.NewStreamHandler(streamService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
