package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	Diff          DiffConfig       `json:"diff"`
	Stream        StreamConfig     `json:"stream"`
}

type DiffConfig struct {
	MaxBlocks           int     `json:"max_blocks"`
	MaxTokens           int     `json:"max_tokens"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	ExpanderCacheSize   int     `json:"expander_cache_size"`
}

type StreamConfig struct {
	Strategy      string `json:"strategy"`
	MaxParagraphs int    `json:"max_paragraphs"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Diff.MaxBlocks < 0 || cfg.Diff.MaxTokens < 0 {
		return nil, fmt.Errorf("diff limits must not be negative")
	}
	if cfg.Diff.SimilarityThreshold < 0 || cfg.Diff.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("diff.similarity_threshold must be within [0,1]")
	}
	switch cfg.Stream.Strategy {
	case "", "headings", "max_paragraphs":
	default:
		return nil, fmt.Errorf("stream.strategy must be headings or max_paragraphs")
	}
	if cfg.Stream.MaxParagraphs < 0 {
		return nil, fmt.Errorf("stream.max_paragraphs must not be negative")
	}
	return &cfg, nil
}
