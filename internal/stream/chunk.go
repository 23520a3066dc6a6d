// Package stream implements the stable-chunk streaming protocol:
// documents split into chunks with content-addressed ids, changes
// travel as events, and replay tolerates out-of-order delivery.
package stream

import (
	"regexp"
	"strings"

	"github.com/xxxsen/mdld/internal/model"
	"github.com/xxxsen/mdld/internal/pkg/hashutil"
)

type Strategy string

const (
	StrategyHeadings      Strategy = "headings"
	StrategyMaxParagraphs Strategy = "max_paragraphs"
)

const DefaultMaxParagraphs = 5

// Headings deeper than this nest into their parent chunk instead of
// starting a new one.
const headingSplitLevel = 2

type Options struct {
	Strategy      Strategy
	MaxParagraphs int
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = StrategyHeadings
	}
	if o.MaxParagraphs <= 0 {
		o.MaxParagraphs = DefaultMaxParagraphs
	}
	return o
}

var (
	headingLineRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	attrSuffixRe  = regexp.MustCompile(`\s*\{[^}]*\}\s*$`)
)

// Chunk splits text so that the concatenation of all chunk contents
// reproduces it byte for byte. Chunking the same document twice yields
// identical (ordinal, stable_id) pairs in the same order.
func Chunk(text string, opts Options) []model.Chunk {
	opts = opts.withDefaults()
	if text == "" {
		return nil
	}
	switch opts.Strategy {
	case StrategyMaxParagraphs:
		return chunkByParagraphs(text, opts.MaxParagraphs)
	default:
		return chunkByHeadings(text)
	}
}

func chunkByHeadings(text string) []model.Chunk {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var chunks []model.Chunk
	var current []string
	var currentPath []string
	var lastTop string
	inFence := false

	flush := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, "")
		chunks = append(chunks, model.Chunk{
			Ordinal:     len(chunks),
			Content:     content,
			StableID:    hashutil.StableChunkID(currentPath, content),
			HeadingPath: currentPath,
		})
		current = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\n")
		if isFenceLine(trimmed) {
			inFence = !inFence
		}
		if !inFence {
			if m := headingLineRe.FindStringSubmatch(trimmed); m != nil {
				level := len(m[1])
				if level <= headingSplitLevel {
					flush()
					heading := headingText(m[2])
					if level == 1 {
						lastTop = heading
						currentPath = []string{heading}
					} else if lastTop != "" {
						currentPath = []string{lastTop, heading}
					} else {
						currentPath = []string{heading}
					}
				}
			}
		}
		current = append(current, line)
	}
	flush()
	return chunks
}

func chunkByParagraphs(text string, size int) []model.Chunk {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	// A paragraph run is a block of non-blank lines plus the blank
	// lines that follow it, so runs partition the text exactly.
	var runs []string
	var run []string
	inBody := false
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if !blank && inBody && len(run) > 0 && strings.TrimSpace(run[len(run)-1]) == "" {
			runs = append(runs, strings.Join(run, ""))
			run = nil
		}
		if !blank {
			inBody = true
		}
		run = append(run, line)
	}
	if len(run) > 0 {
		runs = append(runs, strings.Join(run, ""))
	}

	var chunks []model.Chunk
	for start := 0; start < len(runs); start += size {
		end := start + size
		if end > len(runs) {
			end = len(runs)
		}
		content := strings.Join(runs[start:end], "")
		chunks = append(chunks, model.Chunk{
			Ordinal:  len(chunks),
			Content:  content,
			StableID: hashutil.StableChunkID(nil, content),
		})
	}
	return chunks
}

func isFenceLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// headingText strips a trailing attribute object so semantic markers
// never perturb chunk identity.
func headingText(text string) string {
	return strings.TrimSpace(attrSuffixRe.ReplaceAllString(text, ""))
}
