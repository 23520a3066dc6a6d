package semantic

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/xxxsen/mdld/internal/pkg/hashutil"
)

// Context carries the CURIE expansion mappings of one document,
// assembled from its @context block plus an optional @vocab fallback.
type Context struct {
	Prefixes    map[string]string
	Vocab       string
	fingerprint string
}

func NewContext(prefixes map[string]string, vocab string) Context {
	if prefixes == nil {
		prefixes = map[string]string{}
	}
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(vocab)
	for _, k := range keys {
		sb.WriteString("\x00")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(prefixes[k])
	}
	return Context{
		Prefixes:    prefixes,
		Vocab:       vocab,
		fingerprint: hashutil.Sum(sb.String())[:16],
	}
}

// Expander resolves a short term to a full IRI. The engine treats it
// as an opaque injected capability; expansion failure degrades the
// term to a literal instead of aborting extraction.
type Expander interface {
	Expand(term string, ctx Context) (string, error)
}

// PrefixExpander is the built-in Expander: "prefix:suffix" resolves
// through the context prefixes, bare terms through @vocab, and
// anything already looking like an absolute IRI passes through.
type PrefixExpander struct{}

func (PrefixExpander) Expand(term string, ctx Context) (string, error) {
	if term == "" {
		return "", fmt.Errorf("empty term")
	}
	if strings.Contains(term, "://") || strings.HasPrefix(term, "urn:") || strings.HasPrefix(term, "_:") {
		return term, nil
	}
	if idx := strings.Index(term, ":"); idx > 0 {
		prefix, suffix := term[:idx], term[idx+1:]
		if base, ok := ctx.Prefixes[prefix]; ok {
			return base + suffix, nil
		}
		return "", fmt.Errorf("unknown prefix %q", prefix)
	}
	if base, ok := ctx.Prefixes[term]; ok {
		return base, nil
	}
	if ctx.Vocab != "" {
		return ctx.Vocab + term, nil
	}
	return "", fmt.Errorf("no vocab for term %q", term)
}

// CachedExpander memoizes another Expander behind an LRU keyed by
// (context fingerprint, term). Safe for concurrent use.
type CachedExpander struct {
	inner Expander
	cache *lru.Cache[string, string]
}

func NewCachedExpander(inner Expander, size int) (*CachedExpander, error) {
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &CachedExpander{inner: inner, cache: cache}, nil
}

func (e *CachedExpander) Expand(term string, ctx Context) (string, error) {
	key := ctx.fingerprint + "\x00" + term
	if iri, ok := e.cache.Get(key); ok {
		return iri, nil
	}
	iri, err := e.inner.Expand(term, ctx)
	if err != nil {
		return "", err
	}
	e.cache.Add(key, iri)
	return iri, nil
}
