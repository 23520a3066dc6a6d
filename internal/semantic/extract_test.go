package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mdld/internal/model"
	apperr "github.com/xxxsen/mdld/internal/pkg/errors"
	"github.com/xxxsen/mdld/internal/semantic"
)

func extract(t *testing.T, raw string, opts semantic.ExtractOptions) []model.Triple {
	t.Helper()
	triples, _, err := semantic.NewExtractor(nil).Extract(raw, opts)
	require.NoError(t, err)
	return triples
}

func findTriples(triples []model.Triple, subject, predicate string) []model.Triple {
	var out []model.Triple
	for _, t := range triples {
		if t.Subject == subject && t.Predicate == predicate {
			out = append(out, t)
		}
	}
	return out
}

const frontMatterDoc = `---
"@context":
  ex: "http://example.org/"
  "@vocab": "http://vocab.example.org/"
"@id": "ex:doc1"
"@type": "ex:Article"
title: Getting Started
tags:
  - go
  - diff
---

# Body
`

func TestExtractFrontMatter(t *testing.T) {
	triples := extract(t, frontMatterDoc, semantic.ExtractOptions{})

	types := findTriples(triples, "http://example.org/doc1", semantic.RDFType)
	require.Len(t, types, 1)
	require.Equal(t, "http://example.org/Article", types[0].Object)

	titles := findTriples(triples, "http://example.org/doc1", "http://vocab.example.org/title")
	require.Len(t, titles, 1)
	require.Equal(t, "Getting Started", titles[0].Object)

	tags := findTriples(triples, "http://example.org/doc1", "http://vocab.example.org/tags")
	require.Len(t, tags, 2)
}

func TestExtractJSONLDIsland(t *testing.T) {
	doc := "# Doc\n\n```json-ld\n{\"@context\": {\"ex\": \"http://example.org/\"}, \"@id\": \"ex:alice\", \"@type\": \"ex:Person\", \"ex:name\": \"Alice\"}\n```\n"
	triples := extract(t, doc, semantic.ExtractOptions{})

	names := findTriples(triples, "http://example.org/alice", "http://example.org/name")
	require.Len(t, names, 1)
	require.Equal(t, "Alice", names[0].Object)
}

func TestExtractMalformedIslandLaxAndStrict(t *testing.T) {
	doc := "```json-ld\n{not json\n```\n"
	triples := extract(t, doc, semantic.ExtractOptions{})
	require.Empty(t, triples)

	_, _, err := semantic.NewExtractor(nil).Extract(doc, semantic.ExtractOptions{Strict: true})
	require.ErrorIs(t, err, apperr.ErrParse)
}

func TestExtractHeadingAttributes(t *testing.T) {
	doc := "# Intro {@id=ex:intro, @type=ex:Section, weight=\"10\"^^xsd:integer}\n"
	triples := extract(t, doc, semantic.ExtractOptions{})

	weights := findTriples(triples, "ex:intro", "weight")
	require.Len(t, weights, 1)
	require.Equal(t, "10", weights[0].Object)
	require.Equal(t, "xsd:integer", weights[0].Datatype)

	types := findTriples(triples, "ex:intro", semantic.RDFType)
	require.Len(t, types, 1)
}

func TestExtractListItemAttributes(t *testing.T) {
	doc := "- Alice {@id=ex:alice, name=\"Alice\"@en}\n"
	triples := extract(t, doc, semantic.ExtractOptions{})

	names := findTriples(triples, "ex:alice", "name")
	require.Len(t, names, 1)
	require.Equal(t, "Alice", names[0].Object)
	require.Equal(t, "en", names[0].Lang)
}

func TestExtractPropertiesTable(t *testing.T) {
	doc := "| @id | @type | name | tags |\n| --- | --- | --- | --- |\n| ex:a | ex:Person | Alice | [\"x\",\"y\"] |\n"
	triples := extract(t, doc, semantic.ExtractOptions{})

	require.Len(t, findTriples(triples, "ex:a", semantic.RDFType), 1)
	require.Len(t, findTriples(triples, "ex:a", "name"), 1)
	require.Len(t, findTriples(triples, "ex:a", "tags"), 2)
}

func TestExtractShorthandLine(t *testing.T) {
	doc := "TRIPLE: ex:alice, knows, ex:bob\n"
	triples := extract(t, doc, semantic.ExtractOptions{})
	require.Len(t, triples, 1)
	require.Equal(t, "ex:alice", triples[0].Subject)
	require.Equal(t, "knows", triples[0].Predicate)
	require.Equal(t, "ex:bob", triples[0].Object)
}

func TestCachedExpander(t *testing.T) {
	cached, err := semantic.NewCachedExpander(semantic.PrefixExpander{}, 16)
	require.NoError(t, err)
	ctx := semantic.NewContext(map[string]string{"ex": "http://example.org/"}, "")

	iri, err := cached.Expand("ex:a", ctx)
	require.NoError(t, err)
	require.Equal(t, "http://example.org/a", iri)

	again, err := cached.Expand("ex:a", ctx)
	require.NoError(t, err)
	require.Equal(t, iri, again)

	_, err = cached.Expand("nope:a", ctx)
	require.Error(t, err)
}
