// Package semantic extracts subject-predicate-object triples from the
// semantic carriers of a document (front matter, json-ld islands,
// inline attribute objects, properties tables, shorthand lines) and
// diffs the resulting triple multisets.
package semantic

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/xxxsen/mdld/internal/model"
	apperr "github.com/xxxsen/mdld/internal/pkg/errors"
	"github.com/xxxsen/mdld/internal/segment"
)

type ExtractOptions struct {
	// Strict surfaces the first malformed semantic island as ErrParse;
	// the default lax mode skips it and keeps extracting.
	Strict bool
	// Subject overrides the default document subject.
	Subject string
}

type Extractor struct {
	expander Expander
}

func NewExtractor(expander Expander) *Extractor {
	if expander == nil {
		expander = PrefixExpander{}
	}
	return &Extractor{expander: expander}
}

var (
	trailingAttrRe = regexp.MustCompile(`\s*\{([^}]+)\}\s*$`)
	linkAttrRe     = regexp.MustCompile(`!?\[[^\]]*\]\(([^)]+)\)\{([^}]*)\}`)
	shorthandRe    = regexp.MustCompile(`^([A-Z][A-Z0-9_]+):\s*([^,]+),\s*([^,]+),\s*(.+)$`)
	frontMatterRe  = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n?`)
)

// Extract runs every strategy in order and merges their triples. The
// returned Context is the expansion context assembled from the front
// matter, available to callers for further expansion work.
func (e *Extractor) Extract(raw string, opts ExtractOptions) ([]model.Triple, Context, error) {
	run := &extractRun{
		expander: e.expander,
		ctx:      NewContext(nil, ""),
		subject:  DefaultSubject,
		strict:   opts.Strict,
	}
	if opts.Subject != "" {
		run.subject = opts.Subject
	}

	body, err := run.frontMatter(raw)
	if err != nil {
		return nil, run.ctx, err
	}
	blocks := segment.Segment(body)
	if err := run.islands(blocks); err != nil {
		return nil, run.ctx, err
	}
	if err := run.headingAttrs(blocks); err != nil {
		return nil, run.ctx, err
	}
	if err := run.linkAttrs(body); err != nil {
		return nil, run.ctx, err
	}
	if err := run.listItemAttrs(blocks); err != nil {
		return nil, run.ctx, err
	}
	if err := run.propertiesTables(body); err != nil {
		return nil, run.ctx, err
	}
	run.shorthandLines(blocks)
	return run.out, run.ctx, nil
}

type extractRun struct {
	expander Expander
	ctx      Context
	subject  string
	strict   bool
	out      []model.Triple
}

func (r *extractRun) fail(section string, err error) error {
	if r.strict {
		return fmt.Errorf("%w: %s: %v", apperr.ErrParse, section, err)
	}
	return nil
}

// expandOr resolves a term through the injected expander, falling back
// to the raw term as a literal when expansion fails.
func (r *extractRun) expandOr(term string) string {
	iri, err := r.expander.Expand(term, r.ctx)
	if err != nil {
		return term
	}
	return iri
}

func (r *extractRun) emit(subject, predicate string, lit literal) {
	t := model.Triple{
		Subject:   subject,
		Predicate: r.expandOr(predicate),
		Object:    lit.value,
	}
	if lit.datatype != "" {
		t.Datatype = r.expandOr(lit.datatype)
	}
	t.Lang = lit.lang
	r.out = append(r.out, t)
}

func (r *extractRun) emitType(subject, typ string) {
	r.out = append(r.out, model.Triple{
		Subject:   subject,
		Predicate: RDFType,
		Object:    r.expandOr(typ),
	})
}

// frontMatter parses a leading --- fenced YAML block, builds the
// expansion context from @context/@vocab and emits triples for the
// remaining scalar and list keys. Returns the document body with the
// front matter stripped.
func (r *extractRun) frontMatter(raw string) (string, error) {
	m := frontMatterRe.FindStringSubmatch(raw)
	if m == nil {
		return raw, nil
	}
	body := raw[len(m[0]):]
	var data map[string]interface{}
	if err := yaml.Unmarshal([]byte(m[1]), &data); err != nil {
		return body, r.fail("front matter", err)
	}

	if rawCtx, ok := data["@context"]; ok {
		prefixes := map[string]string{}
		vocab := ""
		switch v := rawCtx.(type) {
		case string:
			vocab = v
		case map[string]interface{}:
			for k, pv := range v {
				s, ok := pv.(string)
				if !ok {
					continue
				}
				if k == "@vocab" {
					vocab = s
					continue
				}
				prefixes[k] = s
			}
		}
		r.ctx = NewContext(prefixes, vocab)
	}
	if id, ok := data["@id"].(string); ok && id != "" {
		r.subject = r.expandOr(id)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case "@context", "@id":
			continue
		case "@type":
			for _, typ := range scalarList(data[k]) {
				r.emitType(r.subject, typ)
			}
		default:
			for _, v := range scalarList(data[k]) {
				r.emit(r.subject, k, literal{value: v})
			}
		}
	}
	return body, nil
}

// islands parses fenced code blocks tagged json-ld. Each object may
// carry its own @context which shadows the document context for that
// object only.
func (r *extractRun) islands(blocks []model.Block) error {
	for _, b := range blocks {
		if b.Type != model.BlockCode {
			continue
		}
		lang := strings.ToLower(b.Attrs["language"])
		if lang != "json-ld" && lang != "jsonld" {
			continue
		}
		var node interface{}
		if err := json.Unmarshal([]byte(b.Text), &node); err != nil {
			if ferr := r.fail(fmt.Sprintf("json-ld island at %v", b.Path), err); ferr != nil {
				return ferr
			}
			continue
		}
		objects, ok := islandObjects(node)
		if !ok {
			if ferr := r.fail(fmt.Sprintf("json-ld island at %v", b.Path), fmt.Errorf("not an object or object array")); ferr != nil {
				return ferr
			}
			continue
		}
		for _, obj := range objects {
			r.islandObject(obj)
		}
	}
	return nil
}

func islandObjects(node interface{}) ([]map[string]interface{}, bool) {
	switch v := node.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{v}, true
	case []interface{}:
		var objects []map[string]interface{}
		for _, item := range v {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, false
			}
			objects = append(objects, obj)
		}
		return objects, true
	default:
		return nil, false
	}
}

func (r *extractRun) islandObject(obj map[string]interface{}) {
	savedCtx := r.ctx
	defer func() { r.ctx = savedCtx }()
	if rawCtx, ok := obj["@context"].(map[string]interface{}); ok {
		prefixes := map[string]string{}
		for k, v := range savedCtx.Prefixes {
			prefixes[k] = v
		}
		vocab := savedCtx.Vocab
		for k, pv := range rawCtx {
			s, ok := pv.(string)
			if !ok {
				continue
			}
			if k == "@vocab" {
				vocab = s
				continue
			}
			prefixes[k] = s
		}
		r.ctx = NewContext(prefixes, vocab)
	}

	subject := r.subject
	if id, ok := obj["@id"].(string); ok && id != "" {
		subject = r.expandOr(id)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case "@context", "@id":
			continue
		case "@type":
			for _, typ := range scalarList(obj[k]) {
				r.emitType(subject, typ)
			}
		default:
			for _, lit := range valueLiterals(obj[k]) {
				r.emit(subject, k, lit)
			}
		}
	}
}

// valueLiterals flattens a JSON value into literals, honoring the
// expanded {"@value": ..., "@language"/"@type": ...} form.
func valueLiterals(v interface{}) []literal {
	switch val := v.(type) {
	case []interface{}:
		var out []literal
		for _, item := range val {
			out = append(out, valueLiterals(item)...)
		}
		return out
	case map[string]interface{}:
		inner, ok := val["@value"]
		if !ok {
			return nil
		}
		lit := literal{value: scalarString(inner)}
		if lang, ok := val["@language"].(string); ok {
			lit.lang = lang
		}
		if dt, ok := val["@type"].(string); ok {
			lit.datatype = dt
		}
		return []literal{lit}
	case nil:
		return nil
	default:
		return []literal{{value: scalarString(val)}}
	}
}

// headingAttrs handles trailing {key=value} attribute objects on
// heading blocks.
func (r *extractRun) headingAttrs(blocks []model.Block) error {
	for _, b := range blocks {
		if b.Type != model.BlockHeading {
			continue
		}
		if err := r.attrObjectText(b.Text, fmt.Sprintf("heading at %v", b.Path)); err != nil {
			return err
		}
	}
	return nil
}

// linkAttrs handles attribute objects attached to links and images;
// the link target is the default subject for its own attributes.
func (r *extractRun) linkAttrs(body string) error {
	for _, m := range linkAttrRe.FindAllStringSubmatch(body, -1) {
		obj, err := parseAttrObject(m[2])
		if err != nil {
			if ferr := r.fail("link attributes", err); ferr != nil {
				return ferr
			}
			continue
		}
		subject := m[1]
		if id, ok := obj.get("@id"); ok {
			subject = r.expandOr(id.value)
		}
		r.emitAttrObject(subject, obj)
	}
	return nil
}

func (r *extractRun) listItemAttrs(blocks []model.Block) error {
	for _, b := range blocks {
		if b.Type != model.BlockListItem {
			continue
		}
		if err := r.attrObjectText(b.Text, fmt.Sprintf("list item at %v", b.Path)); err != nil {
			return err
		}
	}
	return nil
}

func (r *extractRun) attrObjectText(txt, section string) error {
	m := trailingAttrRe.FindStringSubmatch(txt)
	if m == nil {
		return nil
	}
	obj, err := parseAttrObject(m[1])
	if err != nil {
		return r.fail(section, err)
	}
	subject := r.subject
	if id, ok := obj.get("@id"); ok {
		subject = r.expandOr(id.value)
	}
	r.emitAttrObject(subject, obj)
	return nil
}

func (r *extractRun) emitAttrObject(subject string, obj *attrObject) {
	for _, key := range obj.keys {
		switch key {
		case "@id":
			continue
		case "@type":
			for _, lit := range obj.values[key] {
				r.emitType(subject, lit.value)
			}
		default:
			for _, lit := range obj.values[key] {
				r.emit(subject, key, lit)
			}
		}
	}
}

// propertiesTables walks tables whose header carries an @id column.
// Each data row is a subject; a JSON-array cell explodes into one
// triple per element; an @type column emits rdf:type.
func (r *extractRun) propertiesTables(body string) error {
	source := []byte(body)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	var walkErr error
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		table, ok := node.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		if err := r.propertiesTable(table, source); err != nil {
			walkErr = err
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	return walkErr
}

func (r *extractRun) propertiesTable(table *east.Table, source []byte) error {
	var header []string
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(string(cell.Text(source))))
		}
		if _, ok := row.(*east.TableHeader); ok {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}

	idCol := -1
	for i, h := range header {
		if h == "@id" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil
	}
	for _, cells := range rows {
		if idCol >= len(cells) || cells[idCol] == "" {
			continue
		}
		subject := r.expandOr(cells[idCol])
		for col, h := range header {
			if col == idCol || col >= len(cells) || cells[col] == "" {
				continue
			}
			for _, v := range cellValues(cells[col]) {
				if h == "@type" {
					r.emitType(subject, v)
					continue
				}
				r.emit(subject, h, literal{value: v})
			}
		}
	}
	return nil
}

// cellValues explodes a JSON-array cell into its elements; anything
// else is a single value.
func cellValues(cell string) []string {
	if strings.HasPrefix(cell, "[") {
		var arr []interface{}
		if err := json.Unmarshal([]byte(cell), &arr); err == nil {
			out := make([]string, 0, len(arr))
			for _, v := range arr {
				out = append(out, scalarString(v))
			}
			return out
		}
	}
	return []string{cell}
}

// shorthandLines scans paragraph lines for the form
// "LABEL: subject, predicate, object".
func (r *extractRun) shorthandLines(blocks []model.Block) {
	for _, b := range blocks {
		if b.Type != model.BlockParagraph {
			continue
		}
		for _, line := range strings.Split(b.Text, "\n") {
			m := shorthandRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			subject := r.expandOr(strings.TrimSpace(m[2]))
			r.emit(subject, strings.TrimSpace(m[3]), literal{value: strings.TrimSpace(m[4])})
		}
	}
}

func scalarList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		var out []string
		for _, item := range val {
			out = append(out, scalarList(item)...)
		}
		return out
	case map[string]interface{}, nil:
		return nil
	default:
		return []string{scalarString(val)}
	}
}

func scalarString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}
