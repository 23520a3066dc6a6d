package semantic

import (
	"fmt"
	"strings"
)

// literal is one attribute value with optional ^^datatype or @lang
// suffix, still in CURIE short form.
type literal struct {
	value    string
	datatype string
	lang     string
}

// attrObject is a parsed "{key=value, ...}" attribute object. Keys
// keep source order; a list value yields multiple literals per key.
type attrObject struct {
	keys   []string
	values map[string][]literal
}

func (o *attrObject) get(key string) (literal, bool) {
	vals, ok := o.values[key]
	if !ok || len(vals) == 0 {
		return literal{}, false
	}
	return vals[0], true
}

// parseAttrObject parses the mini grammar of inline attribute objects:
// comma-separated key=value pairs; values are quoted strings, bare
// tokens or [lists]; string values may carry ^^datatype or @lang.
func parseAttrObject(input string) (*attrObject, error) {
	obj := &attrObject{values: map[string][]literal{}}
	s := strings.TrimSpace(input)
	pos := 0
	for pos < len(s) {
		pos = skipSpaces(s, pos)
		if pos >= len(s) {
			break
		}
		key, next, err := scanKey(s, pos)
		if err != nil {
			return nil, err
		}
		pos = skipSpaces(s, next)
		if pos >= len(s) || s[pos] != '=' {
			return nil, fmt.Errorf("expected '=' after key %q at offset %d", key, pos)
		}
		pos = skipSpaces(s, pos+1)
		vals, next, err := scanValue(s, pos)
		if err != nil {
			return nil, err
		}
		pos = skipSpaces(s, next)
		if pos < len(s) {
			if s[pos] != ',' {
				return nil, fmt.Errorf("expected ',' at offset %d", pos)
			}
			pos++
		}
		if _, seen := obj.values[key]; !seen {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = append(obj.values[key], vals...)
	}
	return obj, nil
}

func skipSpaces(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}

func isKeyChar(c byte) bool {
	return c == '_' || c == '-' || c == '.' || c == ':' || c == '@' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func scanKey(s string, pos int) (string, int, error) {
	start := pos
	for pos < len(s) && isKeyChar(s[pos]) {
		pos++
	}
	if pos == start {
		return "", pos, fmt.Errorf("expected key at offset %d", pos)
	}
	return s[start:pos], pos, nil
}

func scanValue(s string, pos int) ([]literal, int, error) {
	if pos >= len(s) {
		return nil, pos, fmt.Errorf("expected value at offset %d", pos)
	}
	if s[pos] == '[' {
		return scanList(s, pos)
	}
	lit, next, err := scanLiteral(s, pos, ",")
	if err != nil {
		return nil, pos, err
	}
	return []literal{lit}, next, nil
}

func scanList(s string, pos int) ([]literal, int, error) {
	pos++ // consume '['
	var vals []literal
	for {
		pos = skipSpaces(s, pos)
		if pos >= len(s) {
			return nil, pos, fmt.Errorf("unterminated list")
		}
		if s[pos] == ']' {
			return vals, pos + 1, nil
		}
		lit, next, err := scanLiteral(s, pos, ",]")
		if err != nil {
			return nil, pos, err
		}
		vals = append(vals, lit)
		pos = skipSpaces(s, next)
		if pos < len(s) && s[pos] == ',' {
			pos++
		}
	}
}

// scanLiteral reads one value, stopping at any rune in stop (outside
// quotes), then peels a trailing ^^datatype or @lang suffix.
func scanLiteral(s string, pos int, stop string) (literal, int, error) {
	var raw string
	if s[pos] == '"' {
		var sb strings.Builder
		pos++
		for pos < len(s) && s[pos] != '"' {
			if s[pos] == '\\' && pos+1 < len(s) {
				pos++
			}
			sb.WriteByte(s[pos])
			pos++
		}
		if pos >= len(s) {
			return literal{}, pos, fmt.Errorf("unterminated string")
		}
		pos++ // closing quote
		raw = sb.String()
		suffix := ""
		start := pos
		for pos < len(s) && !strings.ContainsAny(string(s[pos]), stop) && s[pos] != ' ' {
			pos++
		}
		suffix = s[start:pos]
		lit := literal{value: raw}
		applySuffix(&lit, suffix)
		return lit, pos, nil
	}
	start := pos
	for pos < len(s) && !strings.ContainsAny(string(s[pos]), stop) {
		pos++
	}
	raw = strings.TrimSpace(s[start:pos])
	if raw == "" {
		return literal{}, pos, fmt.Errorf("empty value at offset %d", start)
	}
	lit := literal{}
	if idx := strings.Index(raw, "^^"); idx >= 0 {
		lit.value = raw[:idx]
		lit.datatype = raw[idx+2:]
	} else if idx := strings.LastIndex(raw, "@"); idx > 0 {
		lit.value = raw[:idx]
		lit.lang = raw[idx+1:]
	} else {
		lit.value = raw
	}
	return lit, pos, nil
}

func applySuffix(lit *literal, suffix string) {
	switch {
	case strings.HasPrefix(suffix, "^^"):
		lit.datatype = suffix[2:]
	case strings.HasPrefix(suffix, "@"):
		lit.lang = suffix[1:]
	}
}
