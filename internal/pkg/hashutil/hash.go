// Package hashutil provides the content hashing used for patch
// revisions and stable chunk ids.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode"
)

// Sum returns the hex SHA-256 of data.
func Sum(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

// NormalizeText right-trims every line and strips trailing blank
// lines, so formatting-only whitespace never changes a content hash.
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

type stableIDPayload struct {
	HeadingPath []string `json:"heading_path"`
	TextHash    string   `json:"text_hash"`
}

// StableChunkID derives a 12-hex-char id from the heading path and the
// normalized content. Position never participates, so a chunk that
// only moves keeps its id.
func StableChunkID(headingPath []string, text string) string {
	if headingPath == nil {
		headingPath = []string{}
	}
	payload := stableIDPayload{
		HeadingPath: headingPath,
		TextHash:    Sum(NormalizeText(text)),
	}
	canonical, _ := json.Marshal(payload)
	return Sum(string(canonical))[:12]
}

// HeadingSlug builds the anchor slug for a heading: lowercase, keep
// alphanumerics and hyphens, whitespace runs collapse to one hyphen.
func HeadingSlug(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if r == ' ' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
