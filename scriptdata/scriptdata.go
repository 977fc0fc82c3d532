// Package scriptdata recovers structured data embedded as literals in a
// page's inline script blocks. Captured text is parsed with a strict
// JSON grammar and never evaluated.
package scriptdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
)

var scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)

// Array scans the inline script blocks of html for the first occurrence
// of marker and returns the array literal that follows it. The capture
// is a lazy match bounded by the terminating semicolon, so nested
// arrays inside the literal are preserved. Returns false when no script
// contains the marker or no array literal follows it.
func Array(html []byte, marker string) ([]byte, bool) {
	markerBytes := []byte(marker)
	arrayPattern := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(marker) + `\s*=\s*(\[.*?\])\s*;`)

	for _, m := range scriptPattern.FindAllSubmatch(html, -1) {
		script := m[1]
		if !bytes.Contains(script, markerBytes) {
			continue
		}
		if sub := arrayPattern.FindSubmatch(script); sub != nil {
			return sub[1], true
		}
	}
	return nil, false
}

// DecodeStrict parses data as a strict JSON value into v. Unlike a
// bare json.Unmarshal it rejects trailing content after the value, so
// an injected expression like `[1] && attack()` fails instead of
// silently decoding its prefix. Any construct outside the JSON grammar
// (function calls, identifiers, comments) is an error.
func DecodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode literal: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("trailing content after literal")
	}
	return nil
}
