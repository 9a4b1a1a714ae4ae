// Package minify implements the template minification pipeline: raw-block
// stashing, code-aware comment stripping with a line-oriented fallback, the
// six ordered whitespace stages, and the orchestrator that persists results
// through the cache store.
package minify

import (
	"strconv"
	"strings"
)

// Placeholder tokens use NUL delimiters, which cannot occur in valid
// template text, so they never collide with real content.
const (
	placeholderPrefix = "\x00raw:"
	placeholderSuffix = "\x00"
)

// placeholder returns the synthetic token standing in for the raw block at
// the given discovery-order index.
func placeholder(index int) string {
	return placeholderPrefix + strconv.Itoa(index) + placeholderSuffix
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// findRawBlock locates the first raw heredoc block starting at or after
// from: the "<<<" introducer, an optionally quoted letters-only identifier,
// and the span through the first case-insensitive reoccurrence of that
// identifier up to the next statement terminator. Returns the block's start
// and end (exclusive) offsets in s.
func findRawBlock(s string, from int) (int, int, bool) {
	i := from
	for {
		idx := strings.Index(s[i:], "<<<")
		if idx < 0 {
			return 0, 0, false
		}
		start := i + idx

		j := start + 3
		var quote byte
		if j < len(s) && (s[j] == '"' || s[j] == '\'') {
			quote = s[j]
			j++
		}

		idStart := j
		for j < len(s) && isAlpha(s[j]) {
			j++
		}
		ident := s[idStart:j]
		if ident == "" {
			i = start + 3
			continue
		}

		if quote != 0 {
			if j >= len(s) || s[j] != quote {
				i = start + 3
				continue
			}
			j++
		}

		// First reoccurrence of the identifier terminates the block;
		// nested occurrences of the same identifier are not handled.
		k := strings.Index(strings.ToLower(s[j:]), strings.ToLower(ident))
		if k < 0 {
			i = start + 3
			continue
		}
		closeEnd := j + k + len(ident)

		semi := strings.IndexByte(s[closeEnd:], ';')
		if semi < 0 {
			i = start + 3
			continue
		}

		return start, closeEnd + semi + 1, true
	}
}

// ExtractRawBlocks replaces every raw heredoc block in s with a placeholder
// token and returns the rewritten text plus the stashed blocks in discovery
// order. A block with no closing identifier before end of input is not
// stashed and stays exposed to the generic pipeline.
func ExtractRawBlocks(s string) (string, []string) {
	var blocks []string
	var out strings.Builder

	i := 0
	for {
		start, end, ok := findRawBlock(s, i)
		if !ok {
			out.WriteString(s[i:])
			break
		}
		out.WriteString(s[i:start])
		out.WriteString(placeholder(len(blocks)))
		blocks = append(blocks, s[start:end])
		i = end
	}

	return out.String(), blocks
}

// RestoreRawBlocks splices each stashed block back over its placeholder,
// byte for byte. The blocks slice must be in the same discovery order that
// produced the placeholders, whichever path produced it.
func RestoreRawBlocks(s string, blocks []string) string {
	for i, block := range blocks {
		s = strings.ReplaceAll(s, placeholder(i), block)
	}
	return s
}
