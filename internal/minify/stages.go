package minify

import (
	"strings"
)

// DefaultInlineElements is the ordered list of element names whose trailing
// "> <" boundary keeps its space. The "?" entry covers embedded-code closing
// markers, so "?> <" boundaries are preserved too.
var DefaultInlineElements = []string{
	"a", "abbr", "b", "big", "button", "code", "em", "i", "input", "label",
	"option", "s", "select", "small", "span", "strong", "sub", "sup", "u", "?",
}

// DefaultProtectedElements names the tags whose body whitespace is
// semantically significant and must survive minification untouched.
var DefaultProtectedElements = []string{"textarea", "pre", "script"}

// Pipeline applies the six whitespace-transformation stages in fixed order.
// Each stage is a pure text transform consuming the previous stage's output.
type Pipeline struct {
	inline    []string
	protected []string
}

// NewPipeline creates a pipeline with the given inline-element and
// protected-element name lists; nil or empty lists fall back to defaults.
func NewPipeline(inline, protected []string) *Pipeline {
	if len(inline) == 0 {
		inline = DefaultInlineElements
	}
	if len(protected) == 0 {
		protected = DefaultProtectedElements
	}

	return &Pipeline{
		inline:    append([]string(nil), inline...),
		protected: append([]string(nil), protected...),
	}
}

// Run executes stages 1-6 in order.
func (p *Pipeline) Run(s string) string {
	s = p.stripScriptCodeComments(s)
	s = p.stripScriptLineComments(s)
	s = p.collapseWhitespace(s)
	s = p.removeEmptyTagSpace(s)
	s = p.collapseCodeTrailingSpace(s)
	s = p.trimBeforeClosingTags(s)
	return s
}

func isSpaceChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// segment is a span of the input that is either inside a protected element
// body or outside all of them.
type segment struct {
	text    string
	inside  bool
	element string
}

// splitProtected splits s into alternating segments outside and inside the
// bodies of the named elements. Opening and closing tag text belongs to the
// surrounding outside segments; an unclosed protected body extends to end of
// input.
func splitProtected(s string, names []string) []segment {
	lower := strings.ToLower(s)
	var segs []segment

	i := 0
	for i < len(s) {
		open, name := nextProtectedOpen(lower, names, i)
		if open < 0 {
			segs = append(segs, segment{text: s[i:]})
			return segs
		}

		gt := strings.IndexByte(s[open:], '>')
		if gt < 0 {
			segs = append(segs, segment{text: s[i:]})
			return segs
		}
		bodyStart := open + gt + 1

		segs = append(segs, segment{text: s[i:bodyStart]})

		closeIdx := findClosingTag(lower, name, bodyStart)
		if closeIdx < 0 {
			segs = append(segs, segment{text: s[bodyStart:], inside: true, element: name})
			return segs
		}

		segs = append(segs, segment{text: s[bodyStart:closeIdx], inside: true, element: name})
		i = closeIdx
	}

	return segs
}

// nextProtectedOpen finds the earliest opening tag of any named element at
// or after from, with a proper name boundary so "<pre" does not match
// "<preview". Returns -1 when none remains.
func nextProtectedOpen(lower string, names []string, from int) (int, string) {
	best := -1
	bestName := ""

	for _, name := range names {
		pat := "<" + strings.ToLower(name)
		idx := from
		for {
			k := strings.Index(lower[idx:], pat)
			if k < 0 {
				break
			}
			pos := idx + k
			after := pos + len(pat)
			if after >= len(lower) || isTagBoundary(lower[after]) {
				if best < 0 || pos < best {
					best = pos
					bestName = name
				}
				break
			}
			idx = pos + 1
		}
	}

	return best, bestName
}

func isTagBoundary(c byte) bool {
	return c == '>' || c == '/' || isSpaceChar(c)
}

// findClosingTag finds the matching closing tag for name at or after from,
// or -1 when the body never closes.
func findClosingTag(lower, name string, from int) int {
	pat := "</" + strings.ToLower(name)
	idx := from
	for {
		k := strings.Index(lower[idx:], pat)
		if k < 0 {
			return -1
		}
		pos := idx + k
		after := pos + len(pat)
		if after >= len(lower) || lower[after] == '>' || isSpaceChar(lower[after]) {
			return pos
		}
		idx = pos + 1
	}
}

// mapOutside applies fn to every span outside the named elements' bodies.
func mapOutside(s string, names []string, fn func(string) string) string {
	var out strings.Builder
	for _, seg := range splitProtected(s, names) {
		if seg.inside {
			out.WriteString(seg.text)
		} else {
			out.WriteString(fn(seg.text))
		}
	}
	return out.String()
}

// mapScriptBodies applies fn to every span inside a script element body.
func mapScriptBodies(s string, fn func(string) string) string {
	var out strings.Builder
	for _, seg := range splitProtected(s, []string{"script"}) {
		if seg.inside {
			out.WriteString(fn(seg.text))
		} else {
			out.WriteString(seg.text)
		}
	}
	return out.String()
}

// Stage 1: within script bodies, delete a line-trailing comment that wraps a
// fully single-line commented-out embedded-code block. A marker preceded by
// ":" or a backslash is likely a URL scheme or escape and is left alone.
func (p *Pipeline) stripScriptCodeComments(s string) string {
	return mapScriptBodies(s, func(body string) string {
		var out strings.Builder
		i := 0
		for i < len(body) {
			if body[i] == '/' && i+1 < len(body) && body[i+1] == '/' {
				var prev byte
				if i > 0 {
					prev = body[i-1]
				}
				if prev != ':' && prev != '\\' {
					lineEnd := lineEndAfter(body, i)
					rest := strings.TrimLeft(body[i+2:lineEnd], " \t")
					if strings.HasPrefix(rest, "<?") && strings.Contains(rest, "?>") {
						i = skipNewline(body, lineEnd)
						continue
					}
				}
			}
			out.WriteByte(body[i])
			i++
		}
		return out.String()
	})
}

// Stage 2: within script bodies, delete comment-to-end-of-line segments.
// Markers preceded by ":", backslash, a quote, or another slash are skipped
// (string/URL/regex heuristic), as are CDATA delimiter lines.
func (p *Pipeline) stripScriptLineComments(s string) string {
	return mapScriptBodies(s, func(body string) string {
		var out strings.Builder
		i := 0
		for i < len(body) {
			if body[i] == '/' && i+1 < len(body) && body[i+1] == '/' {
				var prev byte
				if i > 0 {
					prev = body[i-1]
				}
				switch prev {
				case ':', '\\', '\'', '"', '/':
					out.WriteByte(body[i])
					i++
					continue
				}
				lineEnd := lineEndAfter(body, i)
				rest := strings.TrimLeft(body[i+2:lineEnd], " \t")
				if strings.HasPrefix(rest, "<![CDATA[") || strings.TrimRight(rest, " \t") == "]]>" {
					out.WriteByte(body[i])
					i++
					continue
				}
				i = skipNewline(body, lineEnd)
				continue
			}
			out.WriteByte(body[i])
			i++
		}
		return out.String()
	})
}

// lineEndAfter returns the index of the newline terminating the line
// containing pos, or len(s) when the line is the last one.
func lineEndAfter(s string, pos int) int {
	if nl := strings.IndexByte(s[pos:], '\n'); nl >= 0 {
		return pos + nl
	}
	return len(s)
}

// skipNewline steps past the newline at pos, if any.
func skipNewline(s string, pos int) int {
	if pos < len(s) && s[pos] == '\n' {
		return pos + 1
	}
	return pos
}

// Stage 3: outside protected bodies, collapse whitespace runs that contain a
// non-space whitespace character followed by more whitespace, or two or more
// consecutive spaces, down to a single space.
func (p *Pipeline) collapseWhitespace(s string) string {
	return mapOutside(s, p.protected, func(seg string) string {
		var out strings.Builder
		i := 0
		for i < len(seg) {
			if !isSpaceChar(seg[i]) {
				out.WriteByte(seg[i])
				i++
				continue
			}
			j := i
			for j < len(seg) && isSpaceChar(seg[j]) {
				j++
			}
			if collapsibleRun(seg[i:j]) {
				out.WriteByte(' ')
			} else {
				out.WriteString(seg[i:j])
			}
			i = j
		}
		return out.String()
	})
}

// collapsibleRun reports whether a whitespace run triggers collapsing: a
// non-space whitespace character with further whitespace after it, or two
// adjacent spaces. A lone space or lone newline is left as is.
func collapsibleRun(run string) bool {
	for k := 0; k < len(run); k++ {
		if run[k] != ' ' && k+1 < len(run) {
			return true
		}
		if run[k] == ' ' && k+1 < len(run) && run[k+1] == ' ' {
			return true
		}
	}
	return false
}

// Stage 4: outside protected bodies, tighten "> <" boundaries to "><"
// unless the text before the ">" ends with an inline element name, where
// the space keeps adjacent inline content visually separated.
func (p *Pipeline) removeEmptyTagSpace(s string) string {
	return mapOutside(s, p.protected, func(seg string) string {
		var out strings.Builder
		i := 0
		for {
			idx := strings.Index(seg[i:], "> <")
			if idx < 0 {
				out.WriteString(seg[i:])
				break
			}
			pos := i + idx
			out.WriteString(seg[i:pos])
			if p.endsWithInlineName(seg[:pos]) {
				out.WriteString("> <")
			} else {
				out.WriteString("><")
			}
			i = pos + 3
		}
		return out.String()
	})
}

// endsWithInlineName checks the text before a boundary against the full
// inline-name list.
func (p *Pipeline) endsWithInlineName(t string) bool {
	lt := strings.ToLower(t)
	for _, name := range p.inline {
		if strings.HasSuffix(lt, name) {
			return true
		}
	}
	return false
}

// Stage 5: collapse whitespace after an embedded-code block's closing
// delimiter down to exactly one space, never zero. Blocks that open with an
// output or conditional keyword are exempt, since their rendered output
// depends on the following spacing; so are blocks containing a nested
// opening delimiter.
func (p *Pipeline) collapseCodeTrailingSpace(s string) string {
	return mapOutside(s, p.protected, func(seg string) string {
		var out strings.Builder
		i := 0
		for {
			idx := strings.Index(seg[i:], "<?")
			if idx < 0 {
				out.WriteString(seg[i:])
				break
			}
			open := i + idx
			out.WriteString(seg[i:open])

			d := open + 2
			exempt := false
			if d < len(seg) && seg[d] == '=' {
				// Short echo form is an output block.
				exempt = true
				d++
			} else if hasFoldPrefix(seg[d:], "php") {
				d += 3
			}

			rel := strings.Index(seg[d:], "?>")
			if rel < 0 {
				out.WriteString(seg[open:])
				break
			}
			closeStart := d + rel
			end := closeStart + 2
			content := seg[d:closeStart]

			if strings.Contains(content, "<?") {
				// Nested delimiter: skip this opener, rescan within.
				out.WriteString(seg[open : open+2])
				i = open + 2
				continue
			}

			if !exempt {
				if len(content) == 0 || !isSpaceChar(content[0]) {
					exempt = true
				} else {
					word := leadingWord(strings.TrimLeft(content, " \t\r\n\f\v"))
					if strings.EqualFold(word, "echo") ||
						strings.EqualFold(word, "print") ||
						strings.EqualFold(word, "if") {
						exempt = true
					}
				}
			}

			out.WriteString(seg[open:end])
			i = end
			if !exempt {
				j := end
				for j < len(seg) && isSpaceChar(seg[j]) {
					j++
				}
				if j > end {
					out.WriteByte(' ')
					i = j
				}
			}
		}
		return out.String()
	})
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func leadingWord(s string) string {
	i := 0
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	return s[:i]
}

// Stage 6: delete whitespace immediately preceding any closing tag. A run
// preceded by the CDATA close marker keeps exactly one space, and closing
// tags of textarea/pre bodies are never touched.
func (p *Pipeline) trimBeforeClosingTags(s string) string {
	keep := make([]string, 0, len(p.protected))
	for _, name := range p.protected {
		if !strings.EqualFold(name, "script") {
			keep = append(keep, name)
		}
	}

	return mapOutside(s, keep, func(seg string) string {
		var out strings.Builder
		i := 0
		for i < len(seg) {
			if !isSpaceChar(seg[i]) {
				out.WriteByte(seg[i])
				i++
				continue
			}
			j := i
			for j < len(seg) && isSpaceChar(seg[j]) {
				j++
			}
			if j+1 < len(seg) && seg[j] == '<' && seg[j+1] == '/' && !closesProtected(seg[j:], keep) {
				if strings.HasSuffix(seg[:i], "]]>") {
					out.WriteByte(' ')
				}
			} else {
				out.WriteString(seg[i:j])
			}
			i = j
		}
		return out.String()
	})
}

// closesProtected reports whether t starts with a closing tag of one of the
// named elements.
func closesProtected(t string, names []string) bool {
	lt := strings.ToLower(t)
	for _, name := range names {
		pat := "</" + strings.ToLower(name)
		if strings.HasPrefix(lt, pat) {
			after := len(pat)
			if after >= len(lt) || lt[after] == '>' || isSpaceChar(lt[after]) {
				return true
			}
		}
	}
	return false
}
