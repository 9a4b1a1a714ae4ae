package minify

import (
	"strings"

	apperrors "github.com/tplslim/tplslim/internal/errors"
)

// Recognized transform failures. Both route the minifier to the fallback
// path; neither aborts the operation.
var (
	ErrUnparseable    = apperrors.NewTransformError("TRANSFORM_PARSE", "embedded code is unparseable", nil)
	ErrNestingTooDeep = apperrors.NewTransformError("TRANSFORM_DEPTH", "embedded code nesting exceeds safe depth", nil)
)

// TransformResult is the successful output of a code transform: the
// comment-stripped text plus the raw blocks the transformer could not
// safely re-inline. Those remain as placeholders in Text and must be
// restored by the caller after the whitespace pipeline runs.
type TransformResult struct {
	Text    string
	Delayed []string
}

// CodeTransformer removes single-line comments from the embedded code
// regions of a template. Implementations may fail on unparseable or overly
// nested input; callers branch to the fallback strategy on error.
type CodeTransformer interface {
	Transform(src string) (*TransformResult, error)
}

// codeTransformer is a single-pass scanner over embedded code regions. It
// understands string literals, block comments, heredocs, and delimiter
// nesting; markup outside code regions passes through untouched.
type codeTransformer struct {
	maxNesting int
}

// NewCodeTransformer creates a code transformer that gives up once
// brace/paren/bracket nesting exceeds maxNesting. Non-positive values get a
// default cap.
func NewCodeTransformer(maxNesting int) CodeTransformer {
	if maxNesting <= 0 {
		maxNesting = 128
	}
	return &codeTransformer{maxNesting: maxNesting}
}

func (t *codeTransformer) Transform(src string) (*TransformResult, error) {
	var out strings.Builder
	var delayed []string

	i := 0
	for i < len(src) {
		idx := strings.Index(src[i:], "<?")
		if idx < 0 {
			out.WriteString(src[i:])
			break
		}
		open := i + idx
		out.WriteString(src[i:open])

		end, err := t.transformRegion(src, open, &out, &delayed)
		if err != nil {
			return nil, err
		}
		i = end
	}

	return &TransformResult{Text: out.String(), Delayed: delayed}, nil
}

// transformRegion re-emits the code region starting at open (positioned on
// "<?") with line comments removed, and returns the offset just past the
// closing delimiter. A region left open at end of input is accepted.
func (t *codeTransformer) transformRegion(src string, open int, out *strings.Builder, delayed *[]string) (int, error) {
	out.WriteString("<?")
	i := open + 2
	depth := 0

	for i < len(src) {
		c := src[i]
		switch {
		case c == '?' && i+1 < len(src) && src[i+1] == '>':
			out.WriteString("?>")
			return i + 2, nil

		case c == '\'' || c == '"':
			j, ok := scanStringLiteral(src, i)
			if !ok {
				return 0, ErrUnparseable
			}
			out.WriteString(src[i:j])
			i = j

		case c == '<' && strings.HasPrefix(src[i:], "<<<"):
			start, end, ok := findRawBlock(src, i)
			if !ok || start != i {
				// Heredoc with no closing identifier.
				return 0, ErrUnparseable
			}
			out.WriteString(placeholder(len(*delayed)))
			*delayed = append(*delayed, src[start:end])
			i = end

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			rel := strings.Index(src[i+2:], "*/")
			if rel < 0 {
				return 0, ErrUnparseable
			}
			j := i + 2 + rel + 2
			out.WriteString(src[i:j])
			i = j

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = skipLineComment(src, i)

		case c == '#':
			i = skipLineComment(src, i)

		case c == '{' || c == '(' || c == '[':
			depth++
			if depth > t.maxNesting {
				return 0, ErrNestingTooDeep
			}
			out.WriteByte(c)
			i++

		case c == '}' || c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
			out.WriteByte(c)
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}

	return len(src), nil
}

// scanStringLiteral returns the offset just past the closing quote of the
// string literal starting at i, honoring backslash escapes. Strings may
// span newlines; an unterminated string is a parse failure.
func scanStringLiteral(src string, i int) (int, bool) {
	quote := src[i]
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
		case quote:
			return j + 1, true
		default:
			j++
		}
	}
	return 0, false
}

// skipLineComment returns the offset of the character ending the line
// comment at i: the newline, a region close, or end of input. The
// terminator itself is not consumed.
func skipLineComment(src string, i int) int {
	for i < len(src) {
		if src[i] == '\n' {
			return i
		}
		if src[i] == '?' && i+1 < len(src) && src[i+1] == '>' {
			return i
		}
		i++
	}
	return i
}
