package minify

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformStripsLineComments(t *testing.T) {
	tr := NewCodeTransformer(0)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "double slash comment",
			input: "<?php $x = 1; // gone\n$y = 2; ?>",
			want:  "<?php $x = 1; \n$y = 2; ?>",
		},
		{
			name:  "hash comment",
			input: "<?php $x = 1; # gone\n?>",
			want:  "<?php $x = 1; \n?>",
		},
		{
			name:  "comment ended by region close",
			input: "<?php // gone ?>after",
			want:  "<?php ?>after",
		},
		{
			name:  "markup outside regions untouched",
			input: "<div>// not code # either</div>",
			want:  "<div>// not code # either</div>",
		},
		{
			name:  "slashes inside string kept",
			input: "<?php $u = \"http://x.test\"; // note\n?>",
			want:  "<?php $u = \"http://x.test\"; \n?>",
		},
		{
			name:  "hash inside single quoted string kept",
			input: "<?php $c = '#fff'; ?>",
			want:  "<?php $c = '#fff'; ?>",
		},
		{
			name:  "block comment kept",
			input: "<?php /* keep me */ $x = 1; ?>",
			want:  "<?php /* keep me */ $x = 1; ?>",
		},
		{
			name:  "unclosed region accepted",
			input: "<div><?php $x = 1; // tail",
			want:  "<div><?php $x = 1; ",
		},
		{
			name:  "short echo region",
			input: "<?= $x // gone\n?>",
			want:  "<?= $x \n?>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tr.Transform(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Text)
			assert.Empty(t, result.Delayed)
		})
	}
}

func TestTransformEscapedQuotes(t *testing.T) {
	tr := NewCodeTransformer(0)

	src := "<?php $s = \"a \\\" // still string\"; // comment\n?>"
	result, err := tr.Transform(src)

	require.NoError(t, err)
	assert.Equal(t, "<?php $s = \"a \\\" // still string\"; \n?>", result.Text)
}

func TestTransformDelaysHeredocs(t *testing.T) {
	tr := NewCodeTransformer(0)

	src := "<?php $q = <<<SQL\nselect // not a comment\nSQL;\n?>"
	result, err := tr.Transform(src)

	require.NoError(t, err)
	require.Len(t, result.Delayed, 1)
	assert.Equal(t, "<<<SQL\nselect // not a comment\nSQL;", result.Delayed[0])
	assert.Equal(t, "<?php $q = "+placeholder(0)+"\n?>", result.Text)

	restored := RestoreRawBlocks(result.Text, result.Delayed)
	assert.Equal(t, src, restored)
}

func TestTransformMultipleRegions(t *testing.T) {
	tr := NewCodeTransformer(0)

	src := "<? $a = 1; // x\n?><div></div><? $b = 2; # y\n?>"
	result, err := tr.Transform(src)

	require.NoError(t, err)
	assert.Equal(t, "<? $a = 1; \n?><div></div><? $b = 2; \n?>", result.Text)
}

func TestTransformUnparseable(t *testing.T) {
	tr := NewCodeTransformer(0)

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "unterminated block comment",
			input: "<?php /* never closed",
		},
		{
			name:  "unterminated string",
			input: "<?php $s = \"open",
		},
		{
			name:  "heredoc without closer",
			input: "<?php $x = <<<EOT\nno end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tr.Transform(tt.input)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, ErrUnparseable))
		})
	}
}

func TestTransformNestingTooDeep(t *testing.T) {
	tr := NewCodeTransformer(2)

	result, err := tr.Transform("<?php f(g(h($x))); ?>")

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNestingTooDeep))
}

func TestTransformNestingWithinCap(t *testing.T) {
	tr := NewCodeTransformer(3)

	src := "<?php f(g(h($x))); ?>"
	result, err := tr.Transform(src)

	require.NoError(t, err)
	assert.Equal(t, src, result.Text)
}

func TestTransformDefaultCap(t *testing.T) {
	tr := NewCodeTransformer(0)

	src := "<?php " + strings.Repeat("(", 200)
	result, err := tr.Transform(src)

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrNestingTooDeep))
}
