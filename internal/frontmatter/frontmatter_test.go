package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitWithFrontmatter(t *testing.T) {
	input := []byte("---\ntitle: Test\n---\nbody here\n")
	fm, body, had, style, err := Split(input)
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, "title: Test\n", string(fm))
	assert.Equal(t, "body here\n", string(body))
	assert.Equal(t, "\n", style.Newline)
}

func TestSplitWithoutFrontmatter(t *testing.T) {
	input := []byte("just a body\n")
	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	assert.False(t, had)
	assert.Nil(t, fm)
	assert.Equal(t, input, body)
}

func TestSplitEmptyFrontmatter(t *testing.T) {
	input := []byte("---\n---\nbody\n")
	fm, body, had, _, err := Split(input)
	require.NoError(t, err)
	assert.True(t, had)
	assert.Empty(t, fm)
	assert.Equal(t, "body\n", string(body))
}

func TestSplitMissingClosingDelimiter(t *testing.T) {
	_, _, _, _, err := Split([]byte("---\ntitle: Test\nno end\n"))
	assert.ErrorIs(t, err, ErrMissingClosingDelimiter)
}

func TestSplitCRLF(t *testing.T) {
	input := []byte("---\r\ntitle: Test\r\n---\r\nbody\r\n")
	fm, body, had, style, err := Split(input)
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, "\r\n", style.Newline)
	assert.Equal(t, "title: Test\r\n", string(fm))
	assert.Equal(t, "body\r\n", string(body))
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Hello\ntags:\n  - a\n  - b\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", fields["title"])
	assert.Equal(t, []any{"a", "b"}, fields["tags"])
}

func TestParseYAMLEmpty(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.NotNil(t, fields)
	assert.Empty(t, fields)
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := ParseYAML([]byte("{unclosed"))
	assert.Error(t, err)
}

func TestComposeRoundTrip(t *testing.T) {
	doc, err := Compose(map[string]any{"title": "New Post"}, []byte("\nbody\n"))
	require.NoError(t, err)

	fm, body, had, _, err := Split(doc)
	require.NoError(t, err)
	assert.True(t, had)
	assert.Equal(t, "\nbody\n", string(body))

	fields, err := ParseYAML(fm)
	require.NoError(t, err)
	assert.Equal(t, "New Post", fields["title"])
}
