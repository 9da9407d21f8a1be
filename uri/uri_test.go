package uri_test

import (
	"testing"

	"github.com/indigo-web/reqengine/uri"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OriginForm(t *testing.T) {
	u, ok := uri.Parse("/foo/bar")
	require.True(t, ok)
	assert.Equal(t, []string{"foo", "bar"}, u.Path)
	assert.Equal(t, "", u.Host)
}

func TestParse_Root(t *testing.T) {
	u, ok := uri.Parse("/")
	require.True(t, ok)
	assert.Empty(t, u.Path)
	assert.Equal(t, "/", u.String())
}

func TestParse_AbsoluteFormCarriesHost(t *testing.T) {
	u, ok := uri.Parse("http://example.com/foo")
	require.True(t, ok)
	assert.Equal(t, "example.com", u.Host)
	assert.Equal(t, []string{"foo"}, u.Path)
}

func TestParse_QueryStripped(t *testing.T) {
	u, ok := uri.Parse("/search?q=go")
	require.True(t, ok)
	assert.Equal(t, []string{"search"}, u.Path)
}

func TestParse_RejectsMissingLeadingSlash(t *testing.T) {
	_, ok := uri.Parse("foo/bar")
	assert.False(t, ok)
}

func TestParse_RejectsEmpty(t *testing.T) {
	_, ok := uri.Parse("")
	assert.False(t, ok)
}

func TestWithPath(t *testing.T) {
	u, _ := uri.Parse("/foo/bar")
	tail := u.WithPath([]string{"bar"})
	assert.Equal(t, []string{"bar"}, tail.Path)
}
