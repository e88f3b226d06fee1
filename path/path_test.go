package path_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfs.io/path"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"/a/b/c", []string{"a", "b", "c"}},
		{"//x///y/", []string{"x", "y"}},
		{"", nil},
		{"/", nil},
	}
	for _, c := range cases {
		p, err := path.Parse(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, p.Components(), c.in)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, in := range []string{"a/b", "/a:b", "rel/path"} {
		_, err := path.Parse(in)
		assert.Error(t, err, in)
	}
}

func TestToStringRoundTrip(t *testing.T) {
	for _, in := range []string{"/a/b/c", "/x/y", "/"} {
		p, err := path.Parse(in)
		require.NoError(t, err)
		p2, err := path.Parse(p.String())
		require.NoError(t, err)
		assert.True(t, p.Equal(p2))
	}
	p, err := path.Parse("//x///y/")
	require.NoError(t, err)
	assert.Equal(t, "/x/y", p.String())
}

func TestAppend(t *testing.T) {
	p := path.Root
	p, err := p.Append("a")
	require.NoError(t, err)
	p, err = p.Append("b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", p.String())

	_, err = p.Append("")
	assert.Error(t, err)
	_, err = p.Append("x/y")
	assert.Error(t, err)
	_, err = p.Append("x:y")
	assert.Error(t, err)
}

func TestIsRootParentLast(t *testing.T) {
	assert.True(t, path.Root.IsRoot())
	p := path.MustParse("/a/b")
	assert.False(t, p.IsRoot())
	assert.Equal(t, "b", p.Last())
	assert.Equal(t, "/a", p.Parent().String())
}

func TestIsSubpath(t *testing.T) {
	ab := path.MustParse("/a/b")
	a := path.MustParse("/a")
	assert.True(t, ab.IsSubpath(a))
	assert.False(t, a.IsSubpath(ab))
	assert.True(t, a.IsSubpath(a))
	assert.True(t, path.Root.IsSubpath(path.Root))
	assert.True(t, a.IsSubpath(path.Root))
}

func TestCompare(t *testing.T) {
	a := path.MustParse("/a")
	ab := path.MustParse("/a/b")
	ac := path.MustParse("/a/c")

	assert.True(t, a.Compare(ab) < 0)
	assert.True(t, ab.Compare(a) > 0)
	assert.True(t, ac.Compare(ab) > 0) // lexicographic fallback
	assert.Equal(t, 0, a.Compare(path.MustParse("/a")))
}

func TestCompareTotalOrderConsistentWithSubpath(t *testing.T) {
	paths := []path.Path{
		path.Root,
		path.MustParse("/a"),
		path.MustParse("/a/b"),
		path.MustParse("/a/b/c"),
		path.MustParse("/a/c"),
		path.MustParse("/b"),
	}
	for _, p := range paths {
		for _, q := range paths {
			if p.IsSubpath(q) {
				assert.GreaterOrEqual(t, p.Compare(q), 0, "%s isSubpath %s", p, q)
			}
			assert.Equal(t, p.Equal(q), p.Compare(q) == 0, "%s vs %s", p, q)
		}
	}
}
