package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfs.io/naming"
	"dfs.io/path"
	"dfs.io/storage"
)

func TestRegisterRejectsDuplicateStub(t *testing.T) {
	reg := naming.NewRegistry()
	tr := naming.NewTree(reg)
	r, err := storage.New(t.TempDir())
	require.NoError(t, err)

	_, err = tr.Register(r, r, nil)
	require.NoError(t, err)

	_, err = tr.Register(r, r, nil)
	assert.Error(t, err)
}

func TestRegisterRejectsNilStubs(t *testing.T) {
	tr := naming.NewTree(naming.NewRegistry())
	_, err := tr.Register(nil, nil, nil)
	assert.Error(t, err)
}

func TestRegisterCreatesAncestorsAndReportsDuplicates(t *testing.T) {
	reg := naming.NewRegistry()
	tr := naming.NewTree(reg)

	first, err := storage.New(t.TempDir())
	require.NoError(t, err)
	dup, err := tr.Register(first, first, []path.Path{
		path.MustParse("/a/b/c.txt"),
		path.MustParse("/a/d.txt"),
	})
	require.NoError(t, err)
	assert.Empty(t, dup)

	isDir, err := tr.IsDirectory(path.MustParse("/a/b"))
	require.NoError(t, err)
	assert.True(t, isDir)

	second, err := storage.New(t.TempDir())
	require.NoError(t, err)
	dup, err = tr.Register(second, second, []path.Path{
		path.MustParse("/a/d.txt"),  // already registered under first
		path.MustParse("/a/e.txt"), // new
	})
	require.NoError(t, err)
	assert.Equal(t, []path.Path{path.MustParse("/a/d.txt")}, dup)

	isDir, err = tr.IsDirectory(path.MustParse("/a/e.txt"))
	require.NoError(t, err)
	assert.False(t, isDir)
}
