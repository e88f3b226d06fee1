package storage_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfs.io/path"
	"dfs.io/storage"
)

func newRoot(t *testing.T) *storage.Root {
	dir := t.TempDir()
	r, err := storage.New(dir)
	require.NoError(t, err)
	return r
}

func TestCreateAndSize(t *testing.T) {
	r := newRoot(t)
	p := path.MustParse("/a/b/c.txt")
	ok, err := r.Create(p)
	require.NoError(t, err)
	assert.True(t, ok)

	size, err := r.Size(p)
	require.NoError(t, err)
	assert.EqualValues(t, 0, size)

	// Creating again fails.
	ok, err = r.Create(p)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateRootFails(t *testing.T) {
	r := newRoot(t)
	ok, err := r.Create(path.Root)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteReadRoundTrip(t *testing.T) {
	r := newRoot(t)
	p := path.MustParse("/f.txt")
	_, err := r.Create(p)
	require.NoError(t, err)

	require.NoError(t, r.Write(p, 0, []byte("hello")))
	require.NoError(t, r.Write(p, 5, []byte(" world")))

	data, err := r.Read(p, 0, 11)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestReadOutOfRange(t *testing.T) {
	r := newRoot(t)
	p := path.MustParse("/f.txt")
	_, err := r.Create(p)
	require.NoError(t, err)
	require.NoError(t, r.Write(p, 0, []byte("hi")))

	_, err = r.Read(p, 0, 100)
	assert.Error(t, err)
	_, err = r.Read(p, -1, 1)
	assert.Error(t, err)
}

func TestWriteOutOfRange(t *testing.T) {
	r := newRoot(t)
	p := path.MustParse("/f.txt")
	_, err := r.Create(p)
	require.NoError(t, err)
	assert.Error(t, r.Write(p, -1, []byte("x")))
}

func TestReadWriteMissingFails(t *testing.T) {
	r := newRoot(t)
	p := path.MustParse("/missing.txt")
	_, err := r.Size(p)
	assert.Error(t, err)
	_, err = r.Read(p, 0, 1)
	assert.Error(t, err)
	assert.Error(t, r.Write(p, 0, []byte("x")))
}

func TestDeleteWithAncestorPruning(t *testing.T) {
	dir := t.TempDir()
	r, err := storage.New(dir)
	require.NoError(t, err)

	cTxt := path.MustParse("/a/b/c.txt")
	dTxt := path.MustParse("/a/d.txt")
	_, err = r.Create(cTxt)
	require.NoError(t, err)
	_, err = r.Create(dTxt)
	require.NoError(t, err)

	ok, err := r.Delete(path.MustParse("/a/b"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.Size(cTxt)
	assert.Error(t, err, "c.txt should be gone")
	_, err = r.Size(dTxt)
	assert.NoError(t, err, "d.txt should survive")
	_, statErr := os.Stat(dir + "/a/b")
	assert.True(t, os.IsNotExist(statErr), "empty dir b should be pruned")

	ok, err = r.Delete(dTxt)
	require.NoError(t, err)
	assert.True(t, ok)
	_, statErr = os.Stat(dir + "/a")
	assert.True(t, os.IsNotExist(statErr), "now-empty dir a should be pruned")
	_, statErr = os.Stat(dir)
	assert.NoError(t, statErr, "root itself must survive")
}

func TestDeleteRootFails(t *testing.T) {
	r := newRoot(t)
	ok, err := r.Delete(path.Root)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCopyPullsFromSource(t *testing.T) {
	src := newRoot(t)
	dst := newRoot(t)

	p := path.MustParse("/f.txt")
	_, err := src.Create(p)
	require.NoError(t, err)
	require.NoError(t, src.Write(p, 0, []byte("payload")))

	ok, err := dst.Copy(p, src)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := dst.Read(p, 0, 7)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCopyRootFails(t *testing.T) {
	src := newRoot(t)
	dst := newRoot(t)
	ok, err := dst.Copy(path.Root, src)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWalkEnumeratesFiles(t *testing.T) {
	r := newRoot(t)
	_, err := r.Create(path.MustParse("/a/b.txt"))
	require.NoError(t, err)
	_, err = r.Create(path.MustParse("/c.txt"))
	require.NoError(t, err)

	var seen []string
	require.NoError(t, r.Walk(func(p path.Path) error {
		seen = append(seen, p.String())
		return nil
	}))
	assert.ElementsMatch(t, []string{"/a/b.txt", "/c.txt"}, seen)
}
