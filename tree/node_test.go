package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfs.io/errors"
	"dfs.io/tree"
)

func TestFindMissingFailsNotFound(t *testing.T) {
	d := tree.NewDirectory()
	_, err := d.Find("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotExist, err))
}

func TestFindOnFileFailsNotFound(t *testing.T) {
	f := tree.NewFile(0)
	_, err := f.Find("anything")
	require.Error(t, err)
}

func TestPutAndFindChild(t *testing.T) {
	d := tree.NewDirectory()
	child := tree.NewFile(0)
	d.PutChild("a.txt", child)
	got, err := d.Find("a.txt")
	require.NoError(t, err)
	assert.Same(t, child, got)
}

func TestRemoveChild(t *testing.T) {
	d := tree.NewDirectory()
	d.PutChild("a.txt", tree.NewFile(0))
	d.RemoveChild("a.txt")
	_, err := d.Find("a.txt")
	assert.Error(t, err)
}

func TestEachFileVisitsAllDescendants(t *testing.T) {
	root := tree.NewDirectory()
	a := tree.NewDirectory()
	root.PutChild("a", a)
	f1 := tree.NewFile(0)
	f2 := tree.NewFile(1)
	a.PutChild("b.txt", f1)
	root.PutChild("c.txt", f2)

	var found []*tree.Node
	root.EachFile(func(n *tree.Node) { found = append(found, n) })
	assert.Len(t, found, 2)
	assert.Contains(t, found, f1)
	assert.Contains(t, found, f2)
}

func TestFileNodeReplicasAndReadCount(t *testing.T) {
	f := tree.NewFile(3)
	assert.Equal(t, []int{3}, f.Replicas())
	assert.Equal(t, 3, f.Primary())
	assert.Equal(t, 0, f.ReadCount())
	assert.Equal(t, 1, f.IncrementReadCount())
	f.AppendReplica(5)
	assert.Equal(t, []int{3, 5}, f.Replicas())
	f.ResetReadCount()
	assert.Equal(t, 0, f.ReadCount())
}
