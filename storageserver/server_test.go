package storageserver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"dfs.io/namingserver"
	"dfs.io/path"
	"dfs.io/storageserver"
)

func TestStartRegistersAndPrunesDuplicates(t *testing.T) {
	ns := namingserver.New()
	require.NoError(t, ns.Start("127.0.0.1:0"))
	defer ns.Stop()

	// First storage server already holds /shared.txt when it starts.
	dir1 := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir1, "shared.txt"), []byte("v1"), 0o644))
	s1, err := storageserver.New(dir1)
	require.NoError(t, err)
	require.NoError(t, s1.Start("127.0.0.1:0", ns.Addr()))
	defer s1.Stop()

	// Second storage server starts up already holding the same path.
	// Registration should report it as a duplicate and the second
	// server should prune its own local copy.
	dir2 := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir2, "shared.txt"), []byte("v2"), 0o644))
	s2, err := storageserver.New(dir2)
	require.NoError(t, err)
	require.NoError(t, s2.Start("127.0.0.1:0", ns.Addr()))
	defer s2.Stop()

	_, err = os.Stat(filepath.Join(dir2, "shared.txt"))
	require.Truef(t, os.IsNotExist(err), "expected duplicate to be pruned locally, got err=%v", err)

	n, err := ns.Tree.ReplicaCount(path.MustParse("/shared.txt"))
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestStartRejectsRestart(t *testing.T) {
	ns := namingserver.New()
	require.NoError(t, ns.Start("127.0.0.1:0"))
	defer ns.Stop()

	s, err := storageserver.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Start("127.0.0.1:0", ns.Addr()))
	defer s.Stop()

	require.Error(t, s.Start("127.0.0.1:0", ns.Addr()))
}
