package dfs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dfs.io/client"
	"dfs.io/namingserver"
	"dfs.io/path"
	"dfs.io/storageserver"
)

// startCluster brings up one naming server and n storage servers over
// the real net/rpc transport, each storage server rooted at its own
// temp directory, and returns a client bound to the naming server.
func startCluster(t *testing.T, n int) (*client.Client, func()) {
	t.Helper()

	ns := namingserver.New()
	require.NoError(t, ns.Start("127.0.0.1:0"))

	var stores []*storageserver.Server
	for i := 0; i < n; i++ {
		ss, err := storageserver.New(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, ss.Start("127.0.0.1:0", ns.Addr()))
		stores = append(stores, ss)
	}

	cleanup := func() {
		for _, ss := range stores {
			ss.Stop()
		}
		ns.Stop()
	}

	// client.Client talks directly to the naming server's in-process
	// Service, exercising the same lock / getStorage / read-or-write /
	// unlock sequence it wraps, without a redundant network hop on top
	// of the one storage servers already use to reach Registration.
	return client.New(ns.Service()), cleanup
}

func TestEndToEndWriteThenRead(t *testing.T) {
	cl, cleanup := startCluster(t, 1)
	defer cleanup()

	p := path.MustParse("/greeting.txt")
	require.NoError(t, cl.WriteFile(p, []byte("hello, distributed world")))

	got, err := cl.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "hello, distributed world", string(got))
}

func TestEndToEndOverwrite(t *testing.T) {
	cl, cleanup := startCluster(t, 1)
	defer cleanup()

	p := path.MustParse("/counter.txt")
	require.NoError(t, cl.WriteFile(p, []byte("first")))
	require.NoError(t, cl.WriteFile(p, []byte("second, longer value")))

	got, err := cl.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "second, longer value", string(got))
}
