package tree_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dfs.io/tree"
)

func TestLockUnlockExclusive(t *testing.T) {
	l := tree.NewLock()
	l.Lock(true)
	require.NoError(t, l.Unlock(true))
}

func TestLockUnlockShared(t *testing.T) {
	l := tree.NewLock()
	l.Lock(false)
	l.Lock(false)
	require.NoError(t, l.Unlock(false))
	require.NoError(t, l.Unlock(false))
}

func TestUnlockWithoutLockIsArgumentError(t *testing.T) {
	l := tree.NewLock()
	err := l.Unlock(false)
	assert.Error(t, err)
	err = l.Unlock(true)
	assert.Error(t, err)
}

func TestUnlockMismatchedModeIsArgumentError(t *testing.T) {
	l := tree.NewLock()
	l.Lock(false)
	err := l.Unlock(true) // held shared, asking to release exclusive
	assert.Error(t, err)
	require.NoError(t, l.Unlock(false))
}

func TestExclusiveExcludesSharedUntilReleased(t *testing.T) {
	l := tree.NewLock()
	l.Lock(true)

	acquired := make(chan struct{})
	go func() {
		l.Lock(false)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("shared lock acquired while exclusive held")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, l.Unlock(true))
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("shared lock never acquired after exclusive released")
	}
	require.NoError(t, l.Unlock(false))
}
