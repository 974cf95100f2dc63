package utils

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	require.NoError(t, SetLogLevel("DEBUG"))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	require.NoError(t, SetLogLevel("warning"))
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())

	assert.Error(t, SetLogLevel("verbose"))
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())
}

func TestDBLock(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.sqlite")
	l, err := NewDBLock(db)
	require.NoError(t, err)
	assert.Equal(t, db+".lock", l.Path())

	require.NoError(t, l.Lock())
	require.NoError(t, l.Unlock())
	// unlocking twice is harmless
	require.NoError(t, l.Unlock())
}

func TestDefaultDBPath(t *testing.T) {
	p, err := GetAbsDBPath("")
	require.NoError(t, err)
	assert.Equal(t, "buildwise.sqlite", filepath.Base(p))
}

func TestWithDBLockRunsWhileHeld(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.sqlite")
	ran := false
	err := WithDBLock(db, func() error {
		other, err := NewDBLock(db)
		require.NoError(t, err)
		// a second handle cannot take the lock while fn runs
		ok, err := other.lock.TryLock()
		require.NoError(t, err)
		assert.False(t, ok)
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	after, err := NewDBLock(db)
	require.NoError(t, err)
	ok, err := after.lock.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, after.Unlock())
}
