package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wh.pid")
	p := New(path)

	require.NoError(t, p.Acquire())

	pid, err := p.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	running, ok := p.Running()
	assert.True(t, ok)
	assert.Equal(t, os.Getpid(), running)

	require.NoError(t, p.Release())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoError(t, p.Release())
}

func TestAcquire_RefusesLiveOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wh.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644))

	err := New(path).Acquire()

	var running *ErrAlreadyRunning
	require.ErrorAs(t, err, &running)
	assert.Equal(t, os.Getpid(), running.PID)
}

func TestAcquire_ReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wh.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	p := New(path)
	require.NoError(t, p.Acquire())

	pid, err := p.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}
