//go:build unix

package spawn

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysProcAttr(t *testing.T) {
	t.Run("nothing requested", func(t *testing.T) {
		attr, err := sysProcAttr(Options{})
		require.NoError(t, err)
		assert.Nil(t, attr)
	})

	t.Run("detached", func(t *testing.T) {
		attr, err := sysProcAttr(Options{Detached: Bool(true)})
		require.NoError(t, err)
		require.NotNil(t, attr)
		assert.True(t, attr.Setsid)
		assert.Nil(t, attr.Credential)
	})

	t.Run("uid only keeps current gid", func(t *testing.T) {
		attr, err := sysProcAttr(Options{UID: Uint32(4242)})
		require.NoError(t, err)
		require.NotNil(t, attr.Credential)
		assert.Equal(t, uint32(4242), attr.Credential.Uid)
		assert.Equal(t, uint32(os.Getgid()), attr.Credential.Gid)
		assert.Equal(t, os.Getuid() != 0, attr.Credential.NoSetGroups)
	})

	t.Run("gid only keeps current uid", func(t *testing.T) {
		attr, err := sysProcAttr(Options{GID: Uint32(4242)})
		require.NoError(t, err)
		require.NotNil(t, attr.Credential)
		assert.Equal(t, uint32(os.Getuid()), attr.Credential.Uid)
		assert.Equal(t, uint32(4242), attr.Credential.Gid)
	})
}

func TestSpawn_Credentials(t *testing.T) {
	s, _ := newTestSpawner()
	uid := uint32(os.Getuid())

	result, err := s.Spawn(context.Background(), "id", []string{"-u"}, Options{
		UID:     Uint32(uid),
		GID:     Uint32(uint32(os.Getgid())),
		Capture: []Stream{Stdout},
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", uid), result.Stdout)
}
