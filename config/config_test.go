package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rigkit/parameter"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, parameter.TickInterval, c.Engine.TickInterval)
	assert.Equal(t, parameter.StartTransitionDuration, c.Pose.StartTransition)
	assert.Equal(t, parameter.WatchPeriod, c.Animator.WatchPeriod)
	assert.Equal(t, parameter.DefaultKeyPrefix, c.Store.KeyPrefix)
	assert.Equal(t, "logs", c.Log.Dir)
	require.NoError(t, c.Validate())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  tick_interval: 8ms
pose:
  end_transition: 1s
constraint:
  floor_height: 0.25
store:
  redis_addr: localhost:6379
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Millisecond, c.Engine.TickInterval)
	assert.Equal(t, time.Second, c.Pose.EndTransition)
	assert.Equal(t, parameter.StartTransitionDuration, c.Pose.StartTransition, "unset keys keep defaults")
	assert.Equal(t, 0.25, c.Constraint.FloorHeight)
	assert.Equal(t, "localhost:6379", c.Store.RedisAddr)
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.toml")
	require.NoError(t, os.WriteFile(path, []byte("[animator]\nwatch_period = \"50ms\"\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, c.Animator.WatchPeriod)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RIGKIT_ENGINE_TICK_INTERVAL", "33ms")
	t.Setenv("RIGKIT_LOG_DEBUG", "true")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 33*time.Millisecond, c.Engine.TickInterval)
	assert.True(t, c.Log.Debug)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Setenv("RIGKIT_ENGINE_TICK_INTERVAL", "0s")
	_, err = Load("")
	require.ErrorIs(t, err, ErrInvalidConfig)
}
