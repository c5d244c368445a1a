package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoneID(t *testing.T) {
	assert.False(t, BoneNone.Valid())
	assert.True(t, BoneID(0).Valid())
	assert.Equal(t, "none", BoneNone.String())
	assert.Equal(t, "bone#12", BoneID(12).String())
}

func TestWriterString(t *testing.T) {
	assert.Equal(t, "Pose", WriterPose.String())
	assert.Equal(t, "Tracker", WriterTracker.String())
	assert.Equal(t, "Unknown", Writer(9).String())
}

func TestRecover(t *testing.T) {
	err := Recover(func() error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	sentinel := errors.New("plain")
	assert.ErrorIs(t, Recover(func() error { return sentinel }), sentinel)
	assert.NoError(t, Recover(func() error { return nil }))
}
