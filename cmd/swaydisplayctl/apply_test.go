package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputSpec(t *testing.T) {
	lm, err := parseOutputSpec("DP-1:3840x2160@60Hz:0,0")
	require.NoError(t, err)
	assert.Equal(t, int32(0), lm.X)
	assert.Equal(t, 1.0, lm.Scale)
	assert.Equal(t, uint32(0), lm.Transform)
	require.Len(t, lm.Monitors, 1)
	assert.Equal(t, "DP-1", lm.Monitors[0].Connector)
	assert.Equal(t, "3840x2160@60Hz", lm.Monitors[0].Mode)

	lm, err = parseOutputSpec("HDMI-A-1:1920x1080@59.951Hz:1920,-400:flipped-90:1.25")
	require.NoError(t, err)
	assert.Equal(t, int32(1920), lm.X)
	assert.Equal(t, int32(-400), lm.Y)
	assert.Equal(t, uint32(5), lm.Transform)
	assert.Equal(t, 1.25, lm.Scale)
}

func TestParseOutputSpecErrors(t *testing.T) {
	bad := []string{
		"",
		"DP-1",
		"DP-1:1920x1080@60Hz",
		"DP-1:1920x1080@60Hz:zero,0",
		"DP-1:1920x1080@60Hz:0,0:sideways",
		"DP-1:1920x1080@60Hz:0,0:90:fat",
		":1920x1080@60Hz:0,0",
	}
	for _, spec := range bad {
		_, err := parseOutputSpec(spec)
		assert.Error(t, err, spec)
	}
}

func TestParseTransform(t *testing.T) {
	tests := map[string]uint32{
		"normal":      0,
		"90":          1,
		"180":         2,
		"270":         3,
		"flipped":     4,
		"flipped-90":  5,
		"flipped-180": 6,
		"flipped-270": 7,
	}
	for name, want := range tests {
		got, err := parseTransform(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := parseTransform("upside-down")
	assert.Error(t, err)
}
