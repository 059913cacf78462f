package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigValidates(t *testing.T) {
	c := DefaultConfig()
	assert.NoError(t, c.Validate())
}

func TestValidateRejectsZeroGridResolution(t *testing.T) {
	c := DefaultConfig()
	c.Grid.Resolution = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestValidateRejectsZeroParticleCount(t *testing.T) {
	c := DefaultConfig()
	c.Localize.N = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestLoadRoundTripsDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	data, err := yaml.Marshal(c)
	require.NoError(t, err)

	loaded, err := Load(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	invalid := DefaultConfig()
	invalid.Controller.MaxLinearSpeed = -1
	data, err := yaml.Marshal(invalid)
	require.NoError(t, err)

	_, err = Load(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
