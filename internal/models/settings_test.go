package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.Player = " "
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.VideosPerChannel = 0
	assert.Error(t, s.Validate())
}

func TestParseSetting(t *testing.T) {
	v, err := ParseSetting(SettingPlayer, "vlc")
	require.NoError(t, err)
	assert.Equal(t, "vlc", v)

	v, err = ParseSetting(SettingVideosPerChannel, "25")
	require.NoError(t, err)
	assert.Equal(t, int64(25), v)

	v, err = ParseSetting(SettingHideShorts, "false")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = ParseSetting(SettingVideosPerChannel, "-3")
	assert.Error(t, err)
	_, err = ParseSetting(SettingHideShorts, "maybe")
	assert.Error(t, err)
	_, err = ParseSetting("volume", "11")
	assert.ErrorIs(t, err, ErrUnknownSetting)
}
