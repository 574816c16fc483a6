package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Setting keys as persisted in the settings table.
const (
	SettingPlayer           = "player"
	SettingVideosPerChannel = "videosPerChannel"
	SettingHideShorts       = "hideShorts"
)

// Settings holds user preferences. Missing keys fall back to DefaultSettings.
type Settings struct {
	Player           string `json:"player"`
	VideosPerChannel int64  `json:"videosPerChannel"`
	HideShorts       bool   `json:"hideShorts"`
}

func DefaultSettings() Settings {
	return Settings{
		Player:           "mpv",
		VideosPerChannel: 15,
		HideShorts:       true,
	}
}

var ErrUnknownSetting = errors.New("unknown setting")

// Validate rejects settings the player and listings cannot work with.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Player) == "" {
		return errors.New("player must not be empty")
	}
	if s.VideosPerChannel < 1 {
		return fmt.Errorf("videosPerChannel must be positive, got %d", s.VideosPerChannel)
	}
	return nil
}

// ParseSetting converts a command-line value into the typed value stored under key.
func ParseSetting(key, raw string) (interface{}, error) {
	switch key {
	case SettingPlayer:
		if strings.TrimSpace(raw) == "" {
			return nil, errors.New("player must not be empty")
		}
		return raw, nil
	case SettingVideosPerChannel:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("videosPerChannel must be a positive integer, got %q", raw)
		}
		return n, nil
	case SettingHideShorts:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("hideShorts must be true or false, got %q", raw)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%q: %w", key, ErrUnknownSetting)
}
