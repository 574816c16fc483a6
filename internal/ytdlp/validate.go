package ytdlp

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxQueryLen = 500

var (
	youtubeURLPattern = regexp.MustCompile(`^https?://(www\.)?(youtube\.com|youtu\.be)/`)
	videoIDPattern    = regexp.MustCompile(`^[a-zA-Z0-9_\-]{11}$`)
)

// IsValidURL reports whether url points at youtube.com or youtu.be.
func IsValidURL(url string) bool {
	return youtubeURLPattern.MatchString(url)
}

func IsValidVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// SanitizeQuery trims the query and truncates it to 500 bytes without
// splitting a character.
func SanitizeQuery(query string) string {
	q := strings.TrimSpace(query)
	if len(q) <= maxQueryLen {
		return q
	}
	cut := maxQueryLen
	for cut > 0 && !utf8.RuneStart(q[cut]) {
		cut--
	}
	return q[:cut]
}

// videosTabURL points a channel URL at its uploads tab.
func videosTabURL(channelURL string) string {
	if strings.Contains(channelURL, "/videos") {
		return channelURL
	}
	return strings.TrimRight(channelURL, "/") + "/videos"
}
