// Package feed reads a channel's public video feed and renders stored videos
// back out as RSS or OPML.
package feed

import (
	"strings"

	"feeding-tube/internal/models"
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

// DecodeEntities replaces the five predefined XML entities. Anything else is left as is.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// Parse extracts the videos of a channel feed. The feed format is narrow and
// fixed, so entries and their fields are located by substring search rather
// than a general XML parser. Entries without a video id or title are dropped.
func Parse(raw, channelID, channelName string) []models.Video {
	var videos []models.Video

	rest := raw
	for {
		start := strings.Index(rest, "<entry>")
		if start < 0 {
			break
		}
		rest = rest[start+len("<entry>"):]
		end := strings.Index(rest, "</entry>")
		if end < 0 {
			break
		}

		if v, ok := parseEntry(rest[:end], channelID, channelName); ok {
			videos = append(videos, v)
		}
		rest = rest[end+len("</entry>"):]
	}
	return videos
}

func parseEntry(entry, channelID, channelName string) (models.Video, bool) {
	id, ok := extractTag(entry, "yt:videoId")
	if !ok || id == "" {
		return models.Video{}, false
	}
	title, ok := extractTag(entry, "title")
	if !ok {
		return models.Video{}, false
	}

	url, ok := extractAttr(entry, "link", "href")
	if !ok {
		url = models.WatchURL(id)
	}

	v := models.Video{
		ID:          id,
		Title:       DecodeEntities(title),
		URL:         url,
		IsShort:     models.IsShortURL(url),
		ChannelID:   &channelID,
		ChannelName: &channelName,
	}
	if published, ok := extractTag(entry, "published"); ok {
		v.PublishedDate = models.ParseTimestamp(published)
	}
	return v, true
}

// extractTag returns the text between the first <tag> and the following </tag>.
func extractTag(s, tag string) (string, bool) {
	openTag, closeTag := "<"+tag+">", "</"+tag+">"
	start := strings.Index(s, openTag)
	if start < 0 {
		return "", false
	}
	start += len(openTag)
	end := strings.Index(s[start:], closeTag)
	if end < 0 {
		return "", false
	}
	return s[start : start+end], true
}

// extractAttr returns the quoted value of attr on the first self-closing <tag .../>.
func extractAttr(s, tag, attr string) (string, bool) {
	start := strings.Index(s, "<"+tag)
	if start < 0 {
		return "", false
	}
	element := s[start:]
	end := strings.Index(element, "/>")
	if end < 0 {
		return "", false
	}
	element = element[:end]

	key := attr + `="`
	i := strings.Index(element, key)
	if i < 0 {
		return "", false
	}
	value := element[i+len(key):]
	j := strings.IndexByte(value, '"')
	if j < 0 {
		return "", false
	}
	return value[:j], true
}
