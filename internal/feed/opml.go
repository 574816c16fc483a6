package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gilliek/go-opml/opml"

	"feeding-tube/internal/models"
)

// ExportOPML writes subscriptions as an OPML outline list, one feed per channel.
func ExportOPML(subs []models.Subscription, feedBaseURL string, now time.Time) ([]byte, error) {
	src := &HTTPSource{BaseURL: feedBaseURL}
	if src.BaseURL == "" {
		src.BaseURL = DefaultBaseURL
	}

	doc := opml.OPML{
		Version: "2.0",
		Head: opml.Head{
			Title:       "feeding-tube subscriptions",
			DateCreated: now.Format(time.RFC1123Z),
		},
		Body: opml.Body{Outlines: make([]opml.Outline, 0, len(subs))},
	}
	for _, sub := range subs {
		doc.Body.Outlines = append(doc.Body.Outlines, opml.Outline{
			Type:    "rss",
			Title:   sub.Name,
			Text:    sub.Name,
			XMLURL:  src.FeedURL(sub.ID),
			HTMLURL: sub.URL,
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal opml: %w", err)
	}
	return []byte(xml.Header + string(data)), nil
}

// ParseOPML reads channel subscriptions out of an OPML document. Outlines are
// walked recursively; ones that do not name a channel id are skipped.
func ParseOPML(data []byte) ([]models.Subscription, error) {
	var doc opml.OPML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse opml: %w", err)
	}

	var subs []models.Subscription
	var walk func([]opml.Outline)
	walk = func(outlines []opml.Outline) {
		for _, o := range outlines {
			if id := outlineChannelID(o); id != "" {
				name := o.Title
				if name == "" {
					name = o.Text
				}
				link := o.HTMLURL
				if link == "" {
					link = "https://www.youtube.com/channel/" + id
				}
				subs = append(subs, models.Subscription{ID: id, Name: name, URL: link})
			}
			walk(o.Outlines)
		}
	}
	walk(doc.Body.Outlines)
	return subs, nil
}

func outlineChannelID(o opml.Outline) string {
	if u, err := url.Parse(o.XMLURL); err == nil && o.XMLURL != "" {
		if id := u.Query().Get("channel_id"); id != "" {
			return id
		}
	}
	if _, rest, ok := strings.Cut(o.HTMLURL, "/channel/"); ok {
		id, _, _ := strings.Cut(rest, "/")
		id, _, _ = strings.Cut(id, "?")
		return id
	}
	return ""
}
