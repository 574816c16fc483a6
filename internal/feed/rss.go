package feed

import (
	"fmt"
	"time"

	"github.com/eduncan911/podcast"

	"feeding-tube/internal/models"
)

// Export renders a channel's stored videos as an RSS document. Videos are
// written in the order given.
func Export(sub models.Subscription, videos []models.Video) (string, error) {
	var lastBuild *time.Time
	for _, v := range videos {
		if v.PublishedDate != nil && (lastBuild == nil || v.PublishedDate.After(*lastBuild)) {
			lastBuild = v.PublishedDate
		}
	}
	if lastBuild == nil {
		lastBuild = &time.Time{}
	}

	p := podcast.New(
		sub.Name,
		sub.URL,
		fmt.Sprintf("Videos from %s.", sub.Name),
		sub.AddedAt, lastBuild,
	)

	for _, v := range videos {
		if v.Title == "" {
			v.Title = v.ID
		}
		item := podcast.Item{
			GUID:        v.ID,
			Title:       v.Title,
			Link:        v.URL,
			Description: itemDescription(v),
			PubDate:     v.PublishedDate,
		}
		if v.DurationSeconds != nil {
			item.AddDuration(*v.DurationSeconds)
		}
		if _, err := p.AddItem(item); err != nil {
			return "", fmt.Errorf("add item %s: %w", v.ID, err)
		}
	}

	return p.String(), nil
}

func itemDescription(v models.Video) string {
	desc := v.Title
	if v.DurationSeconds != nil {
		desc += " [" + models.FormatDuration(v.DurationSeconds) + "]"
	}
	if v.ViewCount != nil {
		desc += " " + models.FormatViews(v.ViewCount) + " views"
	}
	if v.IsShort {
		desc += " #shorts"
	}
	return desc
}
