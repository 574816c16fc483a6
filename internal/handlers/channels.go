package handlers

import (
	"net/http"
	"sort"

	"feeding-tube/internal/feed"
	"feeding-tube/internal/models"

	"github.com/gorilla/mux"
)

type statsResponse struct {
	NewCounts    map[string]int                 `json:"newCounts"`
	Channels     map[string]models.ChannelStats `json:"channels"`
	FullyWatched []string                       `json:"fullyWatched"`
}

// MarkChannelWatched marks every stored video of the channel watched.
func (h *Handlers) MarkChannelWatched(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	videos, err := h.store.GetVideos(ctx, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	n, err := h.store.MarkManyWatched(ctx, ids)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": n})
}

func (h *Handlers) MarkChannelViewed(w http.ResponseWriter, r *http.Request) {
	if err := h.store.UpdateChannelLastViewed(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) MarkAllViewed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := h.store.ListSubscriptions(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}
	if err := h.store.MarkAllChannelsViewed(ctx, ids); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats returns new-video counts, per-channel totals and the channels
// with nothing left unwatched. hide_shorts defaults to the stored setting.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.store.GetSettings(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	hideShorts, ok := queryBool(r, "hide_shorts", settings.HideShorts)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid hide_shorts")
		return
	}

	var resp statsResponse
	if resp.NewCounts, err = h.store.NewVideoCounts(ctx, hideShorts); err != nil {
		writeStoreError(w, err)
		return
	}
	if resp.Channels, err = h.store.ChannelStats(ctx, hideShorts); err != nil {
		writeStoreError(w, err)
		return
	}
	done, err := h.store.FullyWatchedChannels(ctx, hideShorts)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp.FullyWatched = make([]string, 0, len(done))
	for id := range done {
		resp.FullyWatched = append(resp.FullyWatched, id)
	}
	sort.Strings(resp.FullyWatched)
	writeJSON(w, http.StatusOK, resp)
}

// GetChannelFeed serves a channel's stored videos as an RSS feed.
func (h *Handlers) GetChannelFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, err := h.store.GetSubscription(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	videos, err := h.store.GetVideos(ctx, sub.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	rss, err := feed.Export(*sub, videos)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
