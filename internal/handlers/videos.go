package handlers

import (
	"net/http"
	"strconv"

	"feeding-tube/internal/models"

	"github.com/gorilla/mux"
)

const (
	defaultPageSize    = 50
	defaultSearchLimit = 20
)

type videoView struct {
	models.Video
	Watched bool `json:"watched"`
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// queryBool reads key, falling back to def when it is absent.
func queryBool(r *http.Request, key string, def bool) (bool, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	b, err := strconv.ParseBool(v)
	return b, err == nil
}

// GetVideos pages through stored videos. Repeated channel parameters
// restrict the page to those channels.
func (h *Handlers) GetVideos(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid page")
		return
	}
	pageSize, ok := queryInt(r, "page_size", defaultPageSize)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid page_size")
		return
	}

	var channels []string
	if q, present := r.URL.Query()["channel"]; present {
		channels = append([]string{}, q...)
	}

	result, err := h.store.GetVideosPaginated(r.Context(), channels, page, pageSize)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetChannelVideos lists a channel's newest videos with their watched state.
// limit and hide_shorts default to the stored settings.
func (h *Handlers) GetChannelVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	if _, err := h.store.GetSubscription(ctx, id); err != nil {
		writeStoreError(w, err)
		return
	}

	settings, err := h.store.GetSettings(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	limit, ok := queryInt(r, "limit", int(settings.VideosPerChannel))
	if !ok || limit < 0 {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	hideShorts, ok := queryBool(r, "hide_shorts", settings.HideShorts)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid hide_shorts")
		return
	}

	videos, err := h.store.GetVideos(ctx, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	watched, err := h.store.WatchedIDs(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	views := make([]videoView, 0, min(len(videos), max(limit, 0)))
	for _, v := range videos {
		if limit > 0 && len(views) == limit {
			break
		}
		if hideShorts && v.IsShort {
			continue
		}
		_, seen := watched[v.ID]
		views = append(views, videoView{Video: v, Watched: seen})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handlers) ToggleWatched(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	watched, err := h.store.ToggleWatched(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"watched": watched})
}

func (h *Handlers) GetDescription(w http.ResponseWriter, r *http.Request) {
	d, err := h.youtube.Description(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) GetSearch(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultSearchLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	videos, err := h.youtube.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	writeJSON(w, http.StatusOK, videos)
}
