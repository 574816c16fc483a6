package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"feeding-tube/internal/db"
	"feeding-tube/internal/middleware"
	"feeding-tube/internal/models"
	"feeding-tube/internal/ytdlp"
	"feeding-tube/pkg/tasks"

	"github.com/gorilla/mux"
)

// YouTube is the lookup side of yt-dlp the API exposes.
type YouTube interface {
	ChannelInfo(ctx context.Context, url string) (*models.Subscription, error)
	Search(ctx context.Context, query string, limit int) ([]models.Video, error)
	Description(ctx context.Context, videoID string) (*ytdlp.VideoDescription, error)
}

type Handlers struct {
	store       *db.Store
	youtube     YouTube
	asynqClient tasks.Enqueuer
	feedBaseURL string
	now         func() time.Time
}

func New(store *db.Store, youtube YouTube, asynqClient tasks.Enqueuer, feedBaseURL string) *Handlers {
	return &Handlers{
		store:       store,
		youtube:     youtube,
		asynqClient: asynqClient,
		feedBaseURL: feedBaseURL,
		now:         time.Now,
	}
}

// Router registers every route. Endpoints that queue work go through limiter.
func (h *Handlers) Router(limiter *middleware.RateLimiterMiddleware) *mux.Router {
	r := mux.NewRouter()
	limited := func(f http.HandlerFunc) http.Handler { return limiter.Middleware(f) }

	r.HandleFunc("/subscriptions", h.GetSubscriptions).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions", h.PostSubscription).Methods(http.MethodPost)
	r.HandleFunc("/subscriptions.opml", h.GetOPML).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions/import", h.PostOPML).Methods(http.MethodPost)
	r.HandleFunc("/subscriptions/{id}", h.DeleteSubscription).Methods(http.MethodDelete)

	r.HandleFunc("/videos", h.GetVideos).Methods(http.MethodGet)
	r.HandleFunc("/videos/{id}/watched", h.ToggleWatched).Methods(http.MethodPost)
	r.HandleFunc("/videos/{id}/description", h.GetDescription).Methods(http.MethodGet)
	r.HandleFunc("/search", h.GetSearch).Methods(http.MethodGet)

	r.HandleFunc("/channels/viewed", h.MarkAllViewed).Methods(http.MethodPost)
	r.HandleFunc("/channels/{id}/videos", h.GetChannelVideos).Methods(http.MethodGet)
	r.HandleFunc("/channels/{id}/watched", h.MarkChannelWatched).Methods(http.MethodPost)
	r.HandleFunc("/channels/{id}/viewed", h.MarkChannelViewed).Methods(http.MethodPost)
	r.HandleFunc("/channels/{id}/feed.xml", h.GetChannelFeed).Methods(http.MethodGet)
	r.Handle("/channels/{id}/prime", limited(h.PostPrime)).Methods(http.MethodPost)

	r.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	r.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	r.HandleFunc("/settings", h.PutSettings).Methods(http.MethodPut)
	r.Handle("/refresh", limited(h.PostRefresh)).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store and lookup errors onto status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, db.ErrTooManyParams),
		errors.Is(err, ytdlp.ErrInvalidURL),
		errors.Is(err, ytdlp.ErrInvalidVideoID),
		errors.Is(err, ytdlp.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
