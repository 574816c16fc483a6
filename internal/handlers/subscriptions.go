package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"feeding-tube/internal/db"
	"feeding-tube/internal/feed"
	"feeding-tube/pkg/tasks"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
)

const maxOPMLBytes = 1 << 20

type addSubscriptionRequest struct {
	URL string `json:"url"`
}

func (h *Handlers) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListSubscriptions(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// PostSubscription resolves the url through yt-dlp, stores the channel and
// queues a prime for it.
func (h *Handlers) PostSubscription(w http.ResponseWriter, r *http.Request) {
	var req addSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	sub, err := h.youtube.ChannelInfo(r.Context(), req.URL)
	if err != nil {
		log.Printf("Error resolving channel %q: %v", req.URL, err)
		writeError(w, http.StatusBadRequest, "Invalid or unsupported YouTube URL")
		return
	}
	now := h.now().UTC()
	sub.AddedAt = &now

	if err := h.store.AddSubscription(r.Context(), *sub); err != nil {
		writeStoreError(w, err)
		return
	}
	log.Printf("Subscribed to %s (%s)", sub.Name, sub.ID)

	h.enqueuePrime(r, sub.ID)
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handlers) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.RemoveSubscription(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetOPML(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListSubscriptions(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	data, err := feed.ExportOPML(subs, h.feedBaseURL, h.now())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/x-opml+xml")
	w.Write(data)
}

// PostOPML imports subscriptions from an OPML body. Channels already
// subscribed are counted as skipped.
func (h *Handlers) PostOPML(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxOPMLBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	subs, err := feed.ParseOPML(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, skipped := 0, 0
	now := h.now().UTC()
	for _, sub := range subs {
		sub.AddedAt = &now
		err := h.store.AddSubscription(r.Context(), sub)
		if errors.Is(err, db.ErrConflict) {
			skipped++
			continue
		}
		if err != nil {
			writeStoreError(w, err)
			return
		}
		added++
		h.enqueuePrime(r, sub.ID)
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added, "skipped": skipped})
}

// enqueuePrime queues a prime for channelID. A duplicate means one is
// already pending.
func (h *Handlers) enqueuePrime(r *http.Request, channelID string) error {
	task, err := tasks.NewPrimeChannelTask(channelID)
	if err != nil {
		return err
	}
	_, err = h.asynqClient.EnqueueContext(r.Context(), task, tasks.PrimeChannelOptions()...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		log.Printf("Error enqueuing prime for %s: %v", channelID, err)
	}
	return err
}
