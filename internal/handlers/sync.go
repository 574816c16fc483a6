package handlers

import (
	"log"
	"net/http"

	"feeding-tube/pkg/tasks"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
)

func (h *Handlers) PostPrime(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.store.GetSubscription(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.enqueuePrime(r, id); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Could not queue prime")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handlers) PostRefresh(w http.ResponseWriter, r *http.Request) {
	info, err := h.asynqClient.EnqueueContext(r.Context(), tasks.NewRefreshSubscriptionsTask(), asynq.Queue("high"))
	if err != nil {
		log.Printf("Error enqueuing refresh: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Could not queue refresh")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "task": info.ID})
}
