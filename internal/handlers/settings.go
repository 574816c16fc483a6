package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"feeding-tube/internal/models"
)

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PutSettings overlays the fields present in the body on the stored settings.
// Unknown fields are rejected.
func (h *Handlers) PutSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings")
		return
	}

	settings, err := h.store.GetSettings(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	values := map[string]interface{}{
		models.SettingPlayer:           settings.Player,
		models.SettingVideosPerChannel: settings.VideosPerChannel,
		models.SettingHideShorts:       settings.HideShorts,
	}
	for key := range present {
		if err := h.store.SetSetting(ctx, key, values[key]); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, settings)
}
