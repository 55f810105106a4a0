package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clipvault/clipvault/internal/services"
)

// ClipboardHandler exposes the coordinator over HTTP. Owner identity comes
// from the URL and is assumed to be validated upstream.
type ClipboardHandler struct {
	svc *services.ClipboardService
}

func NewClipboardHandler(svc *services.ClipboardService) *ClipboardHandler {
	return &ClipboardHandler{svc: svc}
}

func (h *ClipboardHandler) Routes(r chi.Router) {
	r.Post("/owners/{ownerID}/items", h.addItem)
	r.Get("/owners/{ownerID}/items", h.listItems)
	r.Get("/owners/{ownerID}/items/{itemID}", h.getItem)
	r.Delete("/owners/{ownerID}/items/{itemID}", h.removeItem)
	r.Put("/owners/{ownerID}/pause", h.setPaused)
}

func (h *ClipboardHandler) addItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	contentType := r.Header.Get("Content-Type")

	item, err := h.svc.AddItem(r.Context(), ownerID, contentType, r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *ClipboardHandler) listItems(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	if r.URL.Query().Get("all") == "true" {
		items, err := h.svc.ListAll(r.Context(), ownerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	take := 0
	if v := r.URL.Query().Get("take"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "take must be an integer", http.StatusBadRequest)
			return
		}
		take = n
	}

	items, err := h.svc.ListRecent(r.Context(), ownerID, take)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ClipboardHandler) getItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	itemID := chi.URLParam(r, "itemID")

	item, payload, err := h.svc.GetItem(r.Context(), ownerID, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer payload.Close()

	w.Header().Set("Content-Type", item.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(item.SizeBytes, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, payload); err != nil {
		log.Printf("failed to stream payload for item %s: %v", itemID, err)
	}
}

func (h *ClipboardHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	itemID := chi.URLParam(r, "itemID")

	if err := h.svc.RemoveItem(r.Context(), ownerID, itemID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ClipboardHandler) setPaused(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")

	var req struct {
		IsPaused bool `json:"is_paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	state, err := h.svc.SetPaused(r.Context(), ownerID, req.IsPaused)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrOwnerPaused):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrStoreUnavailable):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		// ErrPayloadMissing and anything unclassified is a server-side
		// inconsistency, not a caller mistake.
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
