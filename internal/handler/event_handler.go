package handler

import (
	"encoding/json"
	"net/http"

	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/internal/service"
)

// EventHandler accepts pipeline events over HTTP, mirroring the Kafka
// surface for manual triggering and backfills.
type EventHandler struct {
	processor *service.EventProcessor
}

func NewEventHandler(processor *service.EventProcessor) *EventHandler {
	return &EventHandler{processor: processor}
}

func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.processor.HandleEvent(r.Context(), ev); err != nil {
		http.Error(w, "failed to process event", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("event accepted"))
}
