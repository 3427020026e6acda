package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adbridge/internal/domain"
	"adbridge/internal/pipeline"
	"adbridge/internal/source"
)

// HookCheck answers the source platform's webhook handshake.
func (a *App) HookCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// CardHook accepts a card event and runs the publish pipeline for it. The
// pipeline runs detached from the request so the webhook can be answered
// within the platform's delivery timeout.
func (a *App) CardHook(w http.ResponseWriter, r *http.Request) {
	if a.WebhookSecret != "" && r.Header.Get("X-Webhook-Secret") != a.WebhookSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid webhook secret"})
		return
	}

	var event source.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if event.Card.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "card id is required"})
		return
	}

	meta := domain.AdMeta{}
	if event.Meta != nil {
		meta = *event.Meta
	}
	job := pipeline.Job{Card: event.Card, Meta: meta}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		if _, err := a.Pipeline.Run(ctx, job); err != nil {
			a.Logger.Error().Err(err).Str("card_id", job.Card.ID).Msg("hook: publish failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "card_id": event.Card.ID})
}

// LastPublish returns the most recent stored publish outcome for a card.
func (a *App) LastPublish(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	row, found, err := a.History.LastForCard(r.Context(), cardID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no publish recorded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":             row.ID,
		"mode":           row.Mode,
		"campaign_id":    row.CampaignID,
		"entity_id":      row.EntityID,
		"paid":           row.Paid,
		"uploaded_count": row.UploadedCount,
		"created_at":     row.CreatedAt,
	})
}
