package handlers

import (
	"encoding/json"
	"net/http"

	"adbridge/internal/history"
	"adbridge/internal/infra"
	"adbridge/internal/pipeline"
)

// App bundles the dependencies shared by HTTP handlers.
type App struct {
	Logger        infra.Logger
	WebhookSecret string
	Pipeline      *pipeline.Orchestrator
	History       *history.Store
}

func NewApp(logger infra.Logger, secret string, orch *pipeline.Orchestrator, store *history.Store) *App {
	return &App{Logger: logger, WebhookSecret: secret, Pipeline: orch, History: store}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
