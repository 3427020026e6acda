package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"adbridge/internal/geo"
	"adbridge/internal/http/handlers"
	"adbridge/internal/infra"
	"adbridge/internal/middleware"
)

// NewRouter wires the webhook service routes.
func NewRouter(app *handlers.App, logger infra.Logger, resolver *geo.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(logger, resolver),
	)

	r.Get("/v1/healthz", app.Health)
	r.Head("/v1/hooks/card", app.HookCheck)
	r.Post("/v1/hooks/card", app.CardHook)
	r.Get("/v1/cards/{cardID}/last-publish", app.LastPublish)

	return r
}
