package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"adbridge/internal/geo"
	"adbridge/internal/http/handlers"
	"adbridge/internal/http/httpapi"
	"adbridge/internal/infra"
	"adbridge/internal/pipeline"
)

func newTestServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	logger := infra.Logger(zerolog.New(io.Discard))
	// A pipeline without mapping or defaults fails fast on any job; the
	// handler contract under test is transport-level only.
	orch := pipeline.New(pipeline.Options{Logger: logger})
	app := handlers.NewApp(logger, secret, orch, nil)
	var resolver *geo.Resolver
	server := httptest.NewServer(httpapi.NewRouter(app, logger, resolver))
	t.Cleanup(server.Close)
	return server
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, "")
	resp, err := http.Get(server.URL + "/v1/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestHookHandshake(t *testing.T) {
	server := newTestServer(t, "s3cret")
	req, _ := http.NewRequest(http.MethodHead, server.URL+"/v1/hooks/card", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("HEAD hook: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("handshake status = %d, want 200", resp.StatusCode)
	}
}

func TestCardHookRejectsBadSecret(t *testing.T) {
	server := newTestServer(t, "s3cret")
	resp, err := http.Post(server.URL+"/v1/hooks/card", "application/json", strings.NewReader(`{"card":{"id":"c1"}}`))
	if err != nil {
		t.Fatalf("POST hook: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestCardHookAcceptsValidEvent(t *testing.T) {
	server := newTestServer(t, "s3cret")
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/v1/hooks/card",
		strings.NewReader(`{"card":{"id":"c1","name":"Acme: Spring Sale"}}`))
	req.Header.Set("X-Webhook-Secret", "s3cret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST hook: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
}

func TestCardHookRejectsMalformedPayload(t *testing.T) {
	server := newTestServer(t, "")
	resp, err := http.Post(server.URL+"/v1/hooks/card", "application/json", strings.NewReader(`{`))
	if err != nil {
		t.Fatalf("POST hook: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
