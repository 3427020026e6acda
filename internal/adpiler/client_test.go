package adpiler

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"testing"
	"time"
)

type scriptedTransport struct {
	statuses []int
	bodies   []string
	requests []*http.Request
	payloads []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var payload string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		payload = string(raw)
	}
	s.requests = append(s.requests, req)
	s.payloads = append(s.payloads, payload)

	idx := len(s.requests) - 1
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	body := ""
	if idx < len(s.bodies) {
		body = s.bodies[idx]
	}
	return &http.Response{
		StatusCode: s.statuses[idx],
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}, nil
}

func newTestClient(t *testing.T, transport *scriptedTransport, sleeps *[]time.Duration) *Client {
	t.Helper()
	client, err := NewClient(Options{
		BaseURL:    "https://platform.example.com/api",
		Token:      "secret",
		HTTPClient: &http.Client{Transport: transport},
		Sleep: func(d time.Duration) {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
		},
		Rand: rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	transport := &scriptedTransport{
		statuses: []int{503, 503, 503, 200},
		bodies:   []string{"", "", "", `{"id": 42}`},
	}
	var sleeps []time.Duration
	client := newTestClient(t, transport, &sleeps)

	res, err := client.GetJSON(context.Background(), "campaigns/7")
	if err != nil {
		t.Fatalf("GetJSON returned error: %v", err)
	}
	if got := res.ID(); got != "42" {
		t.Fatalf("ID = %q, want 42", got)
	}
	if len(transport.requests) != 4 {
		t.Fatalf("attempts = %d, want 4", len(transport.requests))
	}
	if len(sleeps) != 3 {
		t.Fatalf("delays = %d, want 3", len(sleeps))
	}
	for k, d := range sleeps {
		min := 400 * time.Millisecond << k
		if d < min {
			t.Fatalf("delay %d = %v, want >= %v", k, d, min)
		}
		if d > min+200*time.Millisecond {
			t.Fatalf("delay %d = %v exceeds jitter bound %v", k, d, min+200*time.Millisecond)
		}
	}
}

func TestGetJSONClientErrorIsFatal(t *testing.T) {
	transport := &scriptedTransport{
		statuses: []int{404},
		bodies:   []string{`{"error":"campaign not found"}`},
	}
	var sleeps []time.Duration
	client := newTestClient(t, transport, &sleeps)

	_, err := client.GetJSON(context.Background(), "campaigns/missing")
	if err == nil {
		t.Fatalf("expected error for 404")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.Status != 404 {
		t.Fatalf("status = %d, want 404", apiErr.Status)
	}
	if !strings.Contains(apiErr.Body, "campaign not found") {
		t.Fatalf("body not preserved: %q", apiErr.Body)
	}
	if len(transport.requests) != 1 {
		t.Fatalf("404 must never retry, attempts = %d", len(transport.requests))
	}
	if len(sleeps) != 0 {
		t.Fatalf("404 must not sleep, got %d delays", len(sleeps))
	}
}

func TestGetJSONExhaustsRetries(t *testing.T) {
	transport := &scriptedTransport{
		statuses: []int{500, 500, 500, 500},
		bodies:   []string{"boom", "boom", "boom", "final failure"},
	}
	client := newTestClient(t, transport, nil)

	_, err := client.GetJSON(context.Background(), "campaigns/7")
	if err == nil {
		t.Fatalf("expected error after exhausted retries")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.Body != "final failure" {
		t.Fatalf("last observed error not surfaced: %q", apiErr.Body)
	}
	if len(transport.requests) != 4 {
		t.Fatalf("attempts = %d, want 4", len(transport.requests))
	}
}

func TestPostMultipartSendsAuthAndReplaysBody(t *testing.T) {
	transport := &scriptedTransport{
		statuses: []int{503, 201},
		bodies:   []string{"", `{"id":"abc"}`},
	}
	client := newTestClient(t, transport, nil)

	form := NewForm()
	form.Set("name", "Acme: Spring Sale")
	form.AddFile("file", "square.png", []byte{0x89, 0x50})

	res, err := client.PostMultipart(context.Background(), "campaigns/7/social-ads", form)
	if err != nil {
		t.Fatalf("PostMultipart returned error: %v", err)
	}
	if res.ID() != "abc" {
		t.Fatalf("ID = %q, want abc", res.ID())
	}
	if len(transport.requests) != 2 {
		t.Fatalf("attempts = %d, want 2", len(transport.requests))
	}
	if auth := transport.requests[0].Header.Get("Authorization"); auth != "Bearer secret" {
		t.Fatalf("authorization header = %q", auth)
	}
	if transport.payloads[0] != transport.payloads[1] {
		t.Fatalf("retried request body differs from original")
	}
	if !strings.Contains(transport.payloads[1], "Acme: Spring Sale") {
		t.Fatalf("form field missing from body")
	}
}

func TestNonJSONBodyIsWrappedNotFatal(t *testing.T) {
	transport := &scriptedTransport{
		statuses: []int{200},
		bodies:   []string{"OK"},
	}
	client := newTestClient(t, transport, nil)

	res, err := client.GetJSON(context.Background(), "campaigns/7")
	if err != nil {
		t.Fatalf("non-JSON body must not fail: %v", err)
	}
	if res.Fields != nil {
		t.Fatalf("expected nil Fields for non-JSON body")
	}
	if res.Raw != "OK" {
		t.Fatalf("Raw = %q, want OK", res.Raw)
	}
}
