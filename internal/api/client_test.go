package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-client/internal/config"
)

func newTestClient(baseURL, token string) *Client {
	cfg := &config.API{BaseURL: baseURL, TimeoutSeconds: 5}
	return NewClient(cfg, func() string { return token })
}

func TestDoAttachesBearerWhenPresent(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok-123")
	if _, err := c.Profile(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("accept = %q", gotAccept)
	}
}

func TestDoOmitsBearerWhenTokenEmpty(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	if _, err := c.Orders(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Errorf("no authorization header expected, got %q", gotAuth)
	}
}

func TestDoDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		w.Write([]byte(`{"success":true,"message":"welcome","data":{"token":"t"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	resp, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Message != "welcome" {
		t.Fatalf("envelope = %+v", resp.Envelope)
	}
	data, ok := resp.DataDoc().(map[string]any)
	if !ok || data["token"] != "t" {
		t.Fatalf("data doc = %#v", resp.DataDoc())
	}
}

func TestDoNonSuccessStatusForcesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":true,"message":"validation failed"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	resp, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Success {
		t.Fatal("non-2xx must never be a success, whatever the body claims")
	}
	if resp.Message != "validation failed" {
		t.Fatalf("server message must be kept, got %q", resp.Message)
	}
}

func TestDoSynthesizesMessageOnEmptyErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	resp, err := c.Orders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Message == "" {
		t.Fatalf("expected synthesized failure message, got %+v", resp.Envelope)
	}
}

func TestDoToleratesNonEnvelopeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"data":{"id":42}}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	resp, err := c.Orders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	doc, ok := resp.Doc().(map[string]any)
	if !ok {
		t.Fatalf("doc = %#v", resp.Doc())
	}
	if _, present := doc["data"]; !present {
		t.Fatal("raw document must remain probeable")
	}
}

func TestDoTransportFailureIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := newTestClient(srv.URL, "")
	if _, err := c.Orders(context.Background()); err == nil {
		t.Fatal("a dead server is a transport error, not a Response")
	}
}
