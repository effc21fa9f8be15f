package practicum

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logx "hwbot/pkg/logx"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{Endpoint: srv.URL, Token: "secret", Timeout: 2 * time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv
}

func TestStatusesSendsCursorAndAuth(t *testing.T) {
	t.Parallel()
	var gotAuth, gotFrom string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFrom = r.URL.Query().Get("from_date")
		w.Write([]byte(`{"current_date": 42, "homeworks": []}`))
	})

	v, err := c.Statuses(context.Background(), 1700000000)
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if gotAuth != "OAuth secret" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotFrom != "1700000000" {
		t.Fatalf("from_date = %q", gotFrom)
	}
	m, ok := v.(map[string]any)
	if !ok || m["current_date"].(float64) != 42 {
		t.Fatalf("decoded = %#v", v)
	}
}

func TestStatusesNon200(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	_, err := c.Statuses(context.Background(), 0)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Code != http.StatusBadGateway {
		t.Fatalf("Code = %d", se.Code)
	}
}

func TestStatusesMalformedBody(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current_date": `))
	})

	_, err := c.Statuses(context.Background(), 0)
	if !errors.Is(err, ErrMalformedBody) {
		t.Fatalf("err = %v, want ErrMalformedBody", err)
	}
}

func TestStatusesTimeout(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	defer close(block)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{Endpoint: srv.URL, Token: "secret", Timeout: 50 * time.Millisecond}, logx.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Statuses(context.Background(), 0)
	if !errors.Is(err, ErrRequestTimeout) {
		t.Fatalf("err = %v, want ErrRequestTimeout", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()
	if _, err := NewClient(ClientConfig{Endpoint: "", Token: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
	if _, err := NewClient(ClientConfig{Endpoint: "http://x", Token: " "}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
