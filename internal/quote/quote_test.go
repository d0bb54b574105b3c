package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flor3z/mlb-stats-bot/internal/gateway"
)

func TestRandomReturnsTrimmedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("\n  It ain't over till it's over.  \n"))
	}))
	defer server.Close()

	client := NewClient(gateway.NewClient(gateway.Config{BaseURL: server.URL + "/quote"}))

	got, err := client.Random(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "It ain't over till it's over." {
		t.Fatalf("unexpected quote %q", got)
	}
}

func TestRandomWrapsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(gateway.NewClient(gateway.Config{BaseURL: server.URL}))

	_, err := client.Random(context.Background())
	netErr, ok := gateway.AsNetworkError(err)
	if !ok {
		t.Fatalf("expected a network error, got %v", err)
	}
	if netErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", netErr.StatusCode)
	}
}
