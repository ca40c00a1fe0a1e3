package headline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Generate_Disabled(t *testing.T) {
	t.Parallel()

	c := NewClient(ClientConfig{})
	if c.Enabled() {
		t.Fatal("client without endpoint must be disabled")
	}

	seen := map[string]bool{}
	for i := 0; i < len(Fallbacks); i++ {
		seen[c.Generate(context.Background(), 4)] = true
	}
	if len(seen) != len(Fallbacks) {
		t.Fatalf("fallbacks should rotate, got %d distinct lines", len(seen))
	}
}

func TestClient_Generate_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		fmt.Fprint(w, `{"text": "  Captaincy chaos strikes again.  "}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{Endpoint: srv.URL, Timeout: 5 * time.Second})
	got := c.Generate(context.Background(), 4)
	if got != "Captaincy chaos strikes again." {
		t.Fatalf("unexpected headline: %q", got)
	}
}

func TestClient_Generate_FailureFallsBack(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{Endpoint: srv.URL, Timeout: 5 * time.Second})
	got := c.Generate(context.Background(), 4)

	found := false
	for _, line := range Fallbacks {
		if got == line {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a fallback line, got %q", got)
	}
}

func TestClient_Generate_EmptyTextFallsBack(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"text": ""}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{Endpoint: srv.URL, Timeout: 5 * time.Second})
	got := c.Generate(context.Background(), 4)
	if got == "" {
		t.Fatal("empty generator output must degrade to a fallback")
	}
}
