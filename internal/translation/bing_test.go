package translation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type bingServer struct {
	tokenCalls     atomic.Int32
	translateCalls atomic.Int32
	expiresIn      string
	translate      http.HandlerFunc
}

func newTestBing(t *testing.T, bs *bingServer) *BingClient {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		n := bs.tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" ||
			r.PostForm.Get("client_id") != "test-client" ||
			r.PostForm.Get("client_secret") != "test-secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		expires := bs.expiresIn
		if expires == "" {
			expires = "600"
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-` + string(rune('0'+n)) + `","token_type":"bearer","expires_in":"` + expires + `"}`))
	})
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		bs.translateCalls.Add(1)
		bs.translate(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewBingClient(BingConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		TokenURL:     server.URL + "/token",
		Endpoint:     server.URL + "/translate",
		HTTPClient:   server.Client(),
	})
	if err != nil {
		t.Fatalf("NewBingClient() error = %v", err)
	}
	return client
}

func TestNewBingClient(t *testing.T) {
	if _, err := NewBingClient(BingConfig{ClientID: "id"}); err == nil {
		t.Error("expected error for missing client secret")
	}
	client, err := NewBingClient(BingConfig{ClientID: "id", ClientSecret: "secret"})
	if err != nil {
		t.Fatalf("NewBingClient() error = %v", err)
	}
	if client.Name() != "bing" {
		t.Errorf("Name() = %q", client.Name())
	}
}

func TestBingTranslate(t *testing.T) {
	var auth, from, to, text string
	bs := &bingServer{translate: func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		q := r.URL.Query()
		from, to, text = q.Get("from"), q.Get("to"), q.Get("text")
		// the service prefixes a UTF-8 BOM
		_, _ = w.Write(append([]byte{0xEF, 0xBB, 0xBF}, []byte(`"Hallo Welt"`)...))
	}}
	client := newTestBing(t, bs)

	got, err := client.Translate(context.Background(), "Hello world", "", "GERMAN")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "Hallo Welt" {
		t.Errorf("Translate() = %q", got)
	}
	if auth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", auth)
	}
	if from != "" || to != "de" || text != "Hello world" {
		t.Errorf("query from=%q to=%q text=%q", from, to, text)
	}
}

func TestBingTokenCached(t *testing.T) {
	bs := &bingServer{translate: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"x"`))
	}}
	client := newTestBing(t, bs)

	for i := 0; i < 3; i++ {
		if _, err := client.Translate(context.Background(), "hello", "en", "fr"); err != nil {
			t.Fatalf("Translate() error = %v", err)
		}
	}
	if got := bs.tokenCalls.Load(); got != 1 {
		t.Errorf("token calls = %d, want 1", got)
	}
}

func TestBingTokenRefreshedAfterExpiry(t *testing.T) {
	bs := &bingServer{expiresIn: "60", translate: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"x"`))
	}}
	client := newTestBing(t, bs)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	if _, err := client.Translate(context.Background(), "hello", "en", "fr"); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	// 60s token minus the refresh margin leaves 30s
	now = now.Add(31 * time.Second)
	if _, err := client.Translate(context.Background(), "hello", "en", "fr"); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got := bs.tokenCalls.Load(); got != 2 {
		t.Errorf("token calls = %d, want 2", got)
	}
}

func TestBingUnauthorizedInvalidatesToken(t *testing.T) {
	bs := &bingServer{}
	bs.translate = func(w http.ResponseWriter, r *http.Request) {
		if bs.translateCalls.Load() == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("expired"))
			return
		}
		_, _ = w.Write([]byte(`"ok"`))
	}
	client := newTestBing(t, bs)

	_, err := client.Translate(context.Background(), "hello", "en", "fr")
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 ProviderError, got %v", err)
	}

	got, err := client.Translate(context.Background(), "hello", "en", "fr")
	if err != nil || got != "ok" {
		t.Fatalf("Translate() = %q, %v", got, err)
	}
	if calls := bs.tokenCalls.Load(); calls != 2 {
		t.Errorf("token calls = %d, want 2", calls)
	}
}

func TestBingParseError(t *testing.T) {
	bs := &bingServer{translate: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}}
	client := newTestBing(t, bs)

	_, err := client.Translate(context.Background(), "hello", "en", "fr")
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Kind != KindParse {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestBingTokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer server.Close()

	client, err := NewBingClient(BingConfig{
		ClientID:     "id",
		ClientSecret: "wrong",
		TokenURL:     server.URL,
		Endpoint:     server.URL,
		HTTPClient:   server.Client(),
	})
	if err != nil {
		t.Fatalf("NewBingClient() error = %v", err)
	}

	_, err = client.Translate(context.Background(), "hello", "en", "fr")
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected token status error, got %v", err)
	}
	if perr != nil && perr.Temporary() {
		t.Error("a rejected token request is not temporary")
	}
}
