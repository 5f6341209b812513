package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func get(s http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	t.Run("reports uptime without a hub", func(t *testing.T) {
		rec := get(New(Config{}), http.MethodGet, "/api/health")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}

		var body map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body["status"] != "ok" || body["uptime"] == nil {
			t.Errorf("unexpected health body %v", body)
		}
		if _, ok := body["clients"]; ok {
			t.Error("expected no clients field without a hub")
		}
	})

	t.Run("reports hub clients", func(t *testing.T) {
		rec := get(New(Config{Hub: NewEventHub(nil)}), http.MethodGet, "/api/health")

		var body map[string]any
		json.NewDecoder(rec.Body).Decode(&body)
		if body["clients"] != float64(0) {
			t.Errorf("expected 0 clients, got %v", body["clients"])
		}
	})

	t.Run("rejects writes", func(t *testing.T) {
		s := New(Config{})
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			if rec := get(s, method, "/api/health"); rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s: expected %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_Routes(t *testing.T) {
	web := t.TempDir()
	page := "<html><body>pinchpoint</body></html>"
	if err := os.WriteFile(filepath.Join(web, "index.html"), []byte(page), 0644); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		path string
		code int
	}{
		{"unknown api path", Config{}, "/api/nonexistent", http.StatusNotFound},
		{"root without static dir", Config{}, "/", http.StatusNotFound},
		{"events without hub", Config{}, "/api/events", http.StatusNotFound},
		{"settings without store", Config{}, "/api/settings", http.StatusNotFound},
		{"activations without store", Config{}, "/api/activations", http.StatusNotFound},
		{"stream without preview", Config{}, "/api/stream", http.StatusNotFound},
		{"index page", Config{StaticDir: web}, "/", http.StatusOK},
		{"missing static file", Config{StaticDir: web}, "/app.js", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(New(tt.cfg), http.MethodGet, tt.path)
			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, rec.Code)
			}
			if tt.code == http.StatusOK && tt.path == "/" && rec.Body.String() != page {
				t.Errorf("expected the index page, got %q", rec.Body.String())
			}
		})
	}
}

func TestServer_HTTPServer(t *testing.T) {
	s := New(Config{})
	hs := s.HTTPServer("127.0.0.1:0")

	if hs.Addr != "127.0.0.1:0" || hs.Handler != http.Handler(s) {
		t.Errorf("unexpected http.Server %+v", hs)
	}
	if hs.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("expected a 5s header timeout, got %v", hs.ReadHeaderTimeout)
	}
}
