package driverepo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

type fakeDrive struct {
	mu    sync.Mutex
	calls []string
	perm  map[string]interface{}
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/files/abc/permissions"):
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		_ = json.Unmarshal(body, &f.perm)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"id":"anyoneWithLink","type":"anyone","role":"reader"}`))
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files/abc"):
		if r.URL.Query().Get("fields") != "webContentLink" {
			http.Error(w, `{"error":{"code":400,"message":"bad fields"}}`, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"webContentLink":"https://drive.google.com/uc?id=abc&export=download"}`))
	case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/files/abc"):
		w.WriteHeader(http.StatusNoContent)
	case strings.HasSuffix(r.URL.Path, "/files/missing"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"File not found: missing."}}`))
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newTestRepo(t *testing.T, handler http.Handler) *DriveRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	repo, err := NewDriveRepository(context.Background(),
		option.WithEndpoint(srv.URL+"/drive/v3/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewDriveRepository: %v", err)
	}
	return repo
}

func TestGrantPublicRead(t *testing.T) {
	fake := &fakeDrive{}
	repo := newTestRepo(t, fake)

	if err := repo.GrantPublicRead(context.Background(), "abc"); err != nil {
		t.Fatalf("GrantPublicRead: %v", err)
	}
	if fake.perm["type"] != "anyone" || fake.perm["role"] != "reader" {
		t.Errorf("unexpected permission body %v", fake.perm)
	}
}

func TestLink(t *testing.T) {
	repo := newTestRepo(t, &fakeDrive{})

	link, err := repo.Link(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if link != "https://drive.google.com/uc?id=abc&export=download" {
		t.Errorf("unexpected link %q", link)
	}
}

func TestLinkNotFound(t *testing.T) {
	repo := newTestRepo(t, &fakeDrive{})

	if _, err := repo.Link(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDelete(t *testing.T) {
	fake := &fakeDrive{}
	repo := newTestRepo(t, fake)

	if err := repo.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.calls) != 1 || !strings.HasPrefix(fake.calls[0], http.MethodDelete) {
		t.Errorf("unexpected calls %v", fake.calls)
	}
}
