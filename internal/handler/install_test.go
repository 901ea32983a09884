package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"

	"github.com/quickinstall/installstats/internal/cache"
	"github.com/quickinstall/installstats/internal/service"
	"github.com/quickinstall/installstats/internal/tarball"
	"github.com/quickinstall/installstats/internal/testutil"
)

var testNow = time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	mr      *miniredis.Miniredis
	install *service.InstallService
	router  *chi.Mux
}

// newTestEnv wires the real services against miniredis.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, url := testutil.StartRedis(t)
	store, err := cache.New(context.Background(), url, 0)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := service.WithClock(testutil.FixedClock(testNow))
	installSvc := service.NewInstallService(store, nil, testLogger(), nil, clock)
	statsSvc := service.NewStatsService(store, testLogger(), nil, clock)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = installSvc.Drain(ctx)
	})

	installHandler := NewInstallHandler(installSvc, testLogger())
	statsHandler := NewStatsHandler(statsSvc, testLogger())

	r := chi.NewRouter()
	r.Get("/api/crate/{tarball}", installHandler.Record)
	r.Get("/api/architectures", installHandler.Architectures)
	r.Get("/api/stats", statsHandler.Daily)
	r.Get("/api/stats/monthly", statsHandler.Monthly)
	r.Get("/api/agents", statsHandler.Agents)

	return &testEnv{mr: mr, install: installSvc, router: r}
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestInstallHandler_Record(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/crate/ripgrep-13.0.0-x86_64-unknown-linux-gnu.tar.gz?agent=curl%2F7.81")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %s", ct)
	}

	body := rec.Body.String()
	for _, part := range []string{"ripgrep", "13.0.0", "x86_64-unknown-linux-gnu", "Requests today: 1"} {
		if !strings.Contains(body, part) {
			t.Errorf("body %q missing %q", body, part)
		}
	}

	if v := env.mr.HGet("2024/3/5", "ripgrep/13.0.0/x86_64-unknown-linux-gnu"); v != "1" {
		t.Errorf("package counter = %q, want 1", v)
	}
	if v := env.mr.HGet("agents/2024/3/5", "curl/7.81"); v != "1" {
		t.Errorf("agent counter = %q, want 1", v)
	}
}

func TestInstallHandler_UnknownArchitecture(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/crate/ripgrep-13.0.0-mips-unknown-linux-gnu.tar.gz")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "Could not extract architecture from ripgrep-13.0.0-mips-unknown-linux-gnu. Supported architectures are: ") {
		t.Errorf("unexpected body: %s", body)
	}
	for _, arch := range tarball.Default().Architectures() {
		if !strings.Contains(body, arch) {
			t.Errorf("body does not list %s", arch)
		}
	}

	if keys := env.mr.Keys(); len(keys) != 0 {
		t.Errorf("expected no keys written, got %v", keys)
	}
}

func TestInstallHandler_RedisDown(t *testing.T) {
	env := newTestEnv(t)
	env.mr.Close()

	rec := env.get(t, "/api/crate/ripgrep-13.0.0-x86_64-unknown-linux-gnu.tar.gz")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 with Redis down, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Requests today: 0") {
		t.Errorf("expected zero count, got %s", rec.Body.String())
	}
}

// stubRecorder returns a fixed error from Record.
type stubRecorder struct {
	err error
}

func (s *stubRecorder) Record(ctx context.Context, input service.RecordInput) (*service.RecordResult, error) {
	return nil, s.err
}

func (s *stubRecorder) Architectures() []string {
	return []string{"x86_64-unknown-linux-gnu"}
}

func TestInstallHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tarball  string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "empty param",
			tarball:  "",
			wantCode: http.StatusForbidden,
			wantBody: msgNoIdentifier,
		},
		{
			name:     "malformed",
			tarball:  "x",
			err:      errors.Join(service.ErrMalformedInput, tarball.ErrEmptyIdentifier),
			wantCode: http.StatusForbidden,
			wantBody: msgNoIdentifier,
		},
		{
			name:     "unexpected",
			tarball:  "x",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantBody: "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewInstallHandler(&stubRecorder{err: tt.err}, testLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/crate/"+tt.tarball, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("tarball", tt.tarball)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			h.Record(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestInstallHandler_Architectures(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/api/architectures")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response ArchitecturesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := tarball.Default().Architectures()
	if len(response.Architectures) != len(want) {
		t.Fatalf("expected %d architectures, got %d", len(want), len(response.Architectures))
	}
	for i := range want {
		if response.Architectures[i] != want[i] {
			t.Errorf("architecture %d = %s, want %s", i, response.Architectures[i], want[i])
		}
	}
}
