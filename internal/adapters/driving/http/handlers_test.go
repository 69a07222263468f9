package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/pascalhuerten/moodle-rag/docs"
	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
)

// Mock services for testing

type mockChatService struct {
	respondFn func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
	calls     int
}

func (m *mockChatService) Respond(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.calls++
	if m.respondFn != nil {
		return m.respondFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

type mockIndexService struct {
	ready     bool
	statusFn  func(ctx context.Context) (*domain.IndexRun, error)
	historyFn func(ctx context.Context, limit int) ([]*domain.IndexRun, error)
}

func (m *mockIndexService) Status(ctx context.Context) (*domain.IndexRun, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx)
	}
	return nil, domain.ErrNotFound
}

func (m *mockIndexService) History(ctx context.Context, limit int) ([]*domain.IndexRun, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, limit)
	}
	return []*domain.IndexRun{}, nil
}

func (m *mockIndexService) Ready() bool {
	return m.ready
}

func newTestServer(chat *mockChatService, index *mockIndexService) *Server {
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, chat, index)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHandleRoot(t *testing.T) {
	s := newTestServer(&mockChatService{}, &mockIndexService{})

	rr := do(t, s, "GET", "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	resp := decode[RootResponse](t, rr)
	if resp.Title != "MOODLE RAG CHAT API" {
		t.Errorf("unexpected title %q", resp.Title)
	}
	if resp.Description != "API for the MOODLE RAG CHAT project" {
		t.Errorf("unexpected description %q", resp.Description)
	}
	if resp.DocsURL != "/docs" {
		t.Errorf("unexpected docs_url %q", resp.DocsURL)
	}
}

func TestHandleRoot_UnknownPath(t *testing.T) {
	s := newTestServer(&mockChatService{}, &mockIndexService{})

	if rr := do(t, s, "GET", "/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestHandleHealth_IndependentOfIndexAndModels(t *testing.T) {
	chat := &mockChatService{respondFn: func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
		panic("health must not call the chat pipeline")
	}}
	index := &mockIndexService{
		ready: false,
		statusFn: func(ctx context.Context) (*domain.IndexRun, error) {
			panic("health must not read the index state")
		},
	}
	s := newTestServer(chat, index)

	rr := do(t, s, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if resp := decode[StatusResponse](t, rr); resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if chat.calls != 0 {
		t.Errorf("expected no chat calls, got %d", chat.calls)
	}
}

func TestHandleReady(t *testing.T) {
	index := &mockIndexService{}
	s := newTestServer(&mockChatService{}, index)

	if rr := do(t, s, "GET", "/ready", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 before load, got %d", rr.Code)
	}

	index.ready = true
	rr := do(t, s, "GET", "/ready", "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200 after load, got %d", rr.Code)
	}
	if resp := decode[StatusResponse](t, rr); resp.Status != "ready" {
		t.Errorf("expected ready, got %q", resp.Status)
	}
}

func TestHandleVersion(t *testing.T) {
	s := newTestServer(&mockChatService{}, &mockIndexService{})

	rr := do(t, s, "GET", "/version", "")
	if resp := decode[VersionResponse](t, rr); resp.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", resp.Version)
	}
}

func TestHandleChat(t *testing.T) {
	var got domain.ChatRequest
	chat := &mockChatService{respondFn: func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
		got = req
		return &domain.ChatResponse{Response: "Es gibt die Kurse Data Literacy und Python Basics."}, nil
	}}
	s := newTestServer(chat, &mockIndexService{ready: true})

	rr := do(t, s, "POST", "/chat", `{"message":"Welche Kurse gibt es?","course_id":"42","usercontext":"Kursseite"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	resp := decode[domain.ChatResponse](t, rr)
	if resp.Response != "Es gibt die Kurse Data Literacy und Python Basics." {
		t.Errorf("unexpected response %q", resp.Response)
	}
	if got.Message != "Welche Kurse gibt es?" || got.CourseID != "42" || got.UserContext != "Kursseite" {
		t.Errorf("request not passed through: %+v", got)
	}
}

func TestHandleChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCalls  int
	}{
		{"invalid json", `{"message":`, nil, http.StatusBadRequest, 0},
		{"empty message", `{"message":""}`, fmt.Errorf("%w: message is required", domain.ErrInvalidInput), http.StatusBadRequest, 1},
		{"index not ready", `{"message":"Hallo"}`, domain.ErrIndexNotReady, http.StatusServiceUnavailable, 1},
		{"classification failed", `{"message":"Hallo"}`, fmt.Errorf("%w: classify query: timeout", domain.ErrInference), http.StatusInternalServerError, 1},
		{"generation failed", `{"message":"Hallo"}`, fmt.Errorf("%w: generate answer: 502", domain.ErrProcessing), http.StatusInternalServerError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &mockChatService{respondFn: func(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
				return nil, tt.err
			}}
			s := newTestServer(chat, &mockIndexService{ready: true})

			rr := do(t, s, "POST", "/chat", tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if resp := decode[ErrorResponse](t, rr); resp.Error == "" {
				t.Error("expected error message")
			}
			if chat.calls != tt.wantCalls {
				t.Errorf("expected %d chat calls, got %d", tt.wantCalls, chat.calls)
			}
		})
	}
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	s := newTestServer(&mockChatService{}, &mockIndexService{})

	if rr := do(t, s, "GET", "/chat", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleIndexStatus(t *testing.T) {
	run := domain.NewIndexRun(domain.IndexRunModeBuilt)
	run.Complete(11)

	index := &mockIndexService{statusFn: func(ctx context.Context) (*domain.IndexRun, error) {
		return run, nil
	}}
	s := newTestServer(&mockChatService{}, index)

	rr := do(t, s, "GET", "/index/status", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	got := decode[domain.IndexRun](t, rr)
	if got.ID != run.ID || got.DocumentCount != 11 || got.Mode != domain.IndexRunModeBuilt {
		t.Errorf("unexpected run %+v", got)
	}
}

func TestHandleIndexStatus_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no run", domain.ErrNotFound, http.StatusNotFound},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := &mockIndexService{statusFn: func(ctx context.Context) (*domain.IndexRun, error) {
				return nil, tt.err
			}}
			s := newTestServer(&mockChatService{}, index)

			if rr := do(t, s, "GET", "/index/status", ""); rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestHandleIndexHistory(t *testing.T) {
	var gotLimit int
	index := &mockIndexService{historyFn: func(ctx context.Context, limit int) ([]*domain.IndexRun, error) {
		gotLimit = limit
		return []*domain.IndexRun{domain.NewIndexRun(domain.IndexRunModeReopened)}, nil
	}}
	s := newTestServer(&mockChatService{}, index)

	rr := do(t, s, "GET", "/index/history?limit=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotLimit != 5 {
		t.Errorf("expected limit 5, got %d", gotLimit)
	}
	if runs := decode[[]domain.IndexRun](t, rr); len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}

	if rr := do(t, s, "GET", "/index/history?limit=abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for invalid limit, got %d", rr.Code)
	}
}

func TestHandleDocs(t *testing.T) {
	s := newTestServer(&mockChatService{}, &mockIndexService{})

	rr := do(t, s, "GET", "/docs", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "/docs/doc.json") {
		t.Error("expected docs page to load /docs/doc.json")
	}

	rr = do(t, s, "GET", "/docs/doc.json", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not valid JSON: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/chat"]; !ok {
		t.Error("expected /chat in api documentation")
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := newTestServer(&mockChatService{}, &mockIndexService{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !bytes.Contains(body, []byte(`"ok"`)) {
		t.Errorf("unexpected body %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
