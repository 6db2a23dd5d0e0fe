package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/portrait-quiz/internal/config"
	"github.com/JakeFAU/portrait-quiz/internal/quiz"
	"github.com/JakeFAU/portrait-quiz/internal/refill"
)

func TestServer_GetQuiz_Succeeds(t *testing.T) {
	t.Parallel()

	source := &fakeSource{entries: []quiz.Entry{{
		Name:        "볼프강 아마데우스 모차르트",
		Image:       "https://upload.example/Mozart.jpg",
		Hint:        "○○는 오스트리아의 작곡가이다...",
		Description: "볼프강 아마데우스 모차르트는 오스트리아의 작곡가이다.",
	}}}
	server := newTestServer(source, &fakeIDGen{ids: []string{"req-1"}})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quiz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, rec.Header().Get("Referrer-Policy"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "볼프강 아마데우스 모차르트", body["name"])
	require.Equal(t, "https://upload.example/Mozart.jpg", body["image"])
	require.Equal(t, body["image"], body["imageUrl"])
	require.Equal(t, "○○는 오스트리아의 작곡가이다...", body["hint"])
	require.NotEmpty(t, body["description"])
	require.Equal(t, "req-1", body["requestId"])
	require.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
}

func TestServer_GetQuiz_EmptyCache(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: fmt.Errorf("%w: upstream down", refill.ErrCacheEmpty)}
	server := newTestServer(source, &fakeIDGen{ids: []string{"req-empty"}})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quiz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "req-empty", body["requestId"])
	require.NotEmpty(t, body["error"])
	require.NotContains(t, body, "errorId")
}

func TestServer_GetQuiz_InternalError(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: errors.New("secret database detail")}
	server := newTestServer(source, &fakeIDGen{ids: []string{"req-2", "err-1"}})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quiz", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret database detail")
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "err-1", body["errorId"])
}

func TestServer_GetQuiz_PanicBecomes500(t *testing.T) {
	t.Parallel()

	source := &fakeSource{panicMsg: "boom"}
	server := newTestServer(source, &fakeIDGen{ids: []string{"req-3", "err-2"}})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quiz", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "err-2")
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestServer_GetQuiz_BoundsWait(t *testing.T) {
	t.Parallel()

	source := &fakeSource{block: true}
	server := NewServer(source, &fakeIDGen{}, config.ServerConfig{QuizWaitTimeout: 20 * time.Millisecond}, zap.NewNop())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quiz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.True(t, source.sawDeadline())
}

func TestServer_Probes(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeSource{size: 7}, &fakeIDGen{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 7, body["cached"])
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeSource{}, &fakeIDGen{})
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "quiz_cache_entries")
}

func TestServer_StaticAssets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('quiz')"), 0o600))
	server := NewServer(&fakeSource{}, &fakeIDGen{}, config.ServerConfig{StaticDir: dir}, zap.NewNop())

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	require.Contains(t, rec.Body.String(), "quiz")
}

func TestRequestIDMiddlewareSetsHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	newTestServer(&fakeSource{}, nil).Handler().ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestResponseWriterHijackBehavior(t *testing.T) {
	t.Parallel()

	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := rw.Hijack(); err == nil || err.Error() != "hijacker not supported" {
		t.Fatalf("expected unsupported hijacker error, got %v", err)
	}

	h := &hijackableRecorder{ResponseRecorder: httptest.NewRecorder()}
	rw = &responseWriter{ResponseWriter: h}
	conn, buf, err := rw.Hijack()
	if err != nil {
		t.Fatalf("expected successful hijack, got %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("close hijacked conn: %v", err)
	}
	if err := h.CloseClient(); err != nil {
		t.Fatalf("close hijacked client: %v", err)
	}
	if buf == nil {
		t.Fatal("expected buf to be non-nil")
	}
}

// --- helpers/fakes ---

type fakeSource struct {
	mu       sync.Mutex
	entries  []quiz.Entry
	err      error
	panicMsg string
	block    bool
	size     int
	deadline bool
}

func (f *fakeSource) Next(ctx context.Context) (quiz.Entry, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.block {
		_, ok := ctx.Deadline()
		f.mu.Lock()
		f.deadline = ok
		f.mu.Unlock()
		<-ctx.Done()
		return quiz.Entry{}, fmt.Errorf("%w: %w", refill.ErrCacheEmpty, ctx.Err())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return quiz.Entry{}, f.err
	}
	if len(f.entries) == 0 {
		return quiz.Entry{}, refill.ErrCacheEmpty
	}
	e := f.entries[0]
	f.entries = f.entries[1:]
	return e, nil
}

func (f *fakeSource) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size
}

func (f *fakeSource) sawDeadline() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deadline
}

type fakeIDGen struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeIDGen) NewID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ids) == 0 {
		return "", errors.New("no ids")
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id, nil
}

type hijackableRecorder struct {
	*httptest.ResponseRecorder
	client net.Conn
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	server, client := net.Pipe()
	h.client = client
	return server, bufio.NewReadWriter(bufio.NewReader(client), bufio.NewWriter(client)), nil
}

func (h *hijackableRecorder) CloseClient() error {
	if h.client != nil {
		if err := h.client.Close(); err != nil {
			return fmt.Errorf("close hijacker client: %w", err)
		}
	}
	return nil
}

func newTestServer(source QuizSource, ids *fakeIDGen) *Server {
	var gen quiz.IDGenerator
	if ids != nil {
		gen = ids
	}
	return NewServer(source, gen, config.ServerConfig{QuizWaitTimeout: time.Second}, zap.NewNop())
}
