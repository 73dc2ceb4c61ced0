package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/folio/internal/config"
)

// recordingHandlers answers every route with the name of the handler and the
// path value it saw.
type recordingHandlers struct {
	liveReload bool
}

func named(name, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := name
		if key != "" {
			out += ":" + r.PathValue(key)
		}
		_, _ = w.Write([]byte(out))
	}
}

func (h *recordingHandlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	named("home", "")(w, r)
}

func (h *recordingHandlers) HandlePosts(w http.ResponseWriter, r *http.Request) {
	named("posts", "")(w, r)
}

func (h *recordingHandlers) HandlePost(w http.ResponseWriter, r *http.Request) {
	named("post", "id")(w, r)
}

func (h *recordingHandlers) HandleProjects(w http.ResponseWriter, r *http.Request) {
	named("projects", "")(w, r)
}

func (h *recordingHandlers) HandleProject(w http.ResponseWriter, r *http.Request) {
	named("project", "id")(w, r)
}

func (h *recordingHandlers) HandleAbout(w http.ResponseWriter, r *http.Request) {
	named("about", "")(w, r)
}

func (h *recordingHandlers) HandleTag(w http.ResponseWriter, r *http.Request) {
	named("tag", "tag")(w, r)
}

func (h *recordingHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	named("health", "")(w, r)
}

func (h *recordingHandlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	named("notfound", "")(w, r)
}

func (h *recordingHandlers) Assets() http.Handler {
	return named("assets", "")
}

func (h *recordingHandlers) LiveReload() http.Handler {
	if !h.liveReload {
		return nil
	}
	return named("ws", "")
}

type headerMiddleware struct{}

func (headerMiddleware) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Wrapped", "yes")
		next.ServeHTTP(w, r)
	})
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second
	return cfg
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	router := NewRouter(testConfig(), &recordingHandlers{}, headerMiddleware{})

	testCases := []struct {
		path     string
		expected string
	}{
		{"/", "home"},
		{"/posts", "posts"},
		{"/post/hello", "post:hello"},
		{"/projects", "projects"},
		{"/project/folio", "project:folio"},
		{"/about", "about"},
		{"/tag/go", "tag:go"},
		{"/tag/a%20b", "tag:a b"},
		{"/health", "health"},
		{"/assets/styles.css", "assets"},
		{"/ws", "notfound"},
		{"/post/a/b", "notfound"},
		{"/missing", "notfound"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			rec := serve(router.Handler(), http.MethodGet, tc.path)
			assert.Equal(t, tc.expected, rec.Body.String())
			assert.Equal(t, "yes", rec.Header().Get("X-Wrapped"))
		})
	}
}

func TestRoutesBypassMiddleware(t *testing.T) {
	router := NewRouter(testConfig(), &recordingHandlers{}, headerMiddleware{})

	rec := serve(router.Routes(), http.MethodGet, "/posts")
	assert.Equal(t, "posts", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Wrapped"))
}

func TestLiveReloadRouteRegistered(t *testing.T) {
	router := NewRouter(testConfig(), &recordingHandlers{liveReload: true}, headerMiddleware{})
	assert.Equal(t, "ws", serve(router.Handler(), http.MethodGet, "/ws").Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	router := NewRouter(testConfig(), &recordingHandlers{}, headerMiddleware{})

	rec := serve(router.Handler(), http.MethodPost, "/posts")
	assert.Equal(t, "notfound", rec.Body.String())
}

func TestNewRouterPanics(t *testing.T) {
	assert.Panics(t, func() { NewRouter(nil, &recordingHandlers{}, headerMiddleware{}) })
	assert.Panics(t, func() { NewRouter(testConfig(), nil, headerMiddleware{}) })
	assert.Panics(t, func() { NewRouter(testConfig(), &recordingHandlers{}, nil) })
}

func TestStartShutdown(t *testing.T) {
	router := NewRouter(testConfig(), &recordingHandlers{}, headerMiddleware{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- router.Start(ctx) }()

	require.Eventually(t, func() bool {
		return !strings.HasSuffix(router.GetAddr(), ":0")
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + router.GetAddr() + "/about")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("router did not stop")
	}

	assert.NoError(t, router.Shutdown(context.Background()))
	assert.Error(t, router.Start(context.Background()))
}
