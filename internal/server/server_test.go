package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/testutils"
)

func newTestServer(t *testing.T, files map[string]string, mutate ...func(*config.Config)) *Server {
	t.Helper()

	cfg := testutils.CreateTestConfig("content")
	for _, m := range mutate {
		m(cfg)
	}

	assets := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(assets, "/styles.css", []byte("body{margin:0}"), 0o644))

	srv, err := New(cfg, Options{
		Content: testutils.NewContentFs(t, files),
		Assets:  assets,
	})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, path string, fragment bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if fragment {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)

	cfg := testutils.CreateTestConfig("content")
	cfg.Content.Posts.Trust = "somewhat"
	_, err = New(cfg, Options{Content: afero.NewMemMapFs(), Assets: afero.NewMemMapFs()})
	assert.Error(t, err)
}

func TestPostFragment(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	rec := get(t, srv, "/post/hello", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Hi</h1>")
	assert.Contains(t, body, "Hello")
	assert.NotContains(t, body, "<!DOCTYPE html>")
}

func TestFragmentHeaderValueIgnored(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	req.Header.Set("HX-Request", "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>About</h1>")
	assert.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
}

func TestFullNavigationReturnsShell(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	testCases := []struct {
		path      string
		startLink string
	}{
		{"/", "/posts"},
		{"/posts", "/posts"},
		{"/post/abc", "/post/abc"},
		{"/projects", "/projects"},
		{"/project/folio", "/project/folio"},
		{"/about", "/about"},
		{"/tag/go", "/tag/go"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			rec := get(t, srv, tc.path, false)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
			assert.Contains(t, body, `data-start-link="`+tc.startLink+`"`)
			assert.Contains(t, body, `hx-get="`+tc.startLink+`"`)
			assert.NotContains(t, body, "post-card")
			assert.Equal(t, "HX-Request", rec.Header().Get("Vary"))
		})
	}
}

func TestHomeFragmentServesHomeRoute(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent(), func(cfg *config.Config) {
		cfg.Site.Home = "/projects"
	})

	rec := get(t, srv, "/", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-id="folio"`)
	assert.Contains(t, rec.Body.String(), `data-id="embed"`)

	shell := get(t, srv, "/", false)
	assert.Contains(t, shell.Body.String(), `data-start-link="/projects"`)
}

func TestListingOrder(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	body := get(t, srv, "/posts", true).Body.String()

	hello := strings.Index(body, `data-id="hello"`)
	web := strings.Index(body, `data-id="web"`)
	rust := strings.Index(body, `data-id="rust"`)
	require.True(t, hello >= 0 && web >= 0 && rust >= 0, body)
	assert.Less(t, hello, web)
	assert.Less(t, web, rust)
}

func TestTagRoute(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	rec := get(t, srv, "/tag/go", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-id="hello"`)
	assert.NotContains(t, rec.Body.String(), `data-id="web"`)
	assert.Contains(t, rec.Body.String(), "Posts tagged “go”")

	rec = get(t, srv, "/tag/Go", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "post-card")
	assert.Contains(t, rec.Body.String(), "No posts yet.")
}

func TestProjectTrust(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	project := get(t, srv, "/project/embed", true).Body.String()
	assert.NotContains(t, project, "<script>")
	assert.Contains(t, project, "&lt;script&gt;")

	post := get(t, srv, "/post/web", true).Body.String()
	assert.Contains(t, post, "<script>alert(1)</script>")
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	for _, path := range []string{"/post/abc", "/project/abc"} {
		rec := get(t, srv, path, true)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), path+" does not exist.")
		assert.Equal(t, "HX-Request", rec.Header().Get("Vary"), path)
	}

	for _, fragment := range []bool{false, true} {
		rec := get(t, srv, "/nowhere", fragment)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "/nowhere does not exist.")
		assert.Equal(t, "HX-Request", rec.Header().Get("Vary"))
	}
}

func TestBrokenContent(t *testing.T) {
	files := testutils.SampleContent()
	files["posts/index.json"] = `{"posts": [{"id": "a"`
	delete(files, "projects/folio.md")
	srv := newTestServer(t, files)

	for _, path := range []string{"/posts", "/post/hello", "/tag/go", "/projects", "/project/folio"} {
		rec := get(t, srv, path, true)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Something went wrong", path)
		assert.NotContains(t, rec.Body.String(), "index.json", path)
	}

	rec := get(t, srv, "/project/embed", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContentChangesAreVisibleWithoutRestart(t *testing.T) {
	fs := testutils.NewContentFs(t, testutils.SampleContent())
	srv, err := New(testutils.CreateTestConfig("content"), Options{Content: fs, Assets: afero.NewMemMapFs()})
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "posts/hello.md", []byte("# Edited\n"), 0o644))

	rec := get(t, srv, "/post/hello", true)
	assert.Contains(t, rec.Body.String(), "<h1>Edited</h1>")
}

func TestMiddlewareHeaders(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	rec := get(t, srv, "/about", true)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestAssets(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	rec := get(t, srv, "/assets/styles.css", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{margin:0}", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	rec = get(t, srv, "/assets/missing.css", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())

	rec := get(t, srv, "/health", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var health HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 3, health.Checks["posts"].Entries)
	assert.Equal(t, 2, health.Checks["projects"].Entries)
	assert.NotEmpty(t, health.Version)
}

func TestHealthUnhealthy(t *testing.T) {
	files := testutils.SampleContent()
	delete(files, "projects/index.json")
	srv := newTestServer(t, files)

	rec := get(t, srv, "/health", false)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "healthy", health.Checks["posts"].Status)
	assert.Equal(t, "unhealthy", health.Checks["projects"].Status)
	assert.Equal(t, "io", health.Checks["projects"].Message)
}

func TestLiveReloadRoute(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent())
	assert.Nil(t, srv.LiveReload())
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/ws", false).Code)

	srv = newTestServer(t, testutils.SampleContent(), func(cfg *config.Config) {
		cfg.Development.LiveReload = true
	})
	assert.NotNil(t, srv.LiveReload())
	assert.Contains(t, get(t, srv, "/about", false).Body.String(), "new WebSocket")
}

func TestLiveReloadBroadcast(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent(), func(cfg *config.Config) {
		cfg.Development.LiveReload = true
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.Eventually(t, func() bool { return srv.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	srv.hub.Broadcast(ReloadMessage{Type: "reload", Paths: []string{"posts/hello.md"}, Timestamp: time.Now()})

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var msg ReloadMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "reload", msg.Type)
	assert.Equal(t, []string{"posts/hello.md"}, msg.Paths)

	srv.hub.Close()
	_, _, err = conn.Read(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, srv.hub.Len())
}

func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(t, testutils.SampleContent(), func(cfg *config.Config) {
		cfg.Server.Port = 0
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	require.Eventually(t, func() bool {
		return !strings.HasSuffix(srv.Addr(), ":0")
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
