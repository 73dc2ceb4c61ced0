package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"

	ferrors "github.com/conneroisu/folio/internal/errors"
	"github.com/conneroisu/folio/internal/logging"
	"github.com/conneroisu/folio/internal/site"
	"github.com/conneroisu/folio/internal/version"
	"github.com/conneroisu/folio/internal/views"
)

// fragmentFunc builds the fragment a route answers with in fragment mode.
type fragmentFunc func(ctx context.Context, r *http.Request) (templ.Component, error)

// IsFragment reports whether r asks for a fragment rather than a full page.
// Only the presence of header matters, not its value.
func IsFragment(r *http.Request, header string) bool {
	return len(r.Header.Values(header)) > 0
}

// page serves the Shell on full navigations and build's fragment otherwise.
func (s *Server) page(build fragmentFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", s.config.Site.FragmentHeader)

		if !IsFragment(r, s.config.Site.FragmentHeader) {
			s.writeComponent(w, r, http.StatusOK, views.Shell(s.shellData(startLink(r, s.config.Site.Home))))
			return
		}

		component, err := build(r.Context(), r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeComponent(w, r, http.StatusOK, component)
	}
}

// startLink is the fragment route the Shell loads for r.
func startLink(r *http.Request, home string) string {
	link := r.URL.EscapedPath()
	if link == "/" || link == "" {
		return home
	}
	return link
}

func (s *Server) shellData(link string) views.ShellData {
	return views.ShellData{
		Title:          s.config.Site.Title,
		StartLink:      link,
		AssetsPrefix:   s.config.Assets.Prefix,
		FragmentHeader: s.config.Site.FragmentHeader,
		LiveReload:     s.config.Development.LiveReload,
	}
}

// writeComponent renders c fully before writing so a failed render still
// produces a clean 500.
func (s *Server) writeComponent(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		s.writeError(w, r, ferrors.WrapRender(err, ferrors.ErrCodeTemplate, "rendering page"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// writeError logs err and answers with the matching status and fragment.
// Error details never reach the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context(), s.logger)
	ferrors.NewErrorHandler(logger).Handle(r.Context(), err)

	status := ferrors.HTTPStatus(err)
	component := views.ServerError()
	if status == http.StatusNotFound {
		component = views.NotFound(r.URL.Path)
	}

	var buf bytes.Buffer
	if renderErr := component.Render(context.WithoutCancel(r.Context()), &buf); renderErr != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// HandleHome serves the Shell pointed at site.home, or that route's
// fragment in fragment mode.
func (s *Server) HandleHome(w http.ResponseWriter, r *http.Request) {
	if !IsFragment(r, s.config.Site.FragmentHeader) {
		s.page(nil)(w, r)
		return
	}

	home, err := url.Parse(s.config.Site.Home)
	if err != nil {
		s.writeError(w, r, ferrors.NewInternalError(ferrors.ErrCodeConfigInvalid, "invalid site.home", err))
		return
	}
	homeReq := r.Clone(r.Context())
	homeReq.URL.Path = home.Path
	homeReq.URL.RawPath = home.RawPath
	homeReq.RequestURI = home.RequestURI()

	s.routes.ServeHTTP(w, homeReq)
}

// HandlePosts serves the listing of every post.
func (s *Server) HandlePosts(w http.ResponseWriter, r *http.Request) {
	s.page(func(ctx context.Context, r *http.Request) (templ.Component, error) {
		return s.pipeline.Listing(ctx, s.sections.Posts, views.Heading(s.sections.Posts.Name()), site.All)
	})(w, r)
}

// HandlePost serves one post.
func (s *Server) HandlePost(w http.ResponseWriter, r *http.Request) {
	s.page(func(ctx context.Context, r *http.Request) (templ.Component, error) {
		return s.pipeline.Detail(ctx, s.sections.Posts, r.PathValue("id"))
	})(w, r)
}

// HandleProjects serves the listing of every project.
func (s *Server) HandleProjects(w http.ResponseWriter, r *http.Request) {
	s.page(func(ctx context.Context, r *http.Request) (templ.Component, error) {
		return s.pipeline.Listing(ctx, s.sections.Projects, views.Heading(s.sections.Projects.Name()), site.All)
	})(w, r)
}

// HandleProject serves one project.
func (s *Server) HandleProject(w http.ResponseWriter, r *http.Request) {
	s.page(func(ctx context.Context, r *http.Request) (templ.Component, error) {
		return s.pipeline.Detail(ctx, s.sections.Projects, r.PathValue("id"))
	})(w, r)
}

// HandleAbout serves the about page.
func (s *Server) HandleAbout(w http.ResponseWriter, r *http.Request) {
	s.page(func(context.Context, *http.Request) (templ.Component, error) {
		return views.About(), nil
	})(w, r)
}

// HandleTag serves the posts carrying a tag. No match is an empty listing,
// not an error.
func (s *Server) HandleTag(w http.ResponseWriter, r *http.Request) {
	s.page(func(ctx context.Context, r *http.Request) (templ.Component, error) {
		tag := r.PathValue("tag")
		return s.pipeline.Listing(ctx, s.sections.Posts, views.TagHeading(tag), site.WithTag(tag))
	})(w, r)
}

// HandleNotFound answers routes that match nothing.
func (s *Server) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Vary", s.config.Site.FragmentHeader)
	s.writeError(w, r, ferrors.NewNotFoundError(ferrors.ErrCodeEntryNotFound, "no route for "+r.URL.Path))
}

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	BuildInfo *version.BuildInfo     `json:"build_info"`
	Checks    map[string]HealthCheck `json:"checks"`
}

// HealthCheck reports one content category.
type HealthCheck struct {
	Status  string `json:"status"`
	Entries int    `json:"entries,omitempty"`
	Message string `json:"message,omitempty"`
}

// HandleHealth reports whether every index can be loaded.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.GetShortVersion(),
		BuildInfo: version.GetBuildInfo(),
		Checks:    make(map[string]HealthCheck),
	}

	status := http.StatusOK
	for _, section := range s.sections.All() {
		idx, err := s.store.LoadIndex(section.Category)
		if err != nil {
			logging.FromContext(r.Context(), s.logger).Warn(r.Context(), err, "health check failed",
				"category", section.Name())
			health.Checks[section.Name()] = HealthCheck{Status: "unhealthy", Message: string(ferrors.TypeOf(err))}
			health.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		health.Checks[section.Name()] = HealthCheck{Status: "healthy", Entries: idx.Len()}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "failed to encode health response")
	}
}

// Assets serves static files from the assets filesystem.
func (s *Server) Assets() http.Handler {
	return http.StripPrefix(s.config.Assets.Prefix, http.FileServer(s.assets))
}

// LiveReload returns the reload socket handler when live reload is on.
func (s *Server) LiveReload() http.Handler {
	if s.hub == nil {
		return nil
	}
	return s.hub
}
