// Package testutils builds content trees and configurations for tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/folio/internal/config"
)

// PostsIndex is a posts index with three posts, in this order: hello, web
// and rust.
const PostsIndex = `{
  // Comments and trailing commas are allowed.
  "posts": [
    {
      "id": "hello",
      "file": "hello.md",
      "title": "Hello",
      "tags": [{"name": "intro"}, {"name": "go"}, {"name": "web"}],
      "publish_date": "2024-01-01",
    },
    {
      "id": "web",
      "file": "web.md",
      "title": "Building for the Web",
      "tags": [{"name": "web"}],
      "publish_date": "2024-02-01",
      "thumbnail": "/assets/web.png",
    },
    {
      "id": "rust",
      "file": "rust.md",
      "title": "Trying Rust",
      "tags": [{"name": "rust"}],
      "publish_date": "2024-03-01",
    },
  ],
}`

// ProjectsIndex is a projects index with two projects: folio and embed.
const ProjectsIndex = `{
  "projects": [
    {
      "id": "folio",
      "file": "folio.md",
      "title": "Folio",
      "github_link": "https://github.com/conneroisu/folio",
    },
    {
      "id": "embed",
      "file": "embed.md",
      "title": "Embed Test",
      "github_link": "https://github.com/conneroisu/embed",
      "thumbnail": "/assets/embed.png",
    },
  ],
}`

// SampleContent returns a content tree keyed by slash-separated path
// relative to the content root.
func SampleContent() map[string]string {
	return map[string]string{
		"posts/index.json": PostsIndex,
		"posts/hello.md":   "# Hi\n\nThis is the first post.\n",
		"posts/web.md": "---\nsummary: Notes on serving HTML fragments.\n---\n" +
			"# Web\n\n<script>alert(1)</script>\n\nFragments all the way down.\n",
		"posts/rust.md":       "# Rust\n\nOwnership takes a while.\n",
		"projects/index.json": ProjectsIndex,
		"projects/folio.md":   "# Folio\n\nThe server behind this site.\n",
		"projects/embed.md":   "# Embed\n\n<script>alert(1)</script>\n",
	}
}

// NewContentFs writes files into an in-memory filesystem rooted at the
// content root.
func NewContentFs(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.FromSlash(name), []byte(data), 0o644))
	}
	return fs
}

// CreateTempContent writes files below a fresh temporary directory and
// returns its path.
func CreateTempContent(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	}
	return root
}

// CreateTestConfig returns the default configuration with the content root
// set to root.
func CreateTestConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 3000
	cfg.Content.Root = root
	cfg.Assets.Dir = filepath.Join(root, "assets")
	return cfg
}
