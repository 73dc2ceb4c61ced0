package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/folio/internal/config"
	ferrors "github.com/conneroisu/folio/internal/errors"
)

var (
	posts    = NewCategory(PostsSchema, config.CategoryConfig{})
	projects = NewCategory(ProjectsSchema, config.CategoryConfig{})
)

func TestParseIndexHello(t *testing.T) {
	idx, err := ParseIndex(posts, []byte(`{"posts":[{"id":"hello","file":"hello.md","title":"Hello","tags":[{"name":"intro"}],"publish_date":"2024-01-01"}]}`))
	require.NoError(t, err)

	want := []Entry{{
		ID:     "hello",
		File:   "hello.md",
		Title:  "Hello",
		Tags:   []string{"intro"},
		Fields: map[string]string{FieldPublishDate: "2024-01-01"},
	}}
	if diff := cmp.Diff(want, idx.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIndexKeepsOrder(t *testing.T) {
	idx, err := ParseIndex(posts, []byte(`{
		// newest last
		"posts": [
			{"id": "b", "file": "b.md", "title": "B", "publish_date": "2024-02-01"},
			{"id": "a", "file": "a.md", "title": "A", "publish_date": "2024-01-01"},
			{"id": "c", "file": "c.md", "title": "C", "publish_date": "2024-03-01"},
		],
	}`))
	require.NoError(t, err)

	var ids []string
	for _, e := range idx.Entries() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	assert.Equal(t, 3, idx.Len())
}

func TestParseIndexOptionalFields(t *testing.T) {
	idx, err := ParseIndex(projects, []byte(`{"projects":[
		{"id":"a","file":"a.md","title":"A","github_link":"https://github.com/a/a","thumbnail":null},
		{"id":"b","file":"b.md","title":"B","github_link":"https://github.com/b/b","thumbnail":"/assets/b.png","stars":12}
	]}`))
	require.NoError(t, err)

	a, err := idx.Find("a")
	require.NoError(t, err)
	assert.Empty(t, a.Thumbnail())
	assert.Empty(t, a.Tags)

	b, err := idx.Find("b")
	require.NoError(t, err)
	assert.Equal(t, "/assets/b.png", b.Thumbnail())
	assert.Equal(t, "https://github.com/b/b", b.Field(FieldGithubLink))
}

func TestParseIndexErrors(t *testing.T) {
	testCases := []struct {
		name     string
		category Category
		document string
		code     string
	}{
		{"not json", posts, `{"posts": [`, ferrors.ErrCodeIndexSyntax},
		{"not an object", posts, `[]`, ferrors.ErrCodeIndexSyntax},
		{"wrong key", posts, `{"projects": []}`, ferrors.ErrCodeIndexSchema},
		{"entries not an array", posts, `{"posts": {"id": "a"}}`, ferrors.ErrCodeIndexSchema},
		{"missing title", posts, `{"posts":[{"id":"a","file":"a.md","publish_date":"2024-01-01"}]}`, ferrors.ErrCodeIndexSchema},
		{"missing publish date", posts, `{"posts":[{"id":"a","file":"a.md","title":"A"}]}`, ferrors.ErrCodeIndexSchema},
		{"script github link", projects, `{"projects":[{"id":"a","file":"a.md","title":"A","github_link":"javascript:alert(1)"}]}`, ferrors.ErrCodeIndexSchema},
		{"relative github link", projects, `{"projects":[{"id":"a","file":"a.md","title":"A","github_link":"github.com/a"}]}`, ferrors.ErrCodeIndexSchema},
		{"missing github link", projects, `{"projects":[{"id":"a","file":"a.md","title":"A"}]}`, ferrors.ErrCodeIndexSchema},
		{"numeric title", posts, `{"posts":[{"id":"a","file":"a.md","title":1,"publish_date":"2024-01-01"}]}`, ferrors.ErrCodeIndexSchema},
		{"tag without name", posts, `{"posts":[{"id":"a","file":"a.md","title":"A","publish_date":"x","tags":[{}]}]}`, ferrors.ErrCodeIndexSchema},
		{"id with slash", posts, `{"posts":[{"id":"a/b","file":"a.md","title":"A","publish_date":"x"}]}`, ferrors.ErrCodeIndexSchema},
		{"file escapes category", posts, `{"posts":[{"id":"a","file":"../secret.md","title":"A","publish_date":"x"}]}`, ferrors.ErrCodeIndexSchema},
		{"duplicate id", projects, `{"projects":[
			{"id":"a","file":"a.md","title":"A","github_link":"https://github.com/a/a"},
			{"id":"a","file":"b.md","title":"B","github_link":"https://github.com/a/b"}]}`, ferrors.ErrCodeDuplicateID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIndex(tc.category, []byte(tc.document))
			require.Error(t, err)
			assert.True(t, ferrors.IsMalformedIndex(err))

			var folioErr *ferrors.FolioError
			require.ErrorAs(t, err, &folioErr)
			assert.Equal(t, tc.code, folioErr.Code)
			assert.Equal(t, tc.category.IndexPath(), folioErr.Path)
			assert.Equal(t, tc.category.Name(), folioErr.Category)
		})
	}
}

func TestFindUnknownID(t *testing.T) {
	idx, err := ParseIndex(posts, []byte(`{"posts": []}`))
	require.NoError(t, err)

	_, err = idx.Find("missing")
	require.Error(t, err)
	assert.True(t, ferrors.IsNotFound(err))
}

func TestWithTagIsCaseSensitive(t *testing.T) {
	idx, err := ParseIndex(posts, []byte(`{"posts":[
		{"id":"a","file":"a.md","title":"A","publish_date":"x","tags":[{"name":"go"}]},
		{"id":"b","file":"b.md","title":"B","publish_date":"x","tags":[{"name":"Go"}]},
		{"id":"c","file":"c.md","title":"C","publish_date":"x","tags":[{"name":"web"},{"name":"go"}]}
	]}`))
	require.NoError(t, err)

	ids := func(entries []Entry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "c"}, ids(idx.WithTag("go")))
	assert.Equal(t, []string{"b"}, ids(idx.WithTag("Go")))
	assert.Empty(t, idx.WithTag("rust"))
	assert.NotNil(t, idx.WithTag("rust"))
}

func TestCategoryPaths(t *testing.T) {
	category := NewCategory(PostsSchema, config.CategoryConfig{Dir: "writing", Index: "posts.json"})

	assert.Equal(t, "posts", category.Name())
	assert.Equal(t, "writing/posts.json", category.IndexPath())
	assert.Equal(t, "writing/2024/a.md", category.BodyPath(Entry{File: "2024/a.md"}))
}

func newStore(t *testing.T, files map[string]string) *Store {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(data), 0o644))
	}
	return NewStore(fs)
}

func TestStoreLoadBody(t *testing.T) {
	store := newStore(t, map[string]string{
		"posts/index.json": `{"posts":[
			{"id":"plain","file":"plain.md","title":"Plain","publish_date":"x"},
			{"id":"summary","file":"summary.md","title":"Summary","publish_date":"x"}
		]}`,
		"posts/plain.md":   "# Hi\n",
		"posts/summary.md": "---\nsummary: Short version.\n---\n# Long version\n",
	})

	idx, err := store.LoadIndex(posts)
	require.NoError(t, err)

	plain, err := idx.Find("plain")
	require.NoError(t, err)
	body, err := store.LoadBody(posts, plain)
	require.NoError(t, err)
	assert.Equal(t, "# Hi\n", string(body.Markdown))
	assert.Empty(t, body.Summary)

	summary, err := idx.Find("summary")
	require.NoError(t, err)
	body, err = store.LoadBody(posts, summary)
	require.NoError(t, err)
	assert.Equal(t, "Short version.", body.Summary)
	assert.Contains(t, string(body.Markdown), "# Long version")
	assert.NotContains(t, string(body.Markdown), "summary:")
}

func TestStoreMissingFiles(t *testing.T) {
	store := newStore(t, map[string]string{
		"posts/index.json": `{"posts":[{"id":"gone","file":"gone.md","title":"Gone","publish_date":"x"}]}`,
	})

	_, err := store.LoadIndex(projects)
	require.Error(t, err)
	assert.True(t, ferrors.IsIOError(err))

	idx, err := store.LoadIndex(posts)
	require.NoError(t, err)
	entry, err := idx.Find("gone")
	require.NoError(t, err)

	_, err = store.LoadBody(posts, entry)
	require.Error(t, err)
	assert.True(t, ferrors.IsIOError(err))
	assert.Contains(t, err.Error(), "posts/gone.md")
}

func TestStoreCheckReportsEveryBody(t *testing.T) {
	store := newStore(t, map[string]string{
		"posts/index.json": `{"posts":[
			{"id":"a","file":"a.md","title":"A","publish_date":"x"},
			{"id":"b","file":"b.md","title":"B","publish_date":"x"},
			{"id":"c","file":"c.md","title":"C","publish_date":"x"}
		]}`,
		"posts/b.md": "# B\n",
	})

	n, err := store.Check(posts)
	assert.Equal(t, 3, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posts/a.md")
	assert.Contains(t, err.Error(), "posts/c.md")
	assert.NotContains(t, err.Error(), "posts/b.md")
}

func TestStoreReadsEachTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs)
	require.NoError(t, afero.WriteFile(fs, "posts/index.json", []byte(`{"posts": []}`), 0o644))

	idx, err := store.LoadIndex(posts)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())

	require.NoError(t, afero.WriteFile(fs, "posts/index.json",
		[]byte(`{"posts":[{"id":"new","file":"new.md","title":"New","publish_date":"x"}]}`), 0o644))

	idx, err = store.LoadIndex(posts)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestIsWebURL(t *testing.T) {
	assert.NoError(t, isWebURL("https://github.com/conneroisu/folio"))
	assert.NoError(t, isWebURL("http://example.com"))
	assert.NoError(t, isWebURL(""))
	assert.Error(t, isWebURL("ftp://example.com"))
	assert.Error(t, isWebURL("https://"))
	assert.Error(t, isWebURL("https://example.com/a b"))
	assert.Error(t, isWebURL("https://example.com/\"<x>"))
}

func TestStoreLoadBodyFrontMatterDetection(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		markdown string
		summary  string
	}{
		{
			name:     "leading thematic breaks stay markdown",
			body:     "---\n\nIntro paragraph.\n\n---\n\n# Hi\n",
			markdown: "---\n\nIntro paragraph.\n\n---\n\n# Hi\n",
		},
		{
			name:     "list between breaks stays markdown",
			body:     "---\n- one\n- two\n---\n",
			markdown: "---\n- one\n- two\n---\n",
		},
		{
			name:     "unclosed break stays markdown",
			body:     "---\n\nJust a rule.\n",
			markdown: "---\n\nJust a rule.\n",
		},
		{
			name:     "mapping without summary",
			body:     "---\ntitle: ignored\n---\n# Body\n",
			markdown: "# Body\n",
		},
		{
			name:     "empty block",
			body:     "---\n---\n# Body\n",
			markdown: "# Body\n",
		},
		{
			name:     "json front matter",
			body:     ";;;\n{\"summary\": \"From JSON.\"}\n;;;\n# Body\n",
			markdown: "# Body\n",
			summary:  "From JSON.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(t, map[string]string{
				"posts/index.json": `{"posts":[{"id":"a","file":"a.md","title":"A","publish_date":"x"}]}`,
				"posts/a.md":       tc.body,
			})

			body, err := store.LoadBody(posts, Entry{ID: "a", File: "a.md"})
			require.NoError(t, err)
			assert.Equal(t, tc.markdown, string(body.Markdown))
			assert.Equal(t, tc.summary, body.Summary)
		})
	}
}

func TestStoreLoadBodyBadFrontMatterMapping(t *testing.T) {
	store := newStore(t, map[string]string{
		"posts/a.md": "---\nsummary: [one, two]\n---\n# Body\n",
	})

	_, err := store.LoadBody(posts, Entry{ID: "a", File: "a.md"})
	require.Error(t, err)
	assert.True(t, ferrors.IsMalformedIndex(err))

	var folioErr *ferrors.FolioError
	require.ErrorAs(t, err, &folioErr)
	assert.Equal(t, ferrors.ErrCodeFrontMatter, folioErr.Code)
	assert.Equal(t, "posts/a.md", folioErr.Path)
}
