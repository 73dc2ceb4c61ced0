// Package content loads the JSON indexes and Markdown bodies that make up
// the site's posts and projects.
//
// Posts and projects share one loader. What differs between them lives in a
// Schema: the JSON key holding the entry array, which extra string fields an
// entry must or may carry, and whether entries have tags.
package content

import (
	"path"
	"sort"

	"github.com/conneroisu/folio/internal/config"
)

// FieldRule says whether a schema field must be present on every entry.
type FieldRule int

const (
	Optional FieldRule = iota
	Required
)

// Entry field names shared by every schema.
const (
	FieldID          = "id"
	FieldFile        = "file"
	FieldTitle       = "title"
	FieldTags        = "tags"
	FieldThumbnail   = "thumbnail"
	FieldPublishDate = "publish_date"
	FieldGithubLink  = "github_link"
)

// Schema describes the entry shape of one content category.
type Schema struct {
	// Name is the category name used in logs and errors, e.g. "posts".
	Name string
	// Key is the member of the index document holding the entry array.
	Key string
	// Fields lists the string fields beyond id, file and title.
	Fields map[string]FieldRule
	// Tagged entries carry a tags array of {"name": ...} objects.
	Tagged bool
}

// PostsSchema is the canonical shape of posts/index.json.
var PostsSchema = Schema{
	Name: "posts",
	Key:  "posts",
	Fields: map[string]FieldRule{
		FieldPublishDate: Required,
		FieldThumbnail:   Optional,
	},
	Tagged: true,
}

// ProjectsSchema is the canonical shape of projects/index.json.
var ProjectsSchema = Schema{
	Name: "projects",
	Key:  "projects",
	Fields: map[string]FieldRule{
		FieldGithubLink: Required,
		FieldThumbnail:  Optional,
	},
}

// fieldNames returns the schema's extra fields in a stable order.
func (s Schema) fieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Category binds a schema to its location below the content root.
type Category struct {
	Schema Schema
	// Dir is the category directory relative to the content root.
	Dir string
	// Index is the index file name relative to Dir.
	Index string
}

// NewCategory builds a category from its configuration block.
func NewCategory(schema Schema, cfg config.CategoryConfig) Category {
	dir := cfg.Dir
	if dir == "" {
		dir = schema.Name
	}
	index := cfg.Index
	if index == "" {
		index = "index.json"
	}
	return Category{Schema: schema, Dir: dir, Index: index}
}

// Name returns the schema name.
func (c Category) Name() string {
	return c.Schema.Name
}

// IndexPath is the index file path relative to the content root.
func (c Category) IndexPath() string {
	return path.Join(c.Dir, c.Index)
}

// BodyPath is the body file path of e relative to the content root.
func (c Category) BodyPath(e Entry) string {
	return path.Join(c.Dir, e.File)
}
