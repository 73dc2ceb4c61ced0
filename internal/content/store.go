package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	ferrors "github.com/conneroisu/folio/internal/errors"
)

// Store reads indexes and bodies from a filesystem rooted at the content
// root. It keeps no state between calls: every load hits the filesystem.
type Store struct {
	fs afero.Fs
}

// NewStore creates a store over fs. Paths given to fs are relative to the
// content root.
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// NewDirStore creates a store over the OS directory root.
func NewDirStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving content root %s: %w", root, err)
	}
	return NewStore(afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), abs))), nil
}

// Body is a Markdown document with its optional front matter split off.
type Body struct {
	Markdown []byte
	// Summary comes from a "summary" front matter key, if any.
	Summary string
}

type bodyFrontMatter struct {
	Summary string `yaml:"summary" json:"summary"`
}

// errNotFrontMatter marks a delimited block that is not a mapping, such as
// Markdown opening with a thematic break.
var errNotFrontMatter = errors.New("block is not a front matter mapping")

// frontMatterFormats are the YAML and JSON front matter delimiters.
var frontMatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", mappingOnly(yaml.Unmarshal)),
	frontmatter.NewFormat("---yaml", "---", mappingOnly(yaml.Unmarshal)),
	frontmatter.NewFormat(";;;", ";;;", mappingOnly(json.Unmarshal)),
	frontmatter.NewFormat("---json", "---", mappingOnly(json.Unmarshal)),
}

// mappingOnly decodes into v only when data holds a mapping or nothing at
// all. Anything else is reported as errNotFrontMatter.
func mappingOnly(unmarshal frontmatter.UnmarshalFunc) frontmatter.UnmarshalFunc {
	return func(data []byte, v interface{}) error {
		var generic interface{}
		if err := unmarshal(data, &generic); err != nil {
			return errNotFrontMatter
		}
		switch generic.(type) {
		case nil, map[string]interface{}, map[interface{}]interface{}:
			return unmarshal(data, v)
		default:
			return errNotFrontMatter
		}
	}
}

// LoadIndex reads and parses the index of category.
func (s *Store) LoadIndex(category Category) (*Index, error) {
	indexPath := category.IndexPath()

	data, err := afero.ReadFile(s.fs, filepath.FromSlash(indexPath))
	if err != nil {
		return nil, ferrors.WrapIO(err, ferrors.ErrCodeIndexRead, "reading index", indexPath).
			WithCategory(category.Name())
	}

	return ParseIndex(category, data)
}

// LoadBody reads the Markdown body of e.
func (s *Store) LoadBody(category Category, e Entry) (Body, error) {
	bodyPath := category.BodyPath(e)

	data, err := afero.ReadFile(s.fs, filepath.FromSlash(bodyPath))
	if err != nil {
		return Body{}, ferrors.WrapIO(err, ferrors.ErrCodeBodyRead, "reading body", bodyPath).
			WithCategory(category.Name()).
			WithContext("id", e.ID)
	}

	var meta bodyFrontMatter
	rest, err := frontmatter.Parse(bytes.NewReader(data), &meta, frontMatterFormats...)
	if errors.Is(err, errNotFrontMatter) {
		return Body{Markdown: data}, nil
	}
	if err != nil {
		return Body{}, ferrors.WrapMalformedIndex(err, ferrors.ErrCodeFrontMatter,
			"invalid front matter", bodyPath).
			WithCategory(category.Name()).
			WithContext("id", e.ID)
	}

	return Body{Markdown: rest, Summary: meta.Summary}, nil
}

// Check loads the index of category and every body it references, returning
// all problems found instead of stopping at the first missing body.
func (s *Store) Check(category Category) (int, error) {
	idx, err := s.LoadIndex(category)
	if err != nil {
		return 0, err
	}

	var problems []error
	for _, e := range idx.entries {
		if _, err := s.LoadBody(category, e); err != nil {
			problems = append(problems, err)
		}
	}
	return idx.Len(), ferrors.Combine(problems...)
}
