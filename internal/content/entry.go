package content

import (
	"errors"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Entry is one record of a category index.
type Entry struct {
	ID    string `json:"id"`
	File  string `json:"file"`
	Title string `json:"title"`
	// Tags keeps the order of the index document. Always empty for untagged
	// schemas.
	Tags []string `json:"tags"`
	// Fields holds the schema's extra string fields that were present.
	Fields map[string]string `json:"fields"`
}

// Field returns the value of a schema field, or "" when absent.
func (e Entry) Field(name string) string {
	return e.Fields[name]
}

// Thumbnail returns the optional thumbnail path.
func (e Entry) Thumbnail() string {
	return e.Field(FieldThumbnail)
}

// HasTag reports whether tag is one of the entry's tags. Matching is exact
// and case-sensitive.
func (e Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks that e carries everything the page templates need.
func (s Schema) Validate(e Entry) error {
	keys := make([]*validation.KeyRules, 0, len(s.Fields))
	for _, name := range s.fieldNames() {
		rules := []validation.Rule{validation.Required}
		if name == FieldGithubLink {
			rules = append(rules, validation.By(isWebURL))
		}
		key := validation.Key(name, rules...)
		if s.Fields[name] == Optional {
			key = key.Optional()
		}
		keys = append(keys, key)
	}

	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required, validation.By(isPathSegment)),
		validation.Field(&e.File, validation.Required, validation.By(isRelativeFile)),
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Tags, validation.Each(validation.Required)),
		validation.Field(&e.Fields, validation.Map(keys...).AllowExtraKeys()),
	)
}

// isPathSegment rejects ids that could never be addressed as /post/{id}.
func isPathSegment(value interface{}) error {
	id, _ := value.(string)
	if strings.ContainsAny(id, "/?#") || strings.TrimSpace(id) != id {
		return errors.New("must be a single URL path segment")
	}
	return nil
}

// isRelativeFile keeps body files inside their category directory.
func isRelativeFile(value interface{}) error {
	file, _ := value.(string)
	if file == "" {
		return nil
	}
	if strings.Contains(file, `\`) {
		return errors.New("must use forward slashes")
	}
	clean := path.Clean(file)
	if path.IsAbs(clean) {
		return errors.New("must be relative to the category directory")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.New("must not leave the category directory")
	}
	return nil
}
