// Package site turns content entries into page components.
//
// A Section binds a content category to a trust level and the views that
// present it, so posts and projects run through the same pipeline.
package site

import (
	"fmt"

	"github.com/a-h/templ"

	"github.com/conneroisu/folio/internal/config"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/markdown"
	"github.com/conneroisu/folio/internal/views"
)

// Document is an entry whose body has been rendered.
type Document struct {
	Entry content.Entry
	// HTML is the rendered body.
	HTML string
	// Excerpt is plain text for listings.
	Excerpt string
}

// Section describes how one content category is rendered.
type Section struct {
	Category content.Category
	Trust    markdown.Trust
	// Page presents a single document.
	Page func(doc Document) templ.Component
	// List presents documents under a heading, in the given order.
	List func(heading string, docs []Document) templ.Component
}

// Name returns the category name.
func (s Section) Name() string {
	return s.Category.Name()
}

// Sections holds the two sections the site serves.
type Sections struct {
	Posts    Section
	Projects Section
}

// NewSections builds the posts and projects sections from configuration.
func NewSections(cfg config.ContentConfig) (Sections, error) {
	postsTrust, err := markdown.ParseTrust(cfg.Posts.Trust)
	if err != nil {
		return Sections{}, fmt.Errorf("posts: %w", err)
	}
	projectsTrust, err := markdown.ParseTrust(cfg.Projects.Trust)
	if err != nil {
		return Sections{}, fmt.Errorf("projects: %w", err)
	}

	return Sections{
		Posts:    PostsSection(content.NewCategory(content.PostsSchema, cfg.Posts), postsTrust),
		Projects: ProjectsSection(content.NewCategory(content.ProjectsSchema, cfg.Projects), projectsTrust),
	}, nil
}

// All returns every section in a fixed order.
func (s Sections) All() []Section {
	return []Section{s.Posts, s.Projects}
}

// PostsSection presents category with the post views.
func PostsSection(category content.Category, trust markdown.Trust) Section {
	return Section{
		Category: category,
		Trust:    trust,
		Page: func(doc Document) templ.Component {
			return views.PostPage(postView(doc))
		},
		List: func(heading string, docs []Document) templ.Component {
			posts := make([]views.Post, len(docs))
			for i, doc := range docs {
				posts[i] = postView(doc)
			}
			return views.PostList(heading, posts)
		},
	}
}

// ProjectsSection presents category with the project views.
func ProjectsSection(category content.Category, trust markdown.Trust) Section {
	return Section{
		Category: category,
		Trust:    trust,
		Page: func(doc Document) templ.Component {
			return views.ProjectPage(projectView(doc))
		},
		List: func(heading string, docs []Document) templ.Component {
			projects := make([]views.Project, len(docs))
			for i, doc := range docs {
				projects[i] = projectView(doc)
			}
			return views.ProjectList(heading, projects)
		},
	}
}

func postView(doc Document) views.Post {
	return views.Post{
		ID:          doc.Entry.ID,
		Title:       doc.Entry.Title,
		Content:     doc.HTML,
		Excerpt:     doc.Excerpt,
		Tags:        doc.Entry.Tags,
		PublishDate: doc.Entry.Field(content.FieldPublishDate),
		Thumbnail:   doc.Entry.Thumbnail(),
	}
}

func projectView(doc Document) views.Project {
	return views.Project{
		ID:         doc.Entry.ID,
		Title:      doc.Entry.Title,
		Content:    doc.HTML,
		Excerpt:    doc.Excerpt,
		GithubLink: doc.Entry.Field(content.FieldGithubLink),
		Thumbnail:  doc.Entry.Thumbnail(),
	}
}
