package views

import (
	"github.com/a-h/templ"
)

// Project is a rendered portfolio project.
type Project struct {
	ID    string
	Title string
	// Content is the rendered HTML body. It is written unescaped.
	Content    string
	Excerpt    string
	GithubLink string
	Thumbnail  string
}

// ProjectPage renders a single project.
func ProjectPage(project Project) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<article class="project"`)
		hw.attr("id", "project-"+project.ID)
		hw.raw(">")
		hw.thumbnail(project.Thumbnail, project.Title)
		hw.raw(`<h1 class="project-title">`)
		hw.text(project.Title)
		hw.raw("</h1>")
		hw.githubLink(project.GithubLink)
		hw.raw(`<div class="project-content">`)
		hw.raw(project.Content)
		hw.raw("</div></article>")
	})
}

// ProjectList renders projects in the given order under heading.
func ProjectList(heading string, projects []Project) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<section class="projects"><h1>`)
		hw.text(heading)
		hw.raw("</h1>")
		if len(projects) == 0 {
			hw.raw(`<p class="empty">No projects yet.</p></section>`)
			return
		}
		hw.raw(`<ul class="project-list">`)
		for _, project := range projects {
			hw.raw(`<li class="project-card"`)
			hw.attr("data-id", project.ID)
			hw.raw(">")
			hw.thumbnail(project.Thumbnail, project.Title)
			hw.raw("<h2>")
			hw.navLink(ProjectPath(project.ID), "project-link", project.Title)
			hw.raw("</h2>")
			if project.Excerpt != "" {
				hw.raw(`<p class="excerpt">`)
				hw.text(project.Excerpt)
				hw.raw("</p>")
			}
			hw.githubLink(project.GithubLink)
			hw.raw("</li>")
		}
		hw.raw("</ul></section>")
	})
}

func (hw *htmlWriter) githubLink(link string) {
	if link == "" {
		return
	}
	hw.raw(`<a class="github-link" rel="noopener" target="_blank"`)
	hw.url("href", link)
	hw.raw(">GitHub</a>")
}
