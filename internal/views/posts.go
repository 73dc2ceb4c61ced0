package views

import (
	"github.com/a-h/templ"
)

// Post is a rendered post.
type Post struct {
	ID    string
	Title string
	// Content is the rendered HTML body. It is written unescaped.
	Content     string
	Excerpt     string
	Tags        []string
	PublishDate string
	Thumbnail   string
}

// PostPage renders a single post.
func PostPage(post Post) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<article class="post"`)
		hw.attr("id", "post-"+post.ID)
		hw.raw(">")
		hw.thumbnail(post.Thumbnail, post.Title)
		hw.raw(`<h1 class="post-title">`)
		hw.text(post.Title)
		hw.raw("</h1>")
		if post.PublishDate != "" {
			hw.raw(`<p class="post-meta"><time>`)
			hw.text(post.PublishDate)
			hw.raw("</time></p>")
		}
		hw.tagList(post.Tags)
		hw.raw(`<div class="post-content">`)
		hw.raw(post.Content)
		hw.raw("</div></article>")
	})
}

// PostList renders posts in the given order under heading.
func PostList(heading string, posts []Post) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<section class="posts"><h1>`)
		hw.text(heading)
		hw.raw("</h1>")
		if len(posts) == 0 {
			hw.raw(`<p class="empty">No posts yet.</p></section>`)
			return
		}
		hw.raw(`<ul class="post-list">`)
		for _, post := range posts {
			hw.raw(`<li class="post-card"`)
			hw.attr("data-id", post.ID)
			hw.raw(">")
			hw.thumbnail(post.Thumbnail, post.Title)
			hw.raw("<h2>")
			hw.navLink(PostPath(post.ID), "post-link", post.Title)
			hw.raw("</h2>")
			if post.PublishDate != "" {
				hw.raw("<time>")
				hw.text(post.PublishDate)
				hw.raw("</time>")
			}
			if post.Excerpt != "" {
				hw.raw(`<p class="excerpt">`)
				hw.text(post.Excerpt)
				hw.raw("</p>")
			}
			hw.tagList(post.Tags)
			hw.raw("</li>")
		}
		hw.raw("</ul></section>")
	})
}
