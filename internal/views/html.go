// Package views holds the page templates as templ components.
//
// Every component writes through an htmlWriter, which escapes text and
// attribute values with templ's escaper and remembers the first write error.
// Rendered Markdown is the only content written unescaped.
package views

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ContentTarget is the id of the element fragments are swapped into.
const ContentTarget = "content"

type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (hw *htmlWriter) url(name, value string) {
	hw.attr(name, string(templ.URL(value)))
}

// component adapts a write function into a templ.Component.
func component(write func(hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		hw := &htmlWriter{w: w}
		write(hw)
		return hw.err
	})
}

// navLink writes an anchor that works as a plain link and, with htmx loaded,
// swaps the target's fragment into the content element.
func (hw *htmlWriter) navLink(href, class, label string) {
	hw.raw("<a")
	hw.url("href", href)
	hw.url("hx-get", href)
	hw.attr("hx-target", "#"+ContentTarget)
	hw.attr("hx-push-url", "true")
	if class != "" {
		hw.attr("class", class)
	}
	hw.raw(">")
	hw.text(label)
	hw.raw("</a>")
}

func (hw *htmlWriter) thumbnail(src, alt string) {
	if src == "" {
		return
	}
	hw.raw(`<img class="thumbnail"`)
	hw.url("src", src)
	hw.attr("alt", alt)
	hw.attr("loading", "lazy")
	hw.raw(">")
}

func (hw *htmlWriter) tagList(tags []string) {
	if len(tags) == 0 {
		return
	}
	hw.raw(`<ul class="tags">`)
	for _, tag := range tags {
		hw.raw("<li>")
		hw.navLink(TagPath(tag), "tag", tag)
		hw.raw("</li>")
	}
	hw.raw("</ul>")
}

// TagPath returns the route listing posts tagged tag.
func TagPath(tag string) string {
	return "/tag/" + url.PathEscape(tag)
}

// PostPath returns the route of a single post.
func PostPath(id string) string {
	return "/post/" + url.PathEscape(id)
}

// ProjectPath returns the route of a single project.
func ProjectPath(id string) string {
	return "/project/" + url.PathEscape(id)
}

// Heading title-cases a category name for use as a listing heading.
func Heading(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// TagHeading is the heading of a tag-filtered post listing.
func TagHeading(tag string) string {
	return Heading("posts") + " tagged “" + tag + "”"
}
