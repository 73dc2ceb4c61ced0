package views

import (
	"github.com/a-h/templ"
)

// About renders the static about page.
func About() templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<section class="about"><h1>About</h1>`)
		hw.raw(`<p>Hi, I write here about the software I build and the things I learn along the way.</p>`)
		hw.raw(`<p>Browse the `)
		hw.navLink("/posts", "", "posts")
		hw.raw(` or have a look at some `)
		hw.navLink("/projects", "", "projects")
		hw.raw(`.</p></section>`)
	})
}

// NotFound renders the fragment answered for unknown content.
func NotFound(what string) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<section class="not-found"><h1>Not found</h1><p>`)
		hw.text(what)
		hw.raw(` does not exist.</p></section>`)
	})
}

// ServerError renders the fragment answered when a page cannot be built.
func ServerError() templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<section class="server-error"><h1>Something went wrong</h1>`)
		hw.raw(`<p>This page could not be loaded. Please try again later.</p></section>`)
	})
}
