package views

import (
	"encoding/json"

	"github.com/a-h/templ"
)

// ShellData configures the outer page served on full navigations.
type ShellData struct {
	Title string
	// StartLink is the fragment route loaded into the content element once
	// the page has loaded.
	StartLink string
	// AssetsPrefix is the URL prefix static assets are served under.
	AssetsPrefix string
	// FragmentHeader is sent with every in-page request so the server can
	// answer with a fragment.
	FragmentHeader string
	LiveReload     bool
}

// Shell renders the page chrome around an empty content element that fetches
// StartLink on load.
func Shell(data ShellData) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw("<!DOCTYPE html>\n<html lang=\"en\"><head>")
		hw.raw(`<meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw("<title>")
		hw.text(data.Title)
		hw.raw("</title>")
		hw.raw(`<link rel="stylesheet"`)
		hw.url("href", data.AssetsPrefix+"styles.css")
		hw.raw(">")
		hw.raw("<script")
		hw.url("src", data.AssetsPrefix+"htmx.min.js")
		hw.raw("></script>")
		hw.raw("</head>")

		hw.raw("<body")
		if data.FragmentHeader != "" && data.FragmentHeader != "HX-Request" {
			headers, _ := json.Marshal(map[string]string{data.FragmentHeader: "true"})
			hw.attr("hx-headers", string(headers))
		}
		hw.raw(">")

		hw.raw(`<header class="site-header">`)
		hw.navLink("/", "site-title", data.Title)
		hw.raw(`<nav class="site-nav">`)
		hw.navLink("/posts", "", "Posts")
		hw.navLink("/projects", "", "Projects")
		hw.navLink("/about", "", "About")
		hw.raw("</nav></header>")

		hw.raw("<main")
		hw.attr("id", ContentTarget)
		hw.url("hx-get", data.StartLink)
		hw.attr("hx-trigger", "load")
		hw.attr("hx-swap", "innerHTML")
		hw.attr("data-start-link", data.StartLink)
		hw.raw("></main>")

		if data.LiveReload {
			hw.raw("<script>")
			hw.raw(liveReloadScript)
			hw.raw("</script>")
		}

		hw.raw("</body></html>")
	})
}

// liveReloadScript re-fetches the current fragment whenever the server reports
// a content change and reconnects a second after the socket drops.
const liveReloadScript = `(function () {
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === "reload" && window.htmx) {
        htmx.ajax("GET", location.pathname, {target: "#content", swap: "innerHTML"});
      }
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();`
