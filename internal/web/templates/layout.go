// Package templates renders the HTML views as templ components.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1d2330}
main{max-width:1100px;margin:0 auto;padding:24px}
h1{font-size:1.4rem;margin:0 0 16px}
form.inline{display:inline}
.card{background:#fff;border:1px solid #dde1e7;border-radius:8px;padding:16px;margin-bottom:16px}
.row{display:flex;gap:8px;flex-wrap:wrap;align-items:center}
input[type=text],input[type=url]{padding:6px 8px;border:1px solid #c5cbd3;border-radius:4px;min-width:280px}
button{padding:6px 12px;border:1px solid #2f6fde;background:#2f6fde;color:#fff;border-radius:4px;cursor:pointer}
button.link{background:none;border:none;color:inherit;padding:0;font:inherit;font-weight:600}
button[disabled]{opacity:.4;cursor:default}
table{border-collapse:collapse;width:100%;background:#fff}
th,td{border:1px solid #dde1e7;padding:6px 8px;text-align:left;font-size:.9rem}
th{background:#eef1f5}
.muted{color:#66707f;font-size:.85rem}
.alert{border:1px solid #e0a3a3;background:#fdf0f0;border-radius:8px;padding:12px;margin-bottom:16px}
.alert code{font-size:.8rem}
nav a{margin-right:12px}
`

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>%s</title><style>%s</style></head><body><main>`+
			`<nav><a href="/">Tracks</a><a href="/history">History</a></nav>`,
			templ.EscapeString(title), stylesheet); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// Alert is a user-facing error message.
type Alert struct {
	Message string
	Action  string
	Code    string
}

// ErrorAlert renders an error box with the support code.
func ErrorAlert(a Alert) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><strong>%s</strong> %s <code>(Code: %s)</code></div>`,
			templ.EscapeString(a.Message),
			templ.EscapeString(a.Action),
			templ.EscapeString(a.Code),
		)
		return err
	})
}

// ErrorPage renders a standalone page for errors outside the main view.
func ErrorPage(a Alert) templ.Component {
	return Layout("Error", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ErrorAlert(a).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<p><a href="/">Back to tracks</a></p>`)
		return err
	}))
}
