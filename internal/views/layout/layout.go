// Package layout renders the HTML document shell shared by every page.
package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const stylesheet = `body{font-family:Georgia,serif;max-width:42rem;margin:2rem auto;padding:0 1rem;color:#222}
h1{margin-bottom:.25rem}.subtitle{color:#666;margin-top:0}
table.ingredients{border-collapse:collapse;width:100%}
table.ingredients td{padding:.25rem .5rem;border-bottom:1px solid #ddd}
td.amount{text-align:right;white-space:nowrap}
.tags span{display:inline-block;margin-right:.5rem;font-size:.85rem;color:#555}
@media print{body{margin:0}}`

// Layout wraps content in a complete HTML document titled title.
func Layout(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, templ.EscapeString(title)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</title><style>`+stylesheet+`</style></head><body>`); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
