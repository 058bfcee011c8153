// Package pages renders full HTML pages from loaded entities.
package pages

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"chef/internal/views/layout"
	"chef/models"
)

// bodyPolicy allows the formatting a rich text editor produces and strips
// scripts, handlers and unsafe URLs.
var bodyPolicy = bluemonday.UGCPolicy()

// RecipeView is the read shape of a recipe as the page needs it.
type RecipeView struct {
	ID          uint
	Title       string
	Subtitle    string
	Ingredients []LineView
	Body        string
	Source      string
	SourceName  string
	Tags        []string
	Portions    int
	Draft       bool
}

// LineView is one ingredient line.
type LineView struct {
	Ingredient string
	Amount     float64
	Unit       string
	Note       string
}

// NewRecipeView flattens a recipe loaded with its lines, their ingredients
// and units, and its tags.
func NewRecipeView(recipe *models.Recipe) RecipeView {
	view := RecipeView{
		ID:         recipe.ID,
		Title:      recipe.Title,
		Subtitle:   deref(recipe.Subtitle),
		Body:       deref(recipe.Body),
		Source:     deref(recipe.Source),
		SourceName: deref(recipe.SourceName),
		Portions:   recipe.Portions,
		Draft:      recipe.Draft,
	}
	for _, item := range recipe.Ingredients {
		line := LineView{Amount: item.Amount, Note: deref(item.Note)}
		if item.Ingredient != nil {
			line.Ingredient = item.Ingredient.Name
		}
		if item.Unit != nil {
			line.Unit = item.Unit.Name
		}
		view.Ingredients = append(view.Ingredients, line)
	}
	for _, tag := range recipe.Tags {
		view.Tags = append(view.Tags, tag.Name)
	}
	return view
}

// Recipe renders a printable recipe page.
func Recipe(recipe RecipeView) templ.Component {
	return layout.Layout(recipe.Title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<article class="recipe"><h1>`)
		b.WriteString(templ.EscapeString(recipe.Title))
		b.WriteString(`</h1>`)
		if recipe.Subtitle != "" {
			b.WriteString(`<p class="subtitle">`)
			b.WriteString(templ.EscapeString(recipe.Subtitle))
			b.WriteString(`</p>`)
		}
		if recipe.Draft {
			b.WriteString(`<p class="draft">Draft</p>`)
		}
		b.WriteString(`<p class="portions">Serves `)
		b.WriteString(strconv.Itoa(recipe.Portions))
		b.WriteString(`</p>`)

		if len(recipe.Ingredients) > 0 {
			b.WriteString(`<table class="ingredients"><tbody>`)
			for _, line := range recipe.Ingredients {
				b.WriteString(`<tr><td class="amount">`)
				b.WriteString(formatAmount(line.Amount))
				if line.Unit != "" {
					b.WriteString(" ")
					b.WriteString(templ.EscapeString(line.Unit))
				}
				b.WriteString(`</td><td>`)
				b.WriteString(templ.EscapeString(line.Ingredient))
				if line.Note != "" {
					b.WriteString(`, <em>`)
					b.WriteString(templ.EscapeString(line.Note))
					b.WriteString(`</em>`)
				}
				b.WriteString(`</td></tr>`)
			}
			b.WriteString(`</tbody></table>`)
		}

		if recipe.Body != "" {
			b.WriteString(`<section class="body">`)
			b.WriteString(bodyPolicy.Sanitize(recipe.Body))
			b.WriteString(`</section>`)
		}

		if source := sourceLabel(recipe); source != "" {
			b.WriteString(`<p class="source">Source: `)
			b.WriteString(source)
			b.WriteString(`</p>`)
		}

		if len(recipe.Tags) > 0 {
			b.WriteString(`<p class="tags">`)
			for _, tag := range recipe.Tags {
				b.WriteString(`<span>#`)
				b.WriteString(templ.EscapeString(tag))
				b.WriteString(`</span>`)
			}
			b.WriteString(`</p>`)
		}
		b.WriteString(`</article>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

func sourceLabel(recipe RecipeView) string {
	name := templ.EscapeString(recipe.SourceName)
	if recipe.Source == "" {
		return name
	}
	link := string(templ.URL(recipe.Source))
	if name == "" {
		name = templ.EscapeString(recipe.Source)
	}
	return `<a href="` + templ.EscapeString(link) + `">` + name + `</a>`
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
