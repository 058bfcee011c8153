package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"chef/models"
)

func strptr(s string) *string { return &s }

func sampleRecipe() *models.Recipe {
	recipe := &models.Recipe{
		Model:      models.Model{ID: 7},
		Title:      "Soup <for two>",
		Body:       strptr("<p>Simmer.</p>"),
		Source:     strptr("https://example.com/soup"),
		SourceName: strptr("Grandma"),
		Portions:   2,
		Draft:      true,
		Tags:       []models.Tag{{Model: models.Model{ID: 2}, Name: "winter"}},
	}
	recipe.Ingredients = []models.IngredientItem{{
		Model:      models.Model{ID: 1},
		Ingredient: &models.Ingredient{Model: models.Model{ID: 1}, Name: "Tomato"},
		Amount:     400,
		Unit:       &models.Unit{Model: models.Model{ID: 1}, Name: "g", Grams: 1},
		Note:       strptr("chopped"),
	}}
	return recipe
}

func render(t *testing.T, view RecipeView) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Recipe(view).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render recipe: %v", err)
	}
	return buf.String()
}

func TestNewRecipeView(t *testing.T) {
	view := NewRecipeView(sampleRecipe())
	if view.ID != 7 || view.Title != "Soup <for two>" || !view.Draft || view.Subtitle != "" {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(view.Ingredients) != 1 || view.Ingredients[0].Unit != "g" || view.Ingredients[0].Ingredient != "Tomato" {
		t.Fatalf("unexpected ingredient lines %+v", view.Ingredients)
	}
	if len(view.Tags) != 1 || view.Tags[0] != "winter" {
		t.Fatalf("unexpected tags %+v", view.Tags)
	}
}

func TestNewRecipeViewToleratesMissingRelations(t *testing.T) {
	recipe := &models.Recipe{Title: "Bare", Ingredients: []models.IngredientItem{{Amount: 1}}}
	view := NewRecipeView(recipe)
	if len(view.Ingredients) != 1 || view.Ingredients[0].Ingredient != "" || view.Ingredients[0].Unit != "" {
		t.Fatalf("unexpected lines %+v", view.Ingredients)
	}
	if out := render(t, view); !strings.Contains(out, `<td class="amount">1</td>`) {
		t.Fatalf("expected bare amount cell: %s", out)
	}
}

func TestRecipeRendersPrintablePage(t *testing.T) {
	out := render(t, NewRecipeView(sampleRecipe()))
	for _, token := range []string{
		"<title>Soup &lt;for two&gt;</title>",
		"<h1>Soup &lt;for two&gt;</h1>",
		"400 g",
		"Tomato, <em>chopped</em>",
		"<p>Simmer.</p>",
		`<a href="https://example.com/soup">Grandma</a>`,
		"#winter",
		"Serves 2",
		"Draft",
	} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q: %s", token, out)
		}
	}
}

func TestRecipeSanitizesBody(t *testing.T) {
	recipe := sampleRecipe()
	recipe.Body = strptr(`<p onclick="steal()">Stir <strong>gently</strong>.</p><script>alert(1)</script><a href="javascript:alert(1)">x</a>`)

	out := render(t, NewRecipeView(recipe))
	for _, banned := range []string{"<script", "alert(1)", "onclick", "javascript:"} {
		if strings.Contains(out, banned) {
			t.Fatalf("expected %q to be stripped: %s", banned, out)
		}
	}
	if !strings.Contains(out, "<strong>gently</strong>") {
		t.Fatalf("expected formatting to survive sanitizing: %s", out)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[float64]string{
		400:  "400",
		0.5:  "0.5",
		1.25: "1.25",
	}
	for in, want := range tests {
		if got := formatAmount(in); got != want {
			t.Fatalf("formatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
