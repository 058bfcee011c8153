package models

import "chef/internal/serialize"

// DefaultPortions is the serving count of a recipe created without one.
const DefaultPortions = 4

// Recipe is the aggregate root: it owns its ingredient lines and references
// shared tags.
type Recipe struct {
	Model
	Title      string  `gorm:"size:80;not null" json:"title"`
	Subtitle   *string `gorm:"size:50" json:"subtitle"`
	SourceName *string `gorm:"size:100" json:"source_name"`
	Source     *string `gorm:"size:100" json:"source"`
	Draft      bool    `gorm:"not null;default:false" json:"draft"`
	Portions   int     `gorm:"not null" json:"portions"`
	// HTML produced by the rich text editor.
	Body *string `gorm:"type:text" json:"body"`

	Ingredients []IngredientItem `gorm:"foreignKey:RecipeID" json:"ingredients"`
	Tags        []Tag            `gorm:"many2many:recipe_tags;" json:"tags"`
}

// NewRecipe returns a recipe populated with column defaults.
func NewRecipe() *Recipe {
	return &Recipe{Portions: DefaultPortions}
}

func (r *Recipe) Fields() []serialize.Field {
	return []serialize.Field{
		{Name: "id", Value: r.ID},
		{Name: "title", Value: r.Title},
		{Name: "subtitle", Value: r.Subtitle},
		{Name: "ingredients", Value: serialize.List(r.Ingredients)},
		{Name: "body", Value: r.Body},
		{Name: "source", Value: r.Source},
		{Name: "source_name", Value: r.SourceName},
		{Name: "tags", Value: serialize.List(r.Tags)},
		{Name: "portions", Value: r.Portions},
		{Name: "draft", Value: r.Draft},
	}
}

func (r *Recipe) String() string {
	return describe("Recipe", serialize.Field{Name: "id", Value: r.ID}, serialize.Field{Name: "title", Value: r.Title})
}
