package models

import "chef/internal/serialize"

// IngredientItem is one line of a recipe's ingredient list, e.g.
// "400 g tomatoes (roughly chopped)". It belongs to exactly one recipe and
// is destroyed with it.
type IngredientItem struct {
	Model
	RecipeID uint `gorm:"not null;index" json:"recipe_id"`
	Position int  `gorm:"not null;default:0" json:"position"`

	IngredientID uint        `gorm:"not null;index" json:"ingredient_id"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Amount       float64     `json:"amount"`
	UnitID       uint        `gorm:"not null;index" json:"unit_id"`
	Unit         *Unit       `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	Note         *string     `gorm:"size:64" json:"note"`
}

func (i *IngredientItem) Fields() []serialize.Field {
	return []serialize.Field{
		{Name: "id", Value: i.ID},
		{Name: "ingredient", Value: serialize.Ref(i.Ingredient)},
		{Name: "amount", Value: i.Amount},
		{Name: "unit", Value: serialize.Ref(i.Unit)},
		{Name: "note", Value: i.Note},
	}
}

func (i *IngredientItem) String() string {
	ingredient := ""
	if i.Ingredient != nil {
		ingredient = i.Ingredient.Name
	}
	return describe("IngredientItem",
		serialize.Field{Name: "ingredient", Value: ingredient},
		serialize.Field{Name: "amount", Value: i.Amount},
		serialize.Field{Name: "unit", Value: serialize.Ref(i.Unit)},
	)
}
