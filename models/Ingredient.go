package models

import "chef/internal/serialize"

// DefaultDensity is the density assumed for new ingredients, in g/L.
const DefaultDensity = 1000

// Ingredient holds nutrition facts per 100g.
type Ingredient struct {
	Model
	Name     string  `gorm:"size:80;not null" json:"name"`
	Energy   float64 `json:"energy"`   // kcal
	Fats     float64 `json:"fats"`     // g / 100g
	Carbs    float64 `json:"carbs"`    // g / 100g
	Proteins float64 `json:"proteins"` // g / 100g
	Fibres   float64 `json:"fibres"`   // g / 100g
	Salt     float64 `json:"salt"`     // g / 100g
	IsLiquid bool    `gorm:"not null;default:false" json:"is_liquid"`
	Density  float64 `json:"density"` // g / L
}

// NewIngredient returns an ingredient populated with column defaults.
func NewIngredient() *Ingredient {
	return &Ingredient{Density: DefaultDensity}
}

func (i *Ingredient) Fields() []serialize.Field {
	return []serialize.Field{
		{Name: "id", Value: i.ID},
		{Name: "name", Value: i.Name},
		{Name: "energy", Value: i.Energy},
		{Name: "fats", Value: i.Fats},
		{Name: "carbs", Value: i.Carbs},
		{Name: "proteins", Value: i.Proteins},
		{Name: "fibres", Value: i.Fibres},
		{Name: "salt", Value: i.Salt},
		{Name: "is_liquid", Value: i.IsLiquid},
		{Name: "density", Value: i.Density},
	}
}

func (i *Ingredient) String() string {
	return describe("Ingredient", serialize.Field{Name: "id", Value: i.ID}, serialize.Field{Name: "name", Value: i.Name})
}
