package controller

import "gorm.io/gorm"

// Controllers bundles one controller per resource, sharing a database handle.
type Controllers struct {
	Units       *UnitController
	Tags        *TagController
	Ingredients *IngredientController
	Categories  *CategoryController
	Recipes     *RecipeController
}

// NewControllers wires every resource controller. depth <= 0 selects the
// default serialization depth.
func NewControllers(db *gorm.DB, depth int) *Controllers {
	units := NewUnitController(db, depth)
	ingredients := NewIngredientController(db, depth)
	return &Controllers{
		Units:       units,
		Tags:        NewTagController(db, depth),
		Ingredients: ingredients,
		Categories:  NewCategoryController(db, depth),
		Recipes:     NewRecipeController(db, depth, units, ingredients),
	}
}
