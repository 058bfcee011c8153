package controller

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	applog "chef/internal/log"
	"chef/internal/schema"
	"chef/models"
)

// IngredientController manages ingredients and refuses to delete one that a
// recipe still uses.
type IngredientController struct {
	*Controller[models.Ingredient, *models.Ingredient, schema.Ingredient, schema.Ingredient]
}

// NewIngredientController binds the ingredient resource.
func NewIngredientController(db *gorm.DB, depth int) *IngredientController {
	c := &IngredientController{}
	c.Controller = New[models.Ingredient, *models.Ingredient, schema.Ingredient, schema.Ingredient](db, Options[*models.Ingredient]{
		Resource:     "Ingredient",
		New:          models.NewIngredient,
		BeforeDelete: c.guard,
		Depth:        depth,
	})
	return c
}

// guard fails with a ReferentialConflictError naming every recipe that holds
// a line referencing the ingredient.
func (c *IngredientController) guard(ctx context.Context, tx *gorm.DB, ingredient *models.Ingredient) error {
	var rows []struct {
		ID    uint
		Title string
	}
	err := tx.Model(&models.Recipe{}).
		Select("recipes.id, recipes.title").
		Joins("JOIN ingredient_items ON ingredient_items.recipe_id = recipes.id").
		Where("ingredient_items.ingredient_id = ?", ingredient.ID).
		Order("recipes.id asc").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("collect recipes using ingredient id=%d: %w", ingredient.ID, err)
	}
	if len(rows) == 0 {
		return nil
	}

	seen := make(map[uint]bool, len(rows))
	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		titles = append(titles, row.Title)
	}
	applog.Debug(ctx, "ingredient delete blocked", "id", ingredient.ID, "recipes", len(titles))
	return &ReferentialConflictError{Resource: c.Resource(), ID: ingredient.ID, Blockers: titles}
}
