package controller

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "chef/internal/log"
	"chef/internal/schema"
	"chef/internal/serialize"
	"chef/internal/sync"
	"chef/models"
)

// RecipeController manages recipes together with their ingredient lines and
// tags. Every write replaces both collections in full.
type RecipeController struct {
	*Controller[models.Recipe, *models.Recipe, schema.Recipe, schema.Recipe]

	units       *UnitController
	ingredients *IngredientController
}

// RecipeFilter narrows GetAllAndFilter. Nil fields do not filter.
type RecipeFilter struct {
	Draft *bool
	Title *string
}

// NewRecipeController binds the recipe resource. Nested units and ingredients
// are resolved through the given controllers inside the recipe's transaction.
func NewRecipeController(db *gorm.DB, depth int, units *UnitController, ingredients *IngredientController) *RecipeController {
	c := &RecipeController{units: units, ingredients: ingredients}
	c.Controller = New[models.Recipe, *models.Recipe, schema.Recipe, schema.Recipe](db, Options[*models.Recipe]{
		Resource:     "Recipe",
		New:          models.NewRecipe,
		Preload:      preloadRecipe,
		Merge:        c.merge,
		AfterSave:    c.syncCollections,
		BeforeDelete: c.destroyCollections,
		Depth:        depth,
	})
	return c
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Preload("Ingredients.Ingredient").
		Preload("Ingredients.Unit").
		Preload("Tags", orderByTagID)
}

// CreateOrUpdate is not supported: an id-less upsert is ambiguous for an
// aggregate that owns nested collections. Use Create or Update.
func (c *RecipeController) CreateOrUpdate(ctx context.Context, _ schema.Recipe) (out serialize.Object, err error) {
	defer c.track(ctx, "create_or_update", time.Now(), &err)
	return nil, ErrOperationDisabled
}

// GetByCategory returns the recipes carrying any tag of the category, each
// once. An unknown category yields an empty list.
func (c *RecipeController) GetByCategory(ctx context.Context, categoryID uint) (out []serialize.Object, err error) {
	defer c.track(ctx, "get_by_category", time.Now(), &err)

	out = []serialize.Object{}
	err = c.transaction(ctx, func(tx *gorm.DB) error {
		var categories []models.Category
		if err := tx.Preload("Tags").Where("id = ?", categoryID).Limit(1).Find(&categories).Error; err != nil {
			return fmt.Errorf("load category id=%d: %w", categoryID, err)
		}
		if len(categories) == 0 || len(categories[0].Tags) == 0 {
			return nil
		}

		linked := tx.Session(&gorm.Session{NewDB: true}).
			Table("recipe_tags").
			Select("recipe_id").
			Where("tag_id IN ?", tagIDs(categories[0].Tags))

		var recipes []models.Recipe
		if err := preloadRecipe(tx).Where("id IN (?)", linked).Order("id asc").Find(&recipes).Error; err != nil {
			return fmt.Errorf("list recipes of category id=%d: %w", categoryID, err)
		}
		out = c.encodeAll(recipes)
		return nil
	})
	return out, err
}

// GetAllAndFilter returns the recipes matching every non-nil filter field.
func (c *RecipeController) GetAllAndFilter(ctx context.Context, filter RecipeFilter) (out []serialize.Object, err error) {
	defer c.track(ctx, "get_all_and_filter", time.Now(), &err)

	err = c.transaction(ctx, func(tx *gorm.DB) error {
		query := preloadRecipe(tx)
		if filter.Draft != nil {
			query = query.Where("draft = ?", *filter.Draft)
		}
		if filter.Title != nil {
			query = query.Where("title = ?", *filter.Title)
		}
		var recipes []models.Recipe
		if err := query.Order("id asc").Find(&recipes).Error; err != nil {
			return fmt.Errorf("filter recipes: %w", err)
		}
		out = c.encodeAll(recipes)
		return nil
	})
	return out, err
}

// merge resolves every nested unit, ingredient and tag, then stages the
// desired collections on the recipe. syncCollections persists them once the
// recipe has an id.
func (c *RecipeController) merge(ctx context.Context, tx *gorm.DB, recipe *models.Recipe, data Payload[*models.Recipe]) error {
	in, ok := data.(schema.Recipe)
	if !ok {
		return fmt.Errorf("%w: unexpected recipe payload %T", ErrInvalidPayload, data)
	}

	lines := make([]models.IngredientItem, 0, len(in.Ingredients))
	for pos, item := range in.Ingredients {
		unit, err := c.units.upsert(ctx, tx, item.Unit)
		if err != nil {
			return fmt.Errorf("ingredient line %d: %w", pos, err)
		}
		ingredient, err := c.ingredients.createOrUpdate(ctx, tx, item.Ingredient)
		if err != nil {
			return fmt.Errorf("ingredient line %d: %w", pos, err)
		}

		line := models.IngredientItem{
			Position:     pos,
			IngredientID: ingredient.ID,
			Ingredient:   ingredient,
			UnitID:       unit.ID,
			Unit:         unit,
		}
		if item.ID != nil {
			line.ID = *item.ID
		}
		if item.Amount != nil {
			line.Amount = *item.Amount
		}
		if item.Note != nil {
			note := *item.Note
			line.Note = &note
		}
		lines = append(lines, line)
	}

	tags := make([]models.Tag, 0, len(in.Tags))
	for _, ref := range in.Tags {
		if ref.ID != nil && *ref.ID != 0 {
			tag, err := loadTag(tx, *ref.ID)
			if err != nil {
				return err
			}
			tags = append(tags, *tag)
			continue
		}
		if err := validate(ref); err != nil {
			return fmt.Errorf("tag: %w", err)
		}
		tag := models.Tag{}
		ref.Apply(&tag)
		tags = append(tags, tag)
	}

	in.Apply(recipe)
	recipe.Ingredients = lines
	recipe.Tags = tags
	return nil
}

// syncCollections diffs the staged collections against the stored ones.
// Lines that are no longer wanted are deleted; tags are only detached.
func (c *RecipeController) syncCollections(ctx context.Context, tx *gorm.DB, recipe *models.Recipe) error {
	var current []models.IngredientItem
	if err := tx.Where("recipe_id = ?", recipe.ID).Order("position asc, id asc").Find(&current).Error; err != nil {
		return fmt.Errorf("load ingredient lines of recipe id=%d: %w", recipe.ID, err)
	}

	plan := sync.PlanLines(toLines(current), toLines(recipe.Ingredients))
	applog.Debug(ctx, "recipe ingredient plan",
		"id", recipe.ID,
		"keep", len(plan.Keep),
		"create", len(plan.Create),
		"delete", len(plan.Delete),
	)

	if len(plan.Delete) > 0 {
		if err := tx.Where("id IN ?", plan.Delete).Delete(&models.IngredientItem{}).Error; err != nil {
			return fmt.Errorf("delete ingredient lines: %w", err)
		}
	}

	for pos := range recipe.Ingredients {
		line := &recipe.Ingredients[pos]
		line.RecipeID = recipe.ID
		line.Position = pos

		if id, ok := plan.Keep[pos]; ok {
			line.ID = id
			updates := map[string]any{
				"position":      line.Position,
				"ingredient_id": line.IngredientID,
				"unit_id":       line.UnitID,
				"amount":        line.Amount,
				"note":          line.Note,
			}
			if err := tx.Model(&models.IngredientItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return fmt.Errorf("update ingredient line id=%d: %w", id, err)
			}
			continue
		}

		line.ID = 0
		if err := tx.Omit(clause.Associations).Create(line).Error; err != nil {
			return fmt.Errorf("create ingredient line: %w", err)
		}
	}

	for i := range recipe.Tags {
		tag := &recipe.Tags[i]
		if tag.ID != 0 {
			continue
		}
		if err := tx.Omit(clause.Associations).Create(tag).Error; err != nil {
			return fmt.Errorf("create tag %q: %w", tag.Name, err)
		}
	}
	return syncTags(tx, recipe, recipe.Tags)
}

func (c *RecipeController) destroyCollections(_ context.Context, tx *gorm.DB, recipe *models.Recipe) error {
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientItem{}).Error; err != nil {
		return fmt.Errorf("delete ingredient lines of recipe id=%d: %w", recipe.ID, err)
	}
	if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
		return fmt.Errorf("detach tags of recipe id=%d: %w", recipe.ID, err)
	}
	return nil
}

func toLines(items []models.IngredientItem) []sync.Line {
	lines := make([]sync.Line, 0, len(items))
	for _, item := range items {
		line := sync.Line{
			ID:           item.ID,
			IngredientID: item.IngredientID,
			UnitID:       item.UnitID,
			Amount:       item.Amount,
		}
		if item.Note != nil {
			line.Note = *item.Note
		}
		lines = append(lines, line)
	}
	return lines
}
