package mock

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"chef/internal/db"
	applog "chef/internal/log"
	"chef/models"
)

// Open returns an empty, migrated in-memory sqlite database. Handles opened
// with the same name share their data. The pool is capped at one connection
// since shared-cache sqlite locks whole tables.
func Open(ctx context.Context, name string) (*gorm.DB, error) {
	applog.Debug(ctx, "opening in-memory database", "name", name)

	database, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), db.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

// New returns an in-memory sqlite database seeded with a small cookbook.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := Open(ctx, "chef-mock")
	if err != nil {
		return nil, err
	}

	if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Count(&users).Error; err != nil {
			return err
		}
		if users > 0 {
			return nil
		}
		return seed(ctx, tx)
	}); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, tx *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	user, err := models.NewUser("robin@chef.local", "Robin Kitchen", "mise-en-place")
	if err != nil {
		return err
	}
	if err := tx.Create(user).Error; err != nil {
		return err
	}

	grams := models.Unit{Name: "g", Grams: 1}
	millilitres := models.Unit{Name: "ml", Grams: 1}
	tablespoon := models.Unit{Name: "tbsp", Grams: 15}
	for _, unit := range []*models.Unit{&grams, &millilitres, &tablespoon} {
		if err := tx.Create(unit).Error; err != nil {
			return err
		}
	}

	tomato := models.Ingredient{Name: "Tomato", Energy: 18, Fats: 0.2, Carbs: 3.9, Proteins: 0.9, Fibres: 1.2, Density: models.DefaultDensity}
	oil := models.Ingredient{Name: "Olive oil", Energy: 884, Fats: 100, IsLiquid: true, Density: 910}
	pasta := models.Ingredient{Name: "Spaghetti", Energy: 371, Fats: 1.5, Carbs: 75, Proteins: 13, Fibres: 3.2, Density: models.DefaultDensity}
	for _, ingredient := range []*models.Ingredient{&tomato, &oil, &pasta} {
		if err := tx.Create(ingredient).Error; err != nil {
			return err
		}
	}

	vegetarian := models.Tag{Name: "vegetarian"}
	quick := models.Tag{Name: "quick"}
	soup := models.Tag{Name: "soup"}
	for _, tag := range []*models.Tag{&vegetarian, &quick, &soup} {
		if err := tx.Create(tag).Error; err != nil {
			return err
		}
	}

	weeknight := models.Category{Name: "Weeknight", Tags: []models.Tag{quick, vegetarian}}
	if err := tx.Create(&weeknight).Error; err != nil {
		return err
	}

	body := "<p>Simmer the tomatoes in oil, toss with the pasta.</p>"
	roughly := "chopped"
	recipes := []struct {
		recipe models.Recipe
		lines  []models.IngredientItem
	}{
		{
			recipe: models.Recipe{Title: "Spaghetti al pomodoro", Portions: 2, Body: &body, Tags: []models.Tag{quick, vegetarian}},
			lines: []models.IngredientItem{
				{IngredientID: pasta.ID, UnitID: grams.ID, Amount: 200},
				{IngredientID: tomato.ID, UnitID: grams.ID, Amount: 400, Note: &roughly},
				{IngredientID: oil.ID, UnitID: tablespoon.ID, Amount: 2},
			},
		},
		{
			recipe: models.Recipe{Title: "Tomato soup", Portions: models.DefaultPortions, Draft: true, Tags: []models.Tag{soup}},
			lines: []models.IngredientItem{
				{IngredientID: tomato.ID, UnitID: grams.ID, Amount: 800},
				{IngredientID: oil.ID, UnitID: millilitres.ID, Amount: 30},
			},
		},
	}

	for _, entry := range recipes {
		recipe := entry.recipe
		if err := tx.Omit("Tags.*").Create(&recipe).Error; err != nil {
			return err
		}
		for pos, line := range entry.lines {
			line.RecipeID = recipe.ID
			line.Position = pos
			if err := tx.Omit(clause.Associations).Create(&line).Error; err != nil {
				return err
			}
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
