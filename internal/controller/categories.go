package controller

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"chef/internal/schema"
	"chef/models"
)

// CategoryController manages categories and their tag links.
type CategoryController struct {
	*Controller[models.Category, *models.Category, schema.Category, schema.Category]
}

// NewCategoryController binds the category resource.
func NewCategoryController(db *gorm.DB, depth int) *CategoryController {
	c := &CategoryController{}
	c.Controller = New[models.Category, *models.Category, schema.Category, schema.Category](db, Options[*models.Category]{
		Resource: "Category",
		Preload: func(db *gorm.DB) *gorm.DB {
			return db.Preload("Tags", orderByTagID)
		},
		Merge:        c.merge,
		AfterSave:    c.syncTags,
		BeforeDelete: c.detachTags,
		Depth:        depth,
	})
	return c
}

// merge resolves the referenced tags before touching any category field.
func (c *CategoryController) merge(_ context.Context, tx *gorm.DB, category *models.Category, data Payload[*models.Category]) error {
	in, ok := data.(schema.Category)
	if !ok {
		return fmt.Errorf("%w: unexpected category payload %T", ErrInvalidPayload, data)
	}
	tags, err := resolveTagRefs(tx, in.Tags)
	if err != nil {
		return err
	}
	in.Apply(category)
	category.Tags = tags
	return nil
}

func (c *CategoryController) syncTags(_ context.Context, tx *gorm.DB, category *models.Category) error {
	return syncTags(tx, category, category.Tags)
}

func (c *CategoryController) detachTags(_ context.Context, tx *gorm.DB, category *models.Category) error {
	if err := tx.Model(category).Association("Tags").Clear(); err != nil {
		return fmt.Errorf("detach tags of category id=%d: %w", category.ID, err)
	}
	return nil
}

func orderByTagID(db *gorm.DB) *gorm.DB {
	return db.Order("tags.id asc")
}
