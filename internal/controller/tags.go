package controller

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"chef/internal/schema"
	"chef/internal/sync"
	"chef/models"
)

// TagController manages tags. Deleting a tag detaches it from every recipe and
// category first.
type TagController struct {
	*Controller[models.Tag, *models.Tag, schema.Tag, schema.Tag]
}

// NewTagController binds the tag resource.
func NewTagController(db *gorm.DB, depth int) *TagController {
	return &TagController{
		Controller: New[models.Tag, *models.Tag, schema.Tag, schema.Tag](db, Options[*models.Tag]{
			Resource:     "Tag",
			BeforeDelete: detachTag,
			Depth:        depth,
		}),
	}
}

func detachTag(_ context.Context, tx *gorm.DB, tag *models.Tag) error {
	if err := tx.Model(tag).Association("Recipes").Clear(); err != nil {
		return fmt.Errorf("detach tag id=%d from recipes: %w", tag.ID, err)
	}
	if err := tx.Model(tag).Association("Categories").Clear(); err != nil {
		return fmt.Errorf("detach tag id=%d from categories: %w", tag.ID, err)
	}
	return nil
}

// resolveTagRefs loads every referenced tag by id. Unknown ids fail with an
// InvalidReferenceError before anything is written.
func resolveTagRefs(tx *gorm.DB, refs []schema.Tag) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(refs))
	for _, ref := range refs {
		var id uint
		if ref.ID != nil {
			id = *ref.ID
		}
		tag, err := loadTag(tx, id)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func loadTag(tx *gorm.DB, id uint) (*models.Tag, error) {
	var tags []models.Tag
	if id != 0 {
		if err := tx.Where("id = ?", id).Limit(1).Find(&tags).Error; err != nil {
			return nil, fmt.Errorf("load tag id=%d: %w", id, err)
		}
	}
	if len(tags) == 0 {
		return nil, &InvalidReferenceError{Kind: "Tag", ID: id}
	}
	return &tags[0], nil
}

// syncTags replaces owner's tag links with desired. Tags are shared, so links
// that disappear are detached and the tags themselves survive.
func syncTags(tx *gorm.DB, owner any, desired []models.Tag) error {
	association := tx.Model(owner).Association("Tags")
	var current []models.Tag
	if err := association.Find(&current); err != nil {
		return fmt.Errorf("load tag links: %w", err)
	}

	plan := sync.PlanLinks(tagIDs(current), tagIDs(desired))
	if plan.Empty() {
		return nil
	}
	if len(plan.Detach) > 0 {
		detach := pickTags(current, plan.Detach)
		if err := tx.Model(owner).Association("Tags").Delete(&detach); err != nil {
			return fmt.Errorf("detach tags: %w", err)
		}
	}
	if len(plan.Attach) > 0 {
		attach := pickTags(desired, plan.Attach)
		if err := tx.Model(owner).Association("Tags").Append(&attach); err != nil {
			return fmt.Errorf("attach tags: %w", err)
		}
	}
	return nil
}

func tagIDs(tags []models.Tag) []uint {
	ids := make([]uint, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

func pickTags(tags []models.Tag, ids []uint) []models.Tag {
	wanted := make(map[uint]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]models.Tag, 0, len(ids))
	for _, tag := range tags {
		if wanted[tag.ID] {
			out = append(out, tag)
			delete(wanted, tag.ID)
		}
	}
	return out
}
