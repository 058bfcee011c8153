package models

import "chef/internal/serialize"

// Tag labels recipes and groups them into categories. Tags are shared: removing
// one from a recipe or category only detaches it.
type Tag struct {
	Model
	Name       string     `gorm:"size:80;not null" json:"name"`
	Recipes    []Recipe   `gorm:"many2many:recipe_tags;" json:"-"`
	Categories []Category `gorm:"many2many:category_tags;" json:"-"`
}

func (t *Tag) Fields() []serialize.Field {
	return []serialize.Field{
		{Name: "id", Value: t.ID},
		{Name: "name", Value: t.Name},
	}
}

func (t *Tag) String() string {
	return describe("Tag", serialize.Field{Name: "id", Value: t.ID}, serialize.Field{Name: "name", Value: t.Name})
}
