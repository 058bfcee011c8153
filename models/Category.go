package models

import "chef/internal/serialize"

// Category groups recipes through a set of shared tags.
type Category struct {
	Model
	Name string `gorm:"size:80;not null" json:"name"`
	Tags []Tag  `gorm:"many2many:category_tags;" json:"tags"`
}

func (c *Category) Fields() []serialize.Field {
	return []serialize.Field{
		{Name: "id", Value: c.ID},
		{Name: "name", Value: c.Name},
		{Name: "tags", Value: serialize.List(c.Tags)},
	}
}

func (c *Category) String() string {
	return describe("Category", serialize.Field{Name: "id", Value: c.ID}, serialize.Field{Name: "name", Value: c.Name})
}
