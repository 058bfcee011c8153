package models

import "chef/internal/serialize"

// Unit is a shared measurement unit, deduplicated by name.
type Unit struct {
	Model
	Name  string  `gorm:"size:80;uniqueIndex;not null" json:"name"`
	Grams float64 `gorm:"not null" json:"grams"`
}

func (u *Unit) Fields() []serialize.Field {
	return []serialize.Field{
		{Name: "id", Value: u.ID},
		{Name: "name", Value: u.Name},
		{Name: "grams", Value: u.Grams},
	}
}

func (u *Unit) String() string {
	return describe("Unit", serialize.Field{Name: "name", Value: u.Name}, serialize.Field{Name: "grams", Value: u.Grams})
}
