// Package schema defines the transfer shapes accepted by the resource
// controllers. Optional fields are pointers: a nil field is absent and leaves
// the target entity untouched.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"chef/models"
)

// ErrMissingField reports a required field absent from a payload.
var ErrMissingField = errors.New("missing required field")

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func assignOptional[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func required(name string, value *string) error {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return nil
}

// Unit is the create, read and update shape of a measurement unit.
type Unit struct {
	ID    *uint    `json:"id,omitempty"`
	Name  *string  `json:"name"`
	Grams *float64 `json:"grams"`
}

func (u Unit) Identity() *uint { return u.ID }

func (u Unit) Apply(target *models.Unit) {
	assign(&target.Name, u.Name)
	assign(&target.Grams, u.Grams)
}

// Overwrite copies every field except the id, resetting absent grams to zero.
func (u Unit) Overwrite(target *models.Unit) {
	target.Name = ""
	if u.Name != nil {
		target.Name = *u.Name
	}
	target.Grams = 0
	if u.Grams != nil {
		target.Grams = *u.Grams
	}
}

func (u Unit) Validate() error {
	return required("name", u.Name)
}

// Tag is the create and update shape of a tag.
type Tag struct {
	ID   *uint   `json:"id,omitempty"`
	Name *string `json:"name"`
}

func (t Tag) Identity() *uint { return t.ID }

func (t Tag) Apply(target *models.Tag) {
	assign(&target.Name, t.Name)
}

func (t Tag) Validate() error {
	return required("name", t.Name)
}

// Ingredient is the create and update shape of an ingredient.
type Ingredient struct {
	ID       *uint    `json:"id,omitempty"`
	Name     *string  `json:"name"`
	Energy   *float64 `json:"energy"`
	Fats     *float64 `json:"fats"`
	Carbs    *float64 `json:"carbs"`
	Proteins *float64 `json:"proteins"`
	Fibres   *float64 `json:"fibres"`
	Salt     *float64 `json:"salt"`
	IsLiquid *bool    `json:"is_liquid"`
	Density  *float64 `json:"density"`
}

func (i Ingredient) Identity() *uint { return i.ID }

func (i Ingredient) Apply(target *models.Ingredient) {
	assign(&target.Name, i.Name)
	assign(&target.Energy, i.Energy)
	assign(&target.Fats, i.Fats)
	assign(&target.Carbs, i.Carbs)
	assign(&target.Proteins, i.Proteins)
	assign(&target.Fibres, i.Fibres)
	assign(&target.Salt, i.Salt)
	assign(&target.IsLiquid, i.IsLiquid)
	assign(&target.Density, i.Density)
}

func (i Ingredient) Validate() error {
	return required("name", i.Name)
}

// IngredientItem is one line of a recipe payload. The unit is resolved by
// name and the ingredient by id, creating either when unknown.
type IngredientItem struct {
	ID         *uint      `json:"id,omitempty"`
	Ingredient Ingredient `json:"ingredient"`
	Amount     *float64   `json:"amount"`
	Unit       Unit       `json:"unit"`
	Note       *string    `json:"note"`
}

// Category is the create and update shape of a category. Tags are referenced
// by id only and must already exist.
type Category struct {
	ID   *uint   `json:"id,omitempty"`
	Name *string `json:"name"`
	Tags []Tag   `json:"tags"`
}

func (c Category) Identity() *uint { return c.ID }

func (c Category) Apply(target *models.Category) {
	assign(&target.Name, c.Name)
}

func (c Category) Validate() error {
	return required("name", c.Name)
}

// Recipe is the create and update shape of a recipe. Ingredients and Tags
// always replace the stored collections, even when empty.
type Recipe struct {
	ID          *uint            `json:"id,omitempty"`
	Title       *string          `json:"title"`
	Subtitle    *string          `json:"subtitle"`
	Source      *string          `json:"source"`
	SourceName  *string          `json:"source_name"`
	Draft       *bool            `json:"draft"`
	Portions    *int             `json:"portions"`
	Body        *string          `json:"body"`
	Ingredients []IngredientItem `json:"ingredients"`
	Tags        []Tag            `json:"tags"`
}

func (r Recipe) Identity() *uint { return r.ID }

func (r Recipe) Apply(target *models.Recipe) {
	assign(&target.Title, r.Title)
	assignOptional(&target.Subtitle, r.Subtitle)
	assignOptional(&target.Source, r.Source)
	assignOptional(&target.SourceName, r.SourceName)
	assign(&target.Draft, r.Draft)
	assign(&target.Portions, r.Portions)
	assignOptional(&target.Body, r.Body)
}

func (r Recipe) Validate() error {
	return required("title", r.Title)
}
