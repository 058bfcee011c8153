package models

import (
	"fmt"
	"strings"
	"time"

	"chef/internal/serialize"
)

// Model carries the identity and timestamps shared by every entity. Rows are
// hard deleted, so there is no soft-delete column.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the stable identity assigned at creation.
func (m *Model) Key() uint {
	return m.ID
}

func describe(kind string, fields ...serialize.Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", f.Name, serialize.Display(f.Value)))
	}
	return fmt.Sprintf("<%s (%s)>", kind, strings.Join(parts, ", "))
}
