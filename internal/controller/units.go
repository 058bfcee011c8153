package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	applog "chef/internal/log"
	"chef/internal/schema"
	"chef/internal/serialize"
	"chef/models"
)

// UnitController manages measurement units. Units are identified by name when
// a payload carries no id.
type UnitController struct {
	*Controller[models.Unit, *models.Unit, schema.Unit, schema.Unit]
}

// NewUnitController binds the unit resource.
func NewUnitController(db *gorm.DB, depth int) *UnitController {
	return &UnitController{
		Controller: New[models.Unit, *models.Unit, schema.Unit, schema.Unit](db, Options[*models.Unit]{
			Resource: "Unit",
			Depth:    depth,
		}),
	}
}

// CreateOrUpdate resolves the unit by id when given, otherwise by name,
// creating it when the name is unknown. Every field except the id is
// overwritten. The result is re-read by name.
func (c *UnitController) CreateOrUpdate(ctx context.Context, data schema.Unit) (out serialize.Object, err error) {
	defer c.track(ctx, "create_or_update", time.Now(), &err)

	err = c.transaction(ctx, func(tx *gorm.DB) error {
		unit, err := c.upsert(ctx, tx, data)
		if err != nil {
			return err
		}
		name := unit.Name
		if unit, err = c.findByName(tx, name); err != nil {
			return err
		}
		if unit == nil {
			return fmt.Errorf("reload unit %q: %w", name, gorm.ErrRecordNotFound)
		}
		out = c.encode(unit)
		return nil
	})
	return out, err
}

func (c *UnitController) upsert(ctx context.Context, tx *gorm.DB, data schema.Unit) (*models.Unit, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var (
		unit *models.Unit
		err  error
	)
	if data.ID != nil && *data.ID != 0 {
		unit, err = c.find(tx, *data.ID)
	} else {
		unit, err = c.findByName(tx, *data.Name)
	}
	if err != nil {
		return nil, err
	}

	if unit == nil {
		unit = &models.Unit{}
		data.Overwrite(unit)
		// The savepoint keeps the outer transaction usable when a concurrent
		// writer inserted the same name first.
		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(unit).Error
		})
		if err == nil {
			applog.Debug(ctx, "unit created", "name", unit.Name, "id", unit.ID)
			return unit, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create unit %q: %w", unit.Name, err)
		}
		applog.Debug(ctx, "unit name taken concurrently, reusing existing row", "name", unit.Name)
		if unit, err = c.findByName(tx, *data.Name); err != nil {
			return nil, err
		}
		if unit == nil {
			return nil, fmt.Errorf("resolve unit %q after conflict: %w", *data.Name, gorm.ErrRecordNotFound)
		}
	}

	data.Overwrite(unit)
	if err := c.save(tx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (c *UnitController) findByName(tx *gorm.DB, name string) (*models.Unit, error) {
	var units []models.Unit
	if err := tx.Where("name = ?", name).Order("id asc").Limit(1).Find(&units).Error; err != nil {
		return nil, fmt.Errorf("find unit %q: %w", name, err)
	}
	if len(units) == 0 {
		return nil, nil
	}
	return &units[0], nil
}
