// Package controller implements the uniform create/read/update/delete
// operations of every recipe-domain resource. Each public operation runs in a
// single transaction that is committed before the call returns.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "chef/internal/log"
	"chef/internal/metrics"
	"chef/internal/serialize"
)

// Record is the pointer form of a persisted entity.
type Record[E any] interface {
	*E
	serialize.Entity
	Key() uint
}

// Payload is a transfer shape that can be merged onto an entity of type P.
type Payload[P any] interface {
	Identity() *uint
	Apply(P)
}

type validator interface {
	Validate() error
}

// Options binds a controller to its resource.
type Options[P any] struct {
	// Resource names the entity kind in errors and logs.
	Resource string
	// New instantiates an unsaved entity with its defaults.
	New func() P
	// Preload attaches the relations the read shape needs.
	Preload func(*gorm.DB) *gorm.DB
	// Merge populates entity from data. Defaults to overwrite-if-present.
	Merge func(ctx context.Context, tx *gorm.DB, entity P, data Payload[P]) error
	// AfterSave persists relations once the entity has an id.
	AfterSave func(ctx context.Context, tx *gorm.DB, entity P) error
	// BeforeDelete runs guards and dependent cleanup.
	BeforeDelete func(ctx context.Context, tx *gorm.DB, entity P) error
	// Depth is the serialization budget of the read shape.
	Depth int
}

// Controller implements the generic resource operations for entity E, with C
// as its create shape and U as its update shape. The read shape is the
// entity's serialization descriptor.
type Controller[E any, P Record[E], C Payload[P], U Payload[P]] struct {
	db   *gorm.DB
	opts Options[P]
}

// New builds a controller bound by opts.
func New[E any, P Record[E], C Payload[P], U Payload[P]](db *gorm.DB, opts Options[P]) *Controller[E, P, C, U] {
	if opts.New == nil {
		opts.New = func() P { return P(new(E)) }
	}
	if opts.Preload == nil {
		opts.Preload = func(db *gorm.DB) *gorm.DB { return db }
	}
	if opts.Merge == nil {
		opts.Merge = defaultMerge[P]
	}
	if opts.Depth <= 0 {
		opts.Depth = serialize.DefaultDepth
	}
	return &Controller[E, P, C, U]{db: db, opts: opts}
}

func defaultMerge[P any](_ context.Context, _ *gorm.DB, entity P, data Payload[P]) error {
	data.Apply(entity)
	return nil
}

// Resource returns the bound resource name.
func (c *Controller[E, P, C, U]) Resource() string {
	return c.opts.Resource
}

// GetAll returns every entity of the resource, unfiltered.
func (c *Controller[E, P, C, U]) GetAll(ctx context.Context) (out []serialize.Object, err error) {
	defer c.track(ctx, "get_all", time.Now(), &err)

	err = c.transaction(ctx, func(tx *gorm.DB) error {
		var items []E
		if err := c.opts.Preload(tx).Order("id asc").Find(&items).Error; err != nil {
			return fmt.Errorf("list %s: %w", c.opts.Resource, err)
		}
		out = c.encodeAll(items)
		return nil
	})
	return out, err
}

// GetSingle returns the entity with the given id.
func (c *Controller[E, P, C, U]) GetSingle(ctx context.Context, id uint) (out serialize.Object, err error) {
	defer c.track(ctx, "get_single", time.Now(), &err)

	err = c.transaction(ctx, func(tx *gorm.DB) error {
		out, err = c.reload(tx, id)
		return err
	})
	return out, err
}

// Load returns the entity with the given id and its relations, unserialized,
// for callers that render it themselves.
func (c *Controller[E, P, C, U]) Load(ctx context.Context, id uint) (out P, err error) {
	defer c.track(ctx, "load", time.Now(), &err)

	err = c.transaction(ctx, func(tx *gorm.DB) error {
		out, err = c.find(c.opts.Preload(tx), id)
		return err
	})
	return out, err
}

// DeleteSingle removes the entity with the given id.
func (c *Controller[E, P, C, U]) DeleteSingle(ctx context.Context, id uint) (err error) {
	defer c.track(ctx, "delete_single", time.Now(), &err)

	return c.transaction(ctx, func(tx *gorm.DB) error {
		entity, err := c.find(tx, id)
		if err != nil {
			return err
		}
		if c.opts.BeforeDelete != nil {
			if err := c.opts.BeforeDelete(ctx, tx, entity); err != nil {
				return err
			}
		}
		if err := tx.Delete(entity).Error; err != nil {
			return fmt.Errorf("delete %s id=%d: %w", c.opts.Resource, id, err)
		}
		return nil
	})
}

// Create instantiates a new entity from data and returns its read shape.
func (c *Controller[E, P, C, U]) Create(ctx context.Context, data C) (out serialize.Object, err error) {
	defer c.track(ctx, "create", time.Now(), &err)

	if err := validate(data); err != nil {
		return nil, err
	}
	err = c.transaction(ctx, func(tx *gorm.DB) error {
		entity, err := c.create(ctx, tx, data)
		if err != nil {
			return err
		}
		out, err = c.reload(tx, entity.Key())
		return err
	})
	return out, err
}

// Update merges data onto the entity with the given id.
func (c *Controller[E, P, C, U]) Update(ctx context.Context, id uint, data U) (out serialize.Object, err error) {
	defer c.track(ctx, "update", time.Now(), &err)

	err = c.transaction(ctx, func(tx *gorm.DB) error {
		entity, err := c.find(tx, id)
		if err != nil {
			return err
		}
		if err := c.mergeAndSave(ctx, tx, entity, data); err != nil {
			return err
		}
		out, err = c.reload(tx, id)
		return err
	})
	return out, err
}

// CreateOrUpdate updates the entity addressed by data's id, or creates a new
// one when data carries no id. An id that does not resolve is NotFound.
func (c *Controller[E, P, C, U]) CreateOrUpdate(ctx context.Context, data U) (out serialize.Object, err error) {
	defer c.track(ctx, "create_or_update", time.Now(), &err)

	err = c.transaction(ctx, func(tx *gorm.DB) error {
		entity, err := c.createOrUpdate(ctx, tx, data)
		if err != nil {
			return err
		}
		out, err = c.reload(tx, entity.Key())
		return err
	})
	return out, err
}

func (c *Controller[E, P, C, U]) create(ctx context.Context, tx *gorm.DB, data Payload[P]) (P, error) {
	entity := c.opts.New()
	if err := c.mergeAndSave(ctx, tx, entity, data); err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *Controller[E, P, C, U]) createOrUpdate(ctx context.Context, tx *gorm.DB, data Payload[P]) (P, error) {
	if id := data.Identity(); id != nil && *id != 0 {
		entity, err := c.find(tx, *id)
		if err != nil {
			return nil, err
		}
		if err := c.mergeAndSave(ctx, tx, entity, data); err != nil {
			return nil, err
		}
		return entity, nil
	}
	if err := validate(data); err != nil {
		return nil, err
	}
	return c.create(ctx, tx, data)
}

func (c *Controller[E, P, C, U]) mergeAndSave(ctx context.Context, tx *gorm.DB, entity P, data Payload[P]) error {
	if err := c.opts.Merge(ctx, tx, entity, data); err != nil {
		return err
	}
	if err := c.save(tx, entity); err != nil {
		return err
	}
	if c.opts.AfterSave != nil {
		return c.opts.AfterSave(ctx, tx, entity)
	}
	return nil
}

func (c *Controller[E, P, C, U]) save(tx *gorm.DB, entity P) error {
	if err := tx.Omit(clause.Associations).Save(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: duplicate %s: %w", ErrInvalidPayload, c.opts.Resource, err)
		}
		return fmt.Errorf("save %s: %w", c.opts.Resource, err)
	}
	return nil
}

func (c *Controller[E, P, C, U]) find(tx *gorm.DB, id uint) (P, error) {
	entity := P(new(E))
	if err := tx.First(entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: c.opts.Resource, ID: id}
		}
		return nil, fmt.Errorf("load %s id=%d: %w", c.opts.Resource, id, err)
	}
	return entity, nil
}

// reload reads the entity back with its relations, so a write returns what
// its own transaction persisted.
func (c *Controller[E, P, C, U]) reload(tx *gorm.DB, id uint) (serialize.Object, error) {
	entity, err := c.find(c.opts.Preload(tx), id)
	if err != nil {
		return nil, err
	}
	return c.encode(entity), nil
}

func (c *Controller[E, P, C, U]) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.db.WithContext(ctx).Transaction(fn)
}

func (c *Controller[E, P, C, U]) encode(entity P) serialize.Object {
	return serialize.Encode(entity, c.opts.Depth)
}

func (c *Controller[E, P, C, U]) encodeAll(items []E) []serialize.Object {
	out := make([]serialize.Object, 0, len(items))
	for i := range items {
		out = append(out, c.encode(P(&items[i])))
	}
	return out
}

func (c *Controller[E, P, C, U]) track(ctx context.Context, op string, started time.Time, errp *error) {
	outcome := outcomeOf(*errp)
	metrics.ObserveOperation(c.opts.Resource, op, outcome, time.Since(started))
	if outcome == "error" {
		applog.Error(ctx, "controller operation failed", "resource", c.opts.Resource, "op", op, "error", *errp)
		return
	}
	applog.Debug(ctx, "controller operation finished", "resource", c.opts.Resource, "op", op, "outcome", outcome)
}

func validate(data any) error {
	v, ok := data.(validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}

func outcomeOf(err error) string {
	var (
		notFound *NotFoundError
		conflict *ReferentialConflictError
		invalid  *InvalidReferenceError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &conflict), errors.As(err, &invalid):
		return "conflict"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid"
	case errors.Is(err, ErrOperationDisabled):
		return "disabled"
	}
	return "error"
}
