package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"chef/internal/controller"
	applog "chef/internal/log"
	"chef/internal/schema"
	"chef/internal/serialize"
)

// maxPayloadSize bounds JSON request bodies.
const maxPayloadSize = 1 << 20

type crud[C, U any] interface {
	GetAll(ctx context.Context) ([]serialize.Object, error)
	GetSingle(ctx context.Context, id uint) (serialize.Object, error)
	DeleteSingle(ctx context.Context, id uint) error
	Create(ctx context.Context, data C) (serialize.Object, error)
	Update(ctx context.Context, id uint, data U) (serialize.Object, error)
	CreateOrUpdate(ctx context.Context, data U) (serialize.Object, error)
}

// resource adapts one typed controller to untyped HTTP bodies.
type resource interface {
	list(r *http.Request) ([]serialize.Object, error)
	get(r *http.Request, id uint) (serialize.Object, error)
	create(r *http.Request) (serialize.Object, error)
	update(r *http.Request, id uint) (serialize.Object, error)
	upsert(r *http.Request) (serialize.Object, error)
	remove(r *http.Request, id uint) error
}

type endpoint[C, U any] struct {
	ctrl crud[C, U]
}

func (e endpoint[C, U]) list(r *http.Request) ([]serialize.Object, error) {
	return e.ctrl.GetAll(r.Context())
}

func (e endpoint[C, U]) get(r *http.Request, id uint) (serialize.Object, error) {
	return e.ctrl.GetSingle(r.Context(), id)
}

func (e endpoint[C, U]) create(r *http.Request) (serialize.Object, error) {
	var data C
	if err := decodeBody(r, &data); err != nil {
		return nil, err
	}
	return e.ctrl.Create(r.Context(), data)
}

func (e endpoint[C, U]) update(r *http.Request, id uint) (serialize.Object, error) {
	var data U
	if err := decodeBody(r, &data); err != nil {
		return nil, err
	}
	return e.ctrl.Update(r.Context(), id, data)
}

func (e endpoint[C, U]) upsert(r *http.Request) (serialize.Object, error) {
	var data U
	if err := decodeBody(r, &data); err != nil {
		return nil, err
	}
	return e.ctrl.CreateOrUpdate(r.Context(), data)
}

func (e endpoint[C, U]) remove(r *http.Request, id uint) error {
	return e.ctrl.DeleteSingle(r.Context(), id)
}

// recipeEndpoint adds the category and field filters to the recipe listing.
type recipeEndpoint struct {
	endpoint[schema.Recipe, schema.Recipe]
	recipes *controller.RecipeController
}

func (e recipeEndpoint) list(r *http.Request) ([]serialize.Object, error) {
	query := r.URL.Query()
	if raw := query.Get("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: category_id must be a positive integer", controller.ErrInvalidPayload)
		}
		return e.recipes.GetByCategory(r.Context(), uint(id))
	}

	var filter controller.RecipeFilter
	if raw := query.Get("draft"); raw != "" {
		draft, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: draft must be a boolean", controller.ErrInvalidPayload)
		}
		filter.Draft = &draft
	}
	if query.Has("title") {
		title := query.Get("title")
		filter.Title = &title
	}
	if filter.Draft == nil && filter.Title == nil {
		return e.recipes.GetAll(r.Context())
	}
	return e.recipes.GetAllAndFilter(r.Context(), filter)
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty request body", controller.ErrInvalidPayload)
	}
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxPayloadSize)).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON: %w", controller.ErrInvalidPayload, err)
	}
	return nil
}

func lookupResource(name string) (resource, bool) {
	if controllers == nil {
		return nil, false
	}
	switch name {
	case "units":
		return endpoint[schema.Unit, schema.Unit]{ctrl: controllers.Units}, true
	case "tags":
		return endpoint[schema.Tag, schema.Tag]{ctrl: controllers.Tags}, true
	case "ingredients":
		return endpoint[schema.Ingredient, schema.Ingredient]{ctrl: controllers.Ingredients}, true
	case "categories":
		return endpoint[schema.Category, schema.Category]{ctrl: controllers.Categories}, true
	case "recipes":
		return recipeEndpoint{
			endpoint: endpoint[schema.Recipe, schema.Recipe]{ctrl: controllers.Recipes},
			recipes:  controllers.Recipes,
		}, true
	}
	return nil, false
}

// resolve looks up the {resource} path segment and reports unknown names.
func resolve(w http.ResponseWriter, r *http.Request) (resource, bool) {
	name := r.PathValue("resource")
	res, ok := lookupResource(name)
	if !ok {
		applog.Debug(r.Context(), "unknown resource requested", "resource", name)
		writeDetail(w, r, http.StatusNotFound, fmt.Sprintf("unknown resource %q", name))
		return nil, false
	}
	return res, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeDetail(w, r, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// ListResource serves GET /api/{resource}.
func ListResource(w http.ResponseWriter, r *http.Request) {
	res, ok := resolve(w, r)
	if !ok {
		return
	}
	items, err := res.list(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []serialize.Object{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

// GetResource serves GET /api/{resource}/{id}.
func GetResource(w http.ResponseWriter, r *http.Request) {
	res, ok := resolve(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := res.get(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

// CreateResource serves POST /api/{resource}.
func CreateResource(w http.ResponseWriter, r *http.Request) {
	res, ok := resolve(w, r)
	if !ok {
		return
	}
	item, err := res.create(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logWrite(r, "created", item)
	writeJSON(w, r, http.StatusCreated, item)
}

// UpsertResource serves PUT /api/{resource}.
func UpsertResource(w http.ResponseWriter, r *http.Request) {
	res, ok := resolve(w, r)
	if !ok {
		return
	}
	item, err := res.upsert(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logWrite(r, "upserted", item)
	writeJSON(w, r, http.StatusOK, item)
}

// UpdateResource serves PUT /api/{resource}/{id}.
func UpdateResource(w http.ResponseWriter, r *http.Request) {
	res, ok := resolve(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := res.update(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logWrite(r, "updated", item)
	writeJSON(w, r, http.StatusOK, item)
}

// DeleteResource serves DELETE /api/{resource}/{id}.
func DeleteResource(w http.ResponseWriter, r *http.Request) {
	res, ok := resolve(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := res.remove(r, id); err != nil {
		writeError(w, r, err)
		return
	}
	userID, _ := currentUserID(r)
	applog.Info(r.Context(), "resource deleted", "resource", r.PathValue("resource"), "id", id, "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}

func logWrite(r *http.Request, action string, item serialize.Object) {
	userID, _ := currentUserID(r)
	id, _ := item.Get("id")
	applog.Info(r.Context(), "resource "+action, "resource", r.PathValue("resource"), "id", id, "userID", userID)
}
