package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chef/internal/controller"
	"chef/internal/schema"
)

type call struct {
	handler  http.HandlerFunc
	method   string
	resource string
	id       string
	query    string
	body     string
}

func (c call) do(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	target := "/api/" + c.resource
	if c.id != "" {
		target += "/" + c.id
	}
	if c.query != "" {
		target += "?" + c.query
	}
	var body *bytes.Buffer
	if c.body != "" {
		body = bytes.NewBufferString(c.body)
	} else {
		body = new(bytes.Buffer)
	}
	req := httptest.NewRequest(c.method, target, body)
	req.SetPathValue("resource", c.resource)
	if c.id != "" {
		req.SetPathValue("id", c.id)
	}
	w := httptest.NewRecorder()
	c.handler(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: &controller.NotFoundError{Resource: "Unit", ID: 1}, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("line 0: %w", &controller.NotFoundError{Resource: "Ingredient", ID: 1}), want: http.StatusNotFound},
		{name: "conflict", err: &controller.ReferentialConflictError{Resource: "Ingredient", Blockers: []string{"Soup"}}, want: http.StatusBadRequest},
		{name: "invalid reference", err: &controller.InvalidReferenceError{Kind: "Tag", ID: 3}, want: http.StatusBadRequest},
		{name: "invalid payload", err: fmt.Errorf("%w: %w", controller.ErrInvalidPayload, schema.ErrMissingField), want: http.StatusBadRequest},
		{name: "disabled", err: controller.ErrOperationDisabled, want: http.StatusMethodNotAllowed},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := statusFor(tt.err); got != tt.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestDetailOfUsesTypedMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("ingredient line 2: %w", &controller.NotFoundError{Resource: "Ingredient", ID: 5})
	if got := detailOf(err); got != "Ingredient id=5 not found" {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestUnknownResource(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	w := call{handler: ListResource, method: http.MethodGet, resource: "spoons"}.do(t)
	expectStatus(t, w, http.StatusNotFound)
	if detail := decodeObject(t, w)["detail"]; !strings.Contains(fmt.Sprint(detail), "spoons") {
		t.Fatalf("unexpected detail %v", detail)
	}
}

func TestUnitLifecycle(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	w := call{handler: CreateResource, method: http.MethodPost, resource: "units", body: `{"name":"g","grams":1}`}.do(t)
	expectStatus(t, w, http.StatusCreated)
	created := decodeObject(t, w)
	id := fmt.Sprint(created["id"])

	w = call{handler: UpdateResource, method: http.MethodPut, resource: "units", id: id, body: `{"grams":5}`}.do(t)
	expectStatus(t, w, http.StatusOK)
	updated := decodeObject(t, w)
	if updated["name"] != "g" || updated["grams"] != 5.0 {
		t.Fatalf("unexpected partial update result %v", updated)
	}

	w = call{handler: UpsertResource, method: http.MethodPut, resource: "units", body: `{"name":"g","grams":2}`}.do(t)
	expectStatus(t, w, http.StatusOK)
	if upserted := decodeObject(t, w); fmt.Sprint(upserted["id"]) != id || upserted["grams"] != 2.0 {
		t.Fatalf("expected upsert by name to reuse unit %s, got %v", id, upserted)
	}

	w = call{handler: ListResource, method: http.MethodGet, resource: "units"}.do(t)
	expectStatus(t, w, http.StatusOK)
	if units := decodeList(t, w); len(units) != 1 {
		t.Fatalf("expected one unit, got %d", len(units))
	}

	w = call{handler: DeleteResource, method: http.MethodDelete, resource: "units", id: id}.do(t)
	expectStatus(t, w, http.StatusNoContent)

	w = call{handler: GetResource, method: http.MethodGet, resource: "units", id: id}.do(t)
	expectStatus(t, w, http.StatusNotFound)
	if detail := decodeObject(t, w)["detail"]; detail != "Unit id="+id+" not found" {
		t.Fatalf("unexpected detail %v", detail)
	}
}

func TestWriteRejections(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	tests := []struct {
		name   string
		call   call
		status int
		detail string
	}{
		{
			name:   "malformed body",
			call:   call{handler: CreateResource, method: http.MethodPost, resource: "tags", body: `{"name":`},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing name",
			call:   call{handler: CreateResource, method: http.MethodPost, resource: "tags", body: `{}`},
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid id",
			call:   call{handler: GetResource, method: http.MethodGet, resource: "tags", id: "abc"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown category tag",
			call:   call{handler: CreateResource, method: http.MethodPost, resource: "categories", body: `{"name":"Quick","tags":[{"id":12}]}`},
			status: http.StatusBadRequest,
			detail: "Tag id=12 not found",
		},
		{
			name:   "recipe upsert disabled",
			call:   call{handler: UpsertResource, method: http.MethodPut, resource: "recipes", body: `{"title":"Soup"}`},
			status: http.StatusMethodNotAllowed,
			detail: controller.ErrOperationDisabled.Error(),
		},
		{
			name:   "update missing",
			call:   call{handler: UpdateResource, method: http.MethodPut, resource: "ingredients", id: "9", body: `{"salt":1}`},
			status: http.StatusNotFound,
			detail: "Ingredient id=9 not found",
		},
	}

	for _, tt := range tests {
		w := tt.call.do(t)
		if w.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d: %s", tt.name, tt.status, w.Code, w.Body.String())
		}
		if tt.detail != "" {
			if got := decodeObject(t, w)["detail"]; got != tt.detail {
				t.Fatalf("%s: unexpected detail %v", tt.name, got)
			}
		}
	}
}

func TestIngredientDeleteConflict(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	body := `{"title":"Soup","ingredients":[{"ingredient":{"name":"Leek"},"amount":2,"unit":{"name":"pc"}}]}`
	w := call{handler: CreateResource, method: http.MethodPost, resource: "recipes", body: body}.do(t)
	expectStatus(t, w, http.StatusCreated)
	recipe := decodeObject(t, w)

	lines, ok := recipe["ingredients"].([]any)
	if !ok || len(lines) != 1 {
		t.Fatalf("expected one ingredient line, got %v", recipe["ingredients"])
	}
	ingredient := lines[0].(map[string]any)["ingredient"].(map[string]any)
	id := fmt.Sprint(ingredient["id"])

	w = call{handler: DeleteResource, method: http.MethodDelete, resource: "ingredients", id: id}.do(t)
	expectStatus(t, w, http.StatusBadRequest)
	if detail := fmt.Sprint(decodeObject(t, w)["detail"]); !strings.Contains(detail, "Soup") {
		t.Fatalf("expected blocking recipe in detail, got %q", detail)
	}
}

func TestRecipeListFilters(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	w := call{handler: CreateResource, method: http.MethodPost, resource: "tags", body: `{"name":"quick"}`}.do(t)
	expectStatus(t, w, http.StatusCreated)
	tagID := fmt.Sprint(decodeObject(t, w)["id"])

	for _, body := range []string{
		`{"title":"Toast","tags":[{"id":` + tagID + `}]}`,
		`{"title":"Stew","draft":true}`,
	} {
		expectStatus(t, call{handler: CreateResource, method: http.MethodPost, resource: "recipes", body: body}.do(t), http.StatusCreated)
	}

	w = call{handler: CreateResource, method: http.MethodPost, resource: "categories", body: `{"name":"Fast","tags":[{"id":` + tagID + `}]}`}.do(t)
	expectStatus(t, w, http.StatusCreated)
	categoryID := fmt.Sprint(decodeObject(t, w)["id"])

	tests := []struct {
		query  string
		titles []string
		status int
	}{
		{query: "", titles: []string{"Toast", "Stew"}, status: http.StatusOK},
		{query: "draft=true", titles: []string{"Stew"}, status: http.StatusOK},
		{query: "title=Toast", titles: []string{"Toast"}, status: http.StatusOK},
		{query: "category_id=" + categoryID, titles: []string{"Toast"}, status: http.StatusOK},
		{query: "category_id=999", titles: []string{}, status: http.StatusOK},
		{query: "draft=maybe", status: http.StatusBadRequest},
		{query: "category_id=-1", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := call{handler: ListResource, method: http.MethodGet, resource: "recipes", query: tt.query}.do(t)
		if w.Code != tt.status {
			t.Fatalf("%q: expected %d, got %d: %s", tt.query, tt.status, w.Code, w.Body.String())
		}
		if tt.status != http.StatusOK {
			continue
		}
		recipes := decodeList(t, w)
		if len(recipes) != len(tt.titles) {
			t.Fatalf("%q: expected %d recipes, got %d", tt.query, len(tt.titles), len(recipes))
		}
		for i, title := range tt.titles {
			if recipes[i]["title"] != title {
				t.Fatalf("%q: recipe %d: got %v want %s", tt.query, i, recipes[i]["title"], title)
			}
		}
	}
}

func TestResourceFieldOrderIsPreserved(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	w := call{handler: CreateResource, method: http.MethodPost, resource: "units", body: `{"name":"ml","grams":1}`}.do(t)
	expectStatus(t, w, http.StatusCreated)
	if got := strings.TrimSpace(w.Body.String()); !strings.HasPrefix(got, `{"id":`) || !strings.HasSuffix(got, `"name":"ml","grams":1}`) {
		t.Fatalf("unexpected body %s", got)
	}
}
