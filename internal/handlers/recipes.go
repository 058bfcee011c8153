package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/ledongthuc/pdf"

	"chef/internal/controller"
	applog "chef/internal/log"
	"chef/internal/schema"
	"chef/internal/views/pages"
	"chef/models"
)

const maxImportUploadSize = 10 << 20

var (
	errEmptyImport = errors.New("uploaded document contains no text")
	// "400 g tomatoes, chopped" or "2 eggs"
	ingredientLinePattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*(\p{L}[\p{L}.]*)?\s+(.+)$`)
	listMarkerPattern     = regexp.MustCompile(`^[-*•]\s*`)
)

// ImportRecipe turns an uploaded PDF or text document into a draft recipe.
// The first line becomes the title, lines shaped like "400 g tomatoes" become
// ingredient lines and everything else becomes the body.
func ImportRecipe(w http.ResponseWriter, r *http.Request) {
	if controllers == nil {
		writeDetail(w, r, http.StatusServiceUnavailable, "recipes not available")
		return
	}

	name, data, mime, err := readImportUpload(r)
	if err != nil {
		applog.Debug(r.Context(), "failed to read recipe upload", "error", err)
		writeDetail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	applog.Debug(r.Context(), "recipe upload received", "filename", name, "mime", mime, "size", len(data))

	text, err := deriveTextFromUpload(data, mime)
	if err != nil {
		applog.Debug(r.Context(), "failed to extract recipe text", "error", err)
		writeDetail(w, r, http.StatusBadRequest, fmt.Sprintf("unable to read document: %v", err))
		return
	}

	draft, err := parseRecipeText(text)
	if err != nil {
		writeDetail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if name != "" {
		source := filepath.Base(name)
		draft.SourceName = &source
	}
	linkKnownIngredients(r, draft.Ingredients)

	recipe, err := controllers.Recipes.Create(r.Context(), *draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logWrite(r, "imported", recipe)
	writeJSON(w, r, http.StatusCreated, recipe)
}

func readImportUpload(r *http.Request) (string, []byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxImportUploadSize)

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, "", err
		}
		return "", data, contentType, nil
	}

	if err := r.ParseMultipartForm(maxImportUploadSize); err != nil {
		return "", nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, "", err
	}
	defer file.Close()

	buf := bytes.NewBuffer(make([]byte, 0, header.Size))
	if _, err := io.Copy(buf, file); err != nil {
		return "", nil, "", err
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = mimeTypeFromName(header.Filename)
	}
	return header.Filename, buf.Bytes(), mime, nil
}

func deriveTextFromUpload(data []byte, mime string) (string, error) {
	lower := strings.ToLower(mime)
	switch {
	case strings.Contains(lower, "pdf"):
		return extractTextFromPDF(data)
	case strings.HasPrefix(lower, "image/"):
		return "", fmt.Errorf("unsupported document type %s", mime)
	default:
		return string(data), nil
	}
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func mimeTypeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// parseRecipeText builds a draft recipe payload from plain text.
func parseRecipeText(text string) (*schema.Recipe, error) {
	var (
		title       string
		paragraphs  []string
		ingredients []schema.IngredientItem
	)
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if title == "" {
			title = line
			continue
		}
		if item, ok := parseIngredientLine(line); ok {
			ingredients = append(ingredients, item)
			continue
		}
		paragraphs = append(paragraphs, line)
	}
	if title == "" {
		return nil, errEmptyImport
	}
	title = truncate(title, 80)

	draft := true
	recipe := &schema.Recipe{
		Title:       &title,
		Draft:       &draft,
		Ingredients: ingredients,
	}
	if len(paragraphs) > 0 {
		var body strings.Builder
		for _, p := range paragraphs {
			body.WriteString("<p>")
			body.WriteString(templ.EscapeString(p))
			body.WriteString("</p>")
		}
		html := body.String()
		recipe.Body = &html
	}
	return recipe, nil
}

func parseIngredientLine(line string) (schema.IngredientItem, bool) {
	line = listMarkerPattern.ReplaceAllString(line, "")
	match := ingredientLinePattern.FindStringSubmatch(line)
	if match == nil {
		return schema.IngredientItem{}, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
	if err != nil {
		return schema.IngredientItem{}, false
	}

	unit := strings.TrimSpace(match[2])
	rest := strings.TrimSpace(match[3])
	if unit == "" {
		unit = "pc"
	}

	name, note, _ := strings.Cut(rest, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.IngredientItem{}, false
	}

	item := schema.IngredientItem{
		Ingredient: schema.Ingredient{Name: &name},
		Amount:     &amount,
		Unit:       schema.Unit{Name: &unit},
	}
	if note = strings.TrimSpace(note); note != "" {
		note = truncate(note, 64)
		item.Note = &note
	}
	return item, true
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

// linkKnownIngredients points imported lines at existing ingredients with the
// same name instead of creating duplicates.
func linkKnownIngredients(r *http.Request, items []schema.IngredientItem) {
	if database == nil {
		return
	}
	for i := range items {
		name := items[i].Ingredient.Name
		if name == nil {
			continue
		}
		var found []models.Ingredient
		err := database.WithContext(r.Context()).
			Where("lower(name) = ?", strings.ToLower(*name)).
			Order("id asc").
			Limit(1).
			Find(&found).Error
		if err != nil {
			applog.Error(r.Context(), "failed to look up imported ingredient", "name", *name, "error", err)
			continue
		}
		if len(found) == 1 {
			id := found[0].ID
			items[i].Ingredient = schema.Ingredient{ID: &id}
		}
	}
}

// RecipePage renders a printable HTML view of a recipe.
func RecipePage(w http.ResponseWriter, r *http.Request) {
	if controllers == nil {
		http.Error(w, "recipes not available", http.StatusServiceUnavailable)
		return
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid recipe id", http.StatusBadRequest)
		return
	}

	recipe, err := controllers.Recipes.Load(r.Context(), uint(id))
	if err != nil {
		if controller.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		applog.Error(r.Context(), "failed to load recipe for page", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Recipe(pages.NewRecipeView(recipe)).Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render recipe page", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
