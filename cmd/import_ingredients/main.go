package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"chef/internal/config"
	"chef/internal/controller"
	"chef/internal/db"
	applog "chef/internal/log"
	"chef/internal/schema"
	"chef/models"
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*[.,]?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

func main() {
	csvPath := "ingredients.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}
	defer file.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	imported, err := importIngredients(ctx, database, file)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s\n", imported, filepath.Base(csvPath))
	return nil
}

// importIngredients upserts one ingredient per CSV row, matching existing
// rows by case-insensitive name.
func importIngredients(ctx context.Context, database *gorm.DB, r io.Reader) (int, error) {
	records, err := readCSV(r)
	if err != nil {
		return 0, fmt.Errorf("read csv: %w", err)
	}

	ingredients := controller.NewIngredientController(database, 1)
	imported := 0
	for idx, record := range records {
		payload := buildIngredient(record)
		if payload.Name == nil {
			applog.Debug(ctx, "skipping row without name", "row", idx+1)
			continue
		}

		var existing models.Ingredient
		err := database.WithContext(ctx).
			Where("lower(name) = ?", strings.ToLower(*payload.Name)).
			Order("id asc").
			First(&existing).Error
		switch {
		case err == nil:
			payload.ID = &existing.ID
			_, err = ingredients.CreateOrUpdate(ctx, payload)
		case errors.Is(err, gorm.ErrRecordNotFound):
			_, err = ingredients.Create(ctx, payload)
		default:
			err = fmt.Errorf("find ingredient %q: %w", *payload.Name, err)
		}
		if err != nil {
			return imported, fmt.Errorf("record %d (%s): %w", idx+1, *payload.Name, err)
		}
		imported++
	}
	return imported, nil
}

func readCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	for idx, key := range rows[0] {
		header[idx] = strings.ToLower(strings.TrimSpace(key))
	}
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func buildIngredient(row map[string]string) schema.Ingredient {
	var payload schema.Ingredient
	if name := normalizeText(row["name"]); name != "" {
		payload.Name = &name
	}
	payload.Energy = parseFirstNumber(row["energy"])
	payload.Fats = parseFirstNumber(row["fats"])
	payload.Carbs = parseFirstNumber(row["carbs"])
	payload.Proteins = parseFirstNumber(row["proteins"])
	payload.Fibres = parseFirstNumber(row["fibres"])
	payload.Salt = parseFirstNumber(row["salt"])
	payload.Density = parseFirstNumber(row["density"])
	if liquid := normalizeValue(row["is_liquid"]); liquid != "" {
		if parsed, err := strconv.ParseBool(liquid); err == nil {
			payload.IsLiquid = &parsed
		}
	}
	return payload
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// parseFirstNumber returns nil when the cell holds no number so the column
// keeps its current or default value.
func parseFirstNumber(value string) *float64 {
	value = normalizeValue(value)
	if value == "" {
		return nil
	}

	match := numberPattern.FindString(value)
	if match == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &parsed
}
