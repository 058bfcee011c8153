package db

import (
	"context"
	"errors"
	"testing"

	"chef/internal/config"
	"chef/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestInitializeRequiresURL(t *testing.T) {
	t.Parallel()

	db, err := Initialize(config.DatabaseConfig{URL: ""})
	if err == nil {
		t.Fatal("expected error when database URL is empty")
	}
	if db != nil {
		t.Fatal("expected returned db handle to be nil on error")
	}
}

func TestAutoMigrateRejectsNilDatabase(t *testing.T) {
	t.Parallel()

	if err := AutoMigrate(nil); err == nil {
		t.Fatal("expected error when database handle is nil")
	}
}

func TestAutoMigrateWithSQLite(t *testing.T) {
	t.Parallel()

	sqliteDB, err := gorm.Open(sqlite.Open("file:memdb?mode=memory&cache=shared"), GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}

	if err := AutoMigrate(sqliteDB); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}

	for _, table := range []string{"units", "tags", "ingredients", "ingredient_items", "categories", "recipes", "recipe_tags", "category_tags"} {
		if !sqliteDB.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestUnitNameIsUnique(t *testing.T) {
	t.Parallel()

	sqliteDB, err := gorm.Open(sqlite.Open("file:unitunique?mode=memory&cache=shared"), GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := AutoMigrate(sqliteDB); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}

	if err := sqliteDB.Create(&models.Unit{Name: "g", Grams: 1}).Error; err != nil {
		t.Fatalf("create unit: %v", err)
	}
	err = sqliteDB.Create(&models.Unit{Name: "g", Grams: 2}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestConfigurePropagatesInitializationError(t *testing.T) {
	t.Parallel()

	if _, err := Configure(config.DatabaseConfig{}); err == nil {
		t.Fatal("expected configuration error when initialize fails")
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	if err := Ping(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil database handle")
	}

	sqliteDB, err := gorm.Open(sqlite.Open("file:pingdb?mode=memory&cache=shared"), GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := Ping(context.Background(), sqliteDB); err != nil {
		t.Fatalf("ping sqlite database: %v", err)
	}

	sqlDB, err := sqliteDB.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.Close()
	if err := Ping(context.Background(), sqliteDB); err == nil {
		t.Fatal("expected ping to fail on a closed pool")
	}
}
