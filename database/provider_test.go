package database

import (
	"testing"

	"github.com/rideway/rideway/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type migrateProbe struct {
	ID   uint `gorm:"primarykey"`
	Name string
}

func TestProvideDatabase_SQLite(t *testing.T) {
	cfg := config.Config{
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
	}

	db, err := ProvideDatabase(cfg, WithModels(&migrateProbe{}), nil)
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.True(t, db.Migrator().HasTable(&migrateProbe{}))
}

func TestProvideDatabase_UnsupportedDriver(t *testing.T) {
	cfg := config.Config{
		Database: config.DatabaseConfig{Driver: "oracle", DSN: "x"},
	}

	db, err := ProvideDatabase(cfg, nil, nil)
	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestProvideDatabase_NoAutoMigrateWithoutModels(t *testing.T) {
	cfg := config.Config{
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
	}

	db, err := ProvideDatabase(cfg, nil, nil)
	require.NoError(t, err)
	assert.False(t, db.Migrator().HasTable(&migrateProbe{}))
}
