package database

import (
	"testing"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func TestModule(t *testing.T) {
	app := fx.New(
		Module,
		fx.Provide(func() *config.Config {
			return &config.Config{
				Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
			}
		}),
		fx.Provide(func() *logging.Service { return nil }),
		fx.Provide(func() *ModelsOption { return nil }),
		fx.NopLogger,
		fx.Invoke(func(db *gorm.DB) {
			assert.NotNil(t, db)
		}),
	)

	assert.NoError(t, app.Err())
}
