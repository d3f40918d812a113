// internal/database/database_test.go
package database

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medical-back/internal/config"
	"medical-back/internal/models"
)

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on", withForeignKeys(":memory:"))
	assert.Equal(t, "file:x.db?cache=shared&_foreign_keys=on", withForeignKeys("file:x.db?cache=shared"))
	assert.Equal(t, "file:x.db?_fk=1", withForeignKeys("file:x.db?_fk=1"))
}

func TestInitAndMigrateSQLite(t *testing.T) {
	db, err := InitDB(&config.Config{DatabaseDriver: "sqlite", DatabaseURL: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, MigrateDB(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasTable("anamnesis"))

	// migrating twice is a no-op
	require.NoError(t, MigrateDB(db))
}

func TestTranslatesDuplicateKey(t *testing.T) {
	open := map[string]func() (*gorm.DB, error){
		"InitDB": func() (*gorm.DB, error) {
			return InitDB(&config.Config{DatabaseDriver: "sqlite", DatabaseURL: ":memory:"}, zerolog.Nop())
		},
		"OpenSQLite": func() (*gorm.DB, error) { return OpenSQLite(":memory:") },
	}
	for name, fn := range open {
		t.Run(name, func(t *testing.T) {
			db, err := fn()
			require.NoError(t, err)
			require.NoError(t, MigrateDB(db))

			account := func() *models.Account {
				return &models.Account{Email: "a@x.com", Password: "x", FirstName: "A", LastName: "B"}
			}
			require.NoError(t, db.Create(account()).Error)
			err = db.Create(account()).Error
			assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		})
	}
}

func TestInitDBUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.Config{DatabaseDriver: "mysql"}, zerolog.Nop())
	assert.Error(t, err)
}
