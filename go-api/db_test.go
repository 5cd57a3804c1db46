package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOpenDatabaseSQLiteTranslatesDuplicates(t *testing.T) {
	db, err := openDatabase(sqlitePrefix+filepath.Join(t.TempDir(), "open.db"), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, autoMigrate(db))

	require.NoError(t, db.Create(&User{ID: "u1", Username: "erin", Email: "erin@example.com", PasswordHash: "x"}).Error)
	err = db.Create(&User{ID: "u2", Username: "erin", Email: "erin2@example.com", PasswordHash: "x"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
