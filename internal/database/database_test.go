package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsDuplicate(t *testing.T) {
	assert.False(t, IsDuplicate(nil))
	assert.False(t, IsDuplicate(errors.New("connection refused")))
	assert.True(t, IsDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicate(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, IsDuplicate(&mysql.MySQLError{Number: 1045}))
	assert.True(t, IsDuplicate(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsDuplicate(errors.New("UNIQUE constraint failed: provider_events.event_id")))
}

type widget struct {
	ID   uint
	Code string `gorm:"uniqueIndex"`
}

func TestOpenSQLiteTranslatesDuplicates(t *testing.T) {
	db, err := Open("sqlite", "file::memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))

	require.NoError(t, db.Create(&widget{Code: "a"}).Error)
	err = db.Create(&widget{Code: "a"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x", nil)
	assert.Error(t, err)
}
