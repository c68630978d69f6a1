package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	cfg := Config{
		Driver: "sqlite",
		Name:   ":memory:",
	}
	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Exec("CREATE TABLE test_foods (id INTEGER PRIMARY KEY, code TEXT, name TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_foods")
	assert.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["code"])
	assert.Equal(t, "text", colMap["name"])

	// PRAGMA table_info returns an empty result for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestVerifySchema(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE foods (id INTEGER PRIMARY KEY, code TEXT)").Error)

	t.Run("Complete", func(t *testing.T) {
		report, err := VerifySchema(db, map[string][]string{"foods": {"id", "code"}})
		require.NoError(t, err)
		assert.True(t, report.OK())
	})

	t.Run("Missing Columns", func(t *testing.T) {
		report, err := VerifySchema(db, map[string][]string{
			"foods":      {"id", "code", "name"},
			"categories": {"id"},
		})
		require.NoError(t, err)
		assert.False(t, report.OK())
		assert.Equal(t, []string{"name"}, report.Missing["foods"])
		assert.Equal(t, []string{"id"}, report.Missing["categories"])
	})
}
