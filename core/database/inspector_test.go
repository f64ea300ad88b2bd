package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_records (id INTEGER PRIMARY KEY, rule_id VARCHAR(191) NOT NULL, message TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_records")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "integer", colMap["id"].Type)
	assert.Equal(t, "PRI", colMap["id"].Key)
	assert.Equal(t, "varchar(191)", colMap["rule_id"].Type)
	assert.Equal(t, "NO", colMap["rule_id"].Null)
	assert.Equal(t, "text", colMap["message"].Type)

	_, err = GetTableColumns(db, "non_existent")
	assert.ErrorIs(t, err, ErrTableNotFound)
}
