package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // Pointer because NULL default is possible
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == DriverSQLite {
		type SQLiteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string
			Pk         int
		}
		var sqliteCols []SQLiteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			columns = append(columns, ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
			})
		}
		return columns, nil
	}

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// SchemaReport lists what VerifySchema found missing, keyed by table.
// A table with no columns at all is reported with every expected column missing.
type SchemaReport struct {
	Missing map[string][]string `json:"missing"`
}

// OK reports whether every expected column was found.
func (r SchemaReport) OK() bool {
	return len(r.Missing) == 0
}

// VerifySchema checks that each table in expected has at least the listed columns.
func VerifySchema(db *gorm.DB, expected map[string][]string) (SchemaReport, error) {
	report := SchemaReport{Missing: map[string][]string{}}

	tables := make([]string, 0, len(expected))
	for table := range expected {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		columns, err := GetTableColumns(db, table)
		if err != nil {
			return report, err
		}
		present := make(map[string]struct{}, len(columns))
		for _, col := range columns {
			present[col.Field] = struct{}{}
		}
		for _, want := range expected[table] {
			if _, ok := present[strings.ToLower(want)]; !ok {
				report.Missing[table] = append(report.Missing[table], want)
			}
		}
	}

	return report, nil
}
