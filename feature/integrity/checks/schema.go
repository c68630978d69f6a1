package checks

import (
	"fmt"

	"food-index/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckSchema verifies that every expected table has its columns.
func CheckSchema(db *gorm.DB, expected map[string][]string) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	found, err := database.VerifySchema(db, expected)
	if err != nil {
		return nil, err
	}

	report := &SchemaReport{Matched: found.OK(), Tables: make(map[string]TableReport, len(expected))}
	for table := range expected {
		tr := TableReport{MissingColumns: []string{}, Status: "ok"}
		if missing := found.Missing[table]; len(missing) > 0 {
			tr.MissingColumns = missing
			tr.Status = "error"
		}
		report.Tables[table] = tr
	}
	return report, nil
}
