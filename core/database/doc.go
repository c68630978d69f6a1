// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL connections (production) or SQLite
// connections (tests, local development) from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the
// server within TimeoutSeconds.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns for either dialect. VerifySchema uses it
// at start-up to confirm that the food, category, attribute and locale tables carry
// the columns the search index reads, so a misconfigured deployment fails loudly
// instead of serving empty generations.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	report, err := database.VerifySchema(db, repository.ExpectedSchema())
package database
