// Package database handles database connections, the SQL sheet backend and
// schema inspection.
//
// It provides a wrapper around GORM to configure MySQL or SQLite connections
// from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver and pings it before returning. A failed
// connection is optional for the server: callers log it and fall back to
// another sheet backend.
//
// # Sheet Store
//
// SheetStore implements reconcile.Store on a single sheet_rows table. Every
// row holds its cells as a JSON array so the column set can grow without DDL.
// Position 0 is the header row and positions 1..n are data rows. Several
// sheets can share the table; they are told apart by the sheet column.
//
// Sorting rewrites all data rows of the sheet inside one transaction.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns for MySQL (SHOW COLUMNS) and SQLite
// (PRAGMA table_info). The integrity feature uses it to verify that the
// sheet_rows table still has the columns SheetStore relies on.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	store, err := database.NewSheetStore(db, "inventory")
//	columns, err := database.GetTableColumns(db, "sheet_rows")
package database
