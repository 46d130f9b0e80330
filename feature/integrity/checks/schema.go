package checks

import (
	"fmt"
	"reflect"
	"strings"

	"inventory-sync/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SchemaReport strictly types the result of a SQL table check.
type SchemaReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Errors         []string `json:"errors"`
}

// CheckSheetTable verifies the sheet_rows table against the SheetRow model:
// every column SheetStore uses must exist, and columns declaring a type in
// their gorm tag must carry it.
func CheckSheetTable(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	table := database.SheetRow{}.TableName()
	report := &SchemaReport{
		Table:          table,
		Matched:        true,
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Errors:         []string{},
	}

	actual, err := database.GetTableColumns(db, table)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
		report.Matched = false
		return report, nil
	}
	if len(actual) == 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("table %s does not exist", table))
		report.Matched = false
		return report, nil
	}

	actualMap := make(map[string]database.ColumnInfo, len(actual))
	for _, col := range actual {
		actualMap[col.Field] = col
	}

	for _, name := range database.SheetColumns {
		if _, ok := actualMap[name]; !ok {
			report.MissingColumns = append(report.MissingColumns, name)
			report.Matched = false
		}
	}

	naming := schema.NamingStrategy{}
	model := reflect.TypeOf(database.SheetRow{})
	for i := 0; i < model.NumField(); i++ {
		field := model.Field(i)
		expType := parseGormType(field.Tag.Get("gorm"))
		if expType == "" {
			continue
		}
		col, ok := actualMap[naming.ColumnName(table, field.Name)]
		if !ok {
			continue
		}
		if !strings.Contains(col.Type, strings.ToLower(expType)) {
			report.TypeMismatches = append(report.TypeMismatches,
				fmt.Sprintf("%s: expected %s, got %s", col.Field, expType, col.Type))
			report.Matched = false
		}
	}

	return report, nil
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
