package checks

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"compliance-engine/core/database"

	"gorm.io/gorm"
)

// SchemaReport is the result of comparing the database against the models.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport lists the drift found in one table.
type TableReport struct {
	Missing        bool     `json:"missing"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// tabler is implemented by every persisted model.
type tabler interface {
	TableName() string
}

// CheckSchema verifies each model's table against its gorm tags. Columns
// without a column tag are skipped; types are only compared when the tag
// declares one.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, model := range models {
		t, ok := model.(tabler)
		if !ok {
			return nil, fmt.Errorf("model %T does not implement TableName", model)
		}
		tableName := t.TableName()

		tbl, err := checkTable(db, tableName, reflect.TypeOf(model))
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}
		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[tableName] = tbl
	}

	return report, nil
}

func checkTable(db *gorm.DB, tableName string, typ reflect.Type) (TableReport, error) {
	tbl := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualCols, err := database.GetTableColumns(db, tableName)
	if errors.Is(err, database.ErrTableNotFound) {
		tbl.Missing = true
		tbl.Status = "error"
		return tbl, nil
	}
	if err != nil {
		return tbl, err
	}

	actual := make(map[string]database.ColumnInfo, len(actualCols))
	for _, col := range actualCols {
		actual[col.Field] = col
	}

	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("gorm")
		colName := parseGormColumn(tag)
		if colName == "" {
			continue
		}

		col, exists := actual[colName]
		if !exists {
			tbl.MissingColumns = append(tbl.MissingColumns, colName)
			tbl.Status = "error"
			continue
		}

		expType := strings.ToLower(parseGormType(tag))
		if expType != "" && !strings.Contains(col.Type, expType) {
			tbl.TypeMismatches = append(tbl.TypeMismatches,
				fmt.Sprintf("%s: expected %s, got %s", colName, expType, col.Type))
			tbl.Status = "error"
		}
	}

	return tbl, nil
}

func parseGormColumn(tag string) string {
	return tagValue(tag, "column:")
}

func parseGormType(tag string) string {
	return tagValue(tag, "type:")
}

func tagValue(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, key) {
			return strings.TrimPrefix(p, key)
		}
	}
	return ""
}
