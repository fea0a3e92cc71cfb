package models

import (
	"fmt"
	"slices"

	"gorm.io/gorm"
)

/*
Column mismatch report.

After migration the service compares the live project_requests columns against StoredRecord
and logs any column the model does not account for, e.g. one added by hand or left behind
by an older deployment:

	--- Table: project_requests ---
	Found 1 columns not accounted for in model:
	  - legacy_source
*/

// ColumnMismatch lists the columns of one table that its model does not map.
type ColumnMismatch struct {
	Table   string
	Columns []string
}

// persistedModels are the models whose tables are checked.
var persistedModels = []any{&StoredRecord{}}

// ColumnMismatchReport returns one entry per persisted table that carries unmapped columns.
func ColumnMismatchReport(db *gorm.DB) ([]ColumnMismatch, error) {
	var report []ColumnMismatch
	for _, model := range persistedModels {
		mismatch, err := columnMismatches(db, model)
		if err != nil {
			return nil, err
		}
		if len(mismatch.Columns) > 0 {
			report = append(report, mismatch)
		}
	}
	return report, nil
}

func columnMismatches(db *gorm.DB, model any) (ColumnMismatch, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return ColumnMismatch{}, fmt.Errorf("parse model %T: %w", model, err)
	}
	table := stmt.Schema.Table

	columnTypes, err := db.Migrator().ColumnTypes(model)
	if err != nil {
		return ColumnMismatch{}, fmt.Errorf("error querying columns for table %s: %w", table, err)
	}

	mismatch := ColumnMismatch{Table: table}
	for _, col := range columnTypes {
		if !slices.Contains(stmt.Schema.DBNames, col.Name()) {
			mismatch.Columns = append(mismatch.Columns, col.Name())
		}
	}
	return mismatch, nil
}
