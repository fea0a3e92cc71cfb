package models

import (
	"gorm.io/gen"
	"gorm.io/gorm"
)

/*
Query helper generation.

Set GENERATE_QUERIES=true and start the service once; it connects, writes typed query
helpers for the stored record table into ./generated and exits without serving.
*/

// QueryGenerator returns a generator configured for every persisted model.
func QueryGenerator(db *gorm.DB, outPath string) *gen.Generator {
	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)
	g.ApplyBasic(StoredRecord{})
	return g
}

// GenerateQueries writes the generated query package to outPath.
func GenerateQueries(db *gorm.DB, outPath string) {
	QueryGenerator(db, outPath).Execute()
}
