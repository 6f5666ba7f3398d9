package postgres

import (
	"database/sql"
	"fmt"
	"os"
)

// schema locations relative to wherever the binary or `go run` is started
var schemaPaths = []string{
	"script/migration/schema.sql",       // backend root (go run ./cmd/api)
	"../script/migration/schema.sql",    // cmd/api
	"../../script/migration/schema.sql", // internal/...
	"../../../script/migration/schema.sql",
}

// RunMigrations executes schema.sql. Every statement is idempotent.
func RunMigrations(db *sql.DB) error {
	schemaPath := findSchema()

	content, err := os.ReadFile(schemaPath)
	if err != nil {
		wd, _ := os.Getwd()
		return fmt.Errorf("failed to read migration file '%s' (wd %s): %w", schemaPath, wd, err)
	}

	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("failed to execute schema.sql: %w", err)
	}
	return nil
}

func findSchema() string {
	for _, path := range schemaPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return schemaPaths[0]
}
