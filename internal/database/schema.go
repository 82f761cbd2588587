package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// schemaStatements define the tables, constraints and indexes the stores
// rely on. Every statement is idempotent so the set can be applied at each
// startup.
var schemaStatements = []string{
	"DEFINE TABLE IF NOT EXISTS user SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS user_email ON TABLE user COLUMNS email UNIQUE",
	"DEFINE INDEX IF NOT EXISTS user_username ON TABLE user COLUMNS username UNIQUE",
	"DEFINE TABLE IF NOT EXISTS message SCHEMALESS",
	"DEFINE FIELD IF NOT EXISTS content ON TABLE message TYPE string ASSERT string::len(string::trim($value)) > 0",
	"DEFINE INDEX IF NOT EXISTS message_room_created ON TABLE message COLUMNS room, createdAt",
}

// EnsureSchema applies the schema statements to the given namespace and
// database. The content assertion on message backs the store-level required-
// content check, so the constraint holds even for writes that bypass the
// store.
func EnsureSchema(ctx context.Context, db *surrealdb.DB, ns, dbName string) error {
	if err := db.Use(ctx, ns, dbName); err != nil {
		return fmt.Errorf("failed to set database scope: %w", err)
	}

	for _, stmt := range schemaStatements {
		if err := Execute(ctx, db, stmt, nil); err != nil {
			return fmt.Errorf("schema statement %q failed: %w", stmt, err)
		}
	}
	return nil
}
