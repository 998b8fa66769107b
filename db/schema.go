package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

const schema = `
CREATE TABLE IF NOT EXISTS ad_templates (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	app         TEXT NOT NULL,
	category    TEXT NOT NULL,
	checked     BOOLEAN NOT NULL DEFAULT FALSE,
	dimensions  TEXT,
	mask_path   TEXT,
	splash_text TEXT,
	workflow_id TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS ad_templates_name_idx ON ad_templates (name);

CREATE TABLE IF NOT EXISTS comfy_workflows (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	content        JSONB NOT NULL,
	thumbnail_path TEXT,
	version        INTEGER NOT NULL DEFAULT 1 CHECK (version >= 1),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS comfy_workflows_name_idx ON comfy_workflows (name);
`

// EnsureSchema creates the tables if they do not exist yet
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Printf("✓ Database schema ready")
	return nil
}
