package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE call_status AS ENUM ('running', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS calls (
		id UUID PRIMARY KEY,
		call_sid TEXT NOT NULL DEFAULT '',
		stream_sid TEXT NOT NULL DEFAULT '',
		invoice_id TEXT NOT NULL,
		invoice_reference TEXT NOT NULL,
		client_name TEXT NOT NULL,
		business_name TEXT NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status call_status NOT NULL DEFAULT 'running',
		outcome TEXT NOT NULL DEFAULT '',
		duration_seconds BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calls_call_sid ON calls (call_sid)`,
	`CREATE INDEX IF NOT EXISTS idx_calls_invoice_started ON calls (invoice_id, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transcript_entries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		call_id UUID NOT NULL REFERENCES calls(id) ON DELETE CASCADE,
		speaker TEXT NOT NULL,
		content TEXT NOT NULL,
		entry_index INTEGER NOT NULL,
		spoken_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(call_id, entry_index)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transcript_entries_call ON transcript_entries (call_id, entry_index)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
