package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                 UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  first_name         TEXT        NOT NULL,
  last_name          TEXT        NOT NULL DEFAULT '',
  email              TEXT        NOT NULL UNIQUE,
  phone              TEXT,
  password_hash      TEXT        NOT NULL,
  profile_image_path TEXT,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_meetings",
		SQL: `CREATE TABLE IF NOT EXISTS meetings (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id      UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  title        TEXT        NOT NULL,
  description  TEXT,
  start_date   TIMESTAMPTZ NOT NULL,
  end_date     TIMESTAMPTZ NOT NULL CHECK (end_date > start_date),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ,
  is_cancelled BOOLEAN     NOT NULL DEFAULT FALSE,
  cancelled_at TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_meeting_documents",
		SQL: `CREATE TABLE IF NOT EXISTS meeting_documents (
  id                 UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  meeting_id         UUID        NOT NULL REFERENCES meetings (id) ON DELETE CASCADE,
  file_name          TEXT        NOT NULL,
  original_file_name TEXT        NOT NULL,
  storage_path       TEXT        NOT NULL UNIQUE,
  file_extension     TEXT        NOT NULL,
  content_type       TEXT        NOT NULL,
  file_size          BIGINT      NOT NULL CHECK (file_size >= 0),
  uploaded_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		// Listing always filters by owner and sorts by start date.
		Name: "create_index_meetings_user_start",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_meetings_user_start ON meetings (user_id, start_date);`,
	},
	{
		Name: "create_index_meetings_cancelled",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_meetings_cancelled ON meetings (is_cancelled, cancelled_at);`,
	},
	{
		Name: "create_index_meeting_documents_meeting",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_meeting_documents_meeting ON meeting_documents (meeting_id, uploaded_at DESC);`,
	},
}

// EnsureMigrated checks if the 'meetings' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.meetings') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
