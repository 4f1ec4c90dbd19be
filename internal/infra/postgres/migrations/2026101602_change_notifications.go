package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

// Channel carries row changes of the quiz tables as JSON notifications.
const Channel = "quiz_changes"

//go:embed 0002_change_notifications.sql
var changeNotificationsSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, changeNotificationsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
DROP TRIGGER IF EXISTS rooms_notify_change ON rooms;
DROP TRIGGER IF EXISTS questions_notify_change ON questions;
DROP TRIGGER IF EXISTS players_notify_change ON players;
DROP TRIGGER IF EXISTS answers_notify_change ON answers;
DROP FUNCTION IF EXISTS quiz_notify_change();`)
			return err
		},
	)
}
