package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/postgres/migrations"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Hub receives relayed change events.
type Hub interface {
	Publish(ev domain.ChangeEvent)
	// CloseAll drops every subscription so views fetch full state again.
	CloseAll()
}

// ChangeListener relays trigger notifications from Postgres into the hub.
// After a reconnect it drops every subscription because notifications sent
// while disconnected are lost.
type ChangeListener struct {
	pool   *pgxpool.Pool
	hub    Hub
	logger *slog.Logger
	retry  time.Duration
}

func NewChangeListener(pool *pgxpool.Pool, hub Hub, logger *slog.Logger) *ChangeListener {
	return &ChangeListener{pool: pool, hub: hub, logger: logger, retry: 2 * time.Second}
}

// Run listens until ctx is done, reconnecting on failure.
func (l *ChangeListener) Run(ctx context.Context) error {
	connected := false
	for {
		err := l.listen(ctx, &connected)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("change listener disconnected", "error", err, "retry", l.retry)
		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *ChangeListener) listen(ctx context.Context, connected *bool) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+migrations.Channel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if *connected {
		l.hub.CloseAll()
	}
	*connected = true
	l.logger.Info("listening for row changes", "channel", migrations.Channel)

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := DecodeNotification([]byte(n.Payload))
		if err != nil {
			l.logger.Error("drop malformed notification", "error", err)
			continue
		}
		l.hub.Publish(ev)
	}
}

var keyColumns = []string{"id", "room_id", "player_id", "question_id"}

// DecodeNotification parses the JSON built by quiz_notify_change().
func DecodeNotification(payload []byte) (domain.ChangeEvent, error) {
	var raw struct {
		Table string            `json:"table"`
		Type  domain.ChangeType `json:"type"`
		New   json.RawMessage   `json:"new"`
		Old   json.RawMessage   `json:"old"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.ChangeEvent{}, fmt.Errorf("decode notification: %w", err)
	}
	if raw.Table == "" {
		return domain.ChangeEvent{}, fmt.Errorf("decode notification: missing table")
	}

	ev := domain.ChangeEvent{
		Table: raw.Table,
		Type:  raw.Type,
		New:   nullToNil(raw.New),
		Old:   nullToNil(raw.Old),
		Keys:  map[string]string{},
	}
	row := ev.New
	if row == nil {
		row = ev.Old
	}
	if row != nil {
		var cols map[string]any
		if err := json.Unmarshal(row, &cols); err != nil {
			return domain.ChangeEvent{}, fmt.Errorf("decode notification row: %w", err)
		}
		for _, k := range keyColumns {
			if v, ok := cols[k]; ok && v != nil {
				ev.Keys[k] = fmt.Sprint(v)
			}
		}
	}
	return ev, nil
}

func nullToNil(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}
