package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/school-dashboard/internal/model"
)

// Cache persists REST-fetched notifications in a local SQLite database
// so the bell can hydrate before the first fetch completes and read
// state survives restarts. It is a cache of server data, never a source
// of truth.
type Cache struct {
	db *sqlx.DB
}

// Open opens (or creates) the cache database at dbPath, enables WAL
// mode, and runs any pending schema migrations.
func Open(dbPath string) (*Cache, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &Cache{db: db}
	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (c *Cache) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := c.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = c.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := c.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertNotifications inserts or replaces a batch of notifications.
func (c *Cache) UpsertNotifications(ctx context.Context, items []model.Notification) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO notifications (
			id, title, message, type,
			sender_id, sender_name, recipients, is_read_by,
			related_id, related_model, important,
			created_at, updated_at, fetched_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, n := range items {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}

		recipients, err := json.Marshal(n.Recipients)
		if err != nil {
			return fmt.Errorf("marshaling recipients for %s: %w", n.ID, err)
		}
		readBy, err := json.Marshal(n.IsReadBy)
		if err != nil {
			return fmt.Errorf("marshaling is_read_by for %s: %w", n.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			n.ID, n.Title, n.Message, string(n.Type),
			n.Sender.ID, n.Sender.Name, string(recipients), string(readBy),
			n.RelatedID, string(n.RelatedModel), boolToInt(n.Important),
			n.CreatedAt.UTC(), n.UpdatedAt.UTC(), now,
		)
		if err != nil {
			return fmt.Errorf("upserting notification %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// GetNotifications returns cached notifications newest-first, up to
// limit (0 means all).
func (c *Cache) GetNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	query := "SELECT * FROM notifications ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := c.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying cached notifications: %w", err)
	}
	defer rows.Close()

	var items []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

// Prune removes cached notifications older than the cutoff.
func (c *Cache) Prune(ctx context.Context, olderThan time.Time) error {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE created_at < ?", olderThan.UTC(),
	)
	if err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	return nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n            model.Notification
		notifType    string
		senderID     string
		senderName   string
		recipients   string
		readBy       string
		relatedModel string
		important    int
		createdAt    time.Time
		updatedAt    time.Time
		fetchedAt    time.Time
	)

	err := rows.Scan(
		&n.ID, &n.Title, &n.Message, &notifType,
		&senderID, &senderName, &recipients, &readBy,
		&n.RelatedID, &relatedModel, &important,
		&createdAt, &updatedAt, &fetchedAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Type = model.NotificationType(notifType)
	n.Sender = model.Sender{ID: senderID, Name: senderName}
	n.RelatedModel = model.RelatedModel(relatedModel)
	n.Important = important != 0
	n.CreatedAt = createdAt
	n.UpdatedAt = updatedAt

	if recipients != "" {
		if err := json.Unmarshal([]byte(recipients), &n.Recipients); err != nil {
			return model.Notification{}, fmt.Errorf("unmarshaling recipients: %w", err)
		}
	}
	if readBy != "" {
		if err := json.Unmarshal([]byte(readBy), &n.IsReadBy); err != nil {
			return model.Notification{}, fmt.Errorf("unmarshaling is_read_by: %w", err)
		}
	}

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
