package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"docdesigner/internal/models"
)

// PostgresLibrary stores templates as JSONB rows.
type PostgresLibrary struct {
	pool *pgxpool.Pool
	log  logrus.FieldLogger
	now  func() time.Time
}

// NewPostgresLibrary creates the templates table when missing.
func NewPostgresLibrary(ctx context.Context, pool *pgxpool.Pool, log logrus.FieldLogger) (*PostgresLibrary, error) {
	if pool == nil {
		return nil, errors.New("database_not_configured")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	lib := &PostgresLibrary{pool: pool, log: log, now: func() time.Time { return time.Now().UTC() }}
	if err := lib.ensureTable(ctx); err != nil {
		return nil, err
	}
	return lib, nil
}

func (l *PostgresLibrary) ensureTable(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			revision INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL
		)
	`)
	return err
}

// Save upserts the template inside a transaction that locks the previous row.
func (l *PostgresLibrary) Save(ctx context.Context, t *models.Template) (*models.Template, error) {
	if t == nil {
		return nil, ErrTemplateIDRequired
	}
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previous *models.TemplateMetadata
	var payload []byte
	err = tx.QueryRow(ctx, `SELECT payload FROM templates WHERE id = $1 FOR UPDATE`, t.Metadata.ID).Scan(&payload)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		existing, err := models.ParseTemplate(payload)
		if err != nil {
			return nil, fmt.Errorf("stored template %s: %w", t.Metadata.ID, err)
		}
		previous = &existing.Metadata
	}

	stored, err := stamp(t, previous, l.now())
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO templates (id, revision, created_at, updated_at, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			revision = EXCLUDED.revision,
			updated_at = EXCLUDED.updated_at,
			payload = EXCLUDED.payload`,
		stored.Metadata.ID, stored.Metadata.Revision, stored.Metadata.CreatedAt, stored.Metadata.UpdatedAt, encoded); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{"template": stored.Metadata.ID, "revision": stored.Metadata.Revision}).Info("template saved")
	return stored, nil
}

// Get loads one template.
func (l *PostgresLibrary) Get(ctx context.Context, id string) (*models.Template, error) {
	var payload []byte
	err := l.pool.QueryRow(ctx, `SELECT payload FROM templates WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return models.ParseTemplate(payload)
}

// List returns the metadata of every stored template.
func (l *PostgresLibrary) List(ctx context.Context) ([]models.TemplateMetadata, error) {
	rows, err := l.pool.Query(ctx, `SELECT payload->'metadata' FROM templates ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []models.TemplateMetadata{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var meta models.TemplateMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			l.log.WithError(err).Warn("skipping unreadable template row")
			continue
		}
		items = append(items, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortByUpdated(items)
	return items, nil
}

// Delete removes a template row.
func (l *PostgresLibrary) Delete(ctx context.Context, id string) error {
	tag, err := l.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
