// Package templates stores named document templates with a revision counter
// that increments every time a template is overwritten under the same ID.
package templates

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"docdesigner/internal/models"
)

var (
	// ErrTemplateNotFound indicates no template is stored under the requested ID.
	ErrTemplateNotFound = errors.New("template_not_found")
	// ErrTemplateIDRequired indicates the template has no metadata ID.
	ErrTemplateIDRequired = errors.New("template_id_required")
)

// Library persists templates.
type Library interface {
	// Save stores t and returns the stored copy with revision and timestamps set.
	Save(ctx context.Context, t *models.Template) (*models.Template, error)
	Get(ctx context.Context, id string) (*models.Template, error)
	// List returns metadata ordered by most recent update first.
	List(ctx context.Context) ([]models.TemplateMetadata, error)
	Delete(ctx context.Context, id string) error
}

// stamp applies the revision rules to t given the currently stored version.
func stamp(t *models.Template, previous *models.TemplateMetadata, now time.Time) (*models.Template, error) {
	out := t.Clone()
	out.Metadata.ID = strings.TrimSpace(out.Metadata.ID)
	if out.Metadata.ID == "" {
		return nil, ErrTemplateIDRequired
	}
	out.Metadata.Version = models.SchemaVersion
	out.Metadata.UpdatedAt = now
	if previous == nil {
		out.Metadata.Revision = 1
		if out.Metadata.CreatedAt.IsZero() {
			out.Metadata.CreatedAt = now
		}
		return out, nil
	}
	out.Metadata.Revision = previous.Revision + 1
	out.Metadata.CreatedAt = previous.CreatedAt
	return out, nil
}

func sortByUpdated(items []models.TemplateMetadata) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].UpdatedAt.Equal(items[j].UpdatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}
