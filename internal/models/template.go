package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// SchemaVersion identifies the persisted template layout.
const SchemaVersion = "1.0.0"

// ErrInvalidTemplate is returned when a template payload is malformed or misses required fields.
var ErrInvalidTemplate = errors.New("invalid_template")

// TemplateMetadata describes a stored template.
type TemplateMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Version     string    `json:"version"`
	Revision    int       `json:"revision"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Category    string    `json:"category,omitempty"`
	Locale      string    `json:"locale,omitempty"`
}

// Template is a named document as written to disk or the database.
type Template struct {
	Metadata TemplateMetadata `json:"metadata"`
	Document Document         `json:"document"`
}

// NewTemplate wraps doc under a fresh ID. The document is copied.
func NewTemplate(name string, doc Document) *Template {
	now := time.Now().UTC()
	return &Template{
		Metadata: TemplateMetadata{
			ID:        GenerateID("tpl"),
			Name:      strings.TrimSpace(name),
			Version:   SchemaVersion,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Document: doc.Clone(),
	}
}

// ParseTemplate decodes and validates a persisted template. The metadata must
// carry id and name, and the document page, elements and rootElementIds.
// Tables are normalised and the locale, when set, is canonicalised.
func ParseTemplate(data []byte) (*Template, error) {
	var raw struct {
		Metadata *TemplateMetadata `json:"metadata"`
		Document json.RawMessage   `json:"document"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if raw.Metadata == nil {
		return nil, fmt.Errorf("%w: missing metadata", ErrInvalidTemplate)
	}
	meta := *raw.Metadata
	meta.ID = strings.TrimSpace(meta.ID)
	meta.Name = strings.TrimSpace(meta.Name)
	if meta.ID == "" || meta.Name == "" {
		return nil, fmt.Errorf("%w: metadata id and name are required", ErrInvalidTemplate)
	}
	if len(raw.Document) == 0 {
		return nil, fmt.Errorf("%w: missing document", ErrInvalidTemplate)
	}
	var doc Document
	if err := json.Unmarshal(raw.Document, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	locale, err := CanonicalLocale(meta.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	meta.Locale = locale
	if meta.Version == "" {
		meta.Version = SchemaVersion
	}
	doc.Normalize()
	return &Template{Metadata: meta, Document: doc}, nil
}

// CanonicalLocale returns the BCP 47 form of tag ("en-au" becomes "en-AU").
// An empty tag stays empty.
func CanonicalLocale(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", nil
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("locale %q: %w", tag, err)
	}
	return parsed.String(), nil
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	return &Template{Metadata: t.Metadata, Document: t.Document.Clone()}
}
