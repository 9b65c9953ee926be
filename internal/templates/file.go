package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"docdesigner/internal/models"
)

// fileID limits IDs to names that map one-to-one onto file names.
var fileID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileLibrary keeps one <id>.json file per template in a directory.
type FileLibrary struct {
	dir string
	log logrus.FieldLogger
	now func() time.Time
	mu  sync.Mutex
}

// NewFileLibrary creates dir when missing.
func NewFileLibrary(dir string, log logrus.FieldLogger) (*FileLibrary, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("empty_dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FileLibrary{dir: dir, log: log, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (l *FileLibrary) path(id string) (string, error) {
	id = strings.TrimSpace(id)
	if !fileID.MatchString(id) || id == "." || id == ".." {
		return "", ErrTemplateIDRequired
	}
	return filepath.Join(l.dir, id+".json"), nil
}

func (l *FileLibrary) read(path string) (*models.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return models.ParseTemplate(data)
}

// Save writes the template atomically through a temporary file.
func (l *FileLibrary) Save(_ context.Context, t *models.Template) (*models.Template, error) {
	if t == nil {
		return nil, ErrTemplateIDRequired
	}
	file, err := l.path(t.Metadata.ID)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var previous *models.TemplateMetadata
	if existing, err := l.read(file); err == nil {
		previous = &existing.Metadata
	} else if !errors.Is(err, ErrTemplateNotFound) {
		return nil, err
	}
	stored, err := stamp(t, previous, l.now())
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return nil, err
	}
	tmp := file + ".tmp"
	if err := func() error {
		fh, err := os.Create(tmp)
		if err != nil {
			return err
		}
		defer fh.Close()
		if _, err := fh.Write(payload); err != nil {
			return err
		}
		return fh.Sync()
	}(); err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmp) }()
	if err := os.Rename(tmp, file); err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{"template": stored.Metadata.ID, "revision": stored.Metadata.Revision}).Info("template saved")
	return stored.Clone(), nil
}

// Get loads one template.
func (l *FileLibrary) Get(_ context.Context, id string) (*models.Template, error) {
	file, err := l.path(id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(file)
}

// List reads every template file. Unreadable files are skipped with a warning.
func (l *FileLibrary) List(_ context.Context) ([]models.TemplateMetadata, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}
	items := make([]models.TemplateMetadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t, err := l.read(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			l.log.WithError(err).WithField("file", entry.Name()).Warn("skipping unreadable template")
			continue
		}
		items = append(items, t.Metadata)
	}
	sortByUpdated(items)
	return items, nil
}

// Delete removes a template file.
func (l *FileLibrary) Delete(_ context.Context, id string) error {
	file, err := l.path(id)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.Remove(file); err != nil {
		if os.IsNotExist(err) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
