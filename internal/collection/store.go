// Package collection loads authored card collections.
package collection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/benvon/card-collection/internal/models"
	"gopkg.in/yaml.v3"
)

// Store provides authored collections
type Store interface {
	Get(ctx context.Context, id string) (*models.Collection, error)
	List(ctx context.Context) ([]string, error)
}

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateID rejects ids that cannot name a collection file or row
func ValidateID(id string) error {
	if !validID.MatchString(id) {
		return models.NewConfigurationError("collection id", id, "must be alphanumeric with '-' or '_'")
	}
	return nil
}

// Decode parses a YAML (or JSON) collection document, applies defaults and validates it
func Decode(data []byte) (*models.Collection, error) {
	var c models.Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse collection: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a single collection document from path
func LoadFile(path string) (*models.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FileStore reads collections from <dir>/<id>.yaml (or .yml / .json)
type FileStore struct {
	dir string
}

// NewFileStore creates a store over dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

var extensions = []string{".yaml", ".yml", ".json"}

// Get loads the collection with the given id
func (s *FileStore) Get(ctx context.Context, id string) (*models.Collection, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	for _, ext := range extensions {
		path := filepath.Join(s.dir, id+ext)
		c, err := LoadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if c.ID != id {
			return nil, models.NewConfigurationError("collection id", c.ID, fmt.Sprintf("does not match file name %s", filepath.Base(path)))
		}
		return c, nil
	}
	return nil, fmt.Errorf("collection %s: %w", id, models.ErrNotFound)
}

// List returns the ids of every collection file, sorted
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !slices.Contains(extensions, ext) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ext)
		if ValidateID(id) == nil && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
