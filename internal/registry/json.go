package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// JSONStore keeps the registry in a single JSON file.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore returns a store for the file at path. The file is not touched
// until Load or Save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the registry file path.
func (s *JSONStore) Path() string { return s.path }

// Load reads and validates the registry file.
func (s *JSONStore) Load(ctx context.Context) (*Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read registry")
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse registry %s", s.path)
	}
	if err := reg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid registry %s", s.path)
	}
	return &reg, nil
}

// Save writes the registry to a temporary file next to the target and
// renames it over the target.
func (s *JSONStore) Save(ctx context.Context, reg *Registry) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode registry")
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, ignoreNotExist(os.Remove(tmp.Name())))
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		err = multierr.Append(errors.Wrap(err, "failed to chmod registry"), tmp.Close())
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		err = multierr.Append(errors.Wrap(err, "failed to write registry"), tmp.Close())
		return err
	}
	if err = tmp.Sync(); err != nil {
		err = multierr.Append(errors.Wrap(err, "failed to sync registry"), tmp.Close())
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close registry")
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "failed to replace registry")
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *JSONStore) Close() error { return nil }

func ignoreNotExist(err error) error {
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
