// Package file stores the snapshot as a JSON document on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/repository"
)

type SnapshotStore struct {
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

func (s *SnapshotStore) Load(ctx context.Context) (*models.Data, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, repository.ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) == 0 {
		return nil, repository.ErrNoSnapshot
	}

	data := models.NewData()
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if data.Notifications == nil {
		data.Notifications = make(map[int64][]models.Notification)
	}
	return data, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write leaves the previous snapshot intact.
func (s *SnapshotStore) Save(ctx context.Context, data *models.Data) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
