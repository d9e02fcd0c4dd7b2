// Package redis stores the snapshot under a single Redis key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/repository"
)

type SnapshotStore struct {
	client *goredis.Client
	key    string
}

func NewSnapshotStore(client *goredis.Client, key string) *SnapshotStore {
	return &SnapshotStore{client: client, key: key}
}

func (s *SnapshotStore) Load(ctx context.Context) (*models.Data, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repository.ErrNoSnapshot
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
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

// Save sets the key with no expiry.
func (s *SnapshotStore) Save(ctx context.Context, data *models.Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
