package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/beans/internal/models"
	"github.com/lalith-99/beans/internal/repository"
)

// SnapshotStore keeps the snapshot as a single JSONB row in the snapshots
// table created by db.Migrate.
//
// Why a single row and not normalized tables?
//   - The application already holds the whole data set in memory and
//     commits it as a unit. One UPSERT per commit keeps Postgres in lockstep
//     with that model, with no partial writes to reconcile.
//   - JSONB still lets an operator poke at the data with SQL when debugging.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

func (s *SnapshotStore) Load(ctx context.Context) (*models.Data, error) {
	query := `SELECT body FROM snapshots WHERE id = 1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

func (s *SnapshotStore) Save(ctx context.Context, data *models.Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	// ON CONFLICT DO UPDATE turns the insert into an overwrite, so the first
	// save and every later one take the same path.
	query := `
		INSERT INTO snapshots (id, body, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`

	if _, err := s.pool.Exec(ctx, query, raw); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
