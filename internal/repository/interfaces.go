package repository

import (
	"context"
	"errors"

	"github.com/lalith-99/beans/internal/models"
)

// Why one snapshot instead of a repository per table?
//
//   - Every operation reads the whole data set, mutates it, and writes it back
//     as a unit. A single Load/Save pair makes "all or nothing" trivial: the
//     store only calls Save with a fully consistent snapshot.
//   - The data set is small and lives in memory anyway. The backends below
//     only differ in where the serialized snapshot ends up.

// ErrNoSnapshot is returned by Load when nothing has been saved yet. The store
// treats it as "start empty".
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotRepository persists the full application snapshot.
type SnapshotRepository interface {
	// Load returns the last saved snapshot, or ErrNoSnapshot.
	Load(ctx context.Context) (*models.Data, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, data *models.Data) error
}

// Memory keeps nothing. Used by tests and STORE_DRIVER=memory.
type Memory struct{}

func (Memory) Load(context.Context) (*models.Data, error) { return nil, ErrNoSnapshot }

func (Memory) Save(context.Context, *models.Data) error { return nil }
