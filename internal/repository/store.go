package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Repositories bundles repositories bound to the same connection or
// transaction.
type Repositories struct {
	Users        UserRepository
	Tasks        TaskRepository
	Interactions InteractionRepository
}

// SnapshotReader runs read-only work against one consistent view of the store
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, fn func(repos Repositories) error) error
}

// GormStore is a GORM implementation of SnapshotReader
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a new GormStore
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ReadSnapshot runs fn inside one read transaction. MySQL and PostgreSQL run
// it read-only at REPEATABLE READ; SQLite transactions are serializable
// already and reject the options.
func (s *GormStore) ReadSnapshot(ctx context.Context, fn func(repos Repositories) error) error {
	var opts *sql.TxOptions
	if s.db.Dialector.Name() != "sqlite" {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repositories{
			Users:        NewUserRepository(tx),
			Tasks:        NewTaskRepository(tx),
			Interactions: NewInteractionRepository(tx),
		})
	}, opts)
}
