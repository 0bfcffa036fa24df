package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yukikurage/kanban-board-api/internal/export"
	"github.com/yukikurage/kanban-board-api/internal/repository"
)

// ExportService produces the administrative data dump.
type ExportService struct {
	store repository.SnapshotReader
	clock Clock
}

func NewExportService(store repository.SnapshotReader) *ExportService {
	return &ExportService{
		store: store,
		clock: time.Now,
	}
}

// Snapshot reads every relation in one read transaction. Password hashes are
// blanked.
func (s *ExportService) Snapshot(ctx context.Context) (*export.Snapshot, error) {
	snap := &export.Snapshot{GeneratedAt: s.clock().UTC()}

	err := s.store.ReadSnapshot(ctx, func(repos repository.Repositories) error {
		var err error
		if snap.Users, err = repos.Users.ListAll(ctx); err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if snap.Tasks, err = repos.Tasks.List(ctx, repository.TaskFilter{}); err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		if snap.Collaborators, err = repos.Tasks.ListCollaborators(ctx); err != nil {
			return fmt.Errorf("list collaborators: %w", err)
		}
		if snap.Interactions, err = repos.Interactions.ListAll(ctx); err != nil {
			return fmt.Errorf("list interactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, storageError("export snapshot", err)
	}

	for i := range snap.Users {
		snap.Users[i].PasswordHash = ""
	}
	return snap, nil
}

// Write renders the snapshot to w in the given format.
func (s *ExportService) Write(ctx context.Context, format export.Format, w io.Writer) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	return export.Write(w, format, *snap)
}
