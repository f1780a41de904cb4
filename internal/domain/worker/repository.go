package worker

import "context"

// WorkerRepository is a read-only lookup into the worker directory.
type WorkerRepository interface {
	GetByID(ctx context.Context, id string) (Worker, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]Worker, error)
}
