package port

import "recommend/internal/domain"

// HistoryStore persists finished runs.
type HistoryStore interface {
	PutRun(run domain.Run) error

	GetRun(id string) (domain.Run, error)

	ListRuns(limit int) ([]domain.Run, error)

	Close() error
}
