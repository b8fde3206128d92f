package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

// InMemoryStore keeps job records in process memory, the default registry
// for single-instance deployments. A coarse map lock guards membership; each
// record carries its own lock so updates to different jobs do not contend.
type InMemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*jobRecord
}

type jobRecord struct {
	mu   sync.RWMutex
	meta entity.JobMeta
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		jobs: make(map[string]*jobRecord),
	}
}

func (s *InMemoryStore) CreateJob(ctx context.Context, meta entity.JobMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[meta.ID]; exists {
		return pkgerror.NewBusiness("job already exists", pkgerror.CodeConflict)
	}

	s.jobs[meta.ID] = &jobRecord{
		meta: meta,
	}

	return nil
}

func (s *InMemoryStore) UpdateMeta(ctx context.Context, jobID string, fn func(meta *entity.JobMeta)) error {
	rec, err := s.get(jobID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	fn(&rec.meta)

	return nil
}

func (s *InMemoryStore) GetJob(ctx context.Context, jobID string) (entity.JobMeta, error) {
	rec, err := s.get(jobID)
	if err != nil {
		return entity.JobMeta{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	return rec.meta, nil
}

func (s *InMemoryStore) get(jobID string) (*jobRecord, error) {
	s.mu.RLock()
	rec, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}
