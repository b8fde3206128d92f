package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

const jobKeyPrefix = "sales:job:"

// RedisStore keeps one JSON record per job. Read-modify-write cycles are
// serialized through striped process-local locks, which is enough for a
// single instance owning its jobs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  [64]sync.Mutex
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

type redisJobRecord struct {
	ID                    string  `json:"id"`
	FileName              string  `json:"file_name"`
	TotalFileSizeBytes    uint64  `json:"total_file_size_bytes"`
	Status                string  `json:"status"`
	Err                   string  `json:"err,omitempty"`
	StartedAt             int64   `json:"started_at"`
	EndedAt               int64   `json:"ended_at"`
	RowsProcessed         uint64  `json:"rows_processed"`
	MalformedRows         uint64  `json:"malformed_rows"`
	ProcessedPercentage   float64 `json:"processed_percentage"`
	Message               string  `json:"message,omitempty"`
	ResultFileName        string  `json:"result_file_name,omitempty"`
	ResultFileURL         string  `json:"result_file_url,omitempty"`
	TotalSales            int64   `json:"total_sales"`
	UniqueDepartments     uint64  `json:"unique_departments"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

func toRecord(meta entity.JobMeta) redisJobRecord {
	return redisJobRecord{
		ID:                    meta.ID,
		FileName:              meta.FileName,
		TotalFileSizeBytes:    meta.TotalFileSizeBytes,
		Status:                string(meta.Status),
		Err:                   meta.Err,
		StartedAt:             meta.StartedAt,
		EndedAt:               meta.EndedAt,
		RowsProcessed:         meta.RowsProcessed,
		MalformedRows:         meta.MalformedRows,
		ProcessedPercentage:   meta.ProcessedPercentage,
		Message:               meta.Message,
		ResultFileName:        meta.ResultFileName,
		ResultFileURL:         meta.ResultFileURL,
		TotalSales:            meta.TotalSales,
		UniqueDepartments:     meta.UniqueDepartments,
		ProcessingTimeSeconds: meta.ProcessingTimeSeconds,
	}
}

func (r redisJobRecord) toMeta() entity.JobMeta {
	return entity.JobMeta{
		ID:                    r.ID,
		FileName:              r.FileName,
		TotalFileSizeBytes:    r.TotalFileSizeBytes,
		Status:                entity.JobStatus(r.Status),
		Err:                   r.Err,
		StartedAt:             r.StartedAt,
		EndedAt:               r.EndedAt,
		RowsProcessed:         r.RowsProcessed,
		MalformedRows:         r.MalformedRows,
		ProcessedPercentage:   r.ProcessedPercentage,
		Message:               r.Message,
		ResultFileName:        r.ResultFileName,
		ResultFileURL:         r.ResultFileURL,
		TotalSales:            r.TotalSales,
		UniqueDepartments:     r.UniqueDepartments,
		ProcessingTimeSeconds: r.ProcessingTimeSeconds,
	}
}

func (s *RedisStore) CreateJob(ctx context.Context, meta entity.JobMeta) error {
	payload, err := json.Marshal(toRecord(meta))
	if err != nil {
		return pkgerror.NewServer(fmt.Errorf("marshal job record: %w", err))
	}

	ok, err := s.client.SetNX(ctx, jobKeyPrefix+meta.ID, payload, s.ttl).Result()
	if err != nil {
		return pkgerror.NewServer(fmt.Errorf("create job record: %w", err))
	}
	if !ok {
		return pkgerror.NewBusiness("job already exists", pkgerror.CodeConflict)
	}

	return nil
}

func (s *RedisStore) UpdateMeta(ctx context.Context, jobID string, fn func(meta *entity.JobMeta)) error {
	lock := s.lockFor(jobID)
	lock.Lock()
	defer lock.Unlock()

	meta, err := s.load(ctx, jobID)
	if err != nil {
		return err
	}

	fn(&meta)

	payload, err := json.Marshal(toRecord(meta))
	if err != nil {
		return pkgerror.NewServer(fmt.Errorf("marshal job record: %w", err))
	}

	if err := s.client.Set(ctx, jobKeyPrefix+jobID, payload, s.ttl).Err(); err != nil {
		return pkgerror.NewServer(fmt.Errorf("update job record: %w", err))
	}

	return nil
}

func (s *RedisStore) GetJob(ctx context.Context, jobID string) (entity.JobMeta, error) {
	return s.load(ctx, jobID)
}

func (s *RedisStore) load(ctx context.Context, jobID string) (entity.JobMeta, error) {
	payload, err := s.client.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.JobMeta{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.JobMeta{}, pkgerror.NewServer(fmt.Errorf("load job record: %w", err))
	}

	var rec redisJobRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return entity.JobMeta{}, pkgerror.NewServer(fmt.Errorf("unmarshal job record: %w", err))
	}

	return rec.toMeta(), nil
}

func (s *RedisStore) lockFor(jobID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(jobID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}
