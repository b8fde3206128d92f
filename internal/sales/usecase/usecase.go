package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosales/internal/pkg/pkguid"
	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

// DefaultChunkSize is how many bytes of a spooled upload are fed into the
// stream per chunk.
const DefaultChunkSize = 1 << 20

type Store interface {
	CreateJob(ctx context.Context, meta entity.JobMeta) error
	UpdateMeta(ctx context.Context, jobID string, fn func(meta *entity.JobMeta)) error
	GetJob(ctx context.Context, jobID string) (entity.JobMeta, error)
}

// Notifier is the sink for the per-job server message stream.
type Notifier interface {
	Publish(ctx context.Context, n entity.Notification) error
}

type ObjectStorage interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	Remove(ctx context.Context, name string) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

type Config struct {
	ChunkSize        int
	ProgressInterval time.Duration
}

type Dependency struct {
	Store   Store
	Events  Notifier
	Storage ObjectStorage
	Runner  Runner
	Clock   Clock
	ID      pkguid.StringID
	RootCtx context.Context
	Config  Config
}

type Usecase struct {
	store   Store
	events  Notifier
	storage ObjectStorage
	runner  Runner
	clock   Clock
	id      pkguid.StringID
	rootCtx context.Context
	config  Config
}

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	cfg := dep.Config
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = DefaultChunkSize
	}

	return &Usecase{
		store:   dep.Store,
		events:  dep.Events,
		storage: dep.Storage,
		runner:  dep.Runner,
		clock:   clock,
		id:      dep.ID,
		rootCtx: root,
		config:  cfg,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Upload spools the reader to disk so the total size is known up front (the
// progress percentage needs it), registers the job and feeds the spooled
// bytes through the chunk stream in the background.
func (u *Usecase) Upload(ctx context.Context, r io.Reader, fileName string) (UploadResult, error) {
	if u.store == nil || u.id == nil || u.runner == nil || u.storage == nil {
		return UploadResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}
	if r == nil {
		return UploadResult{}, pkgerror.NewInvalidInput(errors.New("file is required"))
	}

	spool, size, err := spoolToTemp(r)
	if err != nil {
		return UploadResult{}, pkgerror.NewServer(err)
	}

	jobID := u.id.Generate()
	if err := u.store.CreateJob(ctx, entity.JobMeta{
		ID:                 jobID,
		FileName:           fileName,
		TotalFileSizeBytes: uint64(size),
		Status:             entity.JobStatusQueued,
	}); err != nil {
		_ = os.Remove(spool)
		return UploadResult{}, normalizeErr(err)
	}

	u.runner.Go(u.rootCtx, func(ctx context.Context) error {
		defer func() {
			if err := os.Remove(spool); err != nil {
				slog.WarnContext(ctx, "failed to remove spool file", "job_id", jobID, "error", err)
			}
		}()

		if err := u.processSpool(ctx, jobID, spool, uint64(size)); err != nil {
			slog.ErrorContext(ctx, "job processing failed", "job_id", jobID, "error", err)
			return err
		}

		return nil
	})

	return UploadResult{JobID: jobID, FileName: fileName, FileSizeBytes: uint64(size)}, nil
}

// CreateStreamJob registers a job for a caller that will drive the chunk
// stream itself, such as a websocket session.
func (u *Usecase) CreateStreamJob(ctx context.Context) (string, error) {
	if u.store == nil || u.id == nil {
		return "", pkgerror.NewServer(errors.New("missing dependency"))
	}

	jobID := u.id.Generate()
	if err := u.store.CreateJob(ctx, entity.JobMeta{
		ID:     jobID,
		Status: entity.JobStatusQueued,
	}); err != nil {
		return "", normalizeErr(err)
	}

	return jobID, nil
}

func (u *Usecase) Status(ctx context.Context, jobID string) (StatusResult, error) {
	if jobID == "" {
		return StatusResult{}, pkgerror.NewInvalidInput(errors.New("job_id is required"))
	}

	meta, err := u.store.GetJob(ctx, jobID)
	if err != nil {
		return StatusResult{}, mapStoreErr(err)
	}

	return StatusResult{Job: meta}, nil
}

// Result opens a finished artifact for download. The file name is validated
// before it goes anywhere near the storage backend.
func (u *Usecase) Result(ctx context.Context, fileName string) (ResultFile, error) {
	if err := validateResultName(fileName); err != nil {
		return ResultFile{}, pkgerror.NewInvalidInput(err)
	}

	content, size, err := u.storage.Open(ctx, fileName)
	if err != nil {
		if errors.Is(err, pkgerror.ErrNotFound) {
			return ResultFile{}, pkgerror.NewBusiness("result file not found", pkgerror.CodeNotFound)
		}
		return ResultFile{}, normalizeErr(err)
	}

	return ResultFile{Name: fileName, Size: size, Content: content}, nil
}

func (u *Usecase) processSpool(ctx context.Context, jobID, path string, size uint64) error {
	f, err := os.Open(path)
	if err != nil {
		return u.failJob(ctx, jobID, u.events, fmt.Errorf("open spool file: %w", err))
	}
	defer f.Close()

	pctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	chunks := make(chan entity.ChunkMessage, 1)
	go func() {
		defer close(chunks)

		buf := make([]byte, u.config.ChunkSize)
		first := true
		for {
			n, err := f.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])

				msg := entity.ChunkMessage{Data: data}
				if first {
					msg.TotalFileSizeBytes = size
					first = false
				}

				select {
				case chunks <- msg:
				case <-pctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					cancel(fmt.Errorf("read spool file: %w", err))
				}
				return
			}
		}
	}()

	return u.ProcessStream(pctx, jobID, chunks, u.events)
}

func spoolToTemp(r io.Reader) (string, int64, error) {
	f, err := os.CreateTemp("", "gosales-upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create spool file: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", 0, fmt.Errorf("spool upload: %w", err)
	}

	return f.Name(), size, nil
}

var resultNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func validateResultName(name string) error {
	if name == "" {
		return errors.New("file name is required")
	}
	if len(name) > 255 {
		return errors.New("file name is too long")
	}
	if strings.Contains(name, "..") {
		return errors.New("file name must not contain path traversal")
	}
	if !resultNamePattern.MatchString(name) {
		return errors.New("file name contains invalid characters")
	}

	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("job not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
