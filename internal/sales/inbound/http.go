package inbound

import (
	"context"
	"io"
	"net/http"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gosales/internal/pkg/pkguid"
	"github.com/shandysiswandi/gosales/internal/sales/entity"
	"github.com/shandysiswandi/gosales/internal/sales/usecase"
)

type uc interface {
	Upload(ctx context.Context, r io.Reader, fileName string) (usecase.UploadResult, error)
	Status(ctx context.Context, jobID string) (usecase.StatusResult, error)
	Result(ctx context.Context, fileName string) (usecase.ResultFile, error)
	CreateStreamJob(ctx context.Context) (string, error)
	ProcessStream(ctx context.Context, jobID string, chunks <-chan entity.ChunkMessage, sink usecase.Notifier) error
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/sales/uploads", end.UploadSales)

	r.GET("/sales/jobs/:job_id", end.JobStatus)

	// Raw handler: the artifact is streamed, not wrapped in the JSON envelope.
	r.Handle(http.MethodGet, "/sales/results/:file_name", http.HandlerFunc(end.DownloadResult))
}

func RegisterWSEndpoint(r *pkgrouter.Router, uc uc, events usecase.Notifier, sessions pkguid.NumberID) {
	end := NewWSEndpoint(uc, events, sessions)

	r.Handle(http.MethodGet, "/sales/stream", http.HandlerFunc(end.Stream))
}
