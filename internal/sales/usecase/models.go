package usecase

import (
	"io"

	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

type UploadResult struct {
	JobID         string
	FileName      string
	FileSizeBytes uint64
}

type StatusResult struct {
	Job entity.JobMeta
}

// ResultFile is an open artifact. The caller owns Content and must close it.
type ResultFile struct {
	Name    string
	Size    int64
	Content io.ReadCloser
}
