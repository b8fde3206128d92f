package inbound

import (
	"net/http"

	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

type UploadResponse struct {
	JobID         string `json:"job_id"`
	FileName      string `json:"file_name"`
	FileSizeBytes uint64 `json:"file_size_bytes"`
	StatusURL     string `json:"status_url"`
}

func (UploadResponse) StatusCode() int {
	return http.StatusAccepted
}

func (UploadResponse) Message() string {
	return "sales file accepted"
}

type JobStatusResponse struct {
	JobID                 string           `json:"job_id"`
	FileName              string           `json:"file_name,omitempty"`
	Status                entity.JobStatus `json:"status"`
	Error                 string           `json:"error,omitempty"`
	RowsProcessed         uint64           `json:"rows_processed"`
	MalformedRows         uint64           `json:"malformed_rows"`
	ProcessedPercentage   float64          `json:"processed_percentage"`
	Message               string           `json:"message,omitempty"`
	ResultFileName        string           `json:"result_file_name,omitempty"`
	StorageResultFileURL  string           `json:"storage_result_file_url,omitempty"`
	TotalSales            int64            `json:"total_sales"`
	UniqueDepartments     uint64           `json:"unique_departments"`
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
}

func toJobStatusResponse(meta entity.JobMeta) JobStatusResponse {
	return JobStatusResponse{
		JobID:                 meta.ID,
		FileName:              meta.FileName,
		Status:                meta.Status,
		Error:                 meta.Err,
		RowsProcessed:         meta.RowsProcessed,
		MalformedRows:         meta.MalformedRows,
		ProcessedPercentage:   meta.ProcessedPercentage,
		Message:               meta.Message,
		ResultFileName:        meta.ResultFileName,
		StorageResultFileURL:  meta.ResultFileURL,
		TotalSales:            meta.TotalSales,
		UniqueDepartments:     meta.UniqueDepartments,
		ProcessingTimeSeconds: meta.ProcessingTimeSeconds,
	}
}
