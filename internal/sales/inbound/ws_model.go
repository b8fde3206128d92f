package inbound

import "github.com/shandysiswandi/gosales/internal/sales/entity"

// clientFrame is what the peer sends: chunk frames carrying base64 data,
// then one end frame. total_file_size_bytes is read from the first chunk
// only.
type clientFrame struct {
	Type               string `json:"type"`
	Data               string `json:"data,omitempty"`
	TotalFileSizeBytes uint64 `json:"total_file_size_bytes,omitempty"`
}

type serverFrame struct {
	Type     string           `json:"type"`
	JobID    string           `json:"job_id,omitempty"`
	Progress *ProgressPayload `json:"progress,omitempty"`
	Summary  *SummaryPayload  `json:"summary,omitempty"`
	Error    *ErrorPayload    `json:"error,omitempty"`

	closing bool
}

type ProgressPayload struct {
	RowsProcessed       uint64  `json:"rows_processed"`
	MalformedRows       uint64  `json:"malformed_rows"`
	ProcessedPercentage float64 `json:"processed_percentage"`
	Message             string  `json:"message"`
}

type SummaryPayload struct {
	ResultFileName        string  `json:"result_file_name"`
	RowsProcessed         uint64  `json:"rows_processed"`
	MalformedRows         uint64  `json:"malformed_rows"`
	ProcessedPercentage   float64 `json:"processed_percentage"`
	TotalSales            int64   `json:"total_sales"`
	UniqueDepartments     uint64  `json:"unique_departments"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	StorageResultFileURL  string  `json:"storage_result_file_url"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func toServerFrame(n entity.Notification) serverFrame {
	switch {
	case n.Progress != nil:
		return serverFrame{
			Type:  "progress",
			JobID: n.JobID,
			Progress: &ProgressPayload{
				RowsProcessed:       n.Progress.RowsProcessed,
				MalformedRows:       n.Progress.MalformedRows,
				ProcessedPercentage: n.Progress.ProcessedPercentage,
				Message:             n.Progress.Message,
			},
		}
	case n.Summary != nil:
		return serverFrame{
			Type:  "summary",
			JobID: n.JobID,
			Summary: &SummaryPayload{
				ResultFileName:        n.Summary.ResultFileName,
				RowsProcessed:         n.Summary.RowsProcessed,
				MalformedRows:         n.Summary.MalformedRows,
				ProcessedPercentage:   n.Summary.ProcessedPercentage,
				TotalSales:            n.Summary.TotalSales,
				UniqueDepartments:     n.Summary.UniqueDepartments,
				ProcessingTimeSeconds: n.Summary.ProcessingTimeSeconds,
				StorageResultFileURL:  n.Summary.StorageResultFileURL,
			},
		}
	case n.Error != nil:
		return serverFrame{
			Type:  "error",
			JobID: n.JobID,
			Error: &ErrorPayload{Message: n.Error.Message},
		}
	default:
		return serverFrame{Type: "error", JobID: n.JobID, Error: &ErrorPayload{Message: "empty notification"}}
	}
}
