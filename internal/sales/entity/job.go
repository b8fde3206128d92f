package entity

type JobMeta struct {
	ID                 string
	FileName           string
	TotalFileSizeBytes uint64
	Status             JobStatus
	Err                string
	StartedAt          int64
	EndedAt            int64

	// Live progress, applied from the notification stream
	RowsProcessed       uint64
	MalformedRows       uint64
	ProcessedPercentage float64
	Message             string

	// Final result, present once Status is COMPLETE
	ResultFileName        string
	ResultFileURL         string
	TotalSales            int64
	UniqueDepartments     uint64
	ProcessingTimeSeconds float64
}
