package entity

// ChunkMessage is one ordered unit of inbound bytes. The first chunk of a job
// states the authoritative total file size; later values are ignored.
type ChunkMessage struct {
	Data               []byte
	TotalFileSizeBytes uint64
}

type ProgressStatus struct {
	RowsProcessed       uint64
	MalformedRows       uint64
	ProcessedPercentage float64
	Message             string
}

type ResultSummary struct {
	ResultFileName        string
	RowsProcessed         uint64
	MalformedRows         uint64
	ProcessedPercentage   float64
	TotalSales            int64
	UniqueDepartments     uint64
	ProcessingTimeSeconds float64
	StorageResultFileURL  string
}

type ErrorStatus struct {
	Message string
}

// Notification is one server-side message about a job. Exactly one of the
// payload fields is set.
type Notification struct {
	JobID    string
	Progress *ProgressStatus
	Summary  *ResultSummary
	Error    *ErrorStatus
}
