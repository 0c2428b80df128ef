package database

import "time"

// Status values for TransformRecord.Status.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// TransformRecord is one ledger row.
type TransformRecord struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Operation   string    `json:"operation"`
	Format      string    `json:"format,omitempty"`
	Strategy    string    `json:"strategy,omitempty"`
	Status      string    `json:"status"`
	ErrorKind   string    `json:"errorKind,omitempty"`
	Error       string    `json:"error,omitempty"`
	InputBytes  int64     `json:"inputBytes"`
	OutputBytes int64     `json:"outputBytes"`
	DurationMs  float64   `json:"durationMs"`
	BatchID     string    `json:"batchId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// KindStats counts ledger rows of one media kind.
type KindStats struct {
	Success int `json:"success"`
	Error   int `json:"error"`
}

// Stats summarises the ledger.
type Stats struct {
	TotalTransforms int                  `json:"totalTransforms"`
	ByKind          map[string]KindStats `json:"byKind"`
	ByOperation     map[string]int       `json:"byOperation"`
	InputBytes      int64                `json:"inputBytes"`
	OutputBytes     int64                `json:"outputBytes"`
	FirstRecordedAt *time.Time           `json:"firstRecordedAt,omitempty"`
	LastRecordedAt  *time.Time           `json:"lastRecordedAt,omitempty"`
}
