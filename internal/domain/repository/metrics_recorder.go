package repository

import "github.com/diillson/aws-cur-sync/internal/domain/entity"

// Tipos de operação no catálogo reportados ao MetricsRecorder.
const (
	OpUpsertCost     = "upsert_cost"
	OpUpsertResource = "upsert_resource"
	OpDelete         = "delete"
)

// MetricsRecorder receives the counters of a sync run.
type MetricsRecorder interface {
	FileProcessed(summary entity.FileSummary)
	CatalogOperation(kind string, err error)
	RunFinished(summary entity.SyncSummary) error
}
