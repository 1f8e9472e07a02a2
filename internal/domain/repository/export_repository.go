package repository

import (
	"github.com/diillson/aws-cur-sync/internal/domain/entity"
)

type ExportRepository interface {
	ExportSummaryToCSV(summary entity.SyncSummary, filename, outputDir string) (string, error)
	ExportSummaryToJSON(summary entity.SyncSummary, filename, outputDir string) (string, error)
	ExportSummaryToPDF(summary entity.SyncSummary, filename, outputDir string) (string, error)
}
