package repository

import (
	"context"
	"iter"
	"time"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
)

// ListOptions filters the report files returned by ListReportFiles.
type ListOptions struct {
	Bucket        string
	Prefix        string
	Suffix        string
	ModifiedSince time.Time
}

// StorageRepository reads cost and usage reports from object storage.
type StorageRepository interface {
	ListReportFiles(ctx context.Context, opts ListOptions) ([]entity.ReportFile, error)
	// ReadReport streams the decoded rows of a report file. The header row is
	// used as the column names of every following row.
	ReadReport(ctx context.Context, bucket string, file entity.ReportFile) iter.Seq2[entity.LineItem, error]
}
