package aws

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
	"github.com/diillson/aws-cur-sync/internal/domain/repository"
)

// s3API is the subset of the S3 client used to read reports.
type s3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3RepositoryImpl implementa o StorageRepository sobre o S3.
type S3RepositoryImpl struct {
	client s3API
}

// NewS3Repository cria um StorageRepository a partir da configuração AWS.
func NewS3Repository(cfg aws.Config) repository.StorageRepository {
	return &S3RepositoryImpl{client: s3.NewFromConfig(cfg)}
}

// ListReportFiles lists the objects under the prefix whose key ends with the
// suffix and that were modified after opts.ModifiedSince.
func (r *S3RepositoryImpl) ListReportFiles(ctx context.Context, opts repository.ListOptions) ([]entity.ReportFile, error) {
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(opts.Bucket),
		Prefix: aws.String(opts.Prefix),
	})

	var files []entity.ReportFile
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", opts.Bucket, opts.Prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if opts.Suffix != "" && !strings.HasSuffix(key, opts.Suffix) {
				continue
			}
			modified := aws.ToTime(obj.LastModified)
			if !opts.ModifiedSince.IsZero() && !modified.After(opts.ModifiedSince) {
				continue
			}
			files = append(files, entity.ReportFile{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: modified,
			})
		}
	}
	return files, nil
}

// ReadReport streams the rows of a (optionally gzipped) CSV report. The
// object is opened on the first iteration and closed when iteration ends.
func (r *S3RepositoryImpl) ReadReport(ctx context.Context, bucket string, file entity.ReportFile) iter.Seq2[entity.LineItem, error] {
	return func(yield func(entity.LineItem, error) bool) {
		out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(file.Key),
		})
		if err != nil {
			yield(nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, file.Key, err))
			return
		}
		defer out.Body.Close()

		var body io.Reader = out.Body
		if strings.HasSuffix(file.Key, ".gz") {
			gz, err := gzip.NewReader(out.Body)
			if err != nil {
				yield(nil, fmt.Errorf("failed to open gzip stream %s: %w", file.Key, err))
				return
			}
			defer gz.Close()
			body = gz
		}

		for item, err := range decodeCSV(ctx, body) {
			if err != nil {
				err = fmt.Errorf("%s: %w", file.Key, err)
			}
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// decodeCSV yields one LineItem per row after the header. Rows whose field
// count differs from the header are reported as errors.
func decodeCSV(ctx context.Context, r io.Reader) iter.Seq2[entity.LineItem, error] {
	return func(yield func(entity.LineItem, error) bool) {
		reader := csv.NewReader(r)

		header, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("failed to read header: %w", err))
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("failed to read row: %w", err))
				return
			}

			item := make(entity.LineItem, len(header))
			for i, col := range header {
				item[col] = record[i]
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}
