package entity

import "time"

// ReportFile is a CUR object stored in S3.
type ReportFile struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}
