package entity

import "time"

// FileSummary describes the processing of a single report file.
type FileSummary struct {
	Key          string     `json:"key"`
	LinesRead    int        `json:"lines_read"`
	LinesDropped int        `json:"lines_dropped"`
	Groups       int        `json:"groups"`
	Totals       CostTotals `json:"totals"`

	// BilledByPeriod is the unblended total per billing period start date.
	BilledByPeriod map[string]float64 `json:"billed_by_period,omitempty"`
}

// SyncSummary aggregates the counters of one sync run.
type SyncSummary struct {
	RunID      string    `json:"run_id"`
	AccountID  string    `json:"account_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`

	Files []FileSummary `json:"files"`

	EntitiesUpserted  int `json:"entities_upserted"`
	EntitiesFailed    int `json:"entities_failed"`
	ResourcesUpserted int `json:"resources_upserted"`
	ResourcesFailed   int `json:"resources_failed"`

	RetentionCutoff time.Time `json:"retention_cutoff"`
	StaleFound      int       `json:"stale_found"`
	Deleted         int       `json:"deleted"`
	DeleteFailed    int       `json:"delete_failed"`

	// Reconciliation holds Cost Explorer drift per billing period when enabled.
	Reconciliation []PeriodReconciliation `json:"reconciliation,omitempty"`
}

// Failures returns the number of catalog operations that failed.
func (s *SyncSummary) Failures() int {
	return s.EntitiesFailed + s.ResourcesFailed + s.DeleteFailed
}

// TotalCosts sums the cost totals of every processed file.
func (s *SyncSummary) TotalCosts() CostTotals {
	var t CostTotals
	for _, f := range s.Files {
		t.Add(f.Totals)
	}
	return t
}

// PeriodReconciliation compares the report total with Cost Explorer.
type PeriodReconciliation struct {
	BillStartDate string  `json:"bill_start_date"`
	ReportCost    float64 `json:"report_cost"`
	BilledCost    float64 `json:"billed_cost"`
	Drift         float64 `json:"drift"`
}
