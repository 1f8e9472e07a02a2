package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
	"github.com/diillson/aws-cur-sync/internal/domain/repository"
)

func TestCollector_FileAndCatalogCounters(t *testing.T) {
	c := NewWithRegistry(prometheus.NewRegistry(), "")

	c.FileProcessed(entity.FileSummary{Key: "a.csv.gz", LinesRead: 10, LinesDropped: 1, Groups: 4})
	c.FileProcessed(entity.FileSummary{Key: "b.csv.gz", LinesRead: 5, Groups: 2})

	c.CatalogOperation(repository.OpUpsertCost, nil)
	c.CatalogOperation(repository.OpUpsertCost, nil)
	c.CatalogOperation(repository.OpUpsertCost, errors.New("boom"))
	c.CatalogOperation(repository.OpDelete, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.FilesProcessed))
	assert.Equal(t, 15.0, testutil.ToFloat64(c.LinesRead))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LinesDropped))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.Groups))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CatalogOperations.WithLabelValues(repository.OpUpsertCost, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CatalogOperations.WithLabelValues(repository.OpUpsertCost, "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CatalogOperations.WithLabelValues(repository.OpDelete, "success")))
}

func runSummary() entity.SyncSummary {
	start := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	return entity.SyncSummary{
		RunID:      "run-1",
		AccountID:  "123456789012",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Files: []entity.FileSummary{
			{Totals: entity.CostTotals{Unblended: 7, Blended: 6, Amortized: 5, OnDemand: 8}},
			{Totals: entity.CostTotals{Unblended: 3}},
		},
		StaleFound: 4,
		Reconciliation: []entity.PeriodReconciliation{
			{BillStartDate: "2024-05-01T00:00:00Z", ReportCost: 10, BilledCost: 9.5, Drift: 0.5},
		},
	}
}

func TestCollector_RunFinishedSetsGauges(t *testing.T) {
	c := NewWithRegistry(prometheus.NewRegistry(), "")

	require.NoError(t, c.RunFinished(runSummary()))

	assert.Equal(t, 10.0, testutil.ToFloat64(c.ReportCost.WithLabelValues("unblended")))
	assert.Equal(t, 8.0, testutil.ToFloat64(c.ReportCost.WithLabelValues("ondemand")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.StaleEntities))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.BillingDrift.WithLabelValues("2024-05-01T00:00:00Z")))
	assert.Equal(t, 90.0, testutil.ToFloat64(c.RunDuration))
}

func TestCollector_PushesToGateway(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWithRegistry(prometheus.NewRegistry(), srv.URL)
	require.NoError(t, c.RunFinished(runSummary()))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/aws_cur_sync/account/123456789012", path)
}

func TestCollector_PushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewWithRegistry(prometheus.NewRegistry(), srv.URL)
	err := c.RunFinished(runSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}
