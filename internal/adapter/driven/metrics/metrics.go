// Package metrics records sync run metrics with Prometheus and optionally
// pushes them to a Pushgateway at the end of the run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
	"github.com/diillson/aws-cur-sync/internal/domain/repository"
)

const (
	namespace = "aws_cur_sync"
	pushJob   = "aws_cur_sync"
)

// Collector holds all Prometheus metrics of a sync run.
type Collector struct {
	// Report metrics
	FilesProcessed prometheus.Counter
	LinesRead      prometheus.Counter
	LinesDropped   prometheus.Counter
	Groups         prometheus.Counter

	// Catalog metrics
	CatalogOperations *prometheus.CounterVec

	// Run metrics
	ReportCost       *prometheus.GaugeVec
	StaleEntities    prometheus.Gauge
	BillingDrift     *prometheus.GaugeVec
	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge

	gatherer prometheus.Gatherer
	pushURL  string
}

var _ repository.MetricsRecorder = (*Collector)(nil)

// NewWithRegistry creates a collector whose metrics are registered in reg.
// When pushURL is not empty RunFinished pushes reg to that Pushgateway.
func NewWithRegistry(reg *prometheus.Registry, pushURL string) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		FilesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Total number of report files processed",
		}),
		LinesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Total number of report line items read",
		}),
		LinesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_dropped_total",
			Help:      "Total number of line items without any key column",
		}),
		Groups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_total",
			Help:      "Total number of aggregated cost groups",
		}),
		CatalogOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_operations_total",
				Help:      "Total number of catalog operations by kind and result",
			},
			[]string{"kind", "result"},
		),
		ReportCost: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "report_cost",
				Help:      "Cost summed over the processed reports by cost type",
			},
			[]string{"type"},
		),
		StaleEntities: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_entities",
			Help:      "Number of entities found older than the retention cutoff",
		}),
		BillingDrift: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "billing_drift",
				Help:      "Difference between the report cost and Cost Explorer per billing period",
			},
			[]string{"bill_start_date"},
		),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last sync run in seconds",
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp",
			Help:      "Unix timestamp of the end of the last sync run",
		}),
		gatherer: reg,
		pushURL:  pushURL,
	}
}

func (c *Collector) FileProcessed(summary entity.FileSummary) {
	c.FilesProcessed.Inc()
	c.LinesRead.Add(float64(summary.LinesRead))
	c.LinesDropped.Add(float64(summary.LinesDropped))
	c.Groups.Add(float64(summary.Groups))
}

func (c *Collector) CatalogOperation(kind string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.CatalogOperations.WithLabelValues(kind, result).Inc()
}

// RunFinished sets the run gauges and pushes the registry when a
// Pushgateway is configured.
func (c *Collector) RunFinished(summary entity.SyncSummary) error {
	totals := summary.TotalCosts()
	c.ReportCost.WithLabelValues("unblended").Set(totals.Unblended)
	c.ReportCost.WithLabelValues("blended").Set(totals.Blended)
	c.ReportCost.WithLabelValues("amortized").Set(totals.Amortized)
	c.ReportCost.WithLabelValues("ondemand").Set(totals.OnDemand)

	c.StaleEntities.Set(float64(summary.StaleFound))
	for _, rec := range summary.Reconciliation {
		c.BillingDrift.WithLabelValues(rec.BillStartDate).Set(rec.Drift)
	}
	c.RunDuration.Set(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	c.LastRunTimestamp.Set(float64(summary.FinishedAt.Unix()))

	if c.pushURL == "" {
		return nil
	}

	pusher := push.New(c.pushURL, pushJob).Gatherer(c.gatherer)
	if summary.AccountID != "" {
		pusher = pusher.Grouping("account", summary.AccountID)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", c.pushURL, err)
	}
	return nil
}
